package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/slotquest/errs"
	"github.com/zintix-labs/slotquest/report"
	"github.com/zintix-labs/slotquest/session"
)

var errQuit = errors.New("quit")

// play 驅動一個已 Start 的 session 直到最後一房結束、金幣不足或輸入 q。
func play(in io.Reader, out io.Writer, s *session.Session) error {
	sc := bufio.NewScanner(in)
	ask := func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", errQuit
		}
		line := strings.TrimSpace(sc.Text())
		if strings.EqualFold(line, "q") {
			return "", errQuit
		}
		return line, nil
	}

	for s.State() != session.Complete {
		if !s.Affordable() {
			fmt.Fprintln(out, "Not enough gold for the minimum buy. Game over.")
			break
		}
		fmt.Fprint(out, report.Room(s.Snapshot()))

		line, err := ask(fmt.Sprintf("Buy amount [%s] (r = reroll, q = quit): ", report.Money(s.Suggested())))
		if err != nil {
			return finish(out, s, err)
		}
		if strings.EqualFold(line, "r") {
			if err := s.Reroll(); err != nil {
				return err
			}
			continue
		}
		amount := s.Suggested()
		if line != "" {
			if amount, err = decimal.NewFromString(line); err != nil {
				fmt.Fprintln(out, "Please enter a valid amount")
				continue
			}
		}
		if err := s.PlaceStake(amount); err != nil {
			fmt.Fprintln(out, errs.Msg(err))
			continue
		}

		for s.State() == session.StakePlaced {
			line, err := ask("Result amount: ")
			if err != nil {
				return finish(out, s, err)
			}
			v, perr := decimal.NewFromString(line)
			if perr != nil {
				fmt.Fprintln(out, "Please enter a valid amount")
				continue
			}
			rec, err := s.SubmitResult(v)
			if err != nil {
				fmt.Fprintln(out, errs.Msg(err))
				continue
			}
			fmt.Fprintf(out, "Room %d: %s\n", rec.RoomNumber, report.Signed(rec.ProfitLoss))
		}
	}
	return finish(out, s, nil)
}

func finish(out io.Writer, s *session.Session, err error) error {
	fmt.Fprint(out, report.Outcome(s.Snapshot()))
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}
