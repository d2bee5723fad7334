package report_test

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/slotquest/model"
	"github.com/zintix-labs/slotquest/report"
	"github.com/zintix-labs/slotquest/session"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestMoney(t *testing.T) {
	cases := map[string]decimal.Decimal{
		"$0.00":      decimal.Zero,
		"$1,030.00":  d(1030),
		"-$20.00":    d(-20),
		"$12,345.50": decimal.RequireFromString("12345.5"),
	}
	for want, v := range cases {
		if got := report.Money(v); got != want {
			t.Fatalf("Money(%s) = %q, want %q", v, got, want)
		}
	}
	if got := report.Signed(d(30)); got != "+$30.00" {
		t.Fatalf("Signed(30) = %q", got)
	}
	if got := report.Signed(d(-20)); got != "-$20.00" {
		t.Fatalf("Signed(-20) = %q", got)
	}
}

func TestHealthBar(t *testing.T) {
	out := report.HealthBar(103, 20)
	if !strings.HasSuffix(out, " 103%") || !strings.HasPrefix(out, "[") {
		t.Fatalf("unexpected bar: %q", out)
	}
	if out := report.HealthBar(0, 20); !strings.HasSuffix(out, " 0%") {
		t.Fatalf("unexpected empty bar: %q", out)
	}
}

func TestOutcome(t *testing.T) {
	snap := session.Snapshot{
		InitialGold: d(1000),
		CurrentGold: d(1010),
		ProfitLoss:  d(10),
		History: []session.RoomResult{
			{RoomNumber: 1, SlotName: "Gates of Olympus", Provider: "Pragmatic Play", BuyAmount: d(50), ResultAmount: d(80), ProfitLoss: d(30)},
			{RoomNumber: 2, SlotName: "狂野", Provider: "Nolimit City", BuyAmount: d(20), ResultAmount: decimal.Zero, ProfitLoss: d(-20)},
		},
		Best:  session.Highlight{Name: "Gates of Olympus", Amount: d(30)},
		Worst: session.Highlight{Name: "狂野", Amount: d(-20)},
	}
	out := report.Outcome(snap)
	for _, want := range []string{
		"Quest Complete",
		"$1,010.00",
		"+$10.00",
		"Gates of Olympus (+$30.00)",
		"狂野 (-$20.00)",
		"| 2 | 狂野",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("outcome missing %q:\n%s", want, out)
		}
	}

	// 每一列的顯示寬度一致
	var width int
	grid := report.History(snap.History)
	for _, line := range strings.Split(strings.TrimSpace(grid), "\n") {
		w := runewidth.StringWidth(line)
		if width == 0 {
			width = w
		}
		if w != width {
			t.Fatalf("ragged grid line %q (%d != %d)", line, w, width)
		}
	}
}

func TestOutcomeNoHighlights(t *testing.T) {
	snap := session.Snapshot{
		InitialGold: d(100),
		CurrentGold: d(100),
		Best:        session.Highlight{Name: session.NoneName},
		Worst:       session.Highlight{Name: session.NoneName},
	}
	out := report.Outcome(snap)
	if strings.Contains(out, "(") || !strings.Contains(out, session.NoneName) {
		t.Fatalf("break-even outcome must show placeholders:\n%s", out)
	}
}

func TestRoom(t *testing.T) {
	snap := session.Snapshot{
		NumRooms:      3,
		CurrentRoom:   2,
		CurrentGold:   d(950),
		MinBuy:        d(20),
		MaxBuy:        d(100),
		Suggested:     d(40),
		HealthPercent: 95,
		CurrentSlot:   &model.SlotGame{GameName: "Mental", Provider: "Nolimit City"},
	}
	out := report.Room(snap)
	for _, want := range []string{"2 / 3", "Mental", "Nolimit City", "$20.00 - $100.00", "$40.00", " 95%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("room card missing %q:\n%s", want, out)
		}
	}
}
