package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/slotquest/dice"
	"github.com/zintix-labs/slotquest/model"
	"github.com/zintix-labs/slotquest/session"
)

type oneSlot struct{}

func (oneSlot) ByProviders(names []string) []model.SlotGame {
	return []model.SlotGame{{GameName: "Mental", Provider: "Nolimit City"}}
}

func start(t *testing.T, rooms int) *session.Session {
	t.Helper()
	s := session.New(dice.New(1))
	err := s.Start(session.Config{
		InitialGold: decimal.NewFromInt(1000),
		MinBuy:      decimal.NewFromInt(20),
		MaxBuy:      decimal.NewFromInt(100),
		NumRooms:    rooms,
		Providers:   []string{"Nolimit City"},
	}, oneSlot{})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	return s
}

func TestPlayTwoRooms(t *testing.T) {
	s := start(t, 2)
	in := strings.NewReader("abc\n150\n50\n-1\n80\nr\n20\n0\n")
	var out bytes.Buffer
	if err := play(in, &out, s); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if s.State() != session.Complete || !s.Gold().Equal(decimal.NewFromInt(1010)) {
		t.Fatalf("unexpected end state: %s gold=%s", s.State(), s.Gold())
	}
	text := out.String()
	for _, want := range []string{
		"Please enter a valid amount",
		"Buy amount exceeds the maximum buy",
		"Result amount cannot be negative",
		"Room 1: +$30.00",
		"Room 2: -$20.00",
		"Quest Complete",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
}

func TestPlaySuggestedAndQuit(t *testing.T) {
	s := start(t, 3)
	want := s.Suggested()
	in := strings.NewReader("\n100\nq\n")
	var out bytes.Buffer
	if err := play(in, &out, s); err != nil {
		t.Fatalf("quit must not be an error: %v", err)
	}
	h := s.History()
	if len(h) != 1 || !h[0].BuyAmount.Equal(want) {
		t.Fatalf("empty input must use the suggested stake %s: %+v", want, h)
	}
	if s.State() != session.RoomActive {
		t.Fatalf("unexpected state after quit: %s", s.State())
	}
}

func TestPlayBroke(t *testing.T) {
	s := session.New(dice.New(1))
	if err := s.Start(session.Config{
		InitialGold: decimal.NewFromInt(30),
		MinBuy:      decimal.NewFromInt(20),
		MaxBuy:      decimal.NewFromInt(30),
		NumRooms:    3,
		Providers:   []string{"Nolimit City"},
	}, oneSlot{}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	var out bytes.Buffer
	if err := play(strings.NewReader("30\n0\n"), &out, s); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if !strings.Contains(out.String(), "Game over") {
		t.Fatalf("expected game over:\n%s", out.String())
	}
}

func TestParseProviders(t *testing.T) {
	known := []string{"Nolimit City", "Relax Gaming", "Pragmatic Play"}
	got := parseProviders("big3", known)
	if len(got) != 2 {
		t.Fatalf("big3 must keep only known providers: %v", got)
	}
	got = parseProviders(" A , ,B ", known)
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Fatalf("unexpected list: %v", got)
	}
}
