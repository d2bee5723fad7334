// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package session 是遊戲核心：金幣帳、房間推進與勝負紀錄。
//
// 狀態流轉：
//
//	Idle -> RoomActive -> StakePlaced -> RoomActive | Complete
//	Complete -> Idle (Restart)
//
// Session 本身是單一寫入者，不加鎖；需要共用時由 Manager 以每個 session 一把鎖序列化。
// 所有被拒絕的操作都不會改動狀態。
package session

import (
	"slices"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/slotquest/dice"
	"github.com/zintix-labs/slotquest/errs"
	"github.com/zintix-labs/slotquest/model"
)

type State uint8

const (
	Idle State = iota
	RoomActive
	StakePlaced
	Complete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case RoomActive:
		return "room_active"
	case StakePlaced:
		return "stake_placed"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// SlotSource 提供依 provider 篩選的 slot（dataset.Store 滿足此介面）。
type SlotSource interface {
	ByProviders(names []string) []model.SlotGame
}

// Config 是 Start 的輸入。
type Config struct {
	InitialGold decimal.Decimal `json:"initial_gold"`
	MinBuy      decimal.Decimal `json:"min_buy"`
	MaxBuy      decimal.Decimal `json:"max_buy"`
	NumRooms    int             `json:"num_rooms"`
	Providers   []string        `json:"providers"`
}

// RoomResult 每個房間一筆，建立後不再變動。
type RoomResult struct {
	RoomNumber   int             `json:"room_number"`
	SlotName     string          `json:"slot_name"`
	Provider     string          `json:"provider"`
	BuyAmount    decimal.Decimal `json:"buy_amount"`
	ResultAmount decimal.Decimal `json:"result_amount"`
	ProfitLoss   decimal.Decimal `json:"profit_loss"`
}

// Highlight 是最佳/最差房間；尚未出現時為 {None, 0}。
type Highlight struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

const NoneName = "None"

func noneHighlight() Highlight { return Highlight{Name: NoneName, Amount: decimal.Zero} }

var (
	ErrNoProviders = errs.Validation("Please select at least one provider")
	ErrBadGold     = errs.Validation("Starting gold must be greater than 0")
	ErrBadBounds   = errs.Validation("Minimum and maximum buy must be greater than 0")
	ErrMinOverMax  = errs.Validation("Minimum buy cannot exceed maximum buy")
	ErrBadRooms    = errs.Validation("Number of rooms must be at least 1")
	ErrNoSlots     = errs.Validation("No slots found for the selected providers")
	ErrBelowMin    = errs.Validation("Buy amount is below the minimum buy")
	ErrAboveMax    = errs.Validation("Buy amount exceeds the maximum buy")
	ErrNoGold      = errs.Validation("Not enough gold for this buy")
	ErrNegResult   = errs.Validation("Result amount cannot be negative")
)

type Session struct {
	state State
	cfg   Config
	dice  dice.Source

	gold      decimal.Decimal
	room      int
	eligible  []model.SlotGame
	current   model.SlotGame
	suggested decimal.Decimal
	pending   decimal.Decimal
	history   []RoomResult
	best      Highlight
	worst     Highlight
}

// New 回傳 Idle 狀態的 Session；src 讓選台與建議下注額可重現。
func New(src dice.Source) *Session {
	if src == nil {
		src, _ = dice.NewRandom()
	}
	return &Session{dice: src, best: noneHighlight(), worst: noneHighlight()}
}

// Start 驗證設定並進入第一個房間。
func (s *Session) Start(cfg Config, slots SlotSource) error {
	if s.state != Idle {
		return stateErr("start", s.state)
	}
	if len(cfg.Providers) == 0 {
		return ErrNoProviders
	}
	if !cfg.InitialGold.IsPositive() {
		return ErrBadGold
	}
	if !cfg.MinBuy.IsPositive() || !cfg.MaxBuy.IsPositive() {
		return ErrBadBounds
	}
	if cfg.MinBuy.GreaterThan(cfg.MaxBuy) {
		return ErrMinOverMax
	}
	if cfg.NumRooms < 1 {
		return ErrBadRooms
	}
	if slots == nil {
		return ErrNoSlots
	}
	eligible := slots.ByProviders(cfg.Providers)
	if len(eligible) == 0 {
		return ErrNoSlots
	}

	cfg.Providers = slices.Clone(cfg.Providers)
	s.cfg = cfg
	s.eligible = eligible
	s.gold = cfg.InitialGold
	s.room = 1
	s.history = make([]RoomResult, 0, cfg.NumRooms)
	s.best, s.worst = noneHighlight(), noneHighlight()
	s.pending = decimal.Zero
	s.enterRoom()
	return nil
}

// Reroll 重新抽一台 slot 與建議下注額，房號與金幣不變。
func (s *Session) Reroll() error {
	if s.state != RoomActive {
		return stateErr("reroll", s.state)
	}
	s.enterRoom()
	return nil
}

// PlaceStake 扣除下注額並等待結果。
func (s *Session) PlaceStake(amount decimal.Decimal) error {
	if s.state != RoomActive {
		return stateErr("place stake", s.state)
	}
	switch {
	case amount.LessThan(s.cfg.MinBuy):
		return ErrBelowMin
	case amount.GreaterThan(s.cfg.MaxBuy):
		return ErrAboveMax
	case amount.GreaterThan(s.gold):
		return ErrNoGold
	}
	s.gold = s.gold.Sub(amount)
	s.pending = amount
	s.state = StakePlaced
	return nil
}

// SubmitResult 記錄本房結果；最後一房提交後進入 Complete。
func (s *Session) SubmitResult(amount decimal.Decimal) (RoomResult, error) {
	if s.state != StakePlaced {
		return RoomResult{}, stateErr("submit result", s.state)
	}
	if amount.IsNegative() {
		return RoomResult{}, ErrNegResult
	}
	pl := amount.Sub(s.pending)
	rec := RoomResult{
		RoomNumber:   s.room,
		SlotName:     s.current.GameName,
		Provider:     s.current.Provider,
		BuyAmount:    s.pending,
		ResultAmount: amount,
		ProfitLoss:   pl,
	}
	s.gold = s.gold.Add(amount)
	s.history = append(s.history, rec)
	s.pending = decimal.Zero

	// 嚴格大於/小於：持平的房間不會取代 None
	if pl.GreaterThan(s.best.Amount) {
		s.best = Highlight{Name: rec.SlotName, Amount: pl}
	}
	if pl.LessThan(s.worst.Amount) {
		s.worst = Highlight{Name: rec.SlotName, Amount: pl}
	}

	if s.room == s.cfg.NumRooms {
		s.state = Complete
		return rec, nil
	}
	s.room++
	s.enterRoom()
	return rec, nil
}

// Restart 只能從 Complete 回到 Idle，session 資料全部丟棄。
func (s *Session) Restart() error {
	if s.state != Complete {
		return stateErr("restart", s.state)
	}
	src := s.dice
	*s = Session{dice: src, best: noneHighlight(), worst: noneHighlight()}
	return nil
}

func (s *Session) enterRoom() {
	idx := dice.Pick(s.dice, len(s.eligible))
	s.current = s.eligible[idx]
	s.suggested = SuggestStake(s.dice, s.cfg.MinBuy, s.cfg.MaxBuy, s.gold)
	s.state = RoomActive
}

func stateErr(op string, st State) error {
	return errs.State("cannot " + op + " while " + st.String())
}

// ============================================================
// ** 讀取 **
// ============================================================

func (s *Session) State() State                { return s.state }
func (s *Session) Gold() decimal.Decimal       { return s.gold }
func (s *Session) Room() int                   { return s.room }
func (s *Session) Config() Config              { return s.cfg }
func (s *Session) CurrentSlot() model.SlotGame { return s.current.Clone() }
func (s *Session) Suggested() decimal.Decimal  { return s.suggested }
func (s *Session) Pending() decimal.Decimal    { return s.pending }
func (s *Session) Best() Highlight             { return s.best }
func (s *Session) Worst() Highlight            { return s.worst }
func (s *Session) History() []RoomResult       { return slices.Clone(s.history) }

// Affordable 回傳目前金幣是否足夠最低下注。
// 金幣低於 minBuy 時 PlaceStake 必定失敗，由前端決定是否提早結束。
func (s *Session) Affordable() bool {
	return s.gold.GreaterThanOrEqual(s.cfg.MinBuy)
}

// ProfitLoss = currentGold - initialGold。
func (s *Session) ProfitLoss() decimal.Decimal {
	return s.gold.Sub(s.cfg.InitialGold)
}

// HealthPercent = currentGold / initialGold * 100，未開始時回傳 0。
func (s *Session) HealthPercent() float64 {
	if !s.cfg.InitialGold.IsPositive() {
		return 0
	}
	return s.gold.Div(s.cfg.InitialGold).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// Snapshot 是 JSON 友善的唯讀檢視。
type Snapshot struct {
	ID            string          `json:"id,omitempty"`
	State         string          `json:"state"`
	InitialGold   decimal.Decimal `json:"initial_gold"`
	CurrentGold   decimal.Decimal `json:"current_gold"`
	MinBuy        decimal.Decimal `json:"min_buy"`
	MaxBuy        decimal.Decimal `json:"max_buy"`
	NumRooms      int             `json:"num_rooms"`
	CurrentRoom   int             `json:"current_room"`
	Providers     []string        `json:"providers"`
	CurrentSlot   *model.SlotGame `json:"current_slot,omitempty"`
	Suggested     decimal.Decimal `json:"suggested_stake"`
	PendingBuy    decimal.Decimal `json:"pending_buy"`
	Affordable    bool            `json:"affordable"`
	History       []RoomResult    `json:"history"`
	Best          Highlight       `json:"best"`
	Worst         Highlight       `json:"worst"`
	ProfitLoss    decimal.Decimal `json:"profit_loss"`
	HealthPercent float64         `json:"health_percent"`
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		State:         s.state.String(),
		InitialGold:   s.cfg.InitialGold,
		CurrentGold:   s.gold,
		MinBuy:        s.cfg.MinBuy,
		MaxBuy:        s.cfg.MaxBuy,
		NumRooms:      s.cfg.NumRooms,
		CurrentRoom:   s.room,
		Providers:     slices.Clone(s.cfg.Providers),
		Suggested:     s.suggested,
		PendingBuy:    s.pending,
		History:       s.History(),
		Best:          s.best,
		Worst:         s.worst,
		ProfitLoss:    s.ProfitLoss(),
		HealthPercent: s.HealthPercent(),
	}
	if s.history == nil {
		snap.History = []RoomResult{}
	}
	if snap.Providers == nil {
		snap.Providers = []string{}
	}
	if s.state == RoomActive || s.state == StakePlaced {
		cur := s.current.Clone()
		snap.CurrentSlot = &cur
		snap.Affordable = s.Affordable()
	}
	return snap
}
