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

package session

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/zintix-labs/slotquest/dice"
	"github.com/zintix-labs/slotquest/errs"
)

var ErrNoSession = errs.NotFound("Session not found")

// Hooks 讓上層（metrics）觀察 session 生命週期，欄位皆可為 nil。
type Hooks struct {
	OnCreate   func()
	OnStake    func(snap Snapshot)
	OnComplete func(snap Snapshot)
	OnDelete   func()
}

type entry struct {
	mu      sync.Mutex
	s       *Session
	touched atomic.Int64 // 最後一次操作的 unix nano
}

// Manager 以隨機 id 保存行程內的 session，每個 session 一把鎖。
type Manager struct {
	mu    sync.RWMutex
	m     map[string]*entry
	slots SlotSource
	dice  dice.Source
	hooks Hooks
	log   *slog.Logger
}

// NewManager 建立 Manager；src 為 nil 時以時間派生 seed。
func NewManager(slots SlotSource, src dice.Source, log *slog.Logger, hooks Hooks) *Manager {
	if src == nil {
		src, _ = dice.NewRandom()
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		m:     make(map[string]*entry, 64),
		slots: slots,
		dice:  src,
		hooks: hooks,
		log:   log,
	}
}

// Create 開一局新的 session 並直接 Start。
func (m *Manager) Create(cfg Config) (Snapshot, error) {
	s := New(m.dice)
	if err := s.Start(cfg, m.slots); err != nil {
		return Snapshot{}, err
	}
	id := uuid.NewString()
	e := &entry{s: s}
	e.touched.Store(time.Now().UnixNano())
	m.mu.Lock()
	m.m[id] = e
	m.mu.Unlock()

	if m.hooks.OnCreate != nil {
		m.hooks.OnCreate()
	}
	snap := s.Snapshot()
	snap.ID = id
	m.log.Info("session.create", slog.String("id", id), slog.Int("rooms", cfg.NumRooms), slog.Any("providers", cfg.Providers))
	return snap, nil
}

func (m *Manager) Get(id string) (Snapshot, error) {
	var snap Snapshot
	err := m.Do(id, func(s *Session) error {
		snap = s.Snapshot()
		return nil
	})
	snap.ID = id
	return snap, err
}

// Do 在持有該 session 鎖的情況下執行 fn，回傳執行後的 Snapshot 由呼叫端自行取得。
func (m *Manager) Do(id string, fn func(s *Session) error) error {
	m.mu.RLock()
	e, ok := m.m[id]
	m.mu.RUnlock()
	if !ok {
		return ErrNoSession
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touched.Store(time.Now().UnixNano())
	return fn(e.s)
}

// Update 執行一個會改變狀態的操作並回傳其後的 Snapshot，同時觸發 hooks。
func (m *Manager) Update(id string, fn func(s *Session) error) (Snapshot, error) {
	var (
		snap   Snapshot
		before State
	)
	err := m.Do(id, func(s *Session) error {
		before = s.State()
		if err := fn(s); err != nil {
			return err
		}
		snap = s.Snapshot()
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	snap.ID = id
	if before == RoomActive && snap.State == StakePlaced.String() && m.hooks.OnStake != nil {
		m.hooks.OnStake(snap)
	}
	if before != Complete && snap.State == Complete.String() {
		m.log.Info("session.complete",
			slog.String("id", id),
			slog.String("gold", snap.CurrentGold.String()),
			slog.String("profit_loss", snap.ProfitLoss.String()),
			slog.String("best", snap.Best.Name),
			slog.String("worst", snap.Worst.Name),
		)
		if m.hooks.OnComplete != nil {
			m.hooks.OnComplete(snap)
		}
	}
	return snap, nil
}

func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	_, ok := m.m[id]
	delete(m.m, id)
	m.mu.Unlock()
	if !ok {
		return ErrNoSession
	}
	if m.hooks.OnDelete != nil {
		m.hooks.OnDelete()
	}
	return nil
}

// Sweep 移除超過 maxIdle 沒有任何操作的 session，回傳移除數量。
func (m *Manager) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle).UnixNano()
	m.mu.Lock()
	var gone []string
	for id, e := range m.m {
		if e.touched.Load() < cutoff {
			gone = append(gone, id)
			delete(m.m, id)
		}
	}
	m.mu.Unlock()

	for _, id := range gone {
		m.log.Info("session.expire", slog.String("id", id))
		if m.hooks.OnDelete != nil {
			m.hooks.OnDelete()
		}
	}
	return len(gone)
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.m)
}
