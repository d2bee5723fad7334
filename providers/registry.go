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

// Package providers 是 Provider Defaults Registry。
//
// 預設值來自一張宣告式的種子表（YAML）：表內有列出的 provider 使用該列，
// 其餘 provider 在第一次出現時使用 generic。Registry 只存在於行程內，
// 每次載入重新 seed，不會寫回資料集。
package providers

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"

	"github.com/zintix-labs/slotquest/errs"
	"github.com/zintix-labs/slotquest/model"
)

var ErrDupLevel = errs.Duplicate("This bet level already exists")

type Registry struct {
	mu     sync.RWMutex
	table  *Table
	byName map[string]model.ProviderDefaults
}

// New 以種子表建立空的 Registry；table 為 nil 時使用內建表。
func New(table *Table) *Registry {
	if table == nil {
		table = Builtin()
	}
	return &Registry{
		table:  table,
		byName: make(map[string]model.ProviderDefaults, 32),
	}
}

func (r *Registry) Table() *Table { return r.table }

// Seed 為尚未存在的 provider 安裝預設值；已存在的不覆寫。
func (r *Registry) Seed(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range names {
		if _, ok := r.byName[n]; ok {
			continue
		}
		r.byName[n] = r.table.DefaultsFor(n)
	}
}

// SeedGeneric 為新 provider 安裝 generic 預設值（admin 新增 provider 時使用）。
func (r *Registry) SeedGeneric(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[name]; ok {
		return
	}
	r.byName[name] = r.table.Generic.Clone()
}

func (r *Registry) Has(provider string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byName[provider]
	return ok
}

// Get 回傳 provider 預設值的拷貝。
func (r *Registry) Get(provider string) (model.ProviderDefaults, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[provider]
	if !ok {
		return model.ProviderDefaults{}, false
	}
	return d.Clone(), true
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byName))
	for n := range r.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// SetBetLevels 整組取代；每個值需 > 0 且不重複，存入時升冪排序。
func (r *Registry) SetBetLevels(provider string, levels []float64) error {
	next, err := NormalizeLevels(levels)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.ensure(provider)
	d.BetLevels = next
	r.byName[provider] = d
	return nil
}

// AddBetLevel 插入一個新階梯並維持升冪；重複時回傳 DuplicateError 且不變更。
func (r *Registry) AddBetLevel(provider string, value float64) error {
	if err := CheckLevel(value); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.ensure(provider)
	next, err := InsertLevel(d.BetLevels, value)
	if err != nil {
		return err
	}
	d.BetLevels = next
	r.byName[provider] = d
	return nil
}

// RemoveBetLevel 移除一個階梯；不存在時為 no-op，回傳是否有移除。
func (r *Registry) RemoveBetLevel(provider string, value float64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byName[provider]
	if !ok {
		return false
	}
	next, removed := DeleteLevel(d.BetLevels, value)
	if !removed {
		return false
	}
	d.BetLevels = next
	r.byName[provider] = d
	return true
}

// SetFeatureSpinsDefault 設定 provider 的 feature spin 預設值。
func (r *Registry) SetFeatureSpinsDefault(provider string, enabled bool, multiplier int) error {
	if enabled && multiplier < 1 {
		return errs.Validation("Feature spins multiplier must be at least 1")
	}
	if multiplier < 1 {
		multiplier = 1
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.ensure(provider)
	d.FeatureSpins = enabled
	d.FeatureSpinsMultiplier = multiplier
	r.byName[provider] = d
	return nil
}

// EffectiveBetLevels : slot 自己有階梯就用自己的，否則用 provider 預設，再不然為空。
func (r *Registry) EffectiveBetLevels(slot model.SlotGame) []float64 {
	if len(slot.BetLevels) > 0 {
		return slices.Clone(slot.BetLevels)
	}
	if d, ok := r.Get(slot.Provider); ok {
		return d.BetLevels
	}
	return []float64{}
}

// Prefill 回傳一個以 provider 預設值預填的新 slot（ID = -1 代表尚未存入）。
//
// 預填只發生在建立時；存入後 slot 自己的欄位為準，不再查 Registry。
func (r *Registry) Prefill(provider string) model.SlotGame {
	s := model.SlotGame{
		ID:                     -1,
		Provider:               provider,
		BetLevels:              []float64{},
		FeatureSpinsMultiplier: 1,
		AdditionalFeatureSpins: []model.FeatureSpin{},
		Bonuses:                []model.Bonus{},
	}
	if d, ok := r.Get(provider); ok {
		s.FeatureSpins = d.FeatureSpins
		s.FeatureSpinsMultiplier = max(1, d.FeatureSpinsMultiplier)
	}
	return s
}

// ensure 需在持有寫鎖時呼叫；第一次見到的 provider 依種子表補上。
func (r *Registry) ensure(provider string) model.ProviderDefaults {
	d, ok := r.byName[provider]
	if !ok {
		d = r.table.DefaultsFor(provider)
	}
	return d
}

// ============================================================
// ** 階梯工具：provider 與 slot 共用同一套規則 **
// ============================================================

// CheckLevel 要求是有限的正數。
func CheckLevel(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return errs.Validation("Please enter a valid bet amount")
	}
	return nil
}

// InsertLevel 回傳插入 v 之後的新 slice（升冪）；v 已存在時回傳 DuplicateError。
func InsertLevel(levels []float64, v float64) ([]float64, error) {
	if err := CheckLevel(v); err != nil {
		return nil, err
	}
	if slices.Contains(levels, v) {
		return nil, ErrDupLevel
	}
	next := append(slices.Clone(levels), v)
	slices.Sort(next)
	return next, nil
}

// DeleteLevel 回傳移除 v 之後的新 slice 與是否有移除。
func DeleteLevel(levels []float64, v float64) ([]float64, bool) {
	i := slices.Index(levels, v)
	if i < 0 {
		return levels, false
	}
	return slices.Delete(slices.Clone(levels), i, i+1), true
}

// NormalizeLevels 檢查整組階梯並回傳排序後的拷貝。
func NormalizeLevels(levels []float64) ([]float64, error) {
	out := make([]float64, 0, len(levels))
	for _, v := range levels {
		next, err := InsertLevel(out, v)
		if err != nil {
			return nil, errs.WrapWithExtra(err, errs.Msg(err), fmt.Sprintf("level %v", v))
		}
		out = next
	}
	return out, nil
}
