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

// Package admin 是資料集編輯模型：provider 與 slot 的 CRUD。
//
// 每個操作都先驗證再變更，並回傳一個給人看的 Status；失敗不會 panic，
// 也不會留下半套的變更。
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/zintix-labs/slotquest/dataset"
	"github.com/zintix-labs/slotquest/errs"
	"github.com/zintix-labs/slotquest/model"
	"github.com/zintix-labs/slotquest/providers"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	ErrProviderName = errs.Validation("Provider name cannot be empty")
	ErrProviderDup  = errs.Duplicate("This provider already exists")
	ErrNoSlot       = errs.NotFound("Slot not found")
)

// Status 是操作結果；Err 為 nil 代表成功。Message 為空代表 no-op。
type Status struct {
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (s Status) OK() bool { return s.Err == nil }

func done(format string, a ...any) Status {
	p := message.NewPrinter(language.English)
	return Status{Message: p.Sprintf(format, a...)}
}

func fail(err error) Status {
	return Status{Message: errs.Msg(err), Err: err}
}

func money(v float64) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("$%.2f", v)
}

// Editor 持有 Store、Registry 與 provider 清單。
type Editor struct {
	mu    sync.Mutex
	store *dataset.Store
	reg   *providers.Registry
	provs []model.Provider
	log   *slog.Logger
}

// New 以資料集中出現過的 provider 建立清單，並 seed Registry。
func New(store *dataset.Store, reg *providers.Registry, log *slog.Logger) *Editor {
	if reg == nil {
		reg = providers.New(nil)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	names := store.Providers()
	reg.Seed(names...)
	provs := make([]model.Provider, len(names))
	for i, n := range names {
		provs[i] = model.Provider{ID: i, Name: n}
	}
	return &Editor{store: store, reg: reg, provs: provs, log: log}
}

func (e *Editor) Store() *dataset.Store         { return e.store }
func (e *Editor) Registry() *providers.Registry { return e.reg }

func (e *Editor) Providers() []model.Provider {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.Provider(nil), e.provs...)
}

func (e *Editor) ProviderNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.provs))
	for i, p := range e.provs {
		out[i] = p.Name
	}
	return out
}

// findProvider 以不分大小寫比對，需持有 e.mu。
func (e *Editor) findProvider(name string) (model.Provider, bool) {
	for _, p := range e.provs {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return model.Provider{}, false
}

// ============================================================
// ** Provider **
// ============================================================

// AddProvider 新增 provider 並安裝 generic 預設值。
func (e *Editor) AddProvider(name string) Status {
	name = strings.TrimSpace(name)
	if name == "" {
		return fail(ErrProviderName)
	}
	e.mu.Lock()
	if _, ok := e.findProvider(name); ok {
		e.mu.Unlock()
		return fail(ErrProviderDup)
	}
	e.provs = append(e.provs, model.Provider{ID: len(e.provs), Name: name})
	e.mu.Unlock()

	e.reg.SeedGeneric(name)
	return done("Added new provider: %s", name)
}

// ensureProvider 在 slot 存檔時登記尚未出現過的 provider。
func (e *Editor) ensureProvider(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.findProvider(name); ok {
		return
	}
	e.provs = append(e.provs, model.Provider{ID: len(e.provs), Name: name})
	e.reg.Seed(name)
}

func (e *Editor) knownProvider(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.findProvider(name); !ok {
		return errs.NotFound(fmt.Sprintf("Unknown provider: %s", name))
	}
	return nil
}

func (e *Editor) ProviderDefaults(name string) (model.ProviderDefaults, bool) {
	return e.reg.Get(name)
}

func (e *Editor) AddProviderBetLevel(provider string, v float64) Status {
	if err := e.knownProvider(provider); err != nil {
		return fail(err)
	}
	if err := e.reg.AddBetLevel(provider, v); err != nil {
		return fail(err)
	}
	return done("Added %s to %s bet levels", money(v), provider)
}

func (e *Editor) RemoveProviderBetLevel(provider string, v float64) Status {
	if err := e.knownProvider(provider); err != nil {
		return fail(err)
	}
	if !e.reg.RemoveBetLevel(provider, v) {
		return Status{}
	}
	return done("Removed %s from %s bet levels", money(v), provider)
}

func (e *Editor) SetProviderBetLevels(provider string, levels []float64) Status {
	if err := e.knownProvider(provider); err != nil {
		return fail(err)
	}
	if err := e.reg.SetBetLevels(provider, levels); err != nil {
		return fail(err)
	}
	return done("Updated %s bet levels", provider)
}

func (e *Editor) SetProviderFeatureSpins(provider string, enabled bool, multiplier int) Status {
	if err := e.knownProvider(provider); err != nil {
		return fail(err)
	}
	if err := e.reg.SetFeatureSpinsDefault(provider, enabled, multiplier); err != nil {
		return fail(err)
	}
	yes := "No"
	if enabled {
		yes = "Yes"
	}
	return done("Updated %s default feature spins: %s (%dx)", provider, yes, max(1, multiplier))
}

// ============================================================
// ** Slot **
// ============================================================

// NewDraft 回傳以 provider 預設值預填的新 slot 草稿。
func (e *Editor) NewDraft(provider string) *Draft {
	provider = strings.TrimSpace(provider)
	return newDraft(e.reg, e.reg.Prefill(provider))
}

// Edit 以既有 slot 建立草稿。
func (e *Editor) Edit(id int) (*Draft, Status) {
	g, ok := e.store.Get(id)
	if !ok {
		return nil, fail(ErrNoSlot)
	}
	return newDraft(e.reg, g), Status{}
}

// Save 驗證草稿、寫入 Store 並整份持久化。
//
// 持久化失敗時，記憶體中的紀錄已更新，回傳 PersistError 讓使用者可以手動重試。
func (e *Editor) Save(ctx context.Context, d *Draft) (model.SlotGame, Status) {
	if d == nil {
		return model.SlotGame{}, fail(ErrNoSlot)
	}
	if err := d.validate(); err != nil {
		return model.SlotGame{}, fail(err)
	}
	created := d.IsNew()
	if !created {
		if _, ok := e.store.Get(d.ID); !ok {
			return model.SlotGame{}, fail(ErrNoSlot)
		}
	}
	saved, err := e.store.Upsert(d.Record())
	if err != nil {
		return model.SlotGame{}, fail(err)
	}
	d.ID = saved.ID
	e.ensureProvider(saved.Provider)

	if err := e.store.Persist(ctx); err != nil {
		e.log.Warn("dataset.persist", slog.Int("id", saved.ID), slog.Any("err", err))
		return saved, fail(err)
	}
	e.log.Info("dataset.persist", slog.Int("id", saved.ID), slog.String("slot", saved.GameName), slog.Bool("created", created))
	if created {
		return saved, done("Created new slot: %s. Saved successfully!", saved.GameName)
	}
	return saved, done("Updated slot: %s. Saved successfully!", saved.GameName)
}

// Overwrite 以整份檔案內容取代資料集並寫回，新出現的 provider 一併登記。
func (e *Editor) Overwrite(ctx context.Context, raw []byte) Status {
	if err := e.store.Overwrite(ctx, raw); err != nil {
		e.log.Warn("dataset.overwrite", slog.Any("err", err))
		return fail(err)
	}
	for _, n := range e.store.Providers() {
		e.ensureProvider(n)
	}
	e.log.Info("dataset.overwrite", slog.Int("slots", e.store.Len()))
	return done("File saved successfully")
}

// Filter 是純讀取的搜尋。
func (e *Editor) Filter(query, provider string) []model.SlotGame {
	return e.store.Filter(query, provider)
}

// EffectiveBetLevels 回傳 slot 實際使用的下注階梯。
func (e *Editor) EffectiveBetLevels(g model.SlotGame) []float64 {
	return e.reg.EffectiveBetLevels(g)
}

// ============================================================
// ** 整包輸入（HTTP / 腳本） **
// ============================================================

// SlotInput 是整筆 slot 的輸入；套用時逐項重播 Draft 操作，確保每條規則都生效。
type SlotInput struct {
	GameName               string              `json:"game_name"`
	Provider               string              `json:"provider"`
	GameImageURL           string              `json:"game_image_url"`
	BetLevels              []float64           `json:"bet_levels"`
	FeatureSpins           *bool               `json:"feature_spins"`
	FeatureSpinsMultiplier *int                `json:"feature_spins_multiplier"`
	AdditionalFeatureSpins []model.FeatureSpin `json:"additional_feature_spins"`
	Bonuses                []model.Bonus       `json:"bonuses"`
}

// Apply 以 in 建立草稿：id < 0 為新建（以 provider 預設值預填），否則編輯既有 slot。
// 集合欄位一律整組取代。
func (e *Editor) Apply(id int, in SlotInput) (*Draft, Status) {
	var d *Draft
	if id < 0 {
		d = e.NewDraft(in.Provider)
	} else {
		var st Status
		if d, st = e.Edit(id); !st.OK() {
			return nil, st
		}
		d.SetProvider(in.Provider)
	}
	d.GameName = in.GameName
	d.GameImageURL = in.GameImageURL
	if in.FeatureSpins != nil {
		d.FeatureSpins = *in.FeatureSpins
	}
	if in.FeatureSpinsMultiplier != nil {
		d.FeatureSpinsMultiplier = *in.FeatureSpinsMultiplier
	}

	d.betLevels = []float64{}
	d.featureSpins = []model.FeatureSpin{}
	d.bonuses = []model.Bonus{}
	for _, v := range in.BetLevels {
		next, err := providers.InsertLevel(d.betLevels, v)
		if err != nil {
			return nil, fail(errs.WrapWithExtra(err, errs.Msg(err), fmt.Sprintf("bet level %v", v)))
		}
		d.betLevels = next
	}
	for _, f := range in.AdditionalFeatureSpins {
		if st := d.AddFeatureSpin(f.Name, f.Multiplier, f.Description); !st.OK() {
			return nil, st
		}
	}
	for _, b := range in.Bonuses {
		if st := d.AddBonus(b.Name, b.Multiplier, b.Description); !st.OK() {
			return nil, st
		}
	}
	return d, Status{}
}
