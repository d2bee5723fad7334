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

// Package dataset 是 slot 資料集的 Single Source of Truth。
//
// Store 從 Blob 載入一次，只透過本包定義的操作變更，並可整份寫回。
// 遊戲與 admin 共用同一個 Store。
package dataset

import (
	"bytes"
	"context"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/zintix-labs/slotquest/errs"
	"github.com/zintix-labs/slotquest/model"
	"github.com/zintix-labs/slotquest/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrStructure = errs.Validation("Invalid data structure")
	ErrNoName    = errs.Validation("Slot name cannot be empty")
	ErrNoProv    = errs.Validation("Provider cannot be empty")
)

type Store struct {
	mu    sync.RWMutex
	slots []model.SlotGame
	blob  storage.Blob
}

// Load 從 blob 讀出資料集。
//
// 任何讀取失敗、JSON 錯誤、或形狀不是 [ { slot_games: [...] } ] 都回傳 LoadError。
// 每筆 slot 的 ID 依陣列位置派生，選填欄位補上預設值。
func Load(ctx context.Context, blob storage.Blob) (*Store, error) {
	if blob == nil {
		return nil, errs.Load("dataset blob required", nil)
	}
	raw, err := blob.Get(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, errs.Load(fmt.Sprintf("dataset not found: %s", blob.Name()), err)
		}
		return nil, errs.Load(fmt.Sprintf("can not read dataset: %s", blob.Name()), err)
	}
	doc, err := Decode(raw)
	if err != nil {
		return nil, errs.Load("Failed to load slots data", err)
	}
	s := &Store{blob: blob}
	s.slots = adopt(doc[0].SlotGames)
	return s, nil
}

// Decode 解析並檢查 Document 形狀，不做 normalize。
func Decode(raw []byte) (model.Document, error) {
	var doc model.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errs.WrapWithExtra(err, "Invalid JSON", "decode dataset")
	}
	if err := CheckStructure(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// CheckStructure 要求 Document 為陣列且首元素帶有 slot_games 陣列。
func CheckStructure(doc model.Document) error {
	if len(doc) == 0 || doc[0].SlotGames == nil {
		return ErrStructure
	}
	return nil
}

// Encode 輸出可以直接寫回檔案的 JSON（2 空白縮排，不帶 id）。
func Encode(slots []model.SlotGame) ([]byte, error) {
	raw, err := json.Marshal(model.NewDocument(slots))
	if err != nil {
		return nil, err
	}
	return Indent(raw)
}

// Indent 以 2 空白重新縮排一段 JSON，內容與鍵的順序不變。
// SlotGame 自訂了 MarshalJSON，jsoniter 不會縮排其輸出，因此統一在最後排版。
func Indent(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := stdjson.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func adopt(src []model.SlotGame) []model.SlotGame {
	out := make([]model.SlotGame, len(src))
	for i, s := range src {
		s = s.Clone()
		s.ID = i
		s.Normalize()
		out[i] = s
	}
	return out
}

// ============================================================
// ** 讀取 **
// ============================================================

// Slots 回傳所有 slot 的拷貝（依 ID 排序）。
func (s *Store) Slots() []model.SlotGame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.SlotGame, len(s.slots))
	for i, g := range s.slots {
		out[i] = g.Clone()
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slots)
}

func (s *Store) Get(id int) (model.SlotGame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.slots[i].Clone(), true
	}
	return model.SlotGame{}, false
}

// Providers 回傳目前資料集中出現過的 provider。
func (s *Store) Providers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return DeriveProviders(s.slots)
}

// ByProviders 回傳 provider 在 names 之中的 slot（session 的 eligible slots）。
func (s *Store) ByProviders(names []string) []model.SlotGame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.SlotGame, 0, len(s.slots))
	for _, g := range s.slots {
		if slices.Contains(names, g.Provider) {
			out = append(out, g.Clone())
		}
	}
	return out
}

// Filter 是純讀取查詢：name 或 provider 包含 query（不分大小寫），
// 且 provider 為空或與 slot.Provider 完全相同。
func (s *Store) Filter(query, provider string) []model.SlotGame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := strings.ToLower(query)
	out := make([]model.SlotGame, 0, len(s.slots))
	for _, g := range s.slots {
		match := strings.Contains(strings.ToLower(g.GameName), q) ||
			strings.Contains(strings.ToLower(g.Provider), q)
		if !match {
			continue
		}
		if provider != "" && g.Provider != provider {
			continue
		}
		out = append(out, g.Clone())
	}
	return out
}

// Document 以目前狀態組出檔案形狀。
func (s *Store) Document() model.Document {
	return model.NewDocument(s.Slots())
}

// ============================================================
// ** 變更 **
// ============================================================

// Upsert 新增或整筆取代一個 slot。
//
// rec.ID 不存在（含負數）時以 len(slots) 作為新 ID 附加在尾端；
// 存在時整筆取代。沒有刪除操作，因此 ID 不會被重複使用。
func (s *Store) Upsert(rec model.SlotGame) (model.SlotGame, error) {
	rec.GameName = strings.TrimSpace(rec.GameName)
	rec.Provider = strings.TrimSpace(rec.Provider)
	if rec.GameName == "" {
		return model.SlotGame{}, ErrNoName
	}
	if rec.Provider == "" {
		return model.SlotGame{}, ErrNoProv
	}
	rec = rec.Clone()
	rec.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(rec.ID); i >= 0 {
		s.slots[i] = rec
		return rec.Clone(), nil
	}
	rec.ID = len(s.slots)
	s.slots = append(s.slots, rec)
	return rec.Clone(), nil
}

// Overwrite 以整份 body 覆寫資料集並寫回 blob（raw save 端點使用），ID 重新派生。
//
// 寫回的是 body 本身（只重新縮排），不經過型別轉換，未建模的欄位與值都原樣保留。
// 先寫 blob，成功後才換掉記憶體內容；寫入失敗時原資料保持不變。
func (s *Store) Overwrite(ctx context.Context, raw []byte) error {
	doc, err := Decode(raw)
	if err != nil {
		return err
	}
	slots := adopt(doc[0].SlotGames)
	out, err := Indent(raw)
	if err != nil {
		return errs.Persist("Error saving file", err)
	}
	if err := s.Write(ctx, out); err != nil {
		return err
	}
	s.mu.Lock()
	s.slots = slots
	s.mu.Unlock()
	return nil
}

// Persist 整份寫回 blob。失敗時回傳 PersistError，記憶體內容保持不變。
func (s *Store) Persist(ctx context.Context) error {
	raw, err := Encode(s.Slots())
	if err != nil {
		return errs.Persist("Error saving data. Please try again.", err)
	}
	return s.Write(ctx, raw)
}

// Write 直接把已編碼的內容寫到 blob。
func (s *Store) Write(ctx context.Context, raw []byte) error {
	if s.blob == nil {
		return errs.Persist("Error saving data. Please try again.", errors.New("no blob configured"))
	}
	if err := s.blob.Put(ctx, raw); err != nil {
		return errs.Persist("Error saving data. Please try again.", err)
	}
	return nil
}

// Blob 回傳底層的儲存後端。
func (s *Store) Blob() storage.Blob { return s.blob }

// index 回傳 id 對應的位置；ID 等於位置，仍做一次比對避免被竄改的 ID 命中錯誤紀錄。
func (s *Store) index(id int) int {
	if id < 0 || id >= len(s.slots) {
		return -1
	}
	if s.slots[id].ID != id {
		return -1
	}
	return id
}

// DeriveProviders 回傳 slots 中不重複的 provider 名稱，依首次出現順序。
func DeriveProviders(slots []model.SlotGame) []string {
	seen := make(map[string]struct{}, len(slots))
	out := make([]string, 0, 16)
	for _, g := range slots {
		if _, ok := seen[g.Provider]; ok {
			continue
		}
		seen[g.Provider] = struct{}{}
		out = append(out, g.Provider)
	}
	return out
}
