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

// Package model 定義 slot 資料集與 provider 預設值的資料型別，以及檔案層的 Document 形狀。
package model

import (
	"bytes"
	"maps"
	"slices"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PlaceholderImage 是 game_image_url 缺漏時顯示的預設圖（只在讀取端套用，不寫回檔案）。
const PlaceholderImage = "images/placeholder.png"

// FeatureSpin 為 slot 的額外 feature spin 項目，name 在同一台 slot 內唯一。
type FeatureSpin struct {
	Name        string `yaml:"name"        json:"name"`
	Multiplier  int    `yaml:"multiplier"  json:"multiplier"`
	Description string `yaml:"description" json:"description"`
}

// Bonus 為 slot 的 bonus 項目，name 在同一台 slot 內唯一。
type Bonus struct {
	Name        string `yaml:"name"                  json:"name"`
	Multiplier  int    `yaml:"multiplier"            json:"multiplier"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// RawFields 保存 slot 物件中本包未建模的鍵，原封不動地寫回。
type RawFields map[string]jsoniter.RawMessage

func (r RawFields) Clone() RawFields {
	if len(r) == 0 {
		return nil
	}
	out := make(RawFields, len(r))
	for k, v := range r {
		out[k] = bytes.Clone(v)
	}
	return out
}

// SlotGame 是資料集中的單一 slot。
//
// ID 只在一次載入內有效：它等於陣列位置，寫回檔案時不會保存，
// 下次載入會重新依位置派生。檔案裡其他未知的鍵收在 Extra，寫回時附加在已知欄位之後。
type SlotGame struct {
	ID                     int           `json:"-"`
	GameName               string        `json:"game_name"`
	Provider               string        `json:"provider"`
	GameImageURL           string        `json:"game_image_url,omitempty"`
	BetLevels              []float64     `json:"bet_levels"`
	FeatureSpins           bool          `json:"feature_spins"`
	FeatureSpinsMultiplier int           `json:"feature_spins_multiplier"`
	AdditionalFeatureSpins []FeatureSpin `json:"additional_feature_spins"`
	Bonuses                []Bonus       `json:"bonuses"`
	Extra                  RawFields     `json:"-"`
}

// slotFields 與 SlotGame 同形但不帶方法，供自訂編解碼使用。
type slotFields SlotGame

var slotKeys = []string{
	"id", "game_name", "provider", "game_image_url", "bet_levels",
	"feature_spins", "feature_spins_multiplier", "additional_feature_spins", "bonuses",
}

func (s *SlotGame) UnmarshalJSON(raw []byte) error {
	var f slotFields
	if err := json.Unmarshal(raw, &f); err != nil {
		return err
	}
	var all RawFields
	if err := json.Unmarshal(raw, &all); err != nil {
		return err
	}
	for _, k := range slotKeys {
		delete(all, k)
	}
	f.Extra = all.Clone()
	*s = SlotGame(f)
	return nil
}

func (s SlotGame) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(slotFields(s))
	if err != nil || len(s.Extra) == 0 {
		return raw, err
	}
	var buf bytes.Buffer
	buf.Write(raw[:len(raw)-1])
	for _, k := range slices.Sorted(maps.Keys(s.Extra)) {
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(s.Extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Image 回傳要顯示的圖片網址，未設定時為 PlaceholderImage。
func (s SlotGame) Image() string {
	if s.GameImageURL == "" {
		return PlaceholderImage
	}
	return s.GameImageURL
}

// Normalize 補上缺漏的選填欄位，與前端載入時的行為一致。
func (s *SlotGame) Normalize() {
	if s.BetLevels == nil {
		s.BetLevels = []float64{}
	}
	if s.FeatureSpinsMultiplier < 1 {
		s.FeatureSpinsMultiplier = 1
	}
	if s.AdditionalFeatureSpins == nil {
		s.AdditionalFeatureSpins = []FeatureSpin{}
	}
	if s.Bonuses == nil {
		s.Bonuses = []Bonus{}
	}
}

// Clone 深拷貝，避免呼叫端透過 slice 改到 Store 內部資料。
func (s SlotGame) Clone() SlotGame {
	c := s
	c.BetLevels = slices.Clone(s.BetLevels)
	c.AdditionalFeatureSpins = slices.Clone(s.AdditionalFeatureSpins)
	c.Bonuses = slices.Clone(s.Bonuses)
	c.Extra = s.Extra.Clone()
	return c
}

// Provider 由資料集中出現過的 provider 名稱派生，或由 admin 新增。不會寫回檔案。
type Provider struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ProviderDefaults 是某個 provider 的預設下注階梯與 feature spin 設定。
type ProviderDefaults struct {
	BetLevels              []float64 `yaml:"bet_levels"               json:"bet_levels"`
	FeatureSpins           bool      `yaml:"feature_spins"            json:"feature_spins"`
	FeatureSpinsMultiplier int       `yaml:"feature_spins_multiplier" json:"feature_spins_multiplier"`
}

func (d ProviderDefaults) Clone() ProviderDefaults {
	c := d
	c.BetLevels = slices.Clone(d.BetLevels)
	return c
}
