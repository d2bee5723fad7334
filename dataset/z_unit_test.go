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

package dataset_test

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/zintix-labs/slotquest/dataset"
	"github.com/zintix-labs/slotquest/errs"
	"github.com/zintix-labs/slotquest/model"
	"github.com/zintix-labs/slotquest/storage"
)

const sample = `[
  {
    "slot_games": [
      {"game_name": "Gates of Olympus", "provider": "Pragmatic Play", "game_image_url": "img/gates.png",
       "bet_levels": [0.2, 1, 2], "feature_spins": true, "feature_spins_multiplier": 100,
       "bonuses": [{"name": "Super", "multiplier": 500}]},
      {"game_name": "Wanted Dead or a Wild", "provider": "Hacksaw Gaming"},
      {"game_name": "Mental", "provider": "Nolimit City",
       "additional_feature_spins": [{"name": "Mental Spins", "multiplier": 400, "description": "x"}]},
      {"game_name": "Sugar Rush", "provider": "Pragmatic Play"}
    ]
  }
]`

func load(t *testing.T, raw string) (*dataset.Store, *storage.Mem) {
	t.Helper()
	blob := &storage.Mem{Data: []byte(raw)}
	s, err := dataset.Load(context.Background(), blob)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return s, blob
}

func TestLoadNormalizes(t *testing.T) {
	s, _ := load(t, sample)
	if s.Len() != 4 {
		t.Fatalf("expected 4 slots, got %d", s.Len())
	}
	g, ok := s.Get(1)
	if !ok {
		t.Fatalf("slot 1 missing")
	}
	if g.ID != 1 || g.FeatureSpins || g.FeatureSpinsMultiplier != 1 {
		t.Fatalf("unexpected defaults: %+v", g)
	}
	if g.BetLevels == nil || g.Bonuses == nil || g.AdditionalFeatureSpins == nil {
		t.Fatalf("nil collections after load: %+v", g)
	}
	if g.GameImageURL != "" || g.Image() != model.PlaceholderImage {
		t.Fatalf("placeholder is display-only, got %q / %q", g.GameImageURL, g.Image())
	}
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]storage.Blob{
		"missing":    &storage.Mem{Missing: true},
		"not json":   &storage.Mem{Data: []byte("{oops")},
		"object":     &storage.Mem{Data: []byte(`{"slot_games": []}`)},
		"empty":      &storage.Mem{Data: []byte(`[]`)},
		"no games":   &storage.Mem{Data: []byte(`[{}]`)},
		"games null": &storage.Mem{Data: []byte(`[{"slot_games": null}]`)},
	}
	for name, blob := range cases {
		if _, err := dataset.Load(context.Background(), blob); !errs.IsKind(err, errs.KindLoad) {
			t.Fatalf("%s: expected LoadError, got %v", name, err)
		}
	}
}

func TestDeriveProviders(t *testing.T) {
	s, _ := load(t, sample)
	got := s.Providers()
	want := []string{"Pragmatic Play", "Hacksaw Gaming", "Nolimit City"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("providers = %v, want %v", got, want)
	}
}

func TestUpsert(t *testing.T) {
	s, _ := load(t, sample)

	created, err := s.Upsert(model.SlotGame{ID: -1, GameName: "Le Bandit", Provider: "Hacksaw Gaming"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID != 4 || s.Len() != 5 {
		t.Fatalf("expected new id 4, got %d (len %d)", created.ID, s.Len())
	}

	// 不存在的 id 也視為新增，id 依長度派生
	again, err := s.Upsert(model.SlotGame{ID: 99, GameName: "Chaos Crew", Provider: "Hacksaw Gaming"})
	if err != nil || again.ID != 5 {
		t.Fatalf("expected id 5, got %d err=%v", again.ID, err)
	}

	upd, err := s.Upsert(model.SlotGame{ID: 0, GameName: "Gates 1000", Provider: "Pragmatic Play"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	g, _ := s.Get(0)
	if g.GameName != "Gates 1000" || len(g.BetLevels) != 0 || len(g.Bonuses) != 0 || upd.ID != 0 {
		t.Fatalf("update must replace all fields: %+v", g)
	}

	if _, err := s.Upsert(model.SlotGame{ID: -1, GameName: " ", Provider: "P"}); !errs.IsKind(err, errs.KindValidation) {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}
	if _, err := s.Upsert(model.SlotGame{ID: -1, GameName: "X", Provider: ""}); !errs.IsKind(err, errs.KindValidation) {
		t.Fatalf("expected validation error for empty provider, got %v", err)
	}
	if s.Len() != 6 {
		t.Fatalf("rejected upserts must not change the store, len=%d", s.Len())
	}
}

func TestFilter(t *testing.T) {
	s, _ := load(t, sample)
	if got := s.Filter("SUGAR", ""); len(got) != 1 || got[0].GameName != "Sugar Rush" {
		t.Fatalf("unexpected filter result: %+v", got)
	}
	if got := s.Filter("play", ""); len(got) != 2 {
		t.Fatalf("provider substring should match, got %d", len(got))
	}
	if got := s.Filter("", "Nolimit City"); len(got) != 1 {
		t.Fatalf("exact provider filter failed, got %d", len(got))
	}
	if got := s.Filter("gates", "Hacksaw Gaming"); len(got) != 0 {
		t.Fatalf("filters must intersect, got %d", len(got))
	}
	if got := s.Filter("", "nolimit city"); len(got) != 0 {
		t.Fatalf("provider filter is exact, got %d", len(got))
	}
}

func TestPersistRoundTrip(t *testing.T) {
	s, blob := load(t, sample)
	if err := s.Persist(context.Background()); err != nil {
		t.Fatalf("persist failed: %v", err)
	}
	if strings.Contains(string(blob.Data), `"id"`) {
		t.Fatalf("persisted data must not carry id: %s", blob.Data)
	}
	s2, err := dataset.Load(context.Background(), blob)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	a, b := businessFields(s.Slots()), businessFields(s2.Slots())
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("round trip mismatch:\n%v\n%v", a, b)
	}
}

func TestPersistFailureKeepsState(t *testing.T) {
	s, blob := load(t, sample)
	if _, err := s.Upsert(model.SlotGame{ID: -1, GameName: "New", Provider: "P"}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	blob.PutErr = errors.New("write refused")
	err := s.Persist(context.Background())
	if !errs.IsKind(err, errs.KindPersist) {
		t.Fatalf("expected PersistError, got %v", err)
	}
	if s.Len() != 5 {
		t.Fatalf("in-memory state must be retained, len=%d", s.Len())
	}
}

func TestOverwrite(t *testing.T) {
	s, blob := load(t, sample)
	ctx := context.Background()
	if err := s.Overwrite(ctx, []byte(`[]`)); !errs.IsKind(err, errs.KindValidation) {
		t.Fatalf("expected structure error, got %v", err)
	}

	blob.PutErr = errors.New("write refused")
	body := []byte(`[{"slot_games":[{"game_name":"Only","provider":"P"}]}]`)
	if err := s.Overwrite(ctx, body); !errs.IsKind(err, errs.KindPersist) {
		t.Fatalf("expected PersistError, got %v", err)
	}
	if s.Len() != 4 {
		t.Fatalf("failed overwrite must keep the old data, len=%d", s.Len())
	}

	blob.PutErr = nil
	if err := s.Overwrite(ctx, body); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	if s.Len() != 1 || !strings.Contains(string(blob.Data), `"Only"`) {
		t.Fatalf("unexpected state after overwrite: len=%d data=%s", s.Len(), blob.Data)
	}
	if g, _ := s.Get(0); g.BetLevels == nil || g.FeatureSpinsMultiplier != 1 {
		t.Fatalf("overwritten slots must be normalized in memory: %+v", g)
	}
}

const withExtras = `[{"slot_games":[{"game_name":"A","provider":"P","rtp":96.5,"volatility":"high","meta":{"tags":["x", "y"]}}]}]`

func TestOverwriteWritesBodyAsIs(t *testing.T) {
	s, blob := load(t, sample)
	if err := s.Overwrite(context.Background(), []byte(withExtras)); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	want := `[
  {
    "slot_games": [
      {
        "game_name": "A",
        "provider": "P",
        "rtp": 96.5,
        "volatility": "high",
        "meta": {
          "tags": [
            "x",
            "y"
          ]
        }
      }
    ]
  }
]`
	if string(blob.Data) != want {
		t.Fatalf("stored body changed:\n%s", blob.Data)
	}
}

func TestUnknownFieldsSurvivePersist(t *testing.T) {
	s, blob := load(t, withExtras)
	g, _ := s.Get(0)
	if string(g.Extra["rtp"]) != "96.5" || string(g.Extra["volatility"]) != `"high"` {
		t.Fatalf("extra keys not captured: %v", g.Extra)
	}
	g.BetLevels = []float64{1, 2}
	if _, err := s.Upsert(g); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := s.Persist(context.Background()); err != nil {
		t.Fatalf("persist failed: %v", err)
	}
	out := string(blob.Data)
	for _, want := range []string{`"rtp": 96.5`, `"volatility": "high"`, `"tags": [`, `"bet_levels": [`} {
		if !strings.Contains(out, want) {
			t.Fatalf("persisted data missing %s:\n%s", want, out)
		}
	}
	if strings.Contains(out, model.PlaceholderImage) || strings.Contains(out, `"id"`) {
		t.Fatalf("persist must not inject fields:\n%s", out)
	}
	if !strings.HasPrefix(out, "[\n  {\n    \"slot_games\": [") {
		t.Fatalf("persisted data must be indented with 2 spaces:\n%s", out)
	}

	s2, err := dataset.Load(context.Background(), blob)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if g2, _ := s2.Get(0); string(g2.Extra["rtp"]) != "96.5" || len(g2.Extra) != 3 {
		t.Fatalf("extra keys lost on reload: %v", g2.Extra)
	}
}

// businessFields 把 slot 轉成不含 id 的可排序字串，用於 multiset 比對。
func businessFields(slots []model.SlotGame) []string {
	out := make([]string, 0, len(slots))
	for _, g := range slots {
		g.ID = 0
		raw, _ := dataset.Encode([]model.SlotGame{g})
		out = append(out, string(raw))
	}
	sort.Strings(out)
	return out
}
