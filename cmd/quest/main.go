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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/slotquest/dataset"
	"github.com/zintix-labs/slotquest/dice"
	"github.com/zintix-labs/slotquest/providers"
	"github.com/zintix-labs/slotquest/session"
	"github.com/zintix-labs/slotquest/storage"
)

// quest 是終端機版的 SlotQuest：讀資料集、依旗標開局，逐房輸入下注與結果。
func main() {
	var (
		data  = flag.String("data", "stake.json", "dataset file path")
		gold  = flag.String("gold", "1000", "starting gold")
		minB  = flag.String("min", "20", "minimum buy")
		maxB  = flag.String("max", "100", "maximum buy")
		rooms = flag.Int("rooms", 5, "number of rooms")
		provs = flag.String("providers", "big3", "comma separated providers, or big3")
		seed  = flag.Uint64("seed", 0, "random seed (0 = time based)")
	)
	flag.Parse()

	if err := run(*data, *gold, *minB, *maxB, *rooms, *provs, *seed); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path, gold, minB, maxB string, rooms int, provs string, seed uint64) error {
	store, err := dataset.Load(context.Background(), storage.NewFileBlob(path))
	if err != nil {
		return err
	}
	cfg := session.Config{NumRooms: rooms, Providers: parseProviders(provs, store.Providers())}
	for _, f := range []struct {
		dst *decimal.Decimal
		raw string
		arg string
	}{
		{&cfg.InitialGold, gold, "-gold"},
		{&cfg.MinBuy, minB, "-min"},
		{&cfg.MaxBuy, maxB, "-max"},
	} {
		v, err := decimal.NewFromString(strings.TrimSpace(f.raw))
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", f.arg, f.raw)
		}
		*f.dst = v
	}

	var src dice.Source
	if seed == 0 {
		var used uint64
		src, used = dice.NewRandom()
		fmt.Printf("seed: %d\n", used)
	} else {
		src = dice.New(seed)
	}

	s := session.New(src)
	if err := s.Start(cfg, store); err != nil {
		return err
	}
	return play(os.Stdin, os.Stdout, s)
}

// parseProviders 把 -providers 轉成清單；"big3" 取資料集中實際存在的 Big 3。
func parseProviders(raw string, known []string) []string {
	if strings.EqualFold(strings.TrimSpace(raw), "big3") {
		return providers.Builtin().SelectBig3(known)
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
