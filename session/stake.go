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
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/slotquest/dice"
	"gonum.org/v1/gonum/stat/distuv"
)

var ten = decimal.NewFromInt(10)

// SuggestStake 以常態分佈抽一個建議下注額。
//
//	lo = minBuy, hi = min(maxBuy, gold)
//	μ = (lo+hi)/2, σ = (hi-lo)/4
//
// 抽樣值夾在 [lo,hi] 後四捨五入（遠離 0）到 10 的倍數；
// 若進位後跑出區間就往區間內退一格 10，區間內沒有 10 的倍數時回傳夾住的值。
// gold < minBuy 時區間為空，結果為 lo（此時 Affordable 為 false）。
// 只是預填值，PlaceStake 不會自動使用。
func SuggestStake(src dice.Source, minBuy, maxBuy, gold decimal.Decimal) decimal.Decimal {
	lo := minBuy
	hi := decimal.Min(maxBuy, gold)
	if hi.LessThanOrEqual(lo) {
		return lo
	}
	n := distuv.Normal{
		Mu:    lo.Add(hi).Div(decimal.NewFromInt(2)).InexactFloat64(),
		Sigma: hi.Sub(lo).Div(decimal.NewFromInt(4)).InexactFloat64(),
		Src:   src,
	}
	v := clamp(decimal.NewFromFloat(n.Rand()), lo, hi)

	r := v.Div(ten).Round(0).Mul(ten)
	if r.GreaterThan(hi) {
		r = r.Sub(ten)
	}
	if r.LessThan(lo) {
		r = r.Add(ten)
	}
	if r.LessThan(lo) || r.GreaterThan(hi) {
		return v.Round(2)
	}
	return r
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	return decimal.Max(lo, decimal.Min(hi, v))
}
