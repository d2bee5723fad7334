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

// Package dice 提供可指定 seed 的亂數來源。
//
// Dice 同時是 gonum distuv 的 Src（只需要 Uint64），session 的隨機選台與
// 建議下注額共用同一顆骰子，相同 seed 會得到相同的序列。
package dice

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source 是 session 所需的最小亂數能力。
type Source interface {
	// Uint64 回傳非負 uint64 亂數。
	Uint64() uint64
	// IntN 回傳 [0,n) 的 int 亂數，若 n <= 0 回傳 -1。
	IntN(n int) int
}

// Dice 以 PCG 為底，可被多個 goroutine 共用。
type Dice struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New 以 seed 建立決定性的 Dice。
func New(seed uint64) *Dice {
	return &Dice{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRandom 以時間派生 seed，回傳 Dice 與實際使用的 seed（方便重播）。
func NewRandom() (*Dice, uint64) {
	seed := uint64(time.Now().UnixNano())
	return New(seed), seed
}

func (d *Dice) Uint64() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.Uint64()
}

func (d *Dice) IntN(n int) int {
	if n <= 0 {
		return -1
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.IntN(n)
}

// Pick 從 n 個候選中均勻選出一個索引，n <= 0 回傳 -1。
// 每次選取互相獨立，允許重複。
func Pick(src Source, n int) int {
	if n <= 0 {
		return -1
	}
	return src.IntN(n)
}

// Seq 依序回傳固定值，用於測試。IntN 取 vals[i] % n。
type Seq struct {
	Vals []uint64
	i    int
}

func (s *Seq) next() uint64 {
	if len(s.Vals) == 0 {
		return 0
	}
	v := s.Vals[s.i%len(s.Vals)]
	s.i++
	return v
}

func (s *Seq) Uint64() uint64 { return s.next() }

func (s *Seq) IntN(n int) int {
	if n <= 0 {
		return -1
	}
	return int(s.next() % uint64(n))
}
