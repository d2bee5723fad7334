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

package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// AsyncHandler 把 Handle 變成 enqueue，由背景 goroutine 逐筆交給 next 寫出。
// 隊列滿或已關閉時直接丟棄並計數，不把 I/O 延遲帶回請求路徑。
//
// AsyncHandler 同時是 app.Component：Run 阻塞到 Shutdown，Shutdown 會把隊列寫完。
type AsyncHandler struct {
	next slog.Handler
	d    *dispatcher
}

type dispatcher struct {
	ch      chan item
	closing chan struct{}
	done    chan struct{}
	once    sync.Once
	dropped atomic.Uint64
}

type item struct {
	ctx context.Context
	rec slog.Record
	h   slog.Handler
}

// NewAsyncHandler 以 buf 大小的隊列包裝 next；buf <= 0 時用 1024。
func NewAsyncHandler(next slog.Handler, buf int) *AsyncHandler {
	if next == nil {
		next = NewDefaultLogger(ModeDev).Handler()
	}
	if buf <= 0 {
		buf = 1024
	}
	d := &dispatcher{
		ch:      make(chan item, buf),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go d.loop()
	return &AsyncHandler{next: next, d: d}
}

func (d *dispatcher) loop() {
	defer close(d.done)
	for {
		select {
		case it := <-d.ch:
			_ = it.h.Handle(it.ctx, it.rec)
		case <-d.closing:
			for {
				select {
				case it := <-d.ch:
					_ = it.h.Handle(it.ctx, it.rec)
				default:
					return
				}
			}
		}
	}
}

func (h *AsyncHandler) Ready() bool { return h != nil && h.d != nil }

// Dropped 回傳因隊列滿或已關閉而丟棄的筆數。
func (h *AsyncHandler) Dropped() uint64 {
	if !h.Ready() {
		return 0
	}
	return h.d.dropped.Load()
}

// Run 阻塞到隊列關閉並寫完。
func (h *AsyncHandler) Run() error {
	<-h.d.done
	return nil
}

// Shutdown 停止收新 log 並等待隊列寫完，或 ctx 到期。
func (h *AsyncHandler) Shutdown(ctx context.Context) error {
	h.Close()
	select {
	case <-h.d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close 停止收新 log，不等待。
func (h *AsyncHandler) Close() {
	if !h.Ready() {
		return
	}
	h.d.once.Do(func() { close(h.d.closing) })
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.Ready() {
		return nil
	}
	select {
	case <-h.d.closing:
		h.d.dropped.Add(1)
		return nil
	default:
	}
	// Record 內的 attr 切片可能被呼叫端重用，跨 goroutine 前要 Clone。
	select {
	case h.d.ch <- item{ctx: ctx, rec: r.Clone(), h: h.next}:
	default:
		h.d.dropped.Add(1)
	}
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{next: h.next.WithAttrs(attrs), d: h.d}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{next: h.next.WithGroup(name), d: h.d}
}
