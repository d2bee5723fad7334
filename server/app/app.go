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

// Package app 管理長期運行元件（HTTP server、session 清理者）的啟動與優雅關閉。
package app

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultShutdown = 5 * time.Second

// Component 是可啟動 / 可關閉的長生命週期元件。
//   - Run() 阻塞直到元件停止；被 Shutdown 要求停止時應回傳 nil。
//   - Shutdown(ctx) 要求優雅關閉，需尊重 ctx deadline。
type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}

// errStopped 代表元件自行結束；任何一個元件結束都會讓整個 App 關閉。
var errStopped = errors.New("component stopped")

// App 並行啟動所有 Component，收到 SIGINT/SIGTERM 或任一元件結束時，
// 在 ShutdownTimeout 內依序關閉全部元件。
type App struct {
	comps []Component
	log   *slog.Logger

	// ShutdownTimeout 為優雅關閉的總時限，<= 0 時使用 5 秒。
	ShutdownTimeout time.Duration
}

func New() *App { return &App{log: slog.New(slog.DiscardHandler)} }

// NewWith 建立 App 並依序註冊 comps。
func NewWith(comps ...Component) *App {
	a := New()
	for _, c := range comps {
		a.Register(c)
	}
	return a
}

// WithLogger 設定關閉過程的 logger。
func (a *App) WithLogger(log *slog.Logger) *App {
	if log != nil {
		a.log = log
	}
	return a
}

func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// Run 阻塞直到所有元件都停止。因訊號或元件正常結束而關閉時回傳 nil，
// 否則回傳第一個元件錯誤。
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range a.comps {
		g.Go(func() error {
			if err := c.Run(); err != nil {
				return err
			}
			return errStopped
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		a.gracefulShutdown(a.timeout())
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errStopped) {
		return err
	}
	return nil
}

func (a *App) timeout() time.Duration {
	if a.ShutdownTimeout <= 0 {
		return defaultShutdown
	}
	return a.ShutdownTimeout
}

// gracefulShutdown 在 td 內依序呼叫每個 Component.Shutdown。
func (a *App) gracefulShutdown(td time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), td)
	defer cancel()
	for _, c := range a.comps {
		if err := c.Shutdown(ctx); err != nil {
			a.log.Warn("app.shutdown", slog.Any("err", err))
		}
	}
}
