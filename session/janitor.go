package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultSweepEvery = time.Minute
	DefaultMaxIdle    = 2 * time.Hour
)

// Janitor 定期清除閒置的 session；Run 阻塞直到 Shutdown。
type Janitor struct {
	m       *Manager
	every   time.Duration
	maxIdle time.Duration
	log     *slog.Logger

	stop chan struct{}
	once sync.Once
}

func NewJanitor(m *Manager, every, maxIdle time.Duration) *Janitor {
	if every <= 0 {
		every = DefaultSweepEvery
	}
	if maxIdle <= 0 {
		maxIdle = DefaultMaxIdle
	}
	return &Janitor{m: m, every: every, maxIdle: maxIdle, log: m.log, stop: make(chan struct{})}
}

func (j *Janitor) Run() error {
	t := time.NewTicker(j.every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			if n := j.m.Sweep(j.maxIdle); n > 0 {
				j.log.Info("session.sweep", slog.Int("expired", n), slog.Int("active", j.m.Len()))
			}
		case <-j.stop:
			return nil
		}
	}
}

func (j *Janitor) Shutdown(ctx context.Context) error {
	j.once.Do(func() { close(j.stop) })
	return nil
}
