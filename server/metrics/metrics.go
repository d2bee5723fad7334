// Package metrics 以 Prometheus 暴露 session 與資料集的計數。
//
// 指標名規範：slotquest_<name>。每個 Metrics 持有自己的 Registry，
// 測試可以建立多份而不互相污染。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zintix-labs/slotquest/session"
)

const labelResult = "result"

type Metrics struct {
	reg *prometheus.Registry

	sessionsCreated   prometheus.Counter
	sessionsCompleted prometheus.Counter
	sessionsActive    prometheus.Gauge
	stakes            prometheus.Counter
	finalProfitLoss   prometheus.Histogram
	datasetSaves      *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		sessionsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "slotquest_sessions_created_total", Help: "開局數",
		}),
		sessionsCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "slotquest_sessions_completed_total", Help: "打完最後一房的 session 數",
		}),
		sessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "slotquest_sessions_active", Help: "目前保存在記憶體中的 session 數",
		}),
		stakes: f.NewCounter(prometheus.CounterOpts{
			Name: "slotquest_stakes_total", Help: "已下注的房間數",
		}),
		finalProfitLoss: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "slotquest_session_profit_loss",
			Help:    "完成時的總損益 (currentGold - initialGold)",
			Buckets: []float64{-5000, -1000, -500, -100, 0, 100, 500, 1000, 5000},
		}),
		datasetSaves: f.NewCounterVec(prometheus.CounterOpts{
			Name: "slotquest_dataset_saves_total", Help: "資料集寫回次數",
		}, []string{labelResult}),
	}
}

// Hooks 回傳給 session.Manager 使用的回呼。
func (m *Metrics) Hooks() session.Hooks {
	return session.Hooks{
		OnCreate: func() {
			m.sessionsCreated.Inc()
			m.sessionsActive.Inc()
		},
		OnStake: func(session.Snapshot) { m.stakes.Inc() },
		OnComplete: func(snap session.Snapshot) {
			m.sessionsCompleted.Inc()
			m.finalProfitLoss.Observe(snap.ProfitLoss.InexactFloat64())
		},
		OnDelete: func() { m.sessionsActive.Dec() },
	}
}

// ObserveSave 記錄一次資料集寫回。
func (m *Metrics) ObserveSave(err error) {
	if err != nil {
		m.datasetSaves.WithLabelValues("error").Inc()
		return
	}
	m.datasetSaves.WithLabelValues("ok").Inc()
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
