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

package api

import (
	"log/slog"

	v1 "github.com/zintix-labs/slotquest/server/api/v1"
	"github.com/zintix-labs/slotquest/server/api/web"
	"github.com/zintix-labs/slotquest/server/netsvr"
	"github.com/zintix-labs/slotquest/server/netsvr/middleware"
	"github.com/zintix-labs/slotquest/server/svrcfg"
)

// RegisterRoutes 註冊；sCfg 需先通過 Valid()。
func RegisterRoutes(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) {
	registerMiddleware(svr, sCfg.Log) // 1. 註冊 middleware
	registerWeb(svr, sCfg)            // 2. 靜態檔與資料集檔案
	registerV1API(svr, sCfg)          // 3. 註冊 v1 api
	svr.Handle("/metrics", sCfg.Metrics.Handler())
}

// 註冊 middleware
func registerMiddleware(svr netsvr.NetSvr, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover(log))
	svr.Use(middleware.CORS)
	svr.Use(middleware.Compression)
}

func registerWeb(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) {
	d := web.NewDatasetHandler(sCfg.Editor, sCfg.Metrics, sCfg.MaxBody)
	svr.Get(svrcfg.DatasetPath, d.Get)
	svr.Post("/save-stake-json", d.Save)
	if sCfg.WebRoot != "" {
		svr.Handle("/*", web.Static(sCfg.WebRoot))
	}
}

// 註冊 v1 api
func registerV1API(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) {
	p := v1.NewProviderHandler(sCfg.Editor)
	s := v1.NewSlotHandler(sCfg.Editor, sCfg.Metrics)
	g := v1.NewSessionHandler(sCfg.Editor, sCfg.Sessions)

	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Get("/providers", p.List)
		vOne.Post("/providers", p.Create)
		vOne.Put("/providers/{name}/bet-levels", p.AddBetLevel)
		vOne.Delete("/providers/{name}/bet-levels", p.RemoveBetLevel)
		vOne.Put("/providers/{name}/feature-spins", p.SetFeatureSpins)

		vOne.Get("/slots", s.List)
		vOne.Post("/slots", s.Create)
		vOne.Get("/slots/{id}", s.Get)
		vOne.Put("/slots/{id}", s.Update)

		vOne.Post("/sessions", g.Create)
		vOne.Get("/sessions/{id}", g.Get)
		vOne.Delete("/sessions/{id}", g.Delete)
		vOne.Post("/sessions/{id}/reroll", g.Reroll)
		vOne.Post("/sessions/{id}/stake", g.Stake)
		vOne.Post("/sessions/{id}/result", g.Result)
		vOne.Post("/sessions/{id}/restart", g.Restart)
	})
}
