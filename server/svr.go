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

package server

import (
	"fmt"
	"os"

	"github.com/zintix-labs/slotquest/errs"
	"github.com/zintix-labs/slotquest/server/api"
	"github.com/zintix-labs/slotquest/server/app"
	"github.com/zintix-labs/slotquest/server/logger"
	"github.com/zintix-labs/slotquest/server/netsvr"
	"github.com/zintix-labs/slotquest/server/svrcfg"
	"github.com/zintix-labs/slotquest/session"
)

// Build 驗證 SvrCfg、建立 chi server 並註冊所有路由，但不啟動。
func Build(sCfg *svrcfg.SvrCfg) (*netsvr.ChiAdapter, error) {
	if err := sCfg.Valid(); err != nil {
		return nil, err
	}
	svr := netsvr.NewChiServer(sCfg.Addr)
	if !svr.Ready() {
		return nil, errs.Fatalf("server is not ready: addr=%q", sCfg.Addr)
	}
	api.RegisterRoutes(svr, sCfg)
	return svr, nil
}

// Run 是 server 套件的組裝器與啟動入口：Build 之後連同閒置 session 的清理者交給 app.App 管理生命週期，
// 直到收到 SIGINT/SIGTERM 或 listener 失敗。
//
// 所有依賴（資料集、Registry、logger）都應透過 SvrCfg 明確注入；
// 這裡不讀檔案也不讀環境變數。
func Run(sCfg *svrcfg.SvrCfg) error {
	svr, err := Build(sCfg)
	if err != nil {
		// 防止外層傳入的logger不可用
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	janitor := session.NewJanitor(sCfg.Sessions, session.DefaultSweepEvery, sCfg.SessionTTL)
	a := app.NewWith(svr, janitor).WithLogger(sCfg.Log)
	// 最後註冊：關閉時其他元件的 log 都已進隊列
	if ah, ok := sCfg.Log.Handler().(*logger.AsyncHandler); ok {
		a.Register(ah)
	}
	sCfg.Log.Info("[slotquest] listening on http://localhost" + svr.Address())
	if err := a.Run(); err != nil {
		// async log 此時已關閉
		fmt.Fprintln(os.Stderr, "app stopped:", err)
		return err
	}
	return nil
}
