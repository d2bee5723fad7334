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

package svrcfg

import (
	"log/slog"
	"strings"
	"time"

	"github.com/zintix-labs/slotquest/admin"
	"github.com/zintix-labs/slotquest/errs"
	"github.com/zintix-labs/slotquest/server/logger"
	"github.com/zintix-labs/slotquest/server/metrics"
	"github.com/zintix-labs/slotquest/session"
)

const (
	DefaultAddr    = ":3000"
	DefaultMaxBody = int64(1e6)
	DefaultWebRoot = "."
	DatasetPath    = "/stake.json"
)

type SvrCfg struct {
	Log      *slog.Logger
	Addr     string
	WebRoot  string // 靜態檔根目錄；空字串表示不提供靜態檔
	MaxBody  int64  // POST /save-stake-json 上限（bytes）
	Editor   *admin.Editor
	Sessions *session.Manager
	Metrics  *metrics.Metrics

	// SessionTTL 為 session 閒置多久後被清除，<= 0 時使用 session.DefaultMaxIdle。
	SessionTTL time.Duration
}

// Valid 檢查必要依賴並補上預設值。
func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}

	if sc.Addr == "" {
		sc.Addr = DefaultAddr
	}
	if !strings.Contains(sc.Addr, ":") {
		sc.Addr = ":" + sc.Addr
	}
	if sc.MaxBody <= 0 {
		sc.MaxBody = DefaultMaxBody
	}
	if sc.Editor == nil {
		return errs.NewFatal("admin editor is required")
	}
	if sc.Metrics == nil {
		sc.Metrics = metrics.New()
	}
	if sc.SessionTTL <= 0 {
		sc.SessionTTL = session.DefaultMaxIdle
	}
	if sc.Sessions == nil {
		sc.Sessions = session.NewManager(sc.Editor.Store(), nil, sc.Log, sc.Metrics.Hooks())
	}
	return nil
}
