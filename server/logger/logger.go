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

// Package logger 依 LogMode 組出 slog.Logger，並提供非阻塞的 AsyncHandler。
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type LogMode uint8

const (
	ModeDev     LogMode = iota // text → stderr，Debug 以上
	ModeProd                   // JSON → stdout，Info 以上，帶 service 欄位
	ModeSilence                // 全部丟棄（測試用）
)

const service = "slotquest"

// ParseMode 將旗標字串（ModeProd / prod / PROD ...）轉成 LogMode，無法辨識時回傳 ModeDev。
func ParseMode(s string) LogMode {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "mode") {
	case "prod":
		return ModeProd
	case "silence":
		return ModeSilence
	default:
		return ModeDev
	}
}

// NewDefaultLogger 回傳同步的 *slog.Logger。
func NewDefaultLogger(mode LogMode) *slog.Logger {
	return slog.New(buildHandler(mode, os.Stderr, os.Stdout))
}

// NewAsync 以 LogMode 預設值組出 handler 後包上 AsyncHandler。
// 回傳的 *AsyncHandler 應交給 app.App 管理，關閉時才會把緩衝中的 log 寫完。
func NewAsync(buf int, mode LogMode) (*slog.Logger, *AsyncHandler) {
	ah := NewAsyncHandler(buildHandler(mode, os.Stderr, os.Stdout), buf)
	return slog.New(ah), ah
}

func buildHandler(mode LogMode, devOut, prodOut io.Writer) slog.Handler {
	switch mode {
	case ModeProd:
		// 給 Loki / Promtail
		return slog.NewJSONHandler(prodOut, &slog.HandlerOptions{Level: slog.LevelInfo}).
			WithAttrs([]slog.Attr{slog.String("service", service)})
	case ModeSilence:
		return slog.NewTextHandler(io.Discard, nil)
	default:
		return slog.NewTextHandler(devOut, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
}
