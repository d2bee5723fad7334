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

package httperr

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/zintix-labs/slotquest/errs"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Body 是所有 JSON 回應共用的外層。
type Body struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// StatusCode 將錯誤映射成 HTTP status code。
//
// 規則（邊界層最小映射、可預期）：
//   - ctx timeout/cancel → 504/408（請求生命週期問題）
//   - Kind 明確者：validation/state → 400、duplicate → 409、not_found → 404
//   - 其餘依 ErrLevel：Warn → 400、Fatal → 500
//
// 本函數屬於 HTTP 邊界層，因此放在 server/*（而不是 core errs）。
func StatusCode(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout // 504
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout // 408
	}

	var e *errs.E
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case errs.KindValidation, errs.KindState:
		return http.StatusBadRequest
	case errs.KindDuplicate:
		return http.StatusConflict
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindLoad, errs.KindPersist:
		return http.StatusInternalServerError
	}
	if e.ErrLv == errs.Warn {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Errs 以 {success:false, message} 回應錯誤；message 只帶使用者可讀的短訊息。
func Errs(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	Write(w, StatusCode(err), Body{Success: false, Message: errs.Msg(err)})
}

// Fail 以指定狀態碼與訊息回應錯誤。
func Fail(w http.ResponseWriter, status int, msg string) {
	Write(w, status, Body{Success: false, Message: msg})
}

// OK 以 {success:true, message, data} 回應。
func OK(w http.ResponseWriter, status int, msg string, data any) {
	Write(w, status, Body{Success: true, Message: msg, Data: data})
}

// Write 先編碼到記憶體再寫出，避免編碼到一半才失敗。
func Write(w http.ResponseWriter, status int, body any) {
	b, err := json.Marshal(body)
	if err != nil {
		http.Error(w, `{"success":false,"message":"encode response failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

// Log 依狀態碼決定 log 等級：4xx 中的 408/409/429 為 Warn，5xx 為 Error，其餘不記。
func Log(log *slog.Logger, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	status := StatusCode(err)
	if (status == 408) || (status == 409) || (status == 429) {
		log.Warn(msg, slog.Any("err", err))
	} else if (status >= 500) && (status < 600) {
		log.Error(msg, slog.Any("err", err))
	}
}
