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

package errs

import (
	"errors"
	"fmt"
)

// ErrLevel : Error 分級，使最上層理解問題嚴重程度
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

var errLvMap = map[ErrLevel]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// Kind 描述錯誤「是什麼」，ErrLevel 描述「有多嚴重」。
// 邊界層（HTTP / CLI）依 Kind 決定如何回報給使用者。
type Kind uint8

const (
	KindUnknown Kind = iota
	KindLoad
	KindValidation
	KindDuplicate
	KindPersist
	KindState
	KindNotFound
)

var kindMap = map[Kind]string{
	KindUnknown:    "",
	KindLoad:       "load",
	KindValidation: "validation",
	KindDuplicate:  "duplicate",
	KindPersist:    "persist",
	KindState:      "state",
	KindNotFound:   "not_found",
}

func (k Kind) String() string {
	return kindMap[k]
}

// E 是統一的錯誤型別。
// Message 為主訊息；Extra 為呼叫端可追加的額外上下文；
// Cause 可串接下層錯誤（wrap）；ErrLv 為嚴重度；Kind 為錯誤分類。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
	Kind    Kind
}

// Error 實作 error 介面並回傳格式化後的錯誤訊息。
func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s", ErrLv(e.ErrLv))
	if e.Kind != KindUnknown {
		base += " kind=" + e.Kind.String()
	}
	base += " " + e.Message
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

// New 依錯誤等級與訊息建立錯誤
func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal}
}

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

// ------------------------------------------------------------
//  分類建構子
// ------------------------------------------------------------

// Load : 資料集讀取/解析失敗，啟動即無法使用。
func Load(msg string, cause error) *E {
	return &E{Message: msg, Cause: cause, ErrLv: Fatal, Kind: KindLoad}
}

// Validation : 使用者輸入不合法，操作為 no-op。
func Validation(msg string) *E {
	return &E{Message: msg, ErrLv: Warn, Kind: KindValidation}
}

// Duplicate : 名稱或數值重複，操作為 no-op。
func Duplicate(msg string) *E {
	return &E{Message: msg, ErrLv: Warn, Kind: KindDuplicate}
}

// Persist : 儲存失敗，記憶體狀態保留以便手動重試。
func Persist(msg string, cause error) *E {
	return &E{Message: msg, Cause: cause, ErrLv: Fatal, Kind: KindPersist}
}

// State : 狀態機在錯誤的狀態收到操作。
func State(msg string) *E {
	return &E{Message: msg, ErrLv: Warn, Kind: KindState}
}

func NotFound(msg string) *E {
	return &E{Message: msg, ErrLv: Warn, Kind: KindNotFound}
}

// Wrap 使用給定的訊息包裝底層錯誤，建立一個 *E。
//
// ErrLevel / Kind 規則：
//   - 若 cause 已經是 *E，則沿用其 ErrLv 與 Kind。
//   - 若 cause 不是本包定義的 *E（多半是標準庫或三方依賴錯誤），則 ErrLv 一律視為 Fatal。
func Wrap(cause error, msg string) *E {
	var e *E
	errLv := Fatal
	kind := KindUnknown
	if errors.As(cause, &e) {
		errLv = e.ErrLv
		kind = e.Kind
	}
	r := New(errLv, msg)
	r.Kind = kind
	r.Cause = cause
	return r
}

// WrapWithExtra 與 Wrap 相同，但可附加上下文字串。
func WrapWithExtra(cause error, msg string, extra string) *E {
	r := Wrap(cause, msg)
	r.Extra = extra
	return r
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}

// KindOf 回傳錯誤鏈上第一個 *E 的 Kind。
func KindOf(err error) Kind {
	if e, ok := AsErr(err); ok {
		return e.Kind
	}
	return KindUnknown
}

func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Msg 回傳適合直接顯示給使用者的短訊息（不含等級與 cause）。
func Msg(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := AsErr(err); ok {
		return e.Message
	}
	return err.Error()
}
