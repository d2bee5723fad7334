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

// Package v1 是 admin 編輯與遊戲 session 的 JSON API。
package v1

import (
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/zintix-labs/slotquest/admin"
	"github.com/zintix-labs/slotquest/errs"
	"github.com/zintix-labs/slotquest/server/httperr"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxRequestBody = 1 << 20

var (
	errBadJSON = errs.Validation("Invalid JSON")
	errBadID   = errs.Validation("Invalid id")
)

// decode 讀取 JSON body；空 body 視為 {}。
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		return errs.WrapWithExtra(errBadJSON, errs.Msg(errBadJSON), err.Error())
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errs.WrapWithExtra(errBadJSON, errs.Msg(errBadJSON), err.Error())
	}
	return nil
}

func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(pathParam(r, "id"))
	if err != nil || id < 0 {
		return 0, errBadID
	}
	return id, nil
}

// reply 把 admin.Status 轉成回應。
func reply(w http.ResponseWriter, st admin.Status, data any) {
	if !st.OK() {
		httperr.Errs(w, st.Err)
		return
	}
	httperr.OK(w, http.StatusOK, st.Message, data)
}
