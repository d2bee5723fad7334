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

// Package storage 提供資料集檔案的讀寫後端。
//
// Dataset Store 只依賴 Blob：整份讀、整份寫，沒有部分更新。
// 內建兩種實作：本機檔案（FileBlob）與 S3 物件（S3Blob）。
package storage

import (
	"context"
	"errors"
)

// ErrNotExist 表示後端沒有這份資料（檔案不存在 / 物件不存在）。
var ErrNotExist = errors.New("blob does not exist")

// Blob 是「一份」資料的讀寫抽象。
type Blob interface {
	// Get 讀出整份內容；不存在時回傳 ErrNotExist（可被 errors.Is 命中）。
	Get(ctx context.Context) ([]byte, error)
	// Put 以 data 覆寫整份內容。
	Put(ctx context.Context, data []byte) error
	// Name 用於 log 與錯誤訊息。
	Name() string
}

// Mem 是記憶體版 Blob，供測試與 dry-run 使用。
type Mem struct {
	Data    []byte
	PutErr  error
	Missing bool
}

func (m *Mem) Get(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Missing {
		return nil, ErrNotExist
	}
	return append([]byte(nil), m.Data...), nil
}

func (m *Mem) Put(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.PutErr != nil {
		return m.PutErr
	}
	m.Data = append(m.Data[:0], data...)
	m.Missing = false
	return nil
}

func (m *Mem) Name() string { return "mem" }
