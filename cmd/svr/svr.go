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

package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/zintix-labs/slotquest/admin"
	"github.com/zintix-labs/slotquest/dataset"
	"github.com/zintix-labs/slotquest/providers"
	"github.com/zintix-labs/slotquest/server"
	"github.com/zintix-labs/slotquest/server/logger"
	"github.com/zintix-labs/slotquest/server/svrcfg"
	"github.com/zintix-labs/slotquest/session"
	"github.com/zintix-labs/slotquest/storage"
)

const loadTimeout = 30 * time.Second

// slotquest 的 HTTP 入口：提供前端靜態檔、資料集讀寫、admin 與 session API。
func main() {
	sCfg, err := loadConfigFromFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := server.Run(sCfg); err != nil {
		os.Exit(1)
	}
}

type config struct {
	Addr      string
	LogMode   string
	WebRoot   string
	Data      string
	Providers string
	MaxBody   int64
	TTL       time.Duration
	S3        storage.S3Config
}

func loadConfigFromFlags() (*svrcfg.SvrCfg, error) {
	cfg, err := parseFlags(os.Args[1:], os.Getenv)
	if err != nil {
		return nil, err
	}
	return cfg.build()
}

// parseFlags 解析命令列與環境變數；PORT 會覆寫 -addr 的埠號。
func parseFlags(args []string, getenv func(string) string) (*config, error) {
	cfg := new(config)
	fs := flag.NewFlagSet("svr", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", svrcfg.DefaultAddr, "listen address; PORT env overrides the port")
	fs.StringVar(&cfg.LogMode, "log-mode", "ModeDev", "log mode: ModeDev|ModeProd|ModeSilence")
	fs.StringVar(&cfg.WebRoot, "web", svrcfg.DefaultWebRoot, "static file root; empty disables static files")
	fs.StringVar(&cfg.Data, "data", "stake.json", "dataset file path")
	fs.StringVar(&cfg.Providers, "providers", "", "provider defaults YAML (optional, replaces the builtin table)")
	fs.Int64Var(&cfg.MaxBody, "max-body", svrcfg.DefaultMaxBody, "max body size of POST /save-stake-json in bytes")
	fs.DurationVar(&cfg.TTL, "session-ttl", session.DefaultMaxIdle, "drop sessions idle longer than this")
	fs.StringVar(&cfg.S3.Bucket, "s3-bucket", "", "store the dataset in this S3 bucket instead of -data")
	fs.StringVar(&cfg.S3.Key, "s3-key", "stake.json", "S3 object key")
	fs.StringVar(&cfg.S3.Region, "s3-region", "", "S3 region")
	fs.StringVar(&cfg.S3.Endpoint, "s3-endpoint", "", "S3 compatible endpoint (MinIO etc.)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.S3.AccessKeyID = getenv("AWS_ACCESS_KEY_ID")
	cfg.S3.SecretAccessKey = getenv("AWS_SECRET_ACCESS_KEY")
	if port := strings.TrimSpace(getenv("PORT")); port != "" {
		host, _, err := net.SplitHostPort(cfg.Addr)
		if err != nil {
			host = ""
		}
		cfg.Addr = net.JoinHostPort(host, port)
	}
	return cfg, nil
}

// build 載入資料集與 provider 種子表，組出 SvrCfg。
func (cfg *config) build() (*svrcfg.SvrCfg, error) {
	log, _ := logger.NewAsync(4096, logger.ParseMode(cfg.LogMode))

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	blob, err := cfg.blob(ctx)
	if err != nil {
		return nil, err
	}
	store, err := dataset.Load(ctx, blob)
	if err != nil {
		return nil, err
	}
	table, err := cfg.table()
	if err != nil {
		return nil, err
	}
	ed := admin.New(store, providers.New(table), log)
	log.Info("[slotquest] dataset loaded: " + blob.Name())

	return &svrcfg.SvrCfg{
		Log:        log,
		Addr:       cfg.Addr,
		WebRoot:    cfg.WebRoot,
		MaxBody:    cfg.MaxBody,
		Editor:     ed,
		SessionTTL: cfg.TTL,
	}, nil
}

func (cfg *config) blob(ctx context.Context) (storage.Blob, error) {
	if cfg.S3.Enabled() {
		return storage.NewS3Blob(ctx, cfg.S3)
	}
	return storage.NewFileBlob(cfg.Data), nil
}

// table 回傳 nil 代表使用內建表。
func (cfg *config) table() (*providers.Table, error) {
	if cfg.Providers == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(cfg.Providers)
	if err != nil {
		return nil, fmt.Errorf("read providers table: %w", err)
	}
	return providers.ParseTable(raw)
}
