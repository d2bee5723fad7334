package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/zintix-labs/slotquest/server/svrcfg"
	"github.com/zintix-labs/slotquest/session"
)

func env(kv map[string]string) func(string) string {
	return func(k string) string { return kv[k] }
}

func TestParseFlagsDefaults(t *testing.T) {
	cfg, err := parseFlags(nil, env(nil))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cfg.Addr != svrcfg.DefaultAddr || cfg.Data != "stake.json" || cfg.MaxBody != svrcfg.DefaultMaxBody || cfg.TTL != session.DefaultMaxIdle {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.S3.Enabled() || cfg.Providers != "" {
		t.Fatalf("s3 and providers table must be off by default: %+v", cfg)
	}
}

func TestParseFlagsPortEnv(t *testing.T) {
	cases := []struct {
		args []string
		port string
		want string
	}{
		{nil, "8080", ":8080"},
		{[]string{"-addr", "127.0.0.1:4000"}, "9000", "127.0.0.1:9000"},
		{[]string{"-addr", ":4000"}, " ", ":4000"},
	}
	for _, c := range cases {
		cfg, err := parseFlags(c.args, env(map[string]string{"PORT": c.port}))
		if err != nil {
			t.Fatalf("parse %v failed: %v", c.args, err)
		}
		if cfg.Addr != c.want {
			t.Fatalf("args %v PORT=%q: addr %q, want %q", c.args, c.port, cfg.Addr, c.want)
		}
	}
}

func TestParseFlagsS3(t *testing.T) {
	cfg, err := parseFlags(
		[]string{"-s3-bucket", "quest", "-s3-region", "eu-west-1", "-session-ttl", "30m"},
		env(map[string]string{"AWS_ACCESS_KEY_ID": "id", "AWS_SECRET_ACCESS_KEY": "secret"}),
	)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !cfg.S3.Enabled() || cfg.S3.Key != "stake.json" || cfg.S3.AccessKeyID != "id" || cfg.S3.SecretAccessKey != "secret" {
		t.Fatalf("unexpected s3 config: %+v", cfg.S3)
	}
	if cfg.TTL != 30*time.Minute {
		t.Fatalf("unexpected ttl %v", cfg.TTL)
	}
	if _, err := parseFlags([]string{"-max-body", "lots"}, env(nil)); err == nil {
		t.Fatalf("expected flag error")
	}
}

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestBuildWithProvidersTable(t *testing.T) {
	dir := t.TempDir()
	data := write(t, dir, "stake.json", `[{"slot_games": [{"game_name": "Tome", "provider": "A"}]}]`)
	table := write(t, dir, "providers.yaml", "generic:\n  bet_levels: [1, 2]\nproviders:\n  - name: A\n    bet_levels: [3]\n")

	cfg, err := parseFlags([]string{"-data", data, "-providers", table, "-log-mode", "ModeSilence"}, env(nil))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	sc, err := cfg.build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if sc.Editor.Store().Len() != 1 {
		t.Fatalf("dataset not loaded")
	}
	got, ok := sc.Editor.ProviderDefaults("A")
	if !ok || !reflect.DeepEqual(got.BetLevels, []float64{3}) {
		t.Fatalf("providers table not applied: %+v", got)
	}
	if fresh := sc.Editor.Registry().Table().DefaultsFor("B"); !reflect.DeepEqual(fresh.BetLevels, []float64{1, 2}) {
		t.Fatalf("generic defaults not applied: %+v", fresh)
	}

	cfg.Providers = write(t, dir, "bad.yaml", "generic:\n  typo: 1\n")
	if _, err := cfg.build(); err == nil {
		t.Fatalf("expected strict yaml error")
	}
	cfg.Providers = filepath.Join(dir, "missing.yaml")
	if _, err := cfg.build(); err == nil {
		t.Fatalf("expected missing table error")
	}
	cfg.Providers = ""
	cfg.Data = filepath.Join(dir, "nope.json")
	if _, err := cfg.build(); err == nil {
		t.Fatalf("expected load error for missing dataset")
	}
}
