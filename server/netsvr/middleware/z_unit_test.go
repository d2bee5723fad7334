package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var payload = strings.Repeat(`{"game_name":"Gates of Olympus","provider":"Pragmatic Play"},`, 50)

func text(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, payload)
}

func serve(h http.Handler, method, path string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNegotiate(t *testing.T) {
	cases := map[string]string{
		"":                   "",
		"identity":           "",
		"gzip":               "gzip",
		"gzip, zstd":         "zstd",
		"zstd;q=0, gzip":     "gzip",
		"br, GZIP;q=0.5":     "gzip",
		"*":                  "zstd",
		"gzip;q=0, zstd;q=0": "",
	}
	for hdr, want := range cases {
		c := negotiate(hdr)
		got := ""
		if c != nil {
			got = c.name
		}
		if got != want {
			t.Fatalf("negotiate(%q) = %q, want %q", hdr, got, want)
		}
	}
}

func TestCompressionGzip(t *testing.T) {
	rec := serve(Compression(http.HandlerFunc(text)), "GET", "/stake.json", map[string]string{"Accept-Encoding": "gzip"})
	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip, got %q", rec.Header().Get("Content-Encoding"))
	}
	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	got, _ := io.ReadAll(zr)
	if string(got) != payload {
		t.Fatalf("gzip payload mismatch")
	}
}

func TestCompressionZstd(t *testing.T) {
	rec := serve(Compression(http.HandlerFunc(text)), "GET", "/stake.json", map[string]string{"Accept-Encoding": "gzip, zstd"})
	if rec.Header().Get("Content-Encoding") != "zstd" {
		t.Fatalf("expected zstd, got %q", rec.Header().Get("Content-Encoding"))
	}
	zr, err := zstd.NewReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer zr.Close()
	got, _ := io.ReadAll(zr)
	if string(got) != payload {
		t.Fatalf("zstd payload mismatch")
	}
}

func TestCompressionSkips(t *testing.T) {
	h := Compression(http.HandlerFunc(text))
	if rec := serve(h, "GET", "/metrics", map[string]string{"Accept-Encoding": "gzip"}); rec.Header().Get("Content-Encoding") != "" {
		t.Fatalf("/metrics must not be compressed twice")
	}
	if rec := serve(h, "GET", "/stake.json", nil); rec.Body.String() != payload {
		t.Fatalf("plain response expected without Accept-Encoding")
	}

	noContent := Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := serve(noContent, "OPTIONS", "/save-stake-json", map[string]string{"Accept-Encoding": "gzip"})
	if rec.Body.Len() != 0 || rec.Header().Get("Content-Encoding") != "" {
		t.Fatalf("204 must carry no body: %d bytes, encoding %q", rec.Body.Len(), rec.Header().Get("Content-Encoding"))
	}
}

func TestRecover(t *testing.T) {
	h := Recover(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := serve(h, "GET", "/", nil)
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), `"success":false`) {
		t.Fatalf("unexpected recover response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRequestIDAndAccessLog(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(AccessLog(log))
	r.Get("/v1/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := serve(r, "GET", "/v1/sessions/abc", map[string]string{"X-Request-Id": "req-42"})
	if rec.Header().Get("X-Request-Id") != "req-42" {
		t.Fatalf("request id not echoed: %v", rec.Header())
	}
	line := buf.String()
	for _, want := range []string{`"msg":"http.access"`, `"level":"WARN"`, `"req_id":"req-42"`, `"route":"/v1/sessions/{id}"`, `"status":404`} {
		if !strings.Contains(line, want) {
			t.Fatalf("access log missing %s: %s", want, line)
		}
	}
}
