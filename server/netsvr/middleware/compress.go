package middleware

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// 自己處理壓縮的路徑（promhttp 會依 Accept-Encoding 自行 gzip）。
var skipCompress = map[string]bool{"/metrics": true}

// codec 是一種 Content-Encoding 與其 writer pool。
type codec struct {
	name string
	pool sync.Pool
	open func(w io.Writer) resettable
}

type resettable interface {
	io.WriteCloser
	Reset(w io.Writer)
	Flush() error
}

// 依偏好順序排列：zstd 優先於 gzip。
var codecs = []*codec{
	{name: "zstd", open: func(w io.Writer) resettable {
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest), zstd.WithEncoderConcurrency(1))
		if err != nil {
			panic(err)
		}
		return zw
	}},
	{name: "gzip", open: func(w io.Writer) resettable {
		gw, _ := gzip.NewWriterLevel(w, gzip.DefaultCompression)
		return gw
	}},
}

func (c *codec) get(w io.Writer) resettable {
	if v := c.pool.Get(); v != nil {
		cw := v.(resettable)
		cw.Reset(w)
		return cw
	}
	return c.open(w)
}

// put 關閉並回收；discard 時 footer 寫到 io.Discard，避免污染無 body 的回應。
func (c *codec) put(cw resettable, discard bool) {
	if discard {
		cw.Reset(io.Discard)
	}
	_ = cw.Close()
	c.pool.Put(cw)
}

// negotiate 從 Accept-Encoding 挑出第一個可用的 codec；q=0 視為拒絕。
func negotiate(header string) *codec {
	accepted := map[string]bool{}
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		name = strings.ToLower(strings.TrimSpace(name))
		if q, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			if v, err := strconv.ParseFloat(q, 64); err == nil && v <= 0 {
				continue
			}
		}
		accepted[name] = true
	}
	for _, c := range codecs {
		if accepted[c.name] || accepted["*"] {
			return c
		}
	}
	return nil
}

func noBody(code int) bool {
	return (code >= 100 && code < 200) || code == http.StatusNoContent || code == http.StatusNotModified
}

type compressWriter struct {
	http.ResponseWriter
	cw       resettable
	disabled bool // 204/304/1xx：不寫壓縮內容
}

func (w *compressWriter) WriteHeader(code int) {
	w.Header().Del("Content-Length")
	if noBody(code) {
		w.disabled = true
		w.Header().Del("Content-Encoding")
		w.Header().Del("Vary")
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *compressWriter) Write(b []byte) (int, error) {
	if w.disabled {
		return w.ResponseWriter.Write(b)
	}
	w.Header().Del("Content-Length")
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", http.DetectContentType(b))
	}
	return w.cw.Write(b)
}

func (w *compressWriter) Flush() {
	if !w.disabled {
		_ = w.cw.Flush()
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Compression 依 Accept-Encoding 以 zstd 或 gzip 壓縮回應（資料集 JSON 可達數百 KB）。
func Compression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := negotiate(r.Header.Get("Accept-Encoding"))
		if c == nil || r.Method == http.MethodHead || skipCompress[r.URL.Path] || w.Header().Get("Content-Encoding") != "" {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Encoding", c.name)
		w.Header().Add("Vary", "Accept-Encoding")

		cw := &compressWriter{ResponseWriter: w, cw: c.get(w)}
		defer func() { c.put(cw.cw, cw.disabled) }()
		next.ServeHTTP(cw, r)
	})
}
