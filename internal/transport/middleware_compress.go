package transport

import (
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

// WithCompression serves brotli-encoded responses to clients that accept
// them.
func WithCompression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "br") {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Encoding", "br")
		br := brotli.NewWriter(w)
		defer func(br *brotli.Writer) {
			_ = br.Close()
		}(br)
		cw := &compressedWriter{w: w, cw: br}
		next.ServeHTTP(cw, r)
	})
}

type compressedWriter struct {
	w  http.ResponseWriter
	cw *brotli.Writer
}

func (cw *compressedWriter) Header() http.Header         { return cw.w.Header() }
func (cw *compressedWriter) Write(b []byte) (int, error) { return cw.cw.Write(b) }
func (cw *compressedWriter) WriteHeader(statusCode int)  { cw.w.WriteHeader(statusCode) }
