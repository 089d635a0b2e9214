package fast

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

// CompressConfig configures the Compress middleware.
type CompressConfig struct {
	Level   int      // gzip level 1-9, default 5
	MinSize int      // smallest first write that triggers compression, default 1024
	Types   []string // content-type substrings to compress, default application/json and text/
}

// Compress returns middleware that gzip-compresses responses for clients
// that send Accept-Encoding: gzip. Compression only kicks in when the
// first write is at least MinSize bytes and the content type matches.
func Compress(cfg ...CompressConfig) Middleware {
	c := CompressConfig{
		Level:   5,
		MinSize: 1024,
		Types:   []string{"application/json", "text/"},
	}
	if len(cfg) > 0 {
		override := cfg[0]
		if override.Level > 0 {
			c.Level = override.Level
		}
		if override.MinSize > 0 {
			c.MinSize = override.MinSize
		}
		if len(override.Types) > 0 {
			c.Types = override.Types
		}
	}

	pool := &sync.Pool{
		New: func() any {
			gz, _ := gzip.NewWriterLevel(io.Discard, c.Level) //nolint:errcheck // level is pre-validated
			return gz
		},
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}

			gz := pool.Get().(*gzip.Writer) //nolint:errcheck,forcetypeassert // pool.New always returns *gzip.Writer
			gz.Reset(w)
			defer func() {
				//nolint:errcheck,gosec // best-effort flush
				gz.Close()
				pool.Put(gz)
			}()

			cw := &compressWriter{
				ResponseWriter: w,
				gz:             gz,
				minSize:        c.MinSize,
				types:          c.Types,
			}

			w.Header().Set("Vary", "Accept-Encoding")
			next.ServeHTTP(cw, r)

			if cw.active {
				w.Header().Set("Content-Encoding", "gzip")
				w.Header().Del("Content-Length")
			}
		})
	}
}

// compressWriter decides on the first Write whether to route the body
// through gzip, once the content type and size are known.
type compressWriter struct {
	http.ResponseWriter
	gz      *gzip.Writer
	minSize int
	types   []string
	active  bool
	decided bool
}

func (cw *compressWriter) Write(b []byte) (int, error) {
	if !cw.decided {
		cw.decided = true
		if cw.eligible(cw.Header().Get("Content-Type")) && len(b) >= cw.minSize {
			cw.active = true
			cw.Header().Set("Content-Encoding", "gzip")
			cw.Header().Del("Content-Length")
		}
	}

	if cw.active {
		return cw.gz.Write(b)
	}
	return cw.ResponseWriter.Write(b)
}

func (cw *compressWriter) eligible(contentType string) bool {
	// SSE must stay uncompressed so events flush through, and responses
	// that are already encoded are left alone.
	if strings.Contains(contentType, "event-stream") {
		return false
	}
	if cw.Header().Get("Content-Encoding") != "" {
		return false
	}
	for _, t := range cw.types {
		if strings.Contains(contentType, t) {
			return true
		}
	}
	return false
}

func (cw *compressWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}
