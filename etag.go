package fast

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"
)

// ETagConfig configures the ETag middleware.
type ETagConfig struct {
	Weak bool
}

// LastModifier is implemented by response types that report their last
// modification time.
type LastModifier interface {
	LastModified() time.Time
}

// ETag returns middleware that buffers GET and HEAD responses, tags 2xx
// bodies with a content hash, and answers If-None-Match with 304.
func ETag(cfg ...ETagConfig) Middleware {
	c := ETagConfig{}
	if len(cfg) > 0 {
		c = cfg[0]
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			rec := &bufferedResponse{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			// Non-2xx bodies pass through untagged.
			if rec.status < 200 || rec.status >= 300 {
				rec.replay()
				return
			}

			etag := contentETag(rec.buf.Bytes(), c.Weak)
			w.Header().Set("ETag", etag)

			if match := r.Header.Get("If-None-Match"); match != "" && strings.Contains(match, etag) {
				w.WriteHeader(http.StatusNotModified)
				return
			}
			if match := r.Header.Get("If-Match"); match != "" && match != "*" && !strings.Contains(match, etag) {
				w.WriteHeader(http.StatusPreconditionFailed)
				return
			}

			rec.replay()
		})
	}
}

func contentETag(body []byte, weak bool) string {
	hash := sha256.Sum256(body)
	etag := `"` + hex.EncodeToString(hash[:8]) + `"`
	if weak {
		etag = "W/" + etag
	}
	return etag
}

// bufferedResponse captures status and body so the middleware can decide
// the final response before anything reaches the client.
type bufferedResponse struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (b *bufferedResponse) WriteHeader(code int) {
	b.status = code
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	return b.buf.Write(p)
}

func (b *bufferedResponse) replay() {
	b.ResponseWriter.WriteHeader(b.status)
	//nolint:errcheck,gosec // best-effort write
	b.ResponseWriter.Write(b.buf.Bytes())
}
