package fast

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
)

// CSRFConfig configures the CSRF middleware.
type CSRFConfig struct {
	TokenLength int    // default 32
	CookieName  string // default "_csrf"
	HeaderName  string // default "X-CSRF-Token"
	Secure      bool
	SameSite    http.SameSite
}

type csrfTokenKey struct{}

// CSRF returns middleware implementing double-submit cookie protection:
// the token lives in a cookie and mutating requests must echo it back in
// a header. GET, HEAD and OPTIONS pass through unchecked.
func CSRF(cfg ...CSRFConfig) Middleware {
	c := CSRFConfig{
		TokenLength: 32,
		CookieName:  "_csrf",
		HeaderName:  "X-CSRF-Token",
		SameSite:    http.SameSiteLaxMode,
	}
	if len(cfg) > 0 {
		override := cfg[0]
		if override.TokenLength > 0 {
			c.TokenLength = override.TokenLength
		}
		if override.CookieName != "" {
			c.CookieName = override.CookieName
		}
		if override.HeaderName != "" {
			c.HeaderName = override.HeaderName
		}
		c.Secure = override.Secure
		if override.SameSite != 0 {
			c.SameSite = override.SameSite
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := csrfCookieToken(r, c.CookieName)
			if token == "" {
				token = randomHexToken(c.TokenLength)
				http.SetCookie(w, &http.Cookie{
					Name:     c.CookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					Secure:   c.Secure,
					SameSite: c.SameSite,
				})
			}

			// Expose the token so handlers can render it into forms.
			r = r.WithContext(setCSRFToken(r.Context(), token))

			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			if header := r.Header.Get(c.HeaderName); header == "" || header != token {
				http.Error(w, "CSRF token mismatch", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetCSRFToken retrieves the CSRF token from the request context.
func GetCSRFToken(r *http.Request) string {
	if v, ok := r.Context().Value(csrfTokenKey{}).(string); ok {
		return v
	}
	return ""
}

func setCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfTokenKey{}, token)
}

func csrfCookieToken(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func randomHexToken(length int) string {
	b := make([]byte, length)
	//nolint:errcheck,gosec // crypto/rand.Read always returns nil error
	rand.Read(b)
	return hex.EncodeToString(b)
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}
