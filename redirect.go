package fast

import (
	"net/http"
	"strings"
)

// HTTPSRedirect returns middleware that 301-redirects plain HTTP requests
// to their HTTPS equivalent. Requests arriving through a TLS-terminating
// proxy are recognized via X-Forwarded-Proto.
func HTTPSRedirect() Middleware {
	return redirectWhen(func(r *http.Request) (string, bool) {
		if r.TLS == nil && r.Header.Get("X-Forwarded-Proto") != "https" {
			return "https://" + r.Host + r.URL.RequestURI(), true
		}
		return "", false
	})
}

// TrailingSlash returns middleware that 301-redirects paths ending in a
// slash to the bare path, preserving the query string.
func TrailingSlash() Middleware {
	return redirectWhen(func(r *http.Request) (string, bool) {
		if r.URL.Path == "/" || !strings.HasSuffix(r.URL.Path, "/") {
			return "", false
		}
		target := strings.TrimRight(r.URL.Path, "/")
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		return target, true
	})
}

// NonWWWRedirect returns middleware that 301-redirects the www subdomain
// to the bare host.
func NonWWWRedirect() Middleware {
	return redirectWhen(func(r *http.Request) (string, bool) {
		if strings.HasPrefix(r.Host, "www.") {
			return r.URL.Scheme + "://" + strings.TrimPrefix(r.Host, "www.") + r.URL.RequestURI(), true
		}
		return "", false
	})
}

func redirectWhen(target func(r *http.Request) (string, bool)) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if to, ok := target(r); ok {
				http.Redirect(w, r, to, http.StatusMovedPermanently)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
