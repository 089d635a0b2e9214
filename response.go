package fast

import (
	"encoding/json"
	"errors"
	"net/http"
)

// CookieSetter is optionally implemented by response types to set cookies.
type CookieSetter interface {
	Cookies() []*http.Cookie
}

// HeaderSetter is optionally implemented by response types to set response
// headers.
type HeaderSetter interface {
	SetHeaders(h http.Header)
}

// Redirect is returned from a handler to issue an HTTP redirect.
type Redirect struct {
	URL    string
	Status int
}

// encodeResponse writes a handler result. Redirects and streams short-
// circuit; everything else goes through cookie/header hooks, the status
// override, the bodiless-status check, and finally content negotiation.
func encodeResponse(w http.ResponseWriter, r *http.Request, resp any, defaultStatus int, codecs *codecRegistry) {
	switch v := resp.(type) {
	case *Redirect:
		status := v.Status
		if status == 0 {
			status = http.StatusFound
		}
		http.Redirect(w, r, v.URL, status)
		return
	case *Stream:
		writeStream(w, v)
		return
	case *SSEStream:
		writeSSEStream(w, v)
		return
	}

	// Cookies and headers must land before the status line.
	if cs, ok := resp.(CookieSetter); ok {
		for _, c := range cs.Cookies() {
			http.SetCookie(w, c)
		}
	}
	if hs, ok := resp.(HeaderSetter); ok {
		hs.SetHeaders(w.Header())
	}

	status := defaultStatus
	if sc, ok := resp.(StatusCoder); ok {
		status = sc.StatusCode()
	}

	if !bodyAllowedForStatusCode(status) {
		w.WriteHeader(status)
		return
	}

	enc, ok := codecs.negotiate(r.Header.Get("Accept"))
	if !ok {
		writeErrorResponse(w, Errorf(http.StatusNotAcceptable,
			"no encoder for accept %q", r.Header.Get("Accept")))
		return
	}

	w.Header().Set("Content-Type", enc.ContentType())
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort after WriteHeader
	enc.Encode(w, resp)
}

// writeErrorResponse writes any error as an RFC 9457 problem details
// document. ProblemDetail errors are emitted as-is; everything else is
// wrapped with the status derived from ErrorStatus.
func writeErrorResponse(w http.ResponseWriter, err error) {
	var pd *ProblemDetail
	if !errors.As(err, &pd) {
		status := ErrorStatus(err)
		pd = &ProblemDetail{
			Type:   "about:blank",
			Title:  http.StatusText(status),
			Status: status,
			Detail: err.Error(),
		}
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(pd.Status)
	//nolint:errcheck,errchkjson,gosec // best-effort after WriteHeader
	json.NewEncoder(w).Encode(pd)
}
