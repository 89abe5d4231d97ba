// Package sourceid propagates the observation source identifier from the
// X-Source-ID header. Ingest payloads may still name a source explicitly; the
// header is the fallback for adapters that push many observations per
// connection.
package sourceid

import (
	"net/http"

	"lottoledger/pkg/requestcontext"
)

// Header names the submitting source, e.g. "scraper:lottonumbers.example".
const Header = "X-Source-ID"

// Middleware injects the source ID into the context when the header is set.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if src := r.Header.Get(Header); src != "" {
			r = r.WithContext(requestcontext.WithSourceID(r.Context(), src))
		}
		next.ServeHTTP(w, r)
	})
}
