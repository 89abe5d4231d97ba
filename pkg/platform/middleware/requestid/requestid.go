// Package requestid assigns every request a correlation ID, honoring one
// supplied by the caller so IDs survive proxy hops.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"lottoledger/pkg/requestcontext"
)

// Header carries the request ID on both request and response.
const Header = "X-Request-ID"

// Middleware injects the request ID into the context and echoes it on the
// response so callers can correlate logs and audit entries.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
