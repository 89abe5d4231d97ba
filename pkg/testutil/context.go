package testutil

import (
	"net/http"
	"time"

	"lottoledger/pkg/requestcontext"
)

// WithRequestID adds a request ID to the request context, simulating what the
// router middleware does for real requests.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	ctx := requestcontext.WithRequestID(req.Context(), requestID)
	return req.WithContext(ctx)
}

// WithSourceID adds an observation source ID to the request context.
func WithSourceID(req *http.Request, sourceID string) *http.Request {
	ctx := requestcontext.WithSourceID(req.Context(), sourceID)
	return req.WithContext(ctx)
}

// WithFixedTime pins the request-scoped clock, so assertions on timestamps
// are deterministic.
func WithFixedTime(req *http.Request, t time.Time) *http.Request {
	ctx := requestcontext.WithTime(req.Context(), t)
	return req.WithContext(ctx)
}
