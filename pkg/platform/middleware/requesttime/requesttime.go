// Package requesttime pins a single "now" per HTTP request so code expiry,
// session expiry and audit timestamps agree within one request.
package requesttime

import (
	"net/http"
	"time"

	"partnerdash/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
