package guard

import (
	"context"
	"log/slog"
	"net/http"

	"partnerdash/pkg/platform/httputil"
	"partnerdash/pkg/requestcontext"
)

// StateSource derives the auth state of the caller in ctx.
type StateSource interface {
	Current(ctx context.Context) (AuthState, error)
}

// DeniedResponse is written when the guard does not render.
type DeniedResponse struct {
	Error    string  `json:"error"`
	Decision Outcome `json:"decision"`
	Redirect string  `json:"redirect,omitempty"`
}

// Require lets a request through only when the guard would render path for the
// caller. It must run after authentication.
func Require(source StateSource, path string, admin bool, logger *slog.Logger) func(http.Handler) http.Handler {
	decide := Decide
	if admin {
		decide = DecideAdmin
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			state, err := source.Current(ctx)
			if err != nil {
				logger.ErrorContext(ctx, "failed to derive auth state",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, err)
				return
			}

			d := decide(state, path)
			if !d.Allowed() {
				logger.InfoContext(ctx, "guard denied request",
					"decision", string(d.Outcome),
					"redirect", d.Redirect,
					"path", path,
					"request_id", requestID,
				)
				httputil.WriteJSON(w, http.StatusForbidden, DeniedResponse{
					Error:    "forbidden",
					Decision: d.Outcome,
					Redirect: d.Redirect,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
