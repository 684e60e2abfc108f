// Package httptransport assembles the module handlers into one chi router
// behind the shared middleware stack.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"partnerdash/internal/admin"
	"partnerdash/internal/authstate"
	"partnerdash/internal/dashboard"
	"partnerdash/internal/guard"
	identity "partnerdash/internal/identity/handler"
	invitation "partnerdash/internal/invitation/handler"
	mfa "partnerdash/internal/mfa/handler"
	"partnerdash/internal/platform/health"
	"partnerdash/internal/platform/metrics"
	"partnerdash/pkg/platform/middleware/cors"
	"partnerdash/pkg/platform/middleware/metadata"
	"partnerdash/pkg/platform/middleware/ratelimit"
	"partnerdash/pkg/platform/middleware/request"
	"partnerdash/pkg/platform/middleware/requesttime"
)

const maxBodyBytes = 1 << 20

// Handlers are the module endpoints the router mounts.
type Handlers struct {
	Health     *health.Handler
	Identity   *identity.Handler
	MFA        *mfa.Handler
	Invitation *invitation.Handler
	Admin      *admin.Handler
	AuthState  *authstate.Handler
	Dashboard  *dashboard.Handler
}

// Middleware carries the cross-cutting pieces the router applies.
type Middleware struct {
	Authenticate func(http.Handler) http.Handler
	Guard        guard.StateSource
	Limiter      *ratelimit.Limiter
	Metadata     *metadata.Middleware
	Metrics      *metrics.Metrics
	CORSOrigin   string
	Timeout      time.Duration
}

// NewRouter wires all endpoints with middleware. Public endpoints and code
// verification are rate limited per client IP; the partner report needs a
// fully admitted viewer and the admin endpoints an admitted admin.
func NewRouter(h Handlers, mw Middleware, logger *slog.Logger) http.Handler {
	timeout := mw.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(logger))
	r.Use(mw.Metadata.Handler)
	r.Use(requesttime.Middleware)
	r.Use(cors.Middleware(mw.CORSOrigin))
	r.Use(request.Timeout(timeout))
	r.Use(request.Latency(mw.Metrics))

	r.Handle("/metrics", promhttp.Handler())
	h.Health.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(request.BodyLimit(maxBodyBytes))
		r.Use(request.ContentTypeJSON)

		r.Group(func(r chi.Router) {
			r.Use(mw.Limiter.Middleware)
			h.Identity.RegisterPublic(r)
			h.Invitation.Register(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate)
			h.Identity.Register(r)
			h.AuthState.Register(r)

			r.Group(func(r chi.Router) {
				r.Use(mw.Limiter.Middleware)
				h.MFA.Register(r)
			})

			r.Group(func(r chi.Router) {
				r.Use(guard.Require(mw.Guard, guard.PathHome, false, logger))
				h.Dashboard.Register(r)
			})

			r.Group(func(r chi.Router) {
				r.Use(guard.Require(mw.Guard, guard.PathAdmin, true, logger))
				h.Admin.Register(r)
			})
		})
	})

	return r
}
