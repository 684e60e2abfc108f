// Package app builds the partnerdash server from configuration: stores,
// services, handlers, the router and the background workers.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"partnerdash/internal/admin"
	"partnerdash/internal/authstate"
	"partnerdash/internal/credentials"
	credstore "partnerdash/internal/credentials/store"
	"partnerdash/internal/dashboard"
	identityhandler "partnerdash/internal/identity/handler"
	identityservice "partnerdash/internal/identity/service"
	sessionstore "partnerdash/internal/identity/store/session"
	"partnerdash/internal/identity/token"
	invitationhandler "partnerdash/internal/invitation/handler"
	invitationservice "partnerdash/internal/invitation/service"
	"partnerdash/internal/mailer"
	mfahandler "partnerdash/internal/mfa/handler"
	mfaservice "partnerdash/internal/mfa/service"
	"partnerdash/internal/mfa/store/cooldown"
	"partnerdash/internal/platform/config"
	"partnerdash/internal/platform/database"
	"partnerdash/internal/platform/health"
	"partnerdash/internal/platform/metrics"
	"partnerdash/internal/platform/redis"
	"partnerdash/internal/seeder"
	httptransport "partnerdash/internal/transport/http"
	"partnerdash/internal/workers/cleanup"
	"partnerdash/pkg/platform/circuit"
	"partnerdash/pkg/platform/middleware/auth"
	"partnerdash/pkg/platform/middleware/metadata"
	"partnerdash/pkg/platform/middleware/ratelimit"
	"partnerdash/pkg/platform/tracer"
)

const poolStatsInterval = 30 * time.Second

// App is a fully wired server.
type App struct {
	Router   http.Handler
	Identity *identityservice.Service

	logger   *slog.Logger
	cleanup  *cleanup.Service
	limiter  *ratelimit.Limiter
	redis    *redis.Client
	closers  []func() error
	unwatch  func()
	interval time.Duration
}

type options struct {
	mailer  mailer.Sender
	metrics *metrics.Metrics
	fetcher dashboard.Fetcher
	tracer  tracer.Tracer
}

type Option func(*options)

// WithMailer replaces the configured mail API sender.
func WithMailer(sender mailer.Sender) Option {
	return func(o *options) {
		o.mailer = sender
	}
}

// WithMetrics sets the collectors; tests pass ones on a private registry.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithPartnerFetcher replaces the webhook fetcher.
func WithPartnerFetcher(f dashboard.Fetcher) Option {
	return func(o *options) {
		o.fetcher = f
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// New wires the server. Postgres and Redis are used when configured; without
// them every store is in memory.
func New(ctx context.Context, cfg config.Server, logger *slog.Logger, opts ...Option) (*App, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.mailer == nil {
		o.mailer = mailer.New(cfg.Mailer)
	}
	if o.fetcher == nil {
		o.fetcher = dashboard.NewHTTPFetcher(cfg.Dashboard.WebhookURL, cfg.Dashboard.FetchTimeout)
	}
	if o.tracer == nil {
		o.tracer = tracer.NewOTel()
	}

	a := &App{logger: logger, interval: cfg.Cleanup.Interval}
	healthHandler := health.New(cfg.Environment)

	creds, err := a.credentialStore(ctx, cfg, healthHandler)
	if err != nil {
		a.Close() //nolint:errcheck // already failing
		return nil, err
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		a.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	var (
		sessions     identityservice.SessionStore
		sendCooldown mfaservice.Cooldown
		cleanupOpts  = []cleanup.Option{
			cleanup.WithInterval(cfg.Cleanup.Interval),
			cleanup.WithLogger(logger),
			cleanup.WithMetrics(o.metrics),
		}
	)
	if redisClient != nil {
		a.redis = redisClient
		a.closers = append(a.closers, redisClient.Close)
		healthHandler.RegisterCheck("redis", redisClient.Health)
		sessions = sessionstore.NewRedis(redisClient.Client)
		sendCooldown = cooldown.NewRedis(redisClient.Client)
		logger.Info("using redis for sessions and send cooldowns")
	} else {
		memSessions := sessionstore.NewInMemorySessionStore()
		sessions = memSessions
		sendCooldown = cooldown.NewInMemory()
		cleanupOpts = append(cleanupOpts, cleanup.WithSessionStore(memSessions))
	}

	tokens := token.New(cfg.JWTSigningKey, cfg.SessionTTL)
	identitySvc := identityservice.New(creds, sessions, tokens,
		identityservice.WithLogger(logger),
		identityservice.WithMetrics(o.metrics),
	)
	authenticate := auth.RequireAuth(tokens, identitySvc, o.metrics, logger)

	mfaSvc := mfaservice.New(creds, creds, o.mailer,
		mfaservice.WithLogger(logger),
		mfaservice.WithMetrics(o.metrics),
		mfaservice.WithTracer(o.tracer),
		mfaservice.WithSessionMarker(identitySvc),
		mfaservice.WithCooldown(sendCooldown),
	)
	invitationSvc := invitationservice.New(creds, creds, creds, o.mailer, cfg.AppURL,
		invitationservice.WithLogger(logger),
		invitationservice.WithMetrics(o.metrics),
		invitationservice.WithTracer(o.tracer),
	)
	adminSvc := admin.NewService(creds, identitySvc, logger)
	stateSvc := authstate.New(creds, identitySvc, logger)

	breaker := circuit.New("partner-webhook",
		circuit.WithFailureThreshold(cfg.Dashboard.BreakerThreshold),
		circuit.WithCooldown(cfg.Dashboard.BreakerCooldown),
	)
	cache := dashboard.NewCache(o.fetcher,
		dashboard.WithTTL(cfg.Dashboard.CacheTTL),
		dashboard.WithBreaker(breaker),
		dashboard.WithLogger(logger),
		dashboard.WithMetrics(o.metrics),
		dashboard.WithTracer(o.tracer),
	)
	a.unwatch = cache.Watch(identitySvc.Subscribe)

	if cfg.Bootstrap.AdminEmail != "" {
		err = seeder.New(identitySvc, creds, logger).SeedAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword)
		if err != nil {
			a.Close() //nolint:errcheck // already failing
			return nil, err
		}
	}

	a.cleanup, err = cleanup.New(creds, cleanupOpts...)
	if err != nil {
		a.Close() //nolint:errcheck // already failing
		return nil, err
	}
	a.limiter = ratelimit.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, logger)

	a.Identity = identitySvc
	a.Router = httptransport.NewRouter(httptransport.Handlers{
		Health:     healthHandler,
		Identity:   identityhandler.New(identitySvc, logger),
		MFA:        mfahandler.New(mfaSvc, logger),
		Invitation: invitationhandler.New(invitationSvc, authenticate, stateSvc, logger),
		Admin:      admin.New(adminSvc, logger),
		AuthState:  authstate.NewHandler(stateSvc, logger),
		Dashboard:  dashboard.NewHandler(cache, logger),
	}, httptransport.Middleware{
		Authenticate: authenticate,
		Guard:        stateSvc,
		Limiter:      a.limiter,
		Metadata:     metadata.NewMiddleware(metadata.ParseTrustedProxies(cfg.TrustedProxies)),
		Metrics:      o.metrics,
		CORSOrigin:   cfg.CORSOrigin,
	}, logger)

	return a, nil
}

func (a *App) credentialStore(ctx context.Context, cfg config.Server, healthHandler *health.Handler) (credentials.Store, error) {
	if cfg.DatabaseURL == "" {
		a.logger.Warn("DATABASE_URL not set, using in-memory credential store")
		return credstore.NewInMemory(), nil
	}

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return nil, err
	}
	pool, err := database.Open(ctx, cfg.DatabaseURL, database.DefaultPoolOptions())
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, pool.Close)
	healthHandler.RegisterCheck("postgres", pool.Health)
	return credstore.NewPostgres(pool.DB()), nil
}

// Run starts the background workers and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.cleanup.Start(ctx)
	})
	g.Go(func() error {
		a.limiter.Run(ctx, time.Minute)
		return nil
	})
	if a.redis != nil {
		g.Go(func() error {
			a.redis.RunPoolStats(ctx, poolStatsInterval)
			return nil
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	if a.unwatch != nil {
		a.unwatch()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
