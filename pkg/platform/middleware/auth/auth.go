package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "partnerdash/pkg/domain"
	"partnerdash/pkg/platform/httputil"
	"partnerdash/pkg/requestcontext"
)

// ErrTokenExpired is wrapped by validators when a token is well-formed but past its exp.
var ErrTokenExpired = errors.New("token expired")

// Client-facing descriptions. They match the strings the client translates.
const (
	msgSessionMissing = "Auth session missing!"
	msgTokenExpired   = "JWT expired"
	msgTokenInvalid   = "Invalid or expired token"
)

// TokenValidator parses and verifies a bearer token.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// SessionChecker reports whether the server-side session behind a token still exists.
type SessionChecker interface {
	SessionActive(ctx context.Context, sessionID id.SessionID) (bool, error)
}

// FailureRecorder counts rejected credentials by reason.
type FailureRecorder interface {
	IncrementAuthFailures(reason string)
}

// Claims are the identity fields a validated token carries.
type Claims struct {
	UserID    string
	SessionID string
	Email     string
	JTI       string
}

type parsedClaims struct {
	UserID    id.UserID
	SessionID id.SessionID
}

func parseClaims(claims *Claims) (*parsedClaims, error) {
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid sub: %w", err)
	}
	sessionID, err := id.ParseSessionID(claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid sid: %w", err)
	}
	return &parsedClaims{UserID: userID, SessionID: sessionID}, nil
}

type rejecter struct {
	logger   *slog.Logger
	failures FailureRecorder
}

func (rj rejecter) reject(w http.ResponseWriter, r *http.Request, reason, description string, err error) {
	ctx := r.Context()
	attrs := []any{"reason", reason, "request_id", requestcontext.RequestID(ctx)}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	rj.logger.WarnContext(ctx, "unauthorized access", attrs...)
	if rj.failures != nil {
		rj.failures.IncrementAuthFailures(reason)
	}
	httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{
		Error:       "unauthorized",
		Description: description,
	})
}

// RequireAuth validates the Bearer token, confirms its session record still
// exists, and stores user id, session id and email in the request context.
// sessions and failures may be nil.
func RequireAuth(validator TokenValidator, sessions SessionChecker, failures FailureRecorder, logger *slog.Logger) func(http.Handler) http.Handler {
	rj := rejecter{logger: logger, failures: failures}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				rj.reject(w, r, "missing_token", msgSessionMissing, nil)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				if errors.Is(err, ErrTokenExpired) {
					rj.reject(w, r, "expired_token", msgTokenExpired, err)
					return
				}
				rj.reject(w, r, "invalid_token", msgTokenInvalid, err)
				return
			}

			parsed, err := parseClaims(claims)
			if err != nil {
				rj.reject(w, r, "malformed_claims", msgTokenInvalid, err)
				return
			}

			if sessions != nil {
				active, err := sessions.SessionActive(ctx, parsed.SessionID)
				if err != nil {
					logger.ErrorContext(ctx, "failed to check session",
						"error", err,
						"request_id", requestcontext.RequestID(ctx),
					)
					httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{
						Error:       "internal_error",
						Description: "Failed to validate session",
					})
					return
				}
				if !active {
					rj.reject(w, r, "session_ended", msgSessionMissing, nil)
					return
				}
			}

			ctx = requestcontext.WithUserID(ctx, parsed.UserID)
			ctx = requestcontext.WithSessionID(ctx, parsed.SessionID)
			ctx = requestcontext.WithEmail(ctx, claims.Email)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
