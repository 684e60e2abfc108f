package authstate

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"partnerdash/internal/guard"
	"partnerdash/pkg/platform/httputil"
	"partnerdash/pkg/requestcontext"
)

// RoleResponse carries a null role for users pending approval.
type RoleResponse struct {
	Role *string `json:"role"`
}

type StateResponse struct {
	HasSession    bool          `json:"has_session"`
	IsApproved    bool          `json:"is_approved"`
	IsAdmin       bool          `json:"is_admin"`
	MFARequired   bool          `json:"mfa_required"`
	MFAConfigured bool          `json:"mfa_configured"`
	MFAVerified   bool          `json:"mfa_verified"`
	Decision      guard.Outcome `json:"decision"`
	Redirect      string        `json:"redirect,omitempty"`
}

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/auth/role", h.HandleRole)
	r.Get("/auth/state", h.HandleState)
}

func (h *Handler) HandleRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, err := httputil.RequireUserID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	role, err := h.service.Role(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "load role failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	resp := &RoleResponse{}
	if role != nil {
		name := role.Role.String()
		resp.Role = &name
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleState reports the caller's state and the guard decision for the
// path query parameter. Paths under /admin use the admin guard.
func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	path := r.URL.Query().Get("path")
	if path == "" {
		path = guard.PathHome
	}

	state, err := h.service.Current(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "derive auth state failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	decision := guard.Decide(state, path)
	if path == guard.PathAdmin || strings.HasPrefix(path, guard.PathAdmin+"/") {
		decision = guard.DecideAdmin(state, path)
	}

	httputil.WriteJSON(w, http.StatusOK, &StateResponse{
		HasSession:    state.HasSession,
		IsApproved:    state.IsApproved,
		IsAdmin:       state.IsAdmin,
		MFARequired:   state.MFARequired,
		MFAConfigured: state.MFAConfigured,
		MFAVerified:   state.MFAVerified,
		Decision:      decision.Outcome,
		Redirect:      decision.Redirect,
	})
}
