package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"partnerdash/internal/guard"
	"partnerdash/internal/invitation/models"
	id "partnerdash/pkg/domain"
	"partnerdash/pkg/platform/httputil"
	"partnerdash/pkg/requestcontext"
)

type Service interface {
	Invite(ctx context.Context, caller id.UserID, email, role string) (*models.InviteResult, error)
	Accept(ctx context.Context, token, userID string) error
	Lookup(ctx context.Context, token string) (*models.Lookup, error)
}

type Handler struct {
	service Service
	admit   func(http.Handler) http.Handler
	logger  *slog.Logger
}

// New builds the handler. The invite action needs an authenticated admin the
// admin guard would admit; accepting happens before the invitee has a role.
func New(service Service, authenticate func(http.Handler) http.Handler, source guard.StateSource, logger *slog.Logger) *Handler {
	requireAdmin := guard.Require(source, guard.PathAdmin, true, logger)
	return &Handler{
		service: service,
		admit:   func(next http.Handler) http.Handler { return authenticate(requireAdmin(next)) },
		logger:  logger,
	}
}

// Register mounts the invitation endpoints on a router without auth middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/functions/invite", h.HandleInvitation)
	r.Post("/rpc/invitation", h.HandleLookup)
}

func (h *Handler) HandleInvitation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[InvitationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if req.Action == actionAccept {
		h.accept(w, r, req)
		return
	}
	h.admit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.invite(w, r, req)
	})).ServeHTTP(w, r)
}

func (h *Handler) invite(w http.ResponseWriter, r *http.Request, req *InvitationRequest) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequireUserID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Invite(ctx, caller, req.Email, req.Role)
	if err != nil {
		h.logger.WarnContext(ctx, "invite failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toInviteResponse(result))
}

func (h *Handler) accept(w http.ResponseWriter, r *http.Request, req *InvitationRequest) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if err := h.service.Accept(ctx, req.Token, req.UserID); err != nil {
		h.logger.WarnContext(ctx, "accept invitation failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &AcceptResponse{Success: true})
}

func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LookupRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	lookup, err := h.service.Lookup(ctx, req.Token)
	if err != nil {
		h.logger.ErrorContext(ctx, "invitation lookup failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toLookupResponse(lookup))
}
