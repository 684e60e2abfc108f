package admin

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	dErrors "partnerdash/pkg/domain-errors"
	"partnerdash/pkg/platform/httputil"
	"partnerdash/pkg/requestcontext"
	strutil "partnerdash/pkg/string"
)

// ActionRequest is the body of the admin-users endpoint. Which fields are
// read depends on Action.
type ActionRequest struct {
	Action string `json:"action"`
	UserID string `json:"userId,omitempty"`
	Role   string `json:"role,omitempty"`
	ID     string `json:"id,omitempty"`
}

func (r *ActionRequest) Sanitize() {
	if r == nil {
		return
	}
	strutil.TrimStrings(&r.Action, &r.UserID, &r.Role, &r.ID)
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// Handler handles user administration endpoints
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func New(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register registers admin routes. The router must already authenticate the caller.
func (h *Handler) Register(r chi.Router) {
	r.Post("/functions/admin-users", h.HandleAction)
	r.Get("/admin/stats", h.HandleGetStats)
}

// HandleAction dispatches on the action field.
func (h *Handler) HandleAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequireUserID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[ActionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	var (
		result any = &SuccessResponse{Success: true}
		opErr  error
	)
	switch req.Action {
	case "list":
		result, opErr = h.service.ListUsers(ctx, caller)
	case "delete":
		opErr = h.service.DeleteUser(ctx, caller, req.UserID)
	case "update":
		opErr = h.service.UpdateRole(ctx, caller, req.UserID, req.Role)
	case "listInvitations":
		result, opErr = h.service.ListInvitations(ctx, caller)
	case "deleteInvitation":
		opErr = h.service.DeleteInvitation(ctx, caller, req.ID)
	case "stats":
		result, opErr = h.service.GetStats(ctx, caller)
	default:
		opErr = dErrors.New(dErrors.CodeBadRequest, "Unknown action")
	}
	if opErr != nil {
		h.logger.WarnContext(ctx, "admin action failed",
			"action", req.Action,
			"error", opErr,
			"request_id", requestID,
		)
		httputil.WriteError(w, opErr)
		return
	}

	h.logger.InfoContext(ctx, "admin action completed",
		"action", req.Action,
		"request_id", requestID,
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleGetStats returns user base statistics
func (h *Handler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequireUserID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	stats, err := h.service.GetStats(ctx, caller)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get stats",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, stats)
}
