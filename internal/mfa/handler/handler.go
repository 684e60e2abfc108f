package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"partnerdash/internal/mfa/models"
	id "partnerdash/pkg/domain"
	"partnerdash/pkg/platform/httputil"
	"partnerdash/pkg/requestcontext"
)

type Service interface {
	SendCode(ctx context.Context, caller id.UserID, targetUserID string) error
	Verify(ctx context.Context, caller id.UserID, targetUserID, code, mfaType string) (*models.VerifyResult, error)
	Info(ctx context.Context, caller id.UserID) (*models.Info, error)
	BeginTOTPSetup(ctx context.Context, caller id.UserID) (*models.TOTPSetup, error)
	BeginEmailSetup(ctx context.Context, caller id.UserID) error
	ConfirmSetup(ctx context.Context, caller id.UserID, code string) (*models.VerifyResult, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the MFA endpoints. All of them require an authenticated caller.
func (h *Handler) Register(r chi.Router) {
	r.Post("/functions/send-code", h.HandleSendCode)
	r.Post("/functions/verify-code", h.HandleVerifyCode)
	r.Get("/rpc/mfa-info", h.HandleInfo)
	r.Post("/mfa/setup/totp", h.HandleSetupTOTP)
	r.Post("/mfa/setup/email", h.HandleSetupEmail)
	r.Post("/mfa/setup/confirm", h.HandleConfirmSetup)
}

func (h *Handler) HandleSendCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequireUserID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[SendCodeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.SendCode(ctx, caller, req.UserID); err != nil {
		h.logger.WarnContext(ctx, "send code failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &SendCodeResponse{Success: true})
}

func (h *Handler) HandleVerifyCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequireUserID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[VerifyCodeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Verify(ctx, caller, req.UserID, req.Code, req.MFAType)
	if err != nil {
		h.logger.WarnContext(ctx, "verify code failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toVerifyCodeResponse(result))
}

func (h *Handler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequireUserID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	info, err := h.service.Info(ctx, caller)
	if err != nil {
		h.logger.ErrorContext(ctx, "load mfa info failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toInfoResponse(info))
}

func (h *Handler) HandleSetupTOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequireUserID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	setup, err := h.service.BeginTOTPSetup(ctx, caller)
	if err != nil {
		h.logger.WarnContext(ctx, "totp setup failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &TOTPSetupResponse{Secret: setup.Secret, OTPAuthURI: setup.OTPAuthURI})
}

func (h *Handler) HandleSetupEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequireUserID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.BeginEmailSetup(ctx, caller); err != nil {
		h.logger.WarnContext(ctx, "email setup failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &SendCodeResponse{Success: true})
}

func (h *Handler) HandleConfirmSetup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequireUserID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[ConfirmSetupRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.ConfirmSetup(ctx, caller, req.Code)
	if err != nil {
		h.logger.WarnContext(ctx, "confirm setup failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toVerifyCodeResponse(result))
}
