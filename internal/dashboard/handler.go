package dashboard

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	id "partnerdash/pkg/domain"
	"partnerdash/pkg/platform/httputil"
	"partnerdash/pkg/requestcontext"
)

type PartnersResponse struct {
	Partners  []Partner `json:"partners"`
	FetchedAt time.Time `json:"fetched_at"`
	Stale     bool      `json:"stale"`
}

type Handler struct {
	cache  *Cache
	logger *slog.Logger
}

func NewHandler(cache *Cache, logger *slog.Logger) *Handler {
	return &Handler{cache: cache, logger: logger}
}

// Register mounts the partner endpoints. Callers must already be authenticated
// and pass the route guard.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/partners", h.HandleList)
	r.Post("/api/partners/refresh", h.HandleRefresh)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.cache.Get)
}

func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.cache.Refresh)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, load func(context.Context, id.UserID) (*Snapshot, error)) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, err := httputil.RequireUserID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	snap, err := load(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "partner report unavailable", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	partners := snap.Partners
	if partners == nil {
		partners = []Partner{}
	}
	httputil.WriteJSON(w, http.StatusOK, &PartnersResponse{
		Partners:  partners,
		FetchedAt: snap.FetchedAt,
		Stale:     snap.Stale,
	})
}
