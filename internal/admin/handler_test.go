package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partnerdash/internal/admin/types"
	"partnerdash/internal/credentials"
	credstore "partnerdash/internal/credentials/store"
	id "partnerdash/pkg/domain"
	"partnerdash/pkg/requestcontext"
)

func newTestRouter(t *testing.T, caller id.UserID) (*chi.Mux, *credstore.InMemoryStore) {
	t.Helper()
	store := credstore.NewInMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(NewService(store, nil, logger), logger)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(requestcontext.WithUserID(r.Context(), caller)))
		})
	})
	h.Register(r)
	return r, store
}

func post(t *testing.T, r http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, "/functions/admin-users", &buf)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleAction(t *testing.T) {
	adminID := id.NewUserID()
	r, store := newTestRouter(t, adminID)
	ctx := context.Background()
	require.NoError(t, store.CreateAccount(ctx, &credentials.Account{ID: adminID, Email: "boss@example.com"}))
	require.NoError(t, store.InsertRole(ctx, &credentials.RoleAssignment{UserID: adminID, Role: credentials.RoleAdmin, CreatedAt: time.Now()}))

	t.Run("list", func(t *testing.T) {
		w := post(t, r, map[string]string{"action": "list"})
		require.Equal(t, http.StatusOK, w.Code)
		var rows []types.UserRow
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, "boss@example.com", rows[0].Email)
	})

	t.Run("delete self", func(t *testing.T) {
		w := post(t, r, map[string]string{"action": "delete", "userId": adminID.String()})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), msgDeleteSelf)
	})

	t.Run("unknown action", func(t *testing.T) {
		w := post(t, r, map[string]string{"action": "purge"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Unknown action")
	})

	t.Run("stats", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		var stats types.Stats
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		assert.Equal(t, 1, stats.Admins)
	})
}

func TestHandleActionForbidden(t *testing.T) {
	r, _ := newTestRouter(t, id.NewUserID())
	w := post(t, r, map[string]string{"action": "list"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
