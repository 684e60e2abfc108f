package mailer

//go:generate mockgen -source=mailer.go -destination=mocks/mocks.go -package=mocks Sender

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partnerdash/internal/platform/config"
)

func testConfig(url string) config.MailerConfig {
	return config.MailerConfig{
		APIURL:    url,
		APIKey:    "mt-key",
		FromEmail: "noreply@umbroll.hu",
		FromName:  "Umbroll",
		Timeout:   time.Second,
	}
}

func TestSendPostsJSON(t *testing.T) {
	var got sendRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := New(testConfig(srv.URL))
	require.True(t, sender.Configured())

	msg, err := MFACodeMessage("anna@example.com", "042137", 10*time.Minute)
	require.NoError(t, err)
	require.NoError(t, sender.Send(context.Background(), msg))

	assert.Equal(t, "Bearer mt-key", auth)
	assert.Equal(t, "noreply@umbroll.hu", got.From.Email)
	assert.Equal(t, "Umbroll", got.From.Name)
	require.Len(t, got.To, 1)
	assert.Equal(t, "anna@example.com", got.To[0].Email)
	assert.Equal(t, subjectMFACode, got.Subject)
	assert.Contains(t, got.Text, "042137")
	assert.Contains(t, got.Text, "10 percig")
	assert.Contains(t, got.HTML, "042137")
}

func TestSendProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid api token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := New(testConfig(srv.URL)).Send(context.Background(), Message{To: "a@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "invalid api token")
}

func TestSendNotConfigured(t *testing.T) {
	cfg := testConfig("http://unused.invalid")
	cfg.APIKey = ""
	sender := New(cfg)

	assert.False(t, sender.Configured())
	assert.ErrorIs(t, sender.Send(context.Background(), Message{To: "a@example.com"}), ErrNotConfigured)
}

func TestInvitationMessage(t *testing.T) {
	link := InvitationLink("https://dash.example.com/", "tok-1")
	assert.Equal(t, "https://dash.example.com/accept-invite?token=tok-1", link)

	msg, err := InvitationMessage("bela@example.com", link, "admin", 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, subjectInvitation, msg.Subject)
	assert.Contains(t, msg.Text, link)
	assert.Contains(t, msg.Text, "7 napig")
	assert.Contains(t, msg.HTML, "<strong>admin</strong>")
	assert.True(t, strings.Contains(msg.HTML, `href="https://dash.example.com/accept-invite?token=tok-1"`))
}

func TestInvitationMessageEscapesRole(t *testing.T) {
	msg, err := InvitationMessage("x@example.com", "https://a/b", "<script>", time.Hour*24)
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>")
}
