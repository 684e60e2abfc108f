package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"partnerdash/pkg/requestcontext"
)

func TestMiddlewareHandler(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		trusted    string
		expectedIP string
	}{
		{
			name:       "ignores forwarded header from untrusted peer",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1"},
			remoteAddr: "192.168.1.1:12345",
			expectedIP: "192.168.1.1",
		},
		{
			name:       "uses first forwarded address from trusted proxy",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.2"},
			remoteAddr: "10.0.0.1:443",
			trusted:    "10.0.0.0/8",
			expectedIP: "203.0.113.1",
		},
		{
			name:       "falls back to X-Real-IP from trusted proxy",
			headers:    map[string]string{"X-Real-IP": "198.51.100.7"},
			remoteAddr: "10.0.0.1:443",
			trusted:    "10.0.0.0/8",
			expectedIP: "198.51.100.7",
		},
		{
			name:       "invalid forwarded address keeps peer",
			headers:    map[string]string{"X-Forwarded-For": "not-an-ip"},
			remoteAddr: "10.0.0.1:443",
			trusted:    "10.0.0.0/8",
			expectedIP: "10.0.0.1",
		},
		{
			name:       "bracketed ipv6 peer",
			remoteAddr: "[2001:db8::1]:8080",
			expectedIP: "2001:db8::1",
		},
		{
			name:       "empty remote addr",
			remoteAddr: "",
			expectedIP: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotIP, gotUA string
			mw := NewMiddleware(ParseTrustedProxies(tt.trusted))
			handler := mw.Handler(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				gotIP = requestcontext.ClientIP(r.Context())
				gotUA = requestcontext.UserAgent(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			req.Header.Set("User-Agent", "Mozilla/5.0")
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.expectedIP, gotIP)
			assert.Equal(t, "Mozilla/5.0", gotUA)
		})
	}
}

func TestParseTrustedProxiesSkipsInvalid(t *testing.T) {
	prefixes := ParseTrustedProxies("10.0.0.0/8, bogus, 192.168.0.0/16")
	assert.Len(t, prefixes, 2)
}
