package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenKindEnforcement(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	adminToken, _ := ts.seedAdmin(t)
	userToken, _, _ := ts.signupUser(t, "indy@example.com")

	t.Run("admin token rejected on user routes", func(t *testing.T) {
		code, env := ts.do(t, http.MethodGet, "/api/v1/user/profile", nil, adminToken)
		require.Equal(t, http.StatusUnauthorized, code)
		require.Equal(t, "Authentication required", env.Message)
	})

	t.Run("user token rejected on admin routes", func(t *testing.T) {
		code, env := ts.do(t, http.MethodGet, "/api/v1/admin/profile", nil, userToken)
		require.Equal(t, http.StatusUnauthorized, code)
		require.Equal(t, "Authentication required", env.Message)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		code, _ := ts.do(t, http.MethodGet, "/api/v1/user/profile", nil, "Bearer not.a.jwt")
		require.Equal(t, http.StatusUnauthorized, code)
	})
}

func TestSessionEndpoint(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	adminToken, adminID := ts.seedAdmin(t)
	userToken, _, userID := ts.signupUser(t, "jules@example.com")

	t.Run("user session", func(t *testing.T) {
		code, env := ts.do(t, http.MethodGet, "/api/v1/session", nil, userToken)
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, userID, dataMap(t, env)["_id"])
		require.Equal(t, "user", dataMap(t, env)["kind"])
		require.Equal(t, "user", dataMap(t, env)["loginAs"])
	})

	t.Run("admin session", func(t *testing.T) {
		code, env := ts.do(t, http.MethodGet, "/api/v1/session", nil, adminToken)
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, adminID, dataMap(t, env)["_id"])
		require.Equal(t, "admin", dataMap(t, env)["kind"])
		require.Equal(t, "super-admin", dataMap(t, env)["adminType"])
	})

	t.Run("no token", func(t *testing.T) {
		code, _ := ts.do(t, http.MethodGet, "/api/v1/session", nil, "")
		require.Equal(t, http.StatusUnauthorized, code)
	})
}

func TestOptionalAuthRouteIsPublic(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	// No Authorization header at all; the route still runs and fails on the
	// token value, not on authentication.
	code, env := ts.do(t, http.MethodPost, "/api/v1/user/verify-email", map[string]any{
		"token": "nosuchtokennosuchtokennosuchtoke",
	}, "")
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "Invalid or expired token", env.Message)
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	for _, path := range []string{"/livez", "/readyz"} {
		res, err := ts.srv.Client().Get(ts.srv.URL + path)
		require.NoError(t, err)

		var health struct {
			Status  string `json:"status"`
			Version string `json:"version"`
		}
		require.NoError(t, json.NewDecoder(res.Body).Decode(&health))
		res.Body.Close()

		require.Equal(t, http.StatusOK, res.StatusCode, path)
		require.Equal(t, "ok", health.Status, path)
		require.Equal(t, "test", health.Version, path)
	}
}

func TestCredentialRateLimit(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	raw, err := json.Marshal(map[string]any{"email": "limit@example.com", "password": "Wr0ng$ecret"})
	require.NoError(t, err)

	// All attempts from one address; the strict profile allows a burst of 5.
	var last int
	for i := 0; i < 8; i++ {
		req, err := http.NewRequest(http.MethodPost, ts.srv.URL+"/api/v1/user/login", bytes.NewReader(raw))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", "198.51.100.7")

		res, err := ts.srv.Client().Do(req)
		require.NoError(t, err)
		res.Body.Close()
		last = res.StatusCode
	}
	require.Equal(t, http.StatusTooManyRequests, last)
}
