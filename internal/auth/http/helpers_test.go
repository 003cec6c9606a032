package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/arolux/auth-service/internal/auth/service"
	"github.com/arolux/auth-service/internal/auth/store"
	"github.com/arolux/auth-service/internal/auth/store/drivers/sqlite"
	"github.com/arolux/auth-service/pkg/cryptox"
	"github.com/arolux/auth-service/pkg/httpx"
	"github.com/arolux/auth-service/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

// captureMailer records the last token handed to each email flow. Handlers
// run on server goroutines, so access is locked.
type captureMailer struct {
	mu           sync.Mutex
	verifyToken  string
	recoverToken string
}

func (m *captureMailer) SendEmailVerification(ctx context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifyToken = token
	return nil
}

func (m *captureMailer) SendPasswordRecovery(ctx context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recoverToken = token
	return nil
}

func (m *captureMailer) lastVerifyToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.verifyToken
}

func (m *captureMailer) lastRecoverToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recoverToken
}

// captureSMS records the last code sent.
type captureSMS struct {
	mu   sync.Mutex
	code string
}

func (s *captureSMS) SendVerificationCode(ctx context.Context, countryCode, phoneNumber, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.code = code
	return nil
}

func (s *captureSMS) lastCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code
}

type testServer struct {
	srv    *httptest.Server
	store  store.Store
	mailer *captureMailer
	sms    *captureSMS
	admins *service.AdminService

	// ipSeq hands every request its own client IP so the per-IP limits
	// never interfere with functional tests.
	ipSeq atomic.Uint64
}

func newTestServer(t *testing.T, decryptor *cryptox.BodyDecryptor) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec, err := jwtx.NewCodec(jwtx.CodecConfig{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	audit := service.NewAuditService(st, logger, 64)
	t.Cleanup(audit.Close)

	mailer := &captureMailer{}
	sms := &captureSMS{}
	otp := &service.OTPService{
		Store:  st,
		Config: &service.ConfigService{Store: st},
		Mailer: mailer,
		SMS:    sms,
	}
	users := &service.UserService{Store: st, Codec: codec, OTP: otp, Audit: audit}
	admins := &service.AdminService{Store: st, Codec: codec, Audit: audit}

	r := NewRouter(codec, st, decryptor, "test", logger)
	r.UserService = users
	r.AdminService = admins
	r.OTPService = otp
	r.AuditService = audit
	r.ApplyRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, store: st, mailer: mailer, sms: sms, admins: admins}
}

// do issues a request and decodes the envelope. An empty token leaves the
// Authorization header unset; body may be nil.
func (ts *testServer) do(t *testing.T, method, path string, body any, token string) (int, httpx.Envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	n := ts.ipSeq.Add(1)
	req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.%d.%d.%d", n>>16&0xff, n>>8&0xff, n&0xff))

	res, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var env httpx.Envelope
	require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	return res.StatusCode, env
}

// dataMap re-shapes the envelope's data field into a map for assertions.
func dataMap(t *testing.T, env httpx.Envelope) map[string]any {
	t.Helper()
	m, ok := env.Data.(map[string]any)
	require.True(t, ok, "data is not an object: %#v", env.Data)
	return m
}

func dataString(t *testing.T, env httpx.Envelope, key string) string {
	t.Helper()
	v, ok := dataMap(t, env)[key].(string)
	require.True(t, ok, "data[%q] is not a string", key)
	return v
}

// signupUser registers an email account and returns the access token,
// refresh token and user id.
func (ts *testServer) signupUser(t *testing.T, email string) (access, refresh, id string) {
	t.Helper()

	code, env := ts.do(t, http.MethodPost, "/api/v1/user/signup", map[string]any{
		"firstName": "Avery",
		"lastName":  "Stone",
		"email":     email,
		"password":  "Sup3r$ecret",
	}, "")
	require.Equal(t, http.StatusCreated, code, env.Message)

	return dataString(t, env, "accessToken"),
		dataString(t, env, "refreshToken"),
		dataMap(t, env)["user"].(map[string]any)["_id"].(string)
}

// seedAdmin creates the root super-admin and logs in, returning the access
// token and admin id.
func (ts *testServer) seedAdmin(t *testing.T) (access, id string) {
	t.Helper()

	require.NoError(t, ts.admins.SeedRootAdmin(context.Background(), "root@example.com", "R00t$ecret"))

	code, env := ts.do(t, http.MethodPost, "/api/v1/admin/login", map[string]any{
		"email":    "root@example.com",
		"password": "R00t$ecret",
	}, "")
	require.Equal(t, http.StatusOK, code, env.Message)

	return dataString(t, env, "accessToken"),
		dataMap(t, env)["admin"].(map[string]any)["_id"].(string)
}
