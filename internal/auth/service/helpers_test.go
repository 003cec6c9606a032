package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/arolux/auth-service/internal/auth/store"
	"github.com/arolux/auth-service/internal/auth/store/drivers/sqlite"
	"github.com/arolux/auth-service/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

// testClock is a movable clock shared by the services under test.
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// captureMailer records the last token handed to each email flow.
type captureMailer struct {
	verifyEmail  string
	verifyToken  string
	recoverEmail string
	recoverToken string
	verifyCount  int
	recoverCount int
}

func (m *captureMailer) SendEmailVerification(ctx context.Context, email, token string) error {
	m.verifyEmail, m.verifyToken = email, token
	m.verifyCount++
	return nil
}

func (m *captureMailer) SendPasswordRecovery(ctx context.Context, email, token string) error {
	m.recoverEmail, m.recoverToken = email, token
	m.recoverCount++
	return nil
}

// captureSMS records the last code sent.
type captureSMS struct {
	countryCode string
	phoneNumber string
	code        string
	sent        int
}

func (s *captureSMS) SendVerificationCode(ctx context.Context, countryCode, phoneNumber, code string) error {
	s.countryCode, s.phoneNumber, s.code = countryCode, phoneNumber, code
	s.sent++
	return nil
}

type testEnv struct {
	store  store.Store
	clock  *testClock
	mailer *captureMailer
	sms    *captureSMS
	audit  *AuditService
	otp    *OTPService
	users  *UserService
	admins *AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	clock := newTestClock()
	codec, err := jwtx.NewCodec(jwtx.CodecConfig{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
		Issuer:        "auth-service",
		Now:           clock.Now,
	})
	require.NoError(t, err)

	audit := NewAuditService(st, slog.Default(), 64)
	t.Cleanup(audit.Close)

	mailer := &captureMailer{}
	sms := &captureSMS{}

	otp := &OTPService{
		Store:  st,
		Config: &ConfigService{Store: st},
		Mailer: mailer,
		SMS:    sms,
		Now:    clock.Now,
	}

	return &testEnv{
		store:  st,
		clock:  clock,
		mailer: mailer,
		sms:    sms,
		audit:  audit,
		otp:    otp,
		users: &UserService{
			Store: st,
			Codec: codec,
			OTP:   otp,
			Audit: audit,
			Now:   clock.Now,
		},
		admins: &AdminService{
			Store: st,
			Codec: codec,
			Audit: audit,
			Now:   clock.Now,
		},
	}
}
