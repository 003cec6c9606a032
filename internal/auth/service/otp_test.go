package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPhoneCodePendingFlow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.otp.RequestPhoneCode(ctx, "+61", "400000001"))
	require.Equal(t, 1, env.sms.sent)
	firstCode := env.sms.code
	require.Len(t, firstCode, 4)

	// Wrong code is rejected.
	_, err := env.otp.CheckPhoneCode(ctx, "+61", "400000001", "0000")
	if firstCode == "0000" {
		t.Skip("generated code happened to match the deliberately wrong guess")
	}
	require.ErrorIs(t, err, ErrCodeMismatch)

	// Unknown phone is indistinguishable from a wrong code.
	_, err = env.otp.CheckPhoneCode(ctx, "+61", "499999999", firstCode)
	require.ErrorIs(t, err, ErrCodeMismatch)

	v, err := env.otp.CheckPhoneCode(ctx, "+61", "400000001", firstCode)
	require.NoError(t, err)
	require.True(t, v.IsNewUser)
}

func TestPhoneCodeReRequestInvalidatesOld(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.otp.RequestPhoneCode(ctx, "+61", "400000002"))
	firstCode := env.sms.code

	env.clock.Advance(time.Minute)
	require.NoError(t, env.otp.RequestPhoneCode(ctx, "+61", "400000002"))
	secondCode := env.sms.code
	require.Equal(t, 2, env.sms.sent)

	if firstCode != secondCode {
		_, err := env.otp.CheckPhoneCode(ctx, "+61", "400000002", firstCode)
		require.ErrorIs(t, err, ErrCodeMismatch)
	}

	v, err := env.otp.CheckPhoneCode(ctx, "+61", "400000002", secondCode)
	require.NoError(t, err)
	require.True(t, v.IsNewUser)
}

func TestPhoneCodeExpires(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.otp.RequestPhoneCode(ctx, "+61", "400000003"))
	code := env.sms.code

	// Seeded configuration gives phone codes five minutes.
	env.clock.Advance(6 * time.Minute)
	_, err := env.otp.CheckPhoneCode(ctx, "+61", "400000003", code)
	require.ErrorIs(t, err, ErrCodeExpired)
}

func TestEmailVerificationCooldownAndConfirm(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	sess, err := env.users.SignupEmail(ctx, SignupParams{
		FirstName: "Ada", LastName: "L", Email: "ada@example.com", Password: "Str0ng!pass",
	})
	require.NoError(t, err)
	// Signup already fired the first verification email.
	require.Equal(t, 1, env.mailer.verifyCount)

	// Immediate re-request trips the 60s cooldown.
	err = env.otp.RequestEmailVerification(ctx, sess.User.ID)
	require.ErrorIs(t, err, ErrTooSoon)

	env.clock.Advance(61 * time.Second)
	require.NoError(t, env.otp.RequestEmailVerification(ctx, sess.User.ID))
	require.Equal(t, 2, env.mailer.verifyCount)
	token := env.mailer.verifyToken

	user, err := env.otp.ConfirmEmail(ctx, token)
	require.NoError(t, err)
	require.True(t, user.IsEmailVerified)

	// One-shot token.
	_, err = env.otp.ConfirmEmail(ctx, token)
	require.ErrorIs(t, err, ErrInvalidToken)

	// Verified accounts can't re-request.
	env.clock.Advance(2 * time.Minute)
	err = env.otp.RequestEmailVerification(ctx, sess.User.ID)
	require.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestEmailVerificationReRequestInvalidatesOldToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	sess, err := env.users.SignupEmail(ctx, SignupParams{
		Email: "replace@example.com", Password: "Str0ng!pass",
	})
	require.NoError(t, err)
	oldToken := env.mailer.verifyToken

	env.clock.Advance(2 * time.Minute)
	require.NoError(t, env.otp.RequestEmailVerification(ctx, sess.User.ID))
	newToken := env.mailer.verifyToken
	require.NotEqual(t, oldToken, newToken)

	_, err = env.otp.ConfirmEmail(ctx, oldToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = env.otp.ConfirmEmail(ctx, newToken)
	require.NoError(t, err)
}

func TestPasswordRecoveryLifecycle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.SignupEmail(ctx, SignupParams{
		Email: "rec@example.com", Password: "Str0ng!pass",
	})
	require.NoError(t, err)

	// Unknown account.
	err = env.otp.RequestPasswordRecovery(ctx, "nobody@example.com")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, env.otp.RequestPasswordRecovery(ctx, "rec@example.com"))
	token := env.mailer.recoverToken

	// Cooldown applies here too.
	err = env.otp.RequestPasswordRecovery(ctx, "rec@example.com")
	require.ErrorIs(t, err, ErrTooSoon)

	// Weak replacement password is refused without touching the token.
	_, err = env.otp.RecoverPassword(ctx, token, "weak")
	require.ErrorIs(t, err, ErrWeakPassword)

	user, err := env.otp.RecoverPassword(ctx, token, "N3w!password")
	require.NoError(t, err)
	require.Equal(t, "rec@example.com", user.Email)

	// The token cleared on first use.
	_, err = env.otp.RecoverPassword(ctx, token, "An0ther!pass")
	require.ErrorIs(t, err, ErrInvalidToken)

	// New password works, old one doesn't.
	_, err = env.users.Login(ctx, "rec@example.com", "Str0ng!pass", "", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.users.Login(ctx, "rec@example.com", "N3w!password", "", "")
	require.NoError(t, err)
}

func TestRecoveryTokenExpires(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.SignupEmail(ctx, SignupParams{
		Email: "expire@example.com", Password: "Str0ng!pass",
	})
	require.NoError(t, err)

	require.NoError(t, env.otp.RequestPasswordRecovery(ctx, "expire@example.com"))
	token := env.mailer.recoverToken

	// Seeded expiry is 60 minutes.
	env.clock.Advance(61 * time.Minute)
	_, err = env.otp.RecoverPassword(ctx, token, "N3w!password")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTooSoon(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-30 * time.Second)

	require.True(t, tooSoon(&last, time.Minute, now))
	require.False(t, tooSoon(&last, 10*time.Second, now))
	require.False(t, tooSoon(nil, time.Minute, now))
	// Zero interval disables the cooldown entirely.
	require.False(t, tooSoon(&last, 0, now))
}
