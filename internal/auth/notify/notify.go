// Package notify abstracts the outbound channels the auth flows push
// verification codes and recovery links through. Real deliveries go through
// the platform's messaging workers; this service only needs the interfaces
// and a logging implementation for local development.
package notify

import (
	"context"
	"log/slog"
)

// Mailer sends transactional email.
type Mailer interface {
	// SendEmailVerification delivers the clickable verification token.
	SendEmailVerification(ctx context.Context, email, token string) error

	// SendPasswordRecovery delivers the password reset token.
	SendPasswordRecovery(ctx context.Context, email, token string) error
}

// SMSSender delivers one-time codes to phones.
type SMSSender interface {
	SendVerificationCode(ctx context.Context, countryCode, phoneNumber, code string) error
}

// LogMailer writes would-be emails to the log. Used in dev and tests.
type LogMailer struct {
	Log *slog.Logger
}

func (m *LogMailer) SendEmailVerification(ctx context.Context, email, token string) error {
	m.logger().InfoContext(ctx, "email verification issued", "email", email, "token", token)
	return nil
}

func (m *LogMailer) SendPasswordRecovery(ctx context.Context, email, token string) error {
	m.logger().InfoContext(ctx, "password recovery issued", "email", email, "token", token)
	return nil
}

func (m *LogMailer) logger() *slog.Logger {
	if m.Log != nil {
		return m.Log
	}
	return slog.Default()
}

// LogSMSSender writes would-be SMS messages to the log.
type LogSMSSender struct {
	Log *slog.Logger
}

func (s *LogSMSSender) SendVerificationCode(ctx context.Context, countryCode, phoneNumber, code string) error {
	log := s.Log
	if log == nil {
		log = slog.Default()
	}
	log.InfoContext(ctx, "sms verification code issued",
		"country_code", countryCode,
		"phone_number", phoneNumber,
		"code", code,
	)
	return nil
}
