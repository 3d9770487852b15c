// Copyright (c) 2026 EduSeek. All rights reserved.
// Author: quang.leminh.dev@gmail.com

// Package notify bridges the auth core to the external email-notification
// service.
//
// Actual delivery (templates, SMTP, retries) is owned by that service; this
// package only satisfies the [auth.Mailer] contract. The slog-backed
// implementation below is what runs in development and in environments where
// the notification service is not wired up.
package notify

import (
	"context"
	"log/slog"
)

// LogMailer writes outbound notifications to the structured log instead of
// delivering them.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer constructs a LogMailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendPasswordReset logs the reset notification.
// The token itself is never logged — only its presence.
func (mailer *LogMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	mailer.logger.InfoContext(ctx, "password_reset_notification",
		slog.String("email", email),
		slog.Int("token_length", len(token)),
	)
	return nil
}
