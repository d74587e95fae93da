// Package mail delivers verification codes and password-reset links.
// Flows treat delivery as best-effort: a failed send is logged by the
// caller and never rolls back the surrounding transaction.
package mail

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"time"
)

// Sender is the capability the auth flows depend on.
type Sender interface {
	SendVerificationCode(ctx context.Context, to, code string) error
	SendPasswordResetLink(ctx context.Context, to, resetURL string) error
}

const maxSendAttempts = 3
const sendRetryDelay = time.Second

// SMTPSender sends over plain SMTP with PLAIN auth. Transient network
// failures are retried a fixed number of times with a fixed delay.
type SMTPSender struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

func NewSMTPSender(host, port, user, pass, from string) *SMTPSender {
	if from == "" {
		from = user
	}
	return &SMTPSender{Host: host, Port: port, User: user, Pass: pass, From: from}
}

func (s *SMTPSender) SendVerificationCode(ctx context.Context, to, code string) error {
	body := fmt.Sprintf(`<h2>Welcome!</h2>
<p>Please verify your email address by entering this code:</p>
<h3 style="font-size: 24px; letter-spacing: 2px;">%s</h3>
<p>This code will expire in 10 minutes.</p>
<p>If you didn't create an account, please ignore this email.</p>`, code)
	return s.send(ctx, to, "Verify your email", body)
}

func (s *SMTPSender) SendPasswordResetLink(ctx context.Context, to, resetURL string) error {
	body := fmt.Sprintf(`<h2>Password Reset Request</h2>
<p>We received a request to reset your password. Click the link below to reset it:</p>
<a href="%s">Reset Password</a>
<p>If you didn't request this, please ignore this email.</p>`, resetURL)
	return s.send(ctx, to, "Password Reset Request", body)
}

func (s *SMTPSender) send(ctx context.Context, to, subject, htmlBody string) error {
	if s.Host == "" {
		return fmt.Errorf("smtp not configured")
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s\r\n",
		s.From, to, subject, htmlBody)

	addr := s.Host + ":" + s.Port
	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Pass, s.Host)
	}

	var err error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err = smtp.SendMail(addr, auth, s.From, []string{to}, []byte(msg))
		if err == nil {
			return nil
		}
		log.Printf("mail: send attempt %d/%d to=%s failed: %v", attempt, maxSendAttempts, to, err)
		if attempt < maxSendAttempts {
			select {
			case <-time.After(sendRetryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return err
}
