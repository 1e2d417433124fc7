package fanout

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

// DispatchKind classifies an email delivery failure.
type DispatchKind string

const (
	// DispatchAuth means the transport rejected our credentials; retrying
	// cannot help.
	DispatchAuth DispatchKind = "auth"
	// DispatchConnection means a network-level failure, treated as retryable.
	DispatchConnection DispatchKind = "connection"
	// DispatchUnknown is anything else, retried with the generic policy.
	DispatchUnknown DispatchKind = "unknown"
)

// DispatchError wraps a transport failure with its classification.
type DispatchError struct {
	Kind DispatchKind
	Err  error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("email dispatch failed (%s): %v", e.Kind, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

func classifyDispatchError(err error) *DispatchError {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "535") || strings.Contains(msg, "auth") {
		return &DispatchError{Kind: DispatchAuth, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) || strings.Contains(msg, "connection") || strings.Contains(msg, "dial") {
		return &DispatchError{Kind: DispatchConnection, Err: err}
	}
	return &DispatchError{Kind: DispatchUnknown, Err: err}
}

// Mailer is the outbound email transport used by the orchestrator.
type Mailer interface {
	// Verify checks transport connectivity once per dispatch batch. A failure
	// here is a configuration problem, fatal for the whole batch.
	Verify(ctx context.Context) error
	// Send delivers one message with bounded retry and returns a message id.
	Send(ctx context.Context, to, subject, text, html string) (string, error)
}

// SMTPConfig configures the SMTP mailer. Constructed once at startup and
// injected; there is no ambient global client.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	MaxAttempts uint64
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// SMTPMailer sends mail over SMTP via go-mail with exponential-backoff retry.
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer creates an SMTPMailer, applying the default retry policy
// (3 attempts, delay doubling from 500ms, capped at 8s) where unset.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay == 0 {
		cfg.BaseDelay = 500 * time.Millisecond
	}
	if cfg.MaxDelay == 0 {
		cfg.MaxDelay = 8 * time.Second
	}
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) client() (*mail.Client, error) {
	return mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
}

func (m *SMTPMailer) Verify(ctx context.Context) error {
	c, err := m.client()
	if err != nil {
		return classifyDispatchError(err)
	}
	if err := c.DialWithContext(ctx); err != nil {
		return classifyDispatchError(err)
	}
	return c.Close()
}

func (m *SMTPMailer) retryPolicy(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = m.cfg.BaseDelay
	bo.Multiplier = 2
	bo.MaxInterval = m.cfg.MaxDelay
	bo.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(bo, m.cfg.MaxAttempts-1), ctx)
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, text, html string) (string, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return "", &DispatchError{Kind: DispatchUnknown, Err: err}
	}
	if err := msg.To(to); err != nil {
		return "", &DispatchError{Kind: DispatchUnknown, Err: err}
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, text)
	if html != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, html)
	}

	operation := func() error {
		c, err := m.client()
		if err != nil {
			return backoff.Permanent(classifyDispatchError(err))
		}
		if err := c.DialAndSendWithContext(ctx, msg); err != nil {
			derr := classifyDispatchError(err)
			if derr.Kind == DispatchAuth {
				return backoff.Permanent(derr)
			}
			return derr
		}
		return nil
	}

	if err := backoff.Retry(operation, m.retryPolicy(ctx)); err != nil {
		var derr *DispatchError
		if errors.As(err, &derr) {
			return "", derr
		}
		return "", &DispatchError{Kind: DispatchUnknown, Err: err}
	}
	return uuid.NewString(), nil
}
