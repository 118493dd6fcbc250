// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"codeberg.org/nodehub/nodehub/internal/config"
	"codeberg.org/nodehub/nodehub/internal/i18n"
	"codeberg.org/nodehub/nodehub/internal/models"
	"github.com/wneessen/go-mail"
)

// Mailer sends localized decision emails over SMTP.
type Mailer struct {
	cfg  *config.SMTPConfig
	send func(ctx context.Context, msg *mail.Msg) error
}

// NewMailer creates a Mailer for cfg.
func NewMailer(cfg *config.SMTPConfig) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	m := &Mailer{cfg: cfg}
	m.send = m.dialAndSend
	return m, nil
}

// New returns a Mailer when cfg is complete and a Log notifier otherwise.
func New(cfg *config.SMTPConfig) Notifier {
	if !cfg.Enabled() {
		return Log{}
	}
	m, err := NewMailer(cfg)
	if err != nil {
		slog.Warn("mailer_disabled", "error", err)
		return Log{}
	}
	return m
}

// NodeDecision emails the contact of a decided node request.
func (m *Mailer) NodeDecision(ctx context.Context, req *models.NodeRequest, reason string) Result {
	ctx = i18n.WithLanguage(ctx, m.cfg.Language)
	data := map[string]any{
		"Name":        req.Name,
		"ContactName": fallback(req.ContactName, req.ContactEmail),
		"NodeType":    string(req.NodeType),
		"TrackingID":  req.TrackingID,
		"Endpoint":    req.Endpoint,
		"Reason":      reasonText(ctx, reason),
	}

	var key string
	switch req.Status {
	case models.StatusApproved:
		key = "node_approved"
	case models.StatusRejected:
		key = "node_rejected"
	default:
		return Result{Err: fmt.Errorf("no notification for node status %q", req.Status)}
	}

	return m.deliver(ctx, req.TrackingID, req.ContactEmail, key, data)
}

// TokenDecision emails the requester of a decided token request.
func (m *Mailer) TokenDecision(ctx context.Context, req *models.TokenRequest, reason string) Result {
	ctx = i18n.WithLanguage(ctx, m.cfg.Language)
	data := map[string]any{
		"Name":       req.FullName(),
		"TrackingID": req.TrackingID,
		"Wallet":     req.WalletAddress,
		"Amount":     req.RequestedAmount,
		"Reason":     reasonText(ctx, reason),
	}

	var key string
	switch req.Status {
	case models.StatusApproved:
		key = "token_approved"
	case models.StatusRejected:
		key = "token_rejected"
	case models.StatusTransferred:
		key = "token_transferred"
		data["Amount"] = req.TransferredAmount
	default:
		return Result{Err: fmt.Errorf("no notification for token status %q", req.Status)}
	}

	return m.deliver(ctx, req.TrackingID, req.Email, key, data)
}

func (m *Mailer) deliver(ctx context.Context, trackingID, to, key string, data map[string]any) Result {
	if to == "" {
		slog.Info("notification_skipped", "tracking_id", trackingID, "kind", key, "reason", "no recipient")
		return Result{Err: ErrNoRecipient}
	}

	subject := i18n.TData(ctx, key+"_subject", data)
	body := i18n.TData(ctx, key+"_body", data)

	msg, err := m.message(to, subject, body)
	if err == nil {
		err = m.send(ctx, msg)
	}
	if err != nil {
		slog.Warn("notification_failed", "tracking_id", trackingID, "kind", key, "error", err)
		return Result{Err: err}
	}

	slog.Info("notification_sent", "tracking_id", trackingID, "kind", key)
	return Result{Sent: true}
}

func (m *Mailer) message(to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if err := msg.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
		return nil, fmt.Errorf("setting from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

// dialAndSend delivers msg via SMTP using go-mail.
func (m *Mailer) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
	}

	switch m.cfg.TLS {
	case "tls":
		opts = append(opts, mail.WithSSL(), mail.WithTLSPolicy(mail.TLSMandatory))
	case "none":
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	if m.cfg.Username != "" && m.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}

func reasonText(ctx context.Context, reason string) string {
	if strings.TrimSpace(reason) == "" {
		return i18n.T(ctx, "no_reason_given")
	}
	return reason
}

func fallback(value, alt string) string {
	if value != "" {
		return value
	}
	return alt
}
