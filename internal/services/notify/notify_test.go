// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package notify_test

import (
	"context"
	"errors"
	"testing"

	"codeberg.org/nodehub/nodehub/internal/config"
	"codeberg.org/nodehub/nodehub/internal/models"
	"codeberg.org/nodehub/nodehub/internal/services/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func validSMTPConfig() *config.SMTPConfig {
	return &config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "testuser",
		Password: "testpass",
		From:     "noreply@example.com",
		FromName: "nodehub",
		TLS:      "starttls",
		Language: "en",
	}
}

type capture struct {
	msgs []*mail.Msg
	err  error
}

func (c *capture) send(_ context.Context, msg *mail.Msg) error {
	c.msgs = append(c.msgs, msg)
	return c.err
}

func newTestMailer(t *testing.T, cfg *config.SMTPConfig) (*notify.Mailer, *capture) {
	t.Helper()
	m, err := notify.NewMailer(cfg)
	require.NoError(t, err)
	c := &capture{}
	m.SetSender(c.send)
	return m, c
}

func subject(t *testing.T, msg *mail.Msg) string {
	t.Helper()
	values := msg.GetGenHeader(mail.HeaderSubject)
	require.Len(t, values, 1)
	return values[0]
}

func body(t *testing.T, msg *mail.Msg) string {
	t.Helper()
	parts := msg.GetParts()
	require.NotEmpty(t, parts)
	content, err := parts[0].GetContent()
	require.NoError(t, err)
	return string(content)
}

func nodeRequest(status models.Status) *models.NodeRequest {
	return &models.NodeRequest{
		TrackingID:   "REQ-0000000A",
		NodeType:     models.NodeTypeRPC,
		Name:         "Archive RPC",
		Endpoint:     "https://rpc.example.com",
		ContactEmail: "operator@example.com",
		ContactName:  "Operator",
		Status:       status,
	}
}

func tokenRequest(status models.Status) *models.TokenRequest {
	return &models.TokenRequest{
		TrackingID:        "TKN-0000000A",
		FirstName:         "Ada",
		LastName:          "Lovelace",
		Email:             "ada@example.com",
		WalletAddress:     "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		RequestedAmount:   "10",
		TransferredAmount: "7.5",
		Status:            status,
	}
}

func TestNewMailer_MissingHost(t *testing.T) {
	cfg := validSMTPConfig()
	cfg.Host = ""

	_, err := notify.NewMailer(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP host is required")
}

func TestNewMailer_MissingFrom(t *testing.T) {
	cfg := validSMTPConfig()
	cfg.From = ""

	_, err := notify.NewMailer(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP from address is required")
}

func TestNew_FallsBackToLog(t *testing.T) {
	assert.IsType(t, notify.Log{}, notify.New(&config.SMTPConfig{}))
	assert.IsType(t, &notify.Mailer{}, notify.New(validSMTPConfig()))
}

func TestLog(t *testing.T) {
	var n notify.Notifier = notify.Log{}

	res := n.NodeDecision(context.Background(), nodeRequest(models.StatusApproved), "")
	assert.False(t, res.Sent)
	assert.ErrorIs(t, res.Err, notify.ErrDisabled)

	res = n.TokenDecision(context.Background(), tokenRequest(models.StatusRejected), "no")
	assert.False(t, res.Sent)
	assert.Equal(t, notify.ErrDisabled.Error(), res.Error())
}

func TestNodeDecision_Approved(t *testing.T) {
	m, c := newTestMailer(t, validSMTPConfig())

	res := m.NodeDecision(context.Background(), nodeRequest(models.StatusApproved), "")

	assert.True(t, res.Sent)
	assert.Empty(t, res.Error())
	require.Len(t, c.msgs, 1)
	assert.Equal(t, "Your node Archive RPC is now listed", subject(t, c.msgs[0]))
	assert.Contains(t, body(t, c.msgs[0]), "REQ-0000000A")

	to, err := c.msgs[0].GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"operator@example.com"}, to)
}

func TestNodeDecision_RejectedCarriesReason(t *testing.T) {
	m, c := newTestMailer(t, validSMTPConfig())

	res := m.NodeDecision(context.Background(), nodeRequest(models.StatusRejected), "endpoint unreachable")

	assert.True(t, res.Sent)
	require.Len(t, c.msgs, 1)
	assert.Contains(t, body(t, c.msgs[0]), "endpoint unreachable")
}

func TestNodeDecision_PendingIsNotNotified(t *testing.T) {
	m, c := newTestMailer(t, validSMTPConfig())

	res := m.NodeDecision(context.Background(), nodeRequest(models.StatusPending), "")

	assert.False(t, res.Sent)
	assert.Error(t, res.Err)
	assert.Empty(t, c.msgs)
}

func TestTokenDecision_Transferred(t *testing.T) {
	m, c := newTestMailer(t, validSMTPConfig())

	res := m.TokenDecision(context.Background(), tokenRequest(models.StatusTransferred), "")

	assert.True(t, res.Sent)
	require.Len(t, c.msgs, 1)
	assert.Equal(t, "Test tokens sent for TKN-0000000A", subject(t, c.msgs[0]))
	assert.Contains(t, body(t, c.msgs[0]), "7.5")
}

func TestTokenDecision_German(t *testing.T) {
	cfg := validSMTPConfig()
	cfg.Language = "de"
	m, c := newTestMailer(t, cfg)

	res := m.TokenDecision(context.Background(), tokenRequest(models.StatusApproved), "")

	assert.True(t, res.Sent)
	require.Len(t, c.msgs, 1)
	assert.Equal(t, "Ihre Token-Anfrage TKN-0000000A wurde genehmigt", subject(t, c.msgs[0]))
}

func TestDecision_SendFailureIsReported(t *testing.T) {
	m, c := newTestMailer(t, validSMTPConfig())
	c.err = errors.New("connection refused")

	res := m.TokenDecision(context.Background(), tokenRequest(models.StatusRejected), "")

	assert.False(t, res.Sent)
	assert.Contains(t, res.Error(), "connection refused")
}

func TestDecision_InvalidRecipient(t *testing.T) {
	m, c := newTestMailer(t, validSMTPConfig())
	req := nodeRequest(models.StatusApproved)
	req.ContactEmail = "not an address"

	res := m.NodeDecision(context.Background(), req, "")

	assert.False(t, res.Sent)
	assert.Error(t, res.Err)
	assert.Empty(t, c.msgs)
}

func TestDecision_NoContactEmail(t *testing.T) {
	m, c := newTestMailer(t, validSMTPConfig())
	req := nodeRequest(models.StatusApproved)
	req.ContactEmail = ""

	res := m.NodeDecision(context.Background(), req, "")

	assert.False(t, res.Sent)
	assert.ErrorIs(t, res.Err, notify.ErrNoRecipient)
	assert.Empty(t, c.msgs)
}
