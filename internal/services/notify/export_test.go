// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package notify

import (
	"context"

	"github.com/wneessen/go-mail"
)

// SetSender replaces SMTP delivery for tests.
func (m *Mailer) SetSender(send func(ctx context.Context, msg *mail.Msg) error) {
	m.send = send
}
