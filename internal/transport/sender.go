package transport

import (
	"context"
)

// Sender delivers one email. A returned error is a delivery failure and its
// text is kept as the server response of the attempt.
type Sender interface {
	Send(ctx context.Context, subject, body, from string, to []string) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, subject, body, from string, to []string) error

func (f SenderFunc) Send(ctx context.Context, subject, body, from string, to []string) error {
	return f(ctx, subject, body, from, to)
}
