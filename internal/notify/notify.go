// Package notify delivers match notices out of band. Delivery is best
// effort: callers log a failed Notify and carry on.
package notify

import (
	"context"

	"lostwatch/pkg/protocol"

	"github.com/apex/log"
)

type Notifier interface {
	Notify(ctx context.Context, n protocol.Notice) error
}

// LogNotifier only records the notice. It is the default when no delivery
// channel is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, n protocol.Notice) error {
	log.WithFields(log.Fields{
		"notice_id": n.ID,
		"recipient": n.Recipient,
		"serial":    n.SerialNumber,
	}).Info("match notice")
	return nil
}

// Func adapts a plain function to Notifier.
type Func func(ctx context.Context, n protocol.Notice) error

func (f Func) Notify(ctx context.Context, n protocol.Notice) error { return f(ctx, n) }
