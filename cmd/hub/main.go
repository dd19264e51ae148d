// cmd/hub/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lostwatch/internal/config"
	"lostwatch/internal/logging"
	"lostwatch/internal/notify"
	"lostwatch/pkg/protocol"

	"github.com/apex/log"
)

// Hub drains the notice queue and hands every notice to the delivery
// channel registered for its op.
type Hub struct {
	router map[protocol.Op]notify.Notifier
}

func NewHub(delivery notify.Notifier) *Hub {
	return &Hub{
		router: map[protocol.Op]notify.Notifier{
			protocol.OpMatch: delivery,
		},
	}
}

// Notify routes n by op. Unknown ops are an error so the consumer logs
// and drops them.
func (h *Hub) Notify(ctx context.Context, n protocol.Notice) error {
	target, ok := h.router[n.Op]
	if !ok {
		return fmt.Errorf("no route for op %q", n.Op)
	}
	return target.Notify(ctx, n)
}

func main() {
	cfg := config.Load()
	if err := logging.Setup(os.Stderr, cfg.LogFormat, cfg.LogLevel); err != nil {
		log.WithField("level", cfg.LogLevel).Warn("unknown LOG_LEVEL, using info")
	}
	if cfg.AMQP.URL == "" {
		log.Fatal("AMQP_URL is required")
	}

	var delivery notify.Notifier = notify.LogNotifier{}
	if err := cfg.SendGrid.Validate(); err == nil {
		delivery = notify.NewEmailNotifier(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	} else {
		log.WithError(err).Warn("e-mail delivery disabled, notices are only logged")
	}

	consumer, err := notify.NewConsumer(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey, cfg.AMQP.Queue)
	if err != nil {
		log.WithError(err).Fatal("failed to start consumer")
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.WithField("queue", cfg.AMQP.Queue).Info("hub consuming notices")
	if err := consumer.Run(ctx, NewHub(delivery)); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("hub stopped")
		return
	}
	log.Info("hub exited")
}
