package notify

import (
	"context"
	"fmt"

	"lostwatch/pkg/protocol"

	"github.com/apex/log"
	"github.com/streadway/amqp"
)

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPNotifier publishes notices to a durable direct exchange.
type AMQPNotifier struct {
	conn       *amqp.Connection
	channel    channel
	exchange   string
	routingKey string
}

// NewAMQPNotifier dials url and declares the exchange.
func NewAMQPNotifier(url, exchange, routingKey string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &AMQPNotifier{conn: conn, channel: ch, exchange: exchange, routingKey: routingKey}, nil
}

func (p *AMQPNotifier) Notify(ctx context.Context, n protocol.Notice) error {
	body, err := n.Encode()
	if err != nil {
		return fmt.Errorf("failed to marshal notice: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    n.ID,
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    n.CreatedAt,
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.channel.Publish(p.exchange, p.routingKey, false, false, publishing); err != nil {
		return fmt.Errorf("failed to publish notice: %w", err)
	}
	return nil
}

func (p *AMQPNotifier) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Consumer reads notices from a queue bound to the notice exchange.
type Consumer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// NewConsumer dials url, declares exchange and queue and binds them.
func NewConsumer(url, exchange, routingKey, queue string) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	fail := func(step string, err error) (*Consumer, error) {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to %s: %w", step, err)
	}
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return fail("declare exchange", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fail("declare queue", err)
	}
	if err := ch.QueueBind(queue, routingKey, exchange, false, nil); err != nil {
		return fail("bind queue", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fail("set qos", err)
	}
	return &Consumer{conn: conn, ch: ch, queue: queue}, nil
}

// Run delivers every notice to n until ctx is done or the broker closes
// the channel. Undecodable messages are dropped; failed deliveries are
// dropped too since notification is best effort.
func (c *Consumer) Run(ctx context.Context, n Notifier) error {
	deliveries, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			handleDelivery(ctx, d.Body, n)
			if err := d.Ack(false); err != nil {
				log.Warnf("ack failed: %v", err)
			}
		}
	}
}

func handleDelivery(ctx context.Context, body []byte, n Notifier) {
	notice, err := protocol.Decode(body)
	if err != nil {
		log.Warnf("dropping notice: %v", err)
		return
	}
	if err := n.Notify(ctx, *notice); err != nil {
		log.Warnf("delivering notice %s to %s failed: %v", notice.ID, notice.Recipient, err)
		return
	}
	log.Infof("delivered notice %s to %s", notice.ID, notice.Recipient)
}

func (c *Consumer) Close() error {
	c.ch.Close()
	return c.conn.Close()
}
