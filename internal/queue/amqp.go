package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"

	appErrors "github.com/unclebandit/mailing-backend/internal/errors"
)

// AMQPPublisher publishes dispatch requests to a durable queue.
type AMQPPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	mu    sync.Mutex
}

func declare(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
}

func DialPublisher(url, queueName string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to queue: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open queue channel: %w", err)
	}
	if _, err := declare(ch, queueName); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queueName, err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, queue: queueName}, nil
}

// Publish is safe for concurrent use; amqp channels are not.
func (p *AMQPPublisher) Publish(ctx context.Context, req DispatchRequest) error {
	body, err := Encode(req)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.Publish(
		"",
		p.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func (p *AMQPPublisher) Close() error {
	p.ch.Close()
	return p.conn.Close()
}

// Consumer reads dispatch requests and hands them to a Handler, one at a time.
type Consumer struct {
	URL     string
	Queue   string
	Handler Handler
}

// Run consumes until ctx is done or the connection drops.
func (c *Consumer) Run(ctx context.Context) error {
	conn, err := amqp.Dial(c.URL)
	if err != nil {
		return fmt.Errorf("connect to queue: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open queue channel: %w", err)
	}
	defer ch.Close()

	q, err := declare(ch, c.Queue)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", c.Queue, err)
	}
	// one dispatch cycle at a time per worker
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		false, // autoAck = false, acked once the cycle is over
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	log.Info().Str("queue", q.Name).Msg("worker waiting for dispatch requests")
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			Process(ctx, c.Handler, d)
		}
	}
}

// Process handles one delivery and settles it. Malformed and rejected
// requests are dropped. Infrastructure failures are requeued once.
func Process(ctx context.Context, h Handler, d amqp.Delivery) {
	req, err := Decode(d.Body)
	if err != nil {
		log.Warn().Err(err).Msg("dropping dispatch request")
		d.Ack(false)
		return
	}

	err = h.Handle(ctx, req)
	if err == nil {
		d.Ack(false)
		return
	}

	var infra *appErrors.InfrastructureError
	if errors.As(err, &infra) {
		requeue := !d.Redelivered
		log.Error().Err(err).Bool("requeue", requeue).Str("kind", string(req.Kind)).Msg("dispatch request failed")
		d.Nack(false, requeue)
		return
	}

	log.Warn().Err(err).Str("kind", string(req.Kind)).Int("campaign_id", req.CampaignID).Msg("dispatch request rejected")
	d.Ack(false)
}
