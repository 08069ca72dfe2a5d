package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/BerylCAtieno/processos-api/internal/utils"
)

// amqpQueue publishes persistent messages to a durable queue through the
// default exchange. Consumers use manual acks with a prefetch of one, so the
// broker redelivers whatever a dead consumer had not acknowledged.
// A closed connection or channel is redialled on the next Publish or Consume.
type amqpQueue struct {
	url     string
	name    string
	log     *utils.Logger
	backoff time.Duration

	mu    sync.Mutex
	conn  *amqp.Connection
	pubCh *amqp.Channel
}

func NewAMQPQueue(url, name string, logger *utils.Logger) (Queue, error) {
	q := &amqpQueue{
		url:     url,
		name:    name,
		log:     logger.With("component", "AMQPQueue", "queue", name),
		backoff: time.Second,
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if _, err := q.publishChannel(); err != nil {
		if q.conn != nil {
			_ = q.conn.Close()
		}
		return nil, err
	}

	return q, nil
}

// connection returns a live connection, dialling a new one if needed.
// Callers hold q.mu.
func (q *amqpQueue) connection() (*amqp.Connection, error) {
	if q.conn != nil && !q.conn.IsClosed() {
		return q.conn, nil
	}
	if q.conn != nil {
		q.log.Warn("amqp connection lost, redialling")
	}

	conn, err := amqp.Dial(q.url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	q.conn = conn
	q.pubCh = nil
	return conn, nil
}

// publishChannel returns the shared publishing channel, reopening it after
// a channel or connection failure. Callers hold q.mu.
func (q *amqpQueue) publishChannel() (*amqp.Channel, error) {
	conn, err := q.connection()
	if err != nil {
		return nil, err
	}
	if q.pubCh != nil && !q.pubCh.IsClosed() {
		return q.pubCh, nil
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := declare(ch, q.name); err != nil {
		_ = ch.Close()
		return nil, err
	}
	q.pubCh = ch
	return ch, nil
}

func declare(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("amqp queue declare: %w", err)
	}
	return nil
}

func (q *amqpQueue) Publish(ctx context.Context, msg Message) error {
	raw, err := msg.Encode()
	if err != nil {
		return err
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         raw,
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	// one retry covers a broker restart noticed only by this publish
	for attempt := 0; ; attempt++ {
		ch, err := q.publishChannel()
		if err == nil {
			err = ch.PublishWithContext(ctx, "", q.name, false, false, publishing)
		}
		if err == nil {
			return nil
		}
		if attempt > 0 || ctx.Err() != nil || !errors.Is(err, amqp.ErrClosed) {
			return fmt.Errorf("amqp publish: %w", err)
		}
		q.pubCh = nil
	}
}

func (q *amqpQueue) Consume(ctx context.Context, handler Handler) error {
	q.mu.Lock()
	conn, err := q.connection()
	q.mu.Unlock()
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("amqp qos: %w", err)
	}
	if err := declare(ch, q.name); err != nil {
		return err
	}

	deliveries, err := ch.Consume(q.name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("amqp consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("amqp delivery channel closed")
			}

			if deliver(ctx, q.log, d.Body, handler) {
				if err := d.Ack(false); err != nil {
					q.log.Error("amqp ack failed", "error", err)
				}
				continue
			}

			// give a failing dependency a moment before the broker hands it back
			sleepCtx(ctx, q.backoff)
			if err := d.Nack(false, true); err != nil {
				q.log.Error("amqp nack failed", "error", err)
			}
		}
	}
}

func (q *amqpQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.pubCh != nil {
		_ = q.pubCh.Close()
	}
	if q.conn == nil || q.conn.IsClosed() {
		return nil
	}
	return q.conn.Close()
}
