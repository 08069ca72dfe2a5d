package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/BerylCAtieno/processos-api/internal/config"
	"github.com/BerylCAtieno/processos-api/internal/utils"
)

// ErrMalformed marks a payload that can never be handled.
var ErrMalformed = errors.New("malformed queue message")

// Message is an extraction work item: {"documento_id": 1, "path": "..."}.
type Message struct {
	DocumentID int64  `json:"documento_id"`
	Path       string `json:"path"`
}

func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

func Decode(raw []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if m.DocumentID <= 0 {
		return Message{}, fmt.Errorf("%w: documento_id must be positive", ErrMalformed)
	}
	return m, nil
}

// Handler processes one delivery. A nil return acknowledges the message;
// an error leaves it to be redelivered.
type Handler func(ctx context.Context, msg Message) error

type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Consumer delivers messages to handler until ctx is cancelled. It is safe to
// call Consume from several goroutines; each call is an independent consumer.
type Consumer interface {
	Consume(ctx context.Context, handler Handler) error
	Close() error
}

type Queue interface {
	Publisher
	Consumer
}

// New builds the backend selected by cfg.QueueBackend.
func New(ctx context.Context, cfg *config.Config, logger *utils.Logger) (Queue, error) {
	switch cfg.QueueBackend {
	case config.QueueRedis:
		return NewRedisQueue(ctx, RedisOptions{
			Addr:              cfg.RedisAddr,
			Password:          cfg.RedisPassword,
			Stream:            cfg.QueueName,
			Group:             cfg.QueueGroup,
			Consumer:          cfg.WorkerName,
			VisibilityTimeout: cfg.QueueVisibilityTimeout,
		}, logger)
	case config.QueueAMQP:
		return NewAMQPQueue(cfg.RabbitURL, cfg.QueueName, logger)
	case config.QueueKafka:
		return NewKafkaQueue(cfg.KafkaBrokers, cfg.QueueName, cfg.QueueGroup, logger), nil
	default:
		return nil, fmt.Errorf("unknown queue backend %q", cfg.QueueBackend)
	}
}

// deliver decodes raw and runs handler on it. It reports whether the message
// should be acknowledged: malformed payloads are dropped, handler errors are not.
// The handler runs detached from ctx cancellation so an in-flight message
// finishes during shutdown.
func deliver(ctx context.Context, logger *utils.Logger, raw []byte, handler Handler) bool {
	msg, err := Decode(raw)
	if err != nil {
		logger.Warn("Dropping malformed queue message", "error", err, "payload", string(raw))
		return true
	}

	if err := handler(context.WithoutCancel(ctx), msg); err != nil {
		logger.Warn("Queue handler failed; message left for redelivery",
			"error", err,
			"document_id", msg.DocumentID)
		return false
	}

	return true
}

// sleepCtx waits for d or until ctx is done, reporting false in the latter case.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
