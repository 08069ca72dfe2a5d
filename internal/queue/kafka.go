package queue

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/BerylCAtieno/processos-api/internal/utils"
)

// kafkaQueue maps the queue onto a topic read by one consumer group. Offsets
// are committed only after the handler succeeds; a failing message is retried
// in place because later offsets cannot be committed past it.
type kafkaQueue struct {
	writer  *kafka.Writer
	brokers []string
	topic   string
	group   string
	log     *utils.Logger
	backoff time.Duration
}

func NewKafkaQueue(brokers []string, topic, group string, logger *utils.Logger) Queue {
	return &kafkaQueue{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
		brokers: brokers,
		topic:   topic,
		group:   group,
		log:     logger.With("component", "KafkaQueue", "topic", topic),
		backoff: 2 * time.Second,
	}
}

func (q *kafkaQueue) Publish(ctx context.Context, msg Message) error {
	raw, err := msg.Encode()
	if err != nil {
		return err
	}

	err = q.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(msg.DocumentID, 10)),
		Value: raw,
	})
	if err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (q *kafkaQueue) Consume(ctx context.Context, handler Handler) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  q.brokers,
		GroupID:  q.group,
		Topic:    q.topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("kafka fetch: %w", err)
		}

		for !deliver(ctx, q.log, m.Value, handler) {
			if !sleepCtx(ctx, q.backoff) {
				return nil
			}
		}

		commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		if err := reader.CommitMessages(commitCtx, m); err != nil {
			q.log.Error("kafka commit failed; message will be redelivered", "error", err, "offset", m.Offset)
		}
		cancel()
	}
}

func (q *kafkaQueue) Close() error {
	return q.writer.Close()
}
