package queue

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/BerylCAtieno/processos-api/internal/utils"
)

// MemoryQueue is a process-local queue with the same ack semantics as the
// broker backends: a message whose handler fails is delivered again.
type MemoryQueue struct {
	ch        chan []byte
	log       *utils.Logger
	delay     time.Duration
	published atomic.Int64
	acked     atomic.Int64
	dropped   atomic.Int64
}

func NewMemoryQueue(buffer int, logger *utils.Logger) *MemoryQueue {
	return &MemoryQueue{
		ch:    make(chan []byte, buffer),
		log:   logger,
		delay: 10 * time.Millisecond,
	}
}

func (q *MemoryQueue) Publish(ctx context.Context, msg Message) error {
	raw, err := msg.Encode()
	if err != nil {
		return err
	}
	return q.PublishRaw(ctx, raw)
}

// PublishRaw enqueues an already encoded payload.
func (q *MemoryQueue) PublishRaw(ctx context.Context, raw []byte) error {
	select {
	case q.ch <- raw:
		q.published.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Consume(ctx context.Context, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case raw := <-q.ch:
			if deliver(ctx, q.log, raw, handler) {
				q.acked.Add(1)
				continue
			}
			time.AfterFunc(q.delay, func() { q.requeue(raw) })
		}
	}
}

// requeue puts a failed delivery back without blocking; with the buffer full
// the message is dropped.
func (q *MemoryQueue) requeue(raw []byte) {
	select {
	case q.ch <- raw:
	default:
		q.dropped.Add(1)
		q.log.Warn("Memory queue full, dropping failed message", "payload", string(raw))
	}
}

// Published counts accepted messages; Acked counts acknowledged deliveries.
func (q *MemoryQueue) Published() int64 { return q.published.Load() }

func (q *MemoryQueue) Acked() int64 { return q.acked.Load() }

func (q *MemoryQueue) Dropped() int64 { return q.dropped.Load() }

func (q *MemoryQueue) Close() error { return nil }
