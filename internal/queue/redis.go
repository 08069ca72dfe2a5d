package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/BerylCAtieno/processos-api/internal/utils"
)

const payloadField = "payload"

type RedisOptions struct {
	Addr     string
	Password string
	Stream   string
	Group    string
	// Consumer is the base name; each Consume call appends a sequence number.
	Consumer string
	// VisibilityTimeout is how long a delivered, unacknowledged entry stays
	// with its consumer before another consumer may claim it.
	VisibilityTimeout time.Duration
	// Block bounds a single XREADGROUP wait. Defaults to 5s.
	Block time.Duration
}

// redisQueue is a Redis Streams consumer group. Entries stay in the group's
// pending list until XACK; entries idle longer than the visibility timeout
// are moved to a live consumer with XAUTOCLAIM.
type redisQueue struct {
	rdb     *goredis.Client
	opts    RedisOptions
	log     *utils.Logger
	seq     atomic.Int64
	backoff time.Duration
}

func NewRedisQueue(ctx context.Context, opts RedisOptions, logger *utils.Logger) (Queue, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	if opts.Stream == "" || opts.Group == "" {
		return nil, fmt.Errorf("redis stream and group are required")
	}
	if opts.Consumer == "" {
		opts.Consumer = "worker"
	}
	if opts.VisibilityTimeout <= 0 {
		opts.VisibilityTimeout = 5 * time.Minute
	}
	if opts.Block <= 0 {
		opts.Block = 5 * time.Second
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisQueue{
		rdb:     rdb,
		opts:    opts,
		log:     logger.With("component", "RedisQueue", "stream", opts.Stream),
		backoff: time.Second,
	}, nil
}

func (q *redisQueue) Publish(ctx context.Context, msg Message) error {
	raw, err := msg.Encode()
	if err != nil {
		return err
	}

	err = q.rdb.XAdd(ctx, &goredis.XAddArgs{
		Stream: q.opts.Stream,
		Values: map[string]any{payloadField: string(raw)},
	}).Err()
	if err != nil {
		return fmt.Errorf("redis XADD: %w", err)
	}
	return nil
}

func (q *redisQueue) Consume(ctx context.Context, handler Handler) error {
	if err := q.ensureGroup(ctx); err != nil {
		return err
	}

	consumer := fmt.Sprintf("%s-%d", q.opts.Consumer, q.seq.Add(1))
	log := q.log.With("consumer", consumer)
	log.Info("Consuming stream", "group", q.opts.Group)

	claimEvery := q.opts.VisibilityTimeout / 2
	var lastClaim time.Time

	for ctx.Err() == nil {
		if time.Since(lastClaim) >= claimEvery {
			lastClaim = time.Now()
			if err := q.reclaim(ctx, consumer, handler); err != nil && ctx.Err() == nil {
				log.Warn("XAUTOCLAIM failed", "error", err)
			}
		}

		streams, err := q.rdb.XReadGroup(ctx, &goredis.XReadGroupArgs{
			Group:    q.opts.Group,
			Consumer: consumer,
			Streams:  []string{q.opts.Stream, ">"},
			Count:    1,
			Block:    q.opts.Block,
		}).Result()
		if errors.Is(err, goredis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Warn("XREADGROUP failed", "error", err)
			sleepCtx(ctx, q.backoff)
			continue
		}

		for _, stream := range streams {
			for _, m := range stream.Messages {
				q.handle(ctx, m, handler)
			}
		}
	}

	return nil
}

func (q *redisQueue) ensureGroup(ctx context.Context) error {
	err := q.rdb.XGroupCreateMkStream(ctx, q.opts.Stream, q.opts.Group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("redis XGROUP CREATE: %w", err)
	}
	return nil
}

// reclaim takes over entries whose consumer stopped acknowledging them.
func (q *redisQueue) reclaim(ctx context.Context, consumer string, handler Handler) error {
	start := "0-0"
	for {
		msgs, next, err := q.rdb.XAutoClaim(ctx, &goredis.XAutoClaimArgs{
			Stream:   q.opts.Stream,
			Group:    q.opts.Group,
			Consumer: consumer,
			MinIdle:  q.opts.VisibilityTimeout,
			Start:    start,
			Count:    10,
		}).Result()
		if err != nil {
			return err
		}

		for _, m := range msgs {
			q.log.Info("Reclaimed stale stream entry", "id", m.ID, "consumer", consumer)
			q.handle(ctx, m, handler)
		}

		if len(msgs) == 0 || next == "0-0" {
			return nil
		}
		start = next
	}
}

func (q *redisQueue) handle(ctx context.Context, m goredis.XMessage, handler Handler) {
	raw, _ := m.Values[payloadField].(string)
	if !deliver(ctx, q.log, []byte(raw), handler) {
		return
	}

	ackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := q.rdb.XAck(ackCtx, q.opts.Stream, q.opts.Group, m.ID).Err(); err != nil {
		q.log.Error("XACK failed; entry will be redelivered", "error", err, "id", m.ID)
	}
}

func (q *redisQueue) Close() error {
	return q.rdb.Close()
}
