package workers

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Handler processes one stream message. Returned errors are logged and the
// message is acked, since retries happen inside the handler. An error caused
// by the pool's own shutdown leaves the message pending for redelivery.
type Handler func(ctx context.Context, msg redis.XMessage) error

// StreamPool consumes a Redis stream with a consumer group.
type StreamPool struct {
	Redis      *redis.Client
	NumWorkers int
	Handler    Handler

	Logger logrus.FieldLogger

	Stream         string
	Group          string
	ConsumerPrefix string

	// ClaimMinIdle is how long another consumer's pending entry must sit
	// before it is claimed on start. Negative disables claiming.
	ClaimMinIdle time.Duration

	wg sync.WaitGroup
}

func (p *StreamPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Handler == nil {
		return errors.New("StreamPool missing dependency: Redis/Handler must be set")
	}
	if p.Stream == "" {
		return errors.New("StreamPool: Stream must be set")
	}
	if p.Group == "" {
		p.Group = p.Stream + "-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 5
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}
	if p.ClaimMinIdle == 0 {
		p.ClaimMinIdle = 15 * time.Minute
	}
	p.Logger = p.Logger.WithFields(logrus.Fields{"stream": p.Stream, "group": p.Group})

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.runConsumer(ctx, consumer)
		}()
	}
	p.Logger.WithField("workers", p.NumWorkers).Info("stream pool started")
	return nil
}

// Wait blocks until every consumer has returned after ctx is cancelled.
func (p *StreamPool) Wait() { p.wg.Wait() }

func (p *StreamPool) runConsumer(ctx context.Context, consumer string) {
	p.claimStale(ctx, consumer)

	// "0" replays this consumer's own pending entries left by an earlier
	// shutdown; ">" reads new ones once the backlog is empty.
	id := "0"
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, id},
			Count:    1,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				id = ">"
				continue
			}
			p.Logger.WithError(err).Warn("xreadgroup failed")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		n := 0
		for _, stream := range res {
			for _, msg := range stream.Messages {
				n++
				p.process(ctx, msg)
			}
		}
		if n == 0 && id == "0" {
			id = ">"
		}
	}
}

// claimStale takes over entries other consumers left pending for longer
// than ClaimMinIdle, e.g. after a host was replaced.
func (p *StreamPool) claimStale(ctx context.Context, consumer string) {
	if p.ClaimMinIdle < 0 {
		return
	}
	start := "0-0"
	for ctx.Err() == nil {
		msgs, next, err := p.Redis.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   p.Stream,
			Group:    p.Group,
			Consumer: consumer,
			MinIdle:  p.ClaimMinIdle,
			Start:    start,
			Count:    10,
		}).Result()
		if err != nil {
			if ctx.Err() == nil {
				p.Logger.WithError(err).Warn("xautoclaim failed")
			}
			return
		}
		if len(msgs) > 0 {
			p.Logger.WithFields(logrus.Fields{"consumer": consumer, "claimed": len(msgs)}).Info("claimed stale stream entries")
		}
		for _, msg := range msgs {
			p.process(ctx, msg)
		}
		if next == "0-0" || next == "" {
			return
		}
		start = next
	}
}

func (p *StreamPool) process(ctx context.Context, msg redis.XMessage) {
	if err := p.handle(ctx, msg); interrupted(ctx, err) {
		p.Logger.WithField("redis_id", msg.ID).Info("stream message left pending")
		return
	}
	_ = p.Redis.XAck(context.WithoutCancel(ctx), p.Stream, p.Group, msg.ID).Err()
}

func (p *StreamPool) handle(ctx context.Context, msg redis.XMessage) (err error) {
	log := p.Logger.WithField("redis_id", msg.ID)
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(logrus.Fields{
				"panic": fmt.Sprint(r),
				"stack": string(debug.Stack()),
			}).Error("stream handler panicked")
			err = nil
		}
	}()

	if err = p.Handler(ctx, msg); err != nil {
		log.WithError(err).Error("stream message failed")
	}
	return err
}

// interrupted reports whether err comes from the pool's context ending
// rather than from the work itself. Per-call timeouts inside the handler
// do not count while ctx is still live.
func interrupted(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func field(msg redis.XMessage, k string) string {
	v, ok := msg.Values[k]
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
