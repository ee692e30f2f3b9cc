package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"eventbook/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RedisRelay spreads seat updates across every API instance through a Redis
// Pub/Sub channel. While subscribed the local hub is fed by Run, which
// receives this instance's own messages like everyone else's. Otherwise
// Publish delivers to the local hub directly.
type RedisRelay struct {
	client  *redis.Client
	channel string
	hub     *Hub
	log     *logger.Logger

	retryMin time.Duration
	retryMax time.Duration

	subscribed atomic.Bool
	readyOnce  sync.Once
	ready      chan struct{}
}

func NewRedisRelay(client *redis.Client, channel string, hub *Hub, log *logger.Logger) *RedisRelay {
	if log == nil {
		log = logger.GetDefault()
	}
	return &RedisRelay{
		client:   client,
		channel:  channel,
		hub:      hub,
		log:      log,
		retryMin: 250 * time.Millisecond,
		retryMax: 10 * time.Second,
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the first subscription is confirmed by Redis.
func (r *RedisRelay) Ready() <-chan struct{} {
	return r.ready
}

// Publish sends the update to Redis. The update goes straight to this
// instance's clients when Redis is unreachable, when the relay is not
// subscribed, or when Redis reports no subscriber received it.
func (r *RedisRelay) Publish(ctx context.Context, update SeatUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to encode seat update: %w", err)
	}
	subscribed := r.subscribed.Load()
	receivers, err := r.client.Publish(ctx, r.channel, payload).Result()
	switch {
	case err != nil:
		r.log.Warn("seat update relay unavailable, delivering locally",
			slog.String("event_id", update.EventID),
			slog.Any("error", err),
		)
		return r.hub.Publish(ctx, update)
	case !subscribed || receivers == 0:
		return r.hub.Publish(ctx, update)
	}
	return nil
}

// Run subscribes to the relay channel and feeds the hub until ctx ends.
// A failed subscription is retried with exponential backoff.
func (r *RedisRelay) Run(ctx context.Context) error {
	delay := r.retryMin
	for {
		err := r.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		r.log.Warn("seat update relay disconnected, retrying",
			slog.String("channel", r.channel),
			slog.Duration("retry_in", delay),
			slog.Any("error", err),
		)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		delay = min(delay*2, r.retryMax)
	}
}

func (r *RedisRelay) listen(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}
	r.subscribed.Store(true)
	defer r.subscribed.Store(false)
	r.readyOnce.Do(func() { close(r.ready) })
	r.log.Info("seat update relay subscribed", slog.String("channel", r.channel))

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return fmt.Errorf("subscription to %s closed", r.channel)
			}
			var update SeatUpdate
			if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
				r.log.Warn("dropping malformed seat update", slog.Any("error", err))
				continue
			}
			_ = r.hub.Publish(ctx, update)
		}
	}
}
