package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"eventbook/internal/shared/config"
	"eventbook/pkg/logger"

	"github.com/IBM/sarama"
)

// Consumer reads the notification topic with a consumer group and hands each
// message to a Mailer.
type Consumer struct {
	group  sarama.ConsumerGroup
	topics []string
	mailer Mailer
	log    *logger.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewConsumer(cfg config.KafkaConfig, mailer Mailer, log *logger.Logger) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second
	saramaConfig.Consumer.Group.Session.Timeout = 30 * time.Second
	saramaConfig.Consumer.Group.Heartbeat.Interval = 3 * time.Second

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}
	return newConsumer(group, []string{cfg.Topic}, mailer, log), nil
}

func newConsumer(group sarama.ConsumerGroup, topics []string, mailer Mailer, log *logger.Logger) *Consumer {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Consumer{group: group, topics: topics, mailer: mailer, log: log}
}

// Start launches workers goroutines that consume until Stop is called or ctx
// ends.
func (c *Consumer) Start(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 1
	}
	ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for err := range c.group.Errors() {
			c.log.Warn("notification consumer error", slog.Any("error", err))
		}
	}()

	for i := 0; i < workers; i++ {
		c.wg.Add(1)
		go func(workerID int) {
			defer c.wg.Done()
			c.run(ctx, workerID)
		}(i)
	}
	c.log.Info("notification consumers started", slog.Int("workers", workers), slog.Any("topics", c.topics))
}

func (c *Consumer) run(ctx context.Context, workerID int) {
	handler := &groupHandler{mailer: c.mailer, log: c.log, workerID: workerID}
	for {
		if err := c.group.Consume(ctx, c.topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return
			}
			c.log.Warn("notification consume failed", slog.Int("worker", workerID), slog.Any("error", err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// Stop cancels the workers and closes the group.
func (c *Consumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	err := c.group.Close()
	c.wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

type groupHandler struct {
	mailer   Mailer
	log      *logger.Logger
	workerID int
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim marks a message only after it was mailed or found unreadable.
// Delivery failures are left unmarked so the next session retries them.
func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			n, err := FromJSON(msg.Value)
			if err != nil {
				h.log.Warn("skipping malformed notification",
					slog.Int64("offset", msg.Offset),
					slog.Any("error", err),
				)
				session.MarkMessage(msg, "")
				continue
			}
			if err := h.mailer.Send(session.Context(), n); err != nil {
				h.log.Error("failed to deliver notification",
					slog.Int("worker", h.workerID),
					slog.String("booking_id", n.BookingID),
					slog.Any("error", err),
				)
				continue
			}
			session.MarkMessage(msg, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
