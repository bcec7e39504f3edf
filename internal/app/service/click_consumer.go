package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kursline/kursline/internal/app/model"
	apprepository "github.com/kursline/kursline/internal/app/repository"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// ClickConsumer drains attribution click events from NATS JetStream into
// Postgres.
type ClickConsumer struct {
	js     nats.JetStreamContext
	logger *zap.Logger
	repo   apprepository.AttributionRepository
}

// NewClickConsumer creates a new click event consumer.
func NewClickConsumer(js nats.JetStreamContext, logger *zap.Logger, repo apprepository.AttributionRepository) *ClickConsumer {
	return &ClickConsumer{js: js, logger: logger, repo: repo}
}

// Start ensures the stream and durable consumer exist and begins consuming.
func (c *ClickConsumer) Start() error {
	_, err := c.js.StreamInfo(model.ClickStreamName)
	if err != nil {
		_, err = c.js.AddStream(&nats.StreamConfig{
			Name:     model.ClickStreamName,
			Subjects: []string{model.ClickStreamSubject},
			MaxBytes: model.ClickStreamMaxBytes,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
	}

	_, err = c.js.ConsumerInfo(model.ClickStreamName, model.ClickConsumerName)
	if err != nil {
		_, err = c.js.AddConsumer(model.ClickStreamName, &nats.ConsumerConfig{
			Durable:   model.ClickConsumerName,
			AckPolicy: nats.AckExplicitPolicy,
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}
	}

	sub, err := c.js.PullSubscribe(model.ClickStreamSubject, model.ClickConsumerName)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	go c.consume(sub)
	return nil
}

func (c *ClickConsumer) consume(sub *nats.Subscription) {
	ctx := context.Background()
	for {
		msgs, err := sub.Fetch(10, nats.MaxWait(5*time.Second))
		if err != nil && err != nats.ErrTimeout {
			c.logger.Error("failed to fetch messages", zap.Error(err))
			continue
		}

		for _, msg := range msgs {
			var click model.AttributionClick
			if err := json.Unmarshal(msg.Data, &click); err != nil {
				c.logger.Error("failed to unmarshal click event", zap.Error(err))
				msg.Nak()
				continue
			}

			if err := c.repo.Create(ctx, &click); err != nil {
				c.logger.Error("failed to store attribution click",
					zap.String("id", click.ID),
					zap.String("offer_id", click.OfferID),
					zap.String("referrer_id", click.ReferrerID),
					zap.Error(err))
				msg.Nak()
				continue
			}

			c.logger.Debug("attribution click stored",
				zap.String("id", click.ID),
				zap.String("offer_id", click.OfferID),
				zap.String("referrer_id", click.ReferrerID),
				zap.Time("timestamp", click.Timestamp),
			)

			msg.Ack()
		}
	}
}
