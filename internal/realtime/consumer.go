// Package realtime consumes synthesis completion events and applies them
// to the entity store. It is the only writer of a card's audio URL.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kotobalabs/kotoba-backend/internal/data/repos"
	"github.com/kotobalabs/kotoba-backend/internal/pkg/dbctx"
	"github.com/kotobalabs/kotoba-backend/internal/pkg/logger"
	"github.com/kotobalabs/kotoba-backend/internal/synthesis"
)

type Consumer struct {
	log    *logger.Logger
	rdb    *redis.Client
	cards  repos.FlashcardRepo
	cancel context.CancelFunc
	done   chan struct{}
}

func NewConsumer(baseLog *logger.Logger, rdb *redis.Client, cards repos.FlashcardRepo) *Consumer {
	return &Consumer{
		log:   baseLog.With("service", "CompletionConsumer"),
		rdb:   rdb,
		cards: cards,
	}
}

// Start subscribes to the completion channels and applies events until
// Close is called or the parent context ends.
func (c *Consumer) Start(ctx context.Context) error {
	sub := c.rdb.Subscribe(ctx, synthesis.ChannelCardTTSCompleted, synthesis.ChannelLessonTTSCompleted)
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe completion channels: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})

	go func() {
		defer close(c.done)
		defer func() { _ = sub.Close() }()
		ch := sub.Channel()
		for {
			select {
			case <-runCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if err := c.apply(runCtx, msg.Channel, []byte(msg.Payload)); err != nil {
					c.log.Warn("Completion event dropped", "channel", msg.Channel, "error", err)
				}
			}
		}
	}()
	c.log.Info("Completion consumer started")
	return nil
}

func (c *Consumer) apply(ctx context.Context, channel string, payload []byte) error {
	var event synthesis.CompletionEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("decode completion event: %w", err)
	}
	if event.Failed {
		// Terminal failure: the job's retry budget is spent and no audio
		// will arrive. The card keeps its NULL audio_url, which puts it
		// back in scope for the reconciliation sweep.
		c.log.Warn("Synthesis job failed permanently",
			"job_key", event.JobKey,
			"card_id", event.CardID,
			"lesson_code", event.LessonCode,
			"error", event.Error)
		return nil
	}
	if event.URL == "" {
		return fmt.Errorf("completion event %s missing url", event.JobKey)
	}

	switch channel {
	case synthesis.ChannelCardTTSCompleted:
		id, err := uuid.Parse(event.CardID)
		if err != nil {
			return fmt.Errorf("completion event %s: bad card id: %w", event.JobKey, err)
		}
		if err := c.cards.SetAudioURL(dbctx.Context{Ctx: ctx}, id, event.URL); err != nil {
			return fmt.Errorf("set audio url for card %s: %w", id, err)
		}
		c.log.Debug("Card audio ready", "card_id", id, "url", event.URL)
	case synthesis.ChannelLessonTTSCompleted:
		// Lesson audio is addressed by its deterministic object path; the
		// manifest already records every line, so there is nothing to
		// write back per line.
		c.log.Debug("Lesson audio ready", "lesson_code", event.LessonCode, "job_key", event.JobKey)
	default:
		return fmt.Errorf("unexpected channel %q", channel)
	}
	return nil
}

func (c *Consumer) Close() {
	if c.cancel != nil {
		c.cancel()
	}
	if c.done != nil {
		<-c.done
	}
}
