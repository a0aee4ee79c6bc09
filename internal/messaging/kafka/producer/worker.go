package producer

import (
	"context"
	"time"

	"nia-hrms/internal/messaging/kafka"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	defaultDrainInterval = 2 * time.Second
	defaultDrainBatch    = 100
)

// Worker drains due rows from the outbox table into kafka. Failed rows
// are rescheduled by the repository with an increasing retry delay, so a
// broker outage only delays delivery.
type Worker struct {
	repo   kafka.OutboxRepository
	writer *kafkago.Writer
	logger *zap.Logger

	interval time.Duration
	batch    int
}

func NewWorker(repo kafka.OutboxRepository, writer *kafkago.Writer, logger *zap.Logger, interval time.Duration, batch int) *Worker {
	if interval <= 0 {
		interval = defaultDrainInterval
	}
	if batch <= 0 {
		batch = defaultDrainBatch
	}
	return &Worker{
		repo:     repo,
		writer:   writer,
		logger:   logger.Named("outbox.worker"),
		interval: interval,
		batch:    batch,
	}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("outbox drain started",
		zap.Duration("interval", w.interval),
		zap.Int("batch", w.batch),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("outbox drain stopped")
			return
		case <-ticker.C:
			sent, failed, err := w.drainOnce(ctx)
			if err != nil {
				w.logger.Error("outbox drain pass failed", zap.Error(err))
				continue
			}
			if sent > 0 || failed > 0 {
				w.logger.Info("outbox drain pass",
					zap.Int("sent", sent),
					zap.Int("failed", failed),
				)
			}
		}
	}
}

func (w *Worker) drainOnce(ctx context.Context) (sent, failed int, err error) {
	due, err := w.repo.ListPending(ctx, w.batch)
	if err != nil {
		return 0, 0, err
	}

	for _, event := range due {
		if err := kafka.ValidateOutboxEvent(event); err != nil {
			// malformed row; park it as failed so it stops blocking the queue
			w.logger.Warn("skipping malformed outbox row",
				zap.String("outbox_id", event.ID),
				zap.Error(err),
			)
			_ = w.repo.MarkFailed(ctx, event.ID, err.Error())
			failed++
			continue
		}

		if err := publishEvent(ctx, w.writer, event); err != nil {
			w.logger.Error("publish failed",
				zap.String("outbox_id", event.ID),
				zap.String("topic", event.Topic),
				zap.Int("retry_count", event.RetryCount),
				zap.Error(err),
			)
			_ = w.repo.MarkFailed(ctx, event.ID, err.Error())
			failed++
			continue
		}

		if err := w.repo.MarkSent(ctx, event.ID); err != nil {
			w.logger.Error("mark sent failed",
				zap.String("outbox_id", event.ID),
				zap.Error(err),
			)
			failed++
			continue
		}

		w.logger.Debug("event delivered",
			zap.String("outbox_id", event.ID),
			zap.String("event_type", event.EventType),
		)
		sent++
	}

	return sent, failed, nil
}
