package kafka_test

import (
	"context"
	"testing"
	"time"

	"nia-hrms/internal/messaging/kafka"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func outboxDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Discard,
	})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&kafka.OutboxEvent{}))
	return db
}

func pendingEvent(id string) kafka.OutboxEvent {
	return kafka.OutboxEvent{
		ID:            id,
		AggregateType: "leave_application",
		AggregateID:   "42",
		EventType:     "leave_submitted",
		Topic:         "hr.leave.notification.v1",
		Payload:       []byte(`{"leave_id":42}`),
		Status:        kafka.OutboxStatusPending,
	}
}

func TestOutboxRepository_PendingLifecycle(t *testing.T) {
	db := outboxDB(t)
	repo := kafka.NewOutboxRepository(db)
	ctx := context.Background()

	assert.NoError(t, repo.Create(ctx, pendingEvent("evt-1")))
	assert.NoError(t, repo.Create(ctx, pendingEvent("evt-2")))

	pending, err := repo.ListPending(ctx, 50)
	assert.NoError(t, err)
	assert.Len(t, pending, 2)

	assert.NoError(t, repo.MarkSent(ctx, "evt-1"))

	pending, err = repo.ListPending(ctx, 50)
	assert.NoError(t, err)
	if assert.Len(t, pending, 1) {
		assert.Equal(t, "evt-2", pending[0].ID)
	}

	var sent kafka.OutboxEvent
	assert.NoError(t, db.First(&sent, "id = ?", "evt-1").Error)
	assert.Equal(t, kafka.OutboxStatusSent, sent.Status)
	assert.NotNil(t, sent.ProcessedAt)
}

func TestOutboxRepository_ListPendingHonoursLimit(t *testing.T) {
	db := outboxDB(t)
	repo := kafka.NewOutboxRepository(db)
	ctx := context.Background()

	for _, id := range []string{"evt-1", "evt-2", "evt-3"} {
		assert.NoError(t, repo.Create(ctx, pendingEvent(id)))
	}

	pending, err := repo.ListPending(ctx, 2)
	assert.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestOutboxRepository_ListPendingSkipsDeferredRetries(t *testing.T) {
	db := outboxDB(t)
	repo := kafka.NewOutboxRepository(db)
	ctx := context.Background()

	deferred := pendingEvent("evt-deferred")
	deferred.Status = kafka.OutboxStatusFailed
	retryAt := time.Now().Add(time.Hour)
	deferred.NextRetryAt = &retryAt
	assert.NoError(t, repo.Create(ctx, deferred))

	due := pendingEvent("evt-due")
	due.Status = kafka.OutboxStatusFailed
	pastRetry := time.Now().Add(-time.Minute)
	due.NextRetryAt = &pastRetry
	assert.NoError(t, repo.Create(ctx, due))

	pending, err := repo.ListPending(ctx, 50)
	assert.NoError(t, err)
	if assert.Len(t, pending, 1) {
		assert.Equal(t, "evt-due", pending[0].ID)
	}
}

func TestValidateOutboxEvent(t *testing.T) {
	assert.NoError(t, kafka.ValidateOutboxEvent(pendingEvent("evt-1")))

	noID := pendingEvent("")
	assert.Error(t, kafka.ValidateOutboxEvent(noID))

	noTopic := pendingEvent("evt-1")
	noTopic.Topic = ""
	assert.Error(t, kafka.ValidateOutboxEvent(noTopic))

	noPayload := pendingEvent("evt-1")
	noPayload.Payload = nil
	assert.Error(t, kafka.ValidateOutboxEvent(noPayload))

	badStatus := pendingEvent("evt-1")
	badStatus.Status = "queued"
	assert.Error(t, kafka.ValidateOutboxEvent(badStatus))
}
