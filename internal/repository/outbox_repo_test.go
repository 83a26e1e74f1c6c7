package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

func TestOutboxRepository_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()
	now := time.Now()

	due := &models.OutboxEvent{Topic: models.TopicRoomStatusChanged, Aggregate: "room", AggregateID: 1,
		Payload: models.JSON{"number": "101"}}
	later := &models.OutboxEvent{Topic: models.TopicStayReserved, Aggregate: "stay", AggregateID: 2,
		NextAttemptAt: now.Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, due))
	require.NoError(t, repo.Create(ctx, later))

	events, err := repo.ListDue(ctx, now.Add(time.Second), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "101", events[0].Payload["number"])

	require.NoError(t, repo.MarkRetry(ctx, due.ID, now.Add(time.Minute), "broker caído"))
	events, err = repo.ListDue(ctx, now.Add(time.Second), 10)
	require.NoError(t, err)
	assert.Empty(t, events)

	require.NoError(t, repo.MarkSent(ctx, due.ID, now))
	require.NoError(t, repo.MarkFailed(ctx, later.ID, "sin teléfono"))

	sent, err := repo.CountByStatus(ctx, models.OutboxStatusSent)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sent)

	var reloaded models.OutboxEvent
	require.NoError(t, db.First(&reloaded, due.ID).Error)
	assert.Equal(t, 2, reloaded.Attempts)
	assert.Nil(t, reloaded.LastError)
}
