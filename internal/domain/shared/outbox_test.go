package shared

import (
	"testing"
	"time"

	"github.com/facturio/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOutboxEntry(t *testing.T) {
	event := NewBaseDomainEvent("TestEvent", "TestAggregate", valueobject.NewIdentifier())
	payload := []byte(`{"key":"value"}`)

	entry := NewOutboxEntry(&event, payload)

	assert.False(t, entry.ID.IsNil())
	assert.True(t, entry.EventID.Equals(event.EventID()))
	assert.Equal(t, "TestEvent", entry.EventType)
	assert.Equal(t, "TestAggregate", entry.AggregateType)
	assert.Equal(t, payload, entry.Payload)
	assert.Equal(t, OutboxStatusPending, entry.Status)
	assert.Equal(t, 0, entry.RetryCount)
	assert.Equal(t, DefaultMaxRetries, entry.MaxRetries)
}

func TestOutboxEntry_MarkProcessing(t *testing.T) {
	t.Run("marks pending entry", func(t *testing.T) {
		entry := &OutboxEntry{Status: OutboxStatusPending}
		require.NoError(t, entry.MarkProcessing())
		assert.Equal(t, OutboxStatusProcessing, entry.Status)
	})

	t.Run("marks failed entry", func(t *testing.T) {
		entry := &OutboxEntry{Status: OutboxStatusFailed}
		require.NoError(t, entry.MarkProcessing())
		assert.Equal(t, OutboxStatusProcessing, entry.Status)
	})

	t.Run("rejects other statuses", func(t *testing.T) {
		for _, status := range []OutboxStatus{OutboxStatusProcessing, OutboxStatusSent, OutboxStatusDead} {
			entry := &OutboxEntry{Status: status}
			assert.Error(t, entry.MarkProcessing())
		}
	})
}

func TestOutboxEntry_MarkSent(t *testing.T) {
	entry := &OutboxEntry{Status: OutboxStatusProcessing}

	entry.MarkSent()

	assert.Equal(t, OutboxStatusSent, entry.Status)
	require.NotNil(t, entry.ProcessedAt)
	assert.WithinDuration(t, time.Now(), *entry.ProcessedAt, time.Second)
}

func TestOutboxEntry_MarkFailed_ExponentialBackoff(t *testing.T) {
	entry := &OutboxEntry{
		Status:     OutboxStatusProcessing,
		RetryCount: 0,
		MaxRetries: 5,
	}

	// First failure: 1s backoff
	entry.MarkFailed("error 1")
	assert.Equal(t, OutboxStatusFailed, entry.Status)
	assert.Equal(t, 1, entry.RetryCount)
	require.NotNil(t, entry.NextRetryAt)
	firstBackoff := time.Until(*entry.NextRetryAt)
	assert.True(t, firstBackoff > 0 && firstBackoff <= 2*time.Second)

	// Second failure: 2s backoff
	entry.Status = OutboxStatusProcessing
	entry.MarkFailed("error 2")
	assert.Equal(t, 2, entry.RetryCount)
	secondBackoff := time.Until(*entry.NextRetryAt)
	assert.True(t, secondBackoff > time.Second && secondBackoff <= 3*time.Second)

	// Third failure: 4s backoff
	entry.Status = OutboxStatusProcessing
	entry.MarkFailed("error 3")
	assert.Equal(t, 3, entry.RetryCount)
	thirdBackoff := time.Until(*entry.NextRetryAt)
	assert.True(t, thirdBackoff > 3*time.Second && thirdBackoff <= 5*time.Second)
}

func TestOutboxEntry_MarkFailed_MovesToDeadAfterMaxRetries(t *testing.T) {
	entry := &OutboxEntry{
		Status:     OutboxStatusProcessing,
		RetryCount: 4,
		MaxRetries: 5,
	}

	entry.MarkFailed("final error")

	assert.Equal(t, OutboxStatusDead, entry.Status)
	assert.Equal(t, 5, entry.RetryCount)
	assert.Equal(t, "final error", entry.LastError)
	assert.True(t, entry.IsDead())
}

func TestOutboxEntry_CanRetry(t *testing.T) {
	assert.True(t, (&OutboxEntry{Status: OutboxStatusFailed, RetryCount: 2, MaxRetries: 5}).CanRetry())
	assert.False(t, (&OutboxEntry{Status: OutboxStatusFailed, RetryCount: 5, MaxRetries: 5}).CanRetry())
	assert.False(t, (&OutboxEntry{Status: OutboxStatusPending, RetryCount: 0, MaxRetries: 5}).CanRetry())
}

func TestOutboxEntry_ResetForRetry(t *testing.T) {
	t.Run("resets dead letter entry", func(t *testing.T) {
		now := time.Now()
		entry := &OutboxEntry{
			ID:          valueobject.NewIdentifier(),
			Status:      OutboxStatusDead,
			RetryCount:  5,
			MaxRetries:  5,
			LastError:   "some error",
			NextRetryAt: &now,
		}

		require.NoError(t, entry.ResetForRetry())
		assert.Equal(t, OutboxStatusPending, entry.Status)
		assert.Equal(t, 0, entry.RetryCount)
		assert.Empty(t, entry.LastError)
		assert.Nil(t, entry.NextRetryAt)
	})

	t.Run("rejects non-dead entries", func(t *testing.T) {
		for _, status := range []OutboxStatus{OutboxStatusPending, OutboxStatusProcessing, OutboxStatusSent, OutboxStatusFailed} {
			entry := &OutboxEntry{Status: status}
			err := entry.ResetForRetry()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "can only retry dead letter entries")
		}
	})
}
