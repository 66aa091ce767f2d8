package event

import (
	"context"
	"fmt"

	"github.com/facturio/backend/internal/domain/shared"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OutboxPublisher publishes events by persisting them to the outbox table.
// A background OutboxProcessor later delivers them to the event bus, so
// event publication shares the fate of the business transaction.
type OutboxPublisher struct {
	repo       *GormOutboxRepository
	serializer *EventSerializer
	logger     *zap.Logger
}

// NewOutboxPublisher creates a new outbox publisher
func NewOutboxPublisher(repo *GormOutboxRepository, serializer *EventSerializer, logger *zap.Logger) *OutboxPublisher {
	return &OutboxPublisher{
		repo:       repo,
		serializer: serializer,
		logger:     logger,
	}
}

// Publish serializes the events and saves them as pending outbox entries
func (p *OutboxPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return p.save(ctx, p.repo, events)
}

// PublishWithTx saves the events within an existing transaction so they
// commit or roll back together with the aggregate changes
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error {
	return p.save(ctx, p.repo.WithTx(tx), events)
}

func (p *OutboxPublisher) save(ctx context.Context, repo *GormOutboxRepository, events []shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		if !p.serializer.IsRegistered(event.EventType()) {
			p.logger.Warn("publishing unregistered event type, deserialization will fail",
				zap.String("event_type", event.EventType()),
			)
		}

		payload, err := p.serializer.Serialize(event)
		if err != nil {
			return fmt.Errorf("failed to serialize event %s: %w", event.EventType(), err)
		}
		entries = append(entries, shared.NewOutboxEntry(event, payload))
	}

	if err := repo.Save(ctx, entries...); err != nil {
		return fmt.Errorf("failed to save outbox entries: %w", err)
	}

	p.logger.Debug("events written to outbox",
		zap.Int("count", len(entries)),
	)
	return nil
}

// Ensure OutboxPublisher implements EventPublisher
var _ shared.EventPublisher = (*OutboxPublisher)(nil)
