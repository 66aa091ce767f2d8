package event

import (
	"github.com/facturio/backend/internal/domain/document"
)

// RegisterDocumentEvents registers every financial document event type with
// the serializer so outbox payloads can be turned back into typed events.
func RegisterDocumentEvents(s *EventSerializer) {
	s.Register(document.EventTypeDocumentCreated, &document.DocumentCreatedEvent{})
	s.Register(document.EventTypeDocumentSent, &document.DocumentSentEvent{})
	s.Register(document.EventTypeDocumentAccepted, &document.DocumentAcceptedEvent{})
	s.Register(document.EventTypeDocumentRejected, &document.DocumentRejectedEvent{})
	s.Register(document.EventTypeDocumentConverted, &document.DocumentConvertedEvent{})
	s.Register(document.EventTypeDocumentPaymentRecorded, &document.DocumentPaymentRecordedEvent{})
	s.Register(document.EventTypeDocumentPaid, &document.DocumentPaidEvent{})
	s.Register(document.EventTypeDocumentOverdue, &document.DocumentOverdueEvent{})
	s.Register(document.EventTypeDocumentCancelled, &document.DocumentCancelledEvent{})
	s.Register(document.EventTypeDocumentDeleted, &document.DocumentDeletedEvent{})
}
