package document

import (
	"time"

	"github.com/facturio/backend/internal/domain/shared"
	"github.com/facturio/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeFinancialDocument = "FinancialDocument"

// Event type constants
const (
	EventTypeDocumentCreated         = "DocumentCreated"
	EventTypeDocumentSent            = "DocumentSent"
	EventTypeDocumentAccepted        = "DocumentAccepted"
	EventTypeDocumentRejected        = "DocumentRejected"
	EventTypeDocumentConverted       = "DocumentConverted"
	EventTypeDocumentPaymentRecorded = "DocumentPaymentRecorded"
	EventTypeDocumentPaid            = "DocumentPaid"
	EventTypeDocumentOverdue         = "DocumentOverdue"
	EventTypeDocumentCancelled       = "DocumentCancelled"
	EventTypeDocumentDeleted         = "DocumentDeleted"
)

// DocumentCreatedEvent is raised when a new document is created
type DocumentCreatedEvent struct {
	shared.BaseDomainEvent
	DocumentID     valueobject.Identifier `json:"document_id"`
	DocumentType   DocumentType           `json:"document_type"`
	DocumentNumber string                 `json:"document_number"`
	CompanyID      valueobject.Identifier `json:"company_id"`
	ClientID       valueobject.Identifier `json:"client_id"`
	Currency       valueobject.Currency   `json:"currency"`
}

// NewDocumentCreatedEvent creates a new DocumentCreatedEvent
func NewDocumentCreatedEvent(doc *FinancialDocument) *DocumentCreatedEvent {
	return &DocumentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentCreated, AggregateTypeFinancialDocument, doc.ID),
		DocumentID:      doc.ID,
		DocumentType:    doc.Type,
		DocumentNumber:  doc.DocumentNumber,
		CompanyID:       doc.CompanyID,
		ClientID:        doc.ClientID,
		Currency:        doc.Currency,
	}
}

// EventType returns the event type name
func (e *DocumentCreatedEvent) EventType() string {
	return EventTypeDocumentCreated
}

// DocumentSentEvent is raised when a document is sent to the client
type DocumentSentEvent struct {
	shared.BaseDomainEvent
	DocumentID     valueobject.Identifier `json:"document_id"`
	DocumentType   DocumentType           `json:"document_type"`
	DocumentNumber string                 `json:"document_number"`
	ClientID       valueobject.Identifier `json:"client_id"`
	TotalGross     decimal.Decimal        `json:"total_gross"`
	SentAt         time.Time              `json:"sent_at"`
}

// NewDocumentSentEvent creates a new DocumentSentEvent
func NewDocumentSentEvent(doc *FinancialDocument) *DocumentSentEvent {
	sentAt := time.Now()
	if doc.SentAt != nil {
		sentAt = *doc.SentAt
	}
	return &DocumentSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentSent, AggregateTypeFinancialDocument, doc.ID),
		DocumentID:      doc.ID,
		DocumentType:    doc.Type,
		DocumentNumber:  doc.DocumentNumber,
		ClientID:        doc.ClientID,
		TotalGross:      doc.TotalGross.Amount(),
		SentAt:          sentAt,
	}
}

// EventType returns the event type name
func (e *DocumentSentEvent) EventType() string {
	return EventTypeDocumentSent
}

// DocumentAcceptedEvent is raised when a quote is accepted
type DocumentAcceptedEvent struct {
	shared.BaseDomainEvent
	DocumentID     valueobject.Identifier `json:"document_id"`
	DocumentNumber string                 `json:"document_number"`
	ClientID       valueobject.Identifier `json:"client_id"`
	TotalGross     decimal.Decimal        `json:"total_gross"`
	Signature      string                 `json:"signature,omitempty"`
}

// NewDocumentAcceptedEvent creates a new DocumentAcceptedEvent
func NewDocumentAcceptedEvent(doc *FinancialDocument) *DocumentAcceptedEvent {
	return &DocumentAcceptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentAccepted, AggregateTypeFinancialDocument, doc.ID),
		DocumentID:      doc.ID,
		DocumentNumber:  doc.DocumentNumber,
		ClientID:        doc.ClientID,
		TotalGross:      doc.TotalGross.Amount(),
		Signature:       doc.AcceptanceSignature,
	}
}

// EventType returns the event type name
func (e *DocumentAcceptedEvent) EventType() string {
	return EventTypeDocumentAccepted
}

// DocumentRejectedEvent is raised when a quote is rejected
type DocumentRejectedEvent struct {
	shared.BaseDomainEvent
	DocumentID     valueobject.Identifier `json:"document_id"`
	DocumentNumber string                 `json:"document_number"`
	ClientID       valueobject.Identifier `json:"client_id"`
	Reason         string                 `json:"reason"`
}

// NewDocumentRejectedEvent creates a new DocumentRejectedEvent
func NewDocumentRejectedEvent(doc *FinancialDocument) *DocumentRejectedEvent {
	return &DocumentRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentRejected, AggregateTypeFinancialDocument, doc.ID),
		DocumentID:      doc.ID,
		DocumentNumber:  doc.DocumentNumber,
		ClientID:        doc.ClientID,
		Reason:          doc.RejectionReason,
	}
}

// EventType returns the event type name
func (e *DocumentRejectedEvent) EventType() string {
	return EventTypeDocumentRejected
}

// DocumentConvertedEvent is raised on the quote when it is converted to
// an invoice
type DocumentConvertedEvent struct {
	shared.BaseDomainEvent
	QuoteID       valueobject.Identifier `json:"quote_id"`
	QuoteNumber   string                 `json:"quote_number"`
	InvoiceID     valueobject.Identifier `json:"invoice_id"`
	InvoiceNumber string                 `json:"invoice_number"`
	ClientID      valueobject.Identifier `json:"client_id"`
	TotalGross    decimal.Decimal        `json:"total_gross"`
}

// NewDocumentConvertedEvent creates a new DocumentConvertedEvent
func NewDocumentConvertedEvent(quote, invoice *FinancialDocument) *DocumentConvertedEvent {
	return &DocumentConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentConverted, AggregateTypeFinancialDocument, quote.ID),
		QuoteID:         quote.ID,
		QuoteNumber:     quote.DocumentNumber,
		InvoiceID:       invoice.ID,
		InvoiceNumber:   invoice.DocumentNumber,
		ClientID:        quote.ClientID,
		TotalGross:      invoice.TotalGross.Amount(),
	}
}

// EventType returns the event type name
func (e *DocumentConvertedEvent) EventType() string {
	return EventTypeDocumentConverted
}

// DocumentPaymentRecordedEvent is raised when a partial payment is applied
type DocumentPaymentRecordedEvent struct {
	shared.BaseDomainEvent
	DocumentID     valueobject.Identifier `json:"document_id"`
	DocumentNumber string                 `json:"document_number"`
	Amount         decimal.Decimal        `json:"amount"`
	Currency       valueobject.Currency   `json:"currency"`
	Reference      string                 `json:"reference,omitempty"`
	AmountPaid     decimal.Decimal        `json:"amount_paid"`
	AmountDue      decimal.Decimal        `json:"amount_due"`
}

// NewDocumentPaymentRecordedEvent creates a new DocumentPaymentRecordedEvent
func NewDocumentPaymentRecordedEvent(doc *FinancialDocument, amount valueobject.Money, reference string) *DocumentPaymentRecordedEvent {
	return &DocumentPaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentPaymentRecorded, AggregateTypeFinancialDocument, doc.ID),
		DocumentID:      doc.ID,
		DocumentNumber:  doc.DocumentNumber,
		Amount:          amount.Amount(),
		Currency:        amount.Currency(),
		Reference:       reference,
		AmountPaid:      doc.AmountPaid.Amount(),
		AmountDue:       doc.AmountDue.Amount(),
	}
}

// EventType returns the event type name
func (e *DocumentPaymentRecordedEvent) EventType() string {
	return EventTypeDocumentPaymentRecorded
}

// DocumentPaidEvent is raised when an invoice is fully settled
type DocumentPaidEvent struct {
	shared.BaseDomainEvent
	DocumentID     valueobject.Identifier `json:"document_id"`
	DocumentNumber string                 `json:"document_number"`
	ClientID       valueobject.Identifier `json:"client_id"`
	TotalGross     decimal.Decimal        `json:"total_gross"`
	AmountPaid     decimal.Decimal        `json:"amount_paid"`
	PaidAt         time.Time              `json:"paid_at"`
}

// NewDocumentPaidEvent creates a new DocumentPaidEvent
func NewDocumentPaidEvent(doc *FinancialDocument) *DocumentPaidEvent {
	paidAt := time.Now()
	if doc.PaidAt != nil {
		paidAt = *doc.PaidAt
	}
	return &DocumentPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentPaid, AggregateTypeFinancialDocument, doc.ID),
		DocumentID:      doc.ID,
		DocumentNumber:  doc.DocumentNumber,
		ClientID:        doc.ClientID,
		TotalGross:      doc.TotalGross.Amount(),
		AmountPaid:      doc.AmountPaid.Amount(),
		PaidAt:          paidAt,
	}
}

// EventType returns the event type name
func (e *DocumentPaidEvent) EventType() string {
	return EventTypeDocumentPaid
}

// DocumentOverdueEvent is raised when an invoice passes its due date
type DocumentOverdueEvent struct {
	shared.BaseDomainEvent
	DocumentID     valueobject.Identifier `json:"document_id"`
	DocumentNumber string                 `json:"document_number"`
	ClientID       valueobject.Identifier `json:"client_id"`
	AmountDue      decimal.Decimal        `json:"amount_due"`
	DueDate        *time.Time             `json:"due_date,omitempty"`
}

// NewDocumentOverdueEvent creates a new DocumentOverdueEvent
func NewDocumentOverdueEvent(doc *FinancialDocument) *DocumentOverdueEvent {
	return &DocumentOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentOverdue, AggregateTypeFinancialDocument, doc.ID),
		DocumentID:      doc.ID,
		DocumentNumber:  doc.DocumentNumber,
		ClientID:        doc.ClientID,
		AmountDue:       doc.AmountDue.Amount(),
		DueDate:         doc.DueDate,
	}
}

// EventType returns the event type name
func (e *DocumentOverdueEvent) EventType() string {
	return EventTypeDocumentOverdue
}

// DocumentCancelledEvent is raised when a document is cancelled
type DocumentCancelledEvent struct {
	shared.BaseDomainEvent
	DocumentID     valueobject.Identifier `json:"document_id"`
	DocumentType   DocumentType           `json:"document_type"`
	DocumentNumber string                 `json:"document_number"`
	CancelReason   string                 `json:"cancel_reason"`
}

// NewDocumentCancelledEvent creates a new DocumentCancelledEvent
func NewDocumentCancelledEvent(doc *FinancialDocument) *DocumentCancelledEvent {
	return &DocumentCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentCancelled, AggregateTypeFinancialDocument, doc.ID),
		DocumentID:      doc.ID,
		DocumentType:    doc.Type,
		DocumentNumber:  doc.DocumentNumber,
		CancelReason:    doc.CancelReason,
	}
}

// EventType returns the event type name
func (e *DocumentCancelledEvent) EventType() string {
	return EventTypeDocumentCancelled
}

// DocumentDeletedEvent is raised when a draft document is soft-deleted
type DocumentDeletedEvent struct {
	shared.BaseDomainEvent
	DocumentID     valueobject.Identifier `json:"document_id"`
	DocumentType   DocumentType           `json:"document_type"`
	DocumentNumber string                 `json:"document_number"`
}

// NewDocumentDeletedEvent creates a new DocumentDeletedEvent
func NewDocumentDeletedEvent(doc *FinancialDocument) *DocumentDeletedEvent {
	return &DocumentDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentDeleted, AggregateTypeFinancialDocument, doc.ID),
		DocumentID:      doc.ID,
		DocumentType:    doc.Type,
		DocumentNumber:  doc.DocumentNumber,
	}
}

// EventType returns the event type name
func (e *DocumentDeletedEvent) EventType() string {
	return EventTypeDocumentDeleted
}
