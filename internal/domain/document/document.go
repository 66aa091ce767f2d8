package document

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/facturio/backend/internal/domain/shared"
	"github.com/facturio/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentRecord represents a payment applied to an invoice.
// It is a value object within the FinancialDocument aggregate, stored as
// JSONB at the persistence layer.
type PaymentRecord struct {
	ID         valueobject.Identifier `json:"id"`
	Amount     decimal.Decimal        `json:"amount"`
	Currency   valueobject.Currency   `json:"currency"`
	Reference  string                 `json:"reference,omitempty"`
	ReceivedAt time.Time              `json:"received_at"`
}

// NewPaymentRecord creates a new payment record
func NewPaymentRecord(amount valueobject.Money, reference string) PaymentRecord {
	return PaymentRecord{
		ID:         valueobject.NewIdentifier(),
		Amount:     amount.Amount(),
		Currency:   amount.Currency(),
		Reference:  reference,
		ReceivedAt: time.Now(),
	}
}

// Money returns the payment amount as a Money value object
func (p PaymentRecord) Money() valueobject.Money {
	m, _ := valueobject.NewMoney(p.Amount, p.Currency)
	return m
}

// PaymentRecords is a slice of PaymentRecord that implements the GORM
// Scanner/Valuer interfaces for JSONB storage
type PaymentRecords []PaymentRecord

// Value implements driver.Valuer for JSONB storage
func (p PaymentRecords) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB retrieval
func (p *PaymentRecords) Scan(value interface{}) error {
	if value == nil {
		*p = PaymentRecords{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PaymentRecords: unsupported type")
	}

	if len(bytes) == 0 {
		*p = PaymentRecords{}
		return nil
	}

	return json.Unmarshal(bytes, p)
}

// FinancialDocument is the aggregate root for quotes and invoices. It
// owns an ordered collection of line items, the document-level discount,
// the derived totals, the payment ledger (invoices) and the lifecycle
// state machine. State changes accumulate domain events that callers
// drain after each use case; the aggregate never calls infrastructure.
type FinancialDocument struct {
	shared.BaseAggregateRoot
	Type           DocumentType
	CompanyID      valueobject.Identifier
	ClientID       valueobject.Identifier
	DocumentNumber string
	IssueDate      time.Time
	DueDate        *time.Time // Invoices: payment deadline
	ValidUntil     *time.Time // Quotes: offer validity
	Status         DocumentStatus
	Currency       valueobject.Currency
	ExchangeRate   decimal.Decimal
	Discount       *Discount
	Lines          []LineItem

	// Derived amounts, recomputed atomically by every mutation
	SubtotalNet    valueobject.Money
	DiscountAmount valueobject.Money
	TotalNet       valueobject.Money
	TotalTax       valueobject.Money
	TotalGross     valueobject.Money
	AmountPaid     valueobject.Money // Invoices only
	AmountDue      valueobject.Money // Invoices only
	PaymentStatus  PaymentStatus
	Payments       PaymentRecords

	// Conversion back-references, by identifier only
	SourceQuoteID      *valueobject.Identifier // Invoice derived from a quote
	ConvertedInvoiceID *valueobject.Identifier // Quote converted to an invoice

	AcceptanceSignature string
	RejectionReason     string
	CancelReason        string

	SentAt      *time.Time
	AcceptedAt  *time.Time
	RejectedAt  *time.Time
	PaidAt      *time.Time
	CancelledAt *time.Time
	DeletedAt   *time.Time
}

func newDocument(docType DocumentType, companyID, clientID valueobject.Identifier, documentNumber string, issueDate time.Time, currency valueobject.Currency) (*FinancialDocument, error) {
	if companyID.IsNil() {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if clientID.IsNil() {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if documentNumber == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Document number cannot be empty")
	}
	if len(documentNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Document number cannot exceed 50 characters")
	}
	if len(currency) != 3 {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency code must be exactly 3 letters")
	}

	doc := &FinancialDocument{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              docType,
		CompanyID:         companyID,
		ClientID:          clientID,
		DocumentNumber:    documentNumber,
		IssueDate:         issueDate,
		Status:            StatusDraft,
		Currency:          currency,
		ExchangeRate:      decimal.NewFromInt(1),
		Lines:             make([]LineItem, 0),
		SubtotalNet:       valueobject.Zero(currency),
		DiscountAmount:    valueobject.Zero(currency),
		TotalNet:          valueobject.Zero(currency),
		TotalTax:          valueobject.Zero(currency),
		TotalGross:        valueobject.Zero(currency),
		AmountPaid:        valueobject.Zero(currency),
		AmountDue:         valueobject.Zero(currency),
		PaymentStatus:     PaymentStatusNone,
		Payments:          PaymentRecords{},
	}

	doc.AddDomainEvent(NewDocumentCreatedEvent(doc))

	return doc, nil
}

// NewQuote creates a new quote in draft status
func NewQuote(companyID, clientID valueobject.Identifier, documentNumber string, issueDate time.Time, validUntil *time.Time, currency valueobject.Currency) (*FinancialDocument, error) {
	doc, err := newDocument(TypeQuote, companyID, clientID, documentNumber, issueDate, currency)
	if err != nil {
		return nil, err
	}
	doc.ValidUntil = validUntil
	return doc, nil
}

// NewInvoice creates a new invoice in draft status
func NewInvoice(companyID, clientID valueobject.Identifier, documentNumber string, issueDate time.Time, dueDate *time.Time, currency valueobject.Currency) (*FinancialDocument, error) {
	doc, err := newDocument(TypeInvoice, companyID, clientID, documentNumber, issueDate, currency)
	if err != nil {
		return nil, err
	}
	doc.DueDate = dueDate
	return doc, nil
}

// IsQuote returns true for quote documents
func (d *FinancialDocument) IsQuote() bool {
	return d.Type == TypeQuote
}

// IsInvoice returns true for invoice documents
func (d *FinancialDocument) IsInvoice() bool {
	return d.Type == TypeInvoice
}

// CanModify returns true if lines and discounts may still change
func (d *FinancialDocument) CanModify() bool {
	return d.Status.IsEditable()
}

// UpdateDetails changes the document header while it is still a draft.
// DueDate applies to invoices, ValidUntil to quotes; the field that does
// not match the document type is ignored.
func (d *FinancialDocument) UpdateDetails(clientID valueobject.Identifier, issueDate time.Time, dueDate, validUntil *time.Time) error {
	if !d.CanModify() {
		return shared.NewDomainError("INVALID_STATE", "Cannot update a non-draft document")
	}
	if clientID.IsNil() {
		return shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}

	d.ClientID = clientID
	d.IssueDate = issueDate
	if d.IsInvoice() {
		d.DueDate = dueDate
	} else {
		d.ValidUntil = validUntil
	}
	d.Touch()
	return nil
}

// AddLine appends a new line to the document and recalculates totals.
// Only allowed while the document is editable.
func (d *FinancialDocument) AddLine(lineType LineType, title string, quantity valueobject.Quantity, unitPrice valueobject.Money, vatRate valueobject.VatRate) (*LineItem, error) {
	if !d.CanModify() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add lines to a non-draft document")
	}
	if lineType.IsBillable() && unitPrice.Currency() != d.Currency {
		return nil, fmt.Errorf("line price in %s on a %s document: %w", unitPrice.Currency(), d.Currency, valueobject.ErrCurrencyMismatch)
	}

	line, err := NewLineItem(d.ID, lineType, title, quantity, unitPrice, vatRate, d.nextPosition())
	if err != nil {
		return nil, err
	}

	d.Lines = append(d.Lines, *line)
	d.recalculateTotals()
	d.Touch()

	return &d.Lines[len(d.Lines)-1], nil
}

// UpdateLine updates an existing line and recalculates totals
func (d *FinancialDocument) UpdateLine(lineID valueobject.Identifier, title string, quantity valueobject.Quantity, unitPrice valueobject.Money, vatRate valueobject.VatRate) error {
	if !d.CanModify() {
		return shared.NewDomainError("INVALID_STATE", "Cannot update lines on a non-draft document")
	}

	line := d.findLine(lineID)
	if line == nil {
		return shared.NewDomainError("LINE_NOT_FOUND", "Document line not found")
	}
	if line.Type.IsBillable() && unitPrice.Currency() != d.Currency {
		return fmt.Errorf("line price in %s on a %s document: %w", unitPrice.Currency(), d.Currency, valueobject.ErrCurrencyMismatch)
	}
	if err := line.Update(title, quantity, unitPrice, vatRate); err != nil {
		return err
	}
	d.recalculateTotals()
	d.Touch()
	return nil
}

// SetLineDiscount applies a discount to a single line and recalculates totals
func (d *FinancialDocument) SetLineDiscount(lineID valueobject.Identifier, discountType DiscountType, value decimal.Decimal) error {
	if !d.CanModify() {
		return shared.NewDomainError("INVALID_STATE", "Cannot change line discounts on a non-draft document")
	}

	line := d.findLine(lineID)
	if line == nil {
		return shared.NewDomainError("LINE_NOT_FOUND", "Document line not found")
	}
	if err := line.SetDiscount(discountType, value); err != nil {
		return err
	}
	d.recalculateTotals()
	d.Touch()
	return nil
}

// RemoveLine soft-deletes a line and recalculates totals.
// Returns NOT_FOUND if the document does not own the line.
func (d *FinancialDocument) RemoveLine(lineID valueobject.Identifier) error {
	if !d.CanModify() {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove lines from a non-draft document")
	}

	line := d.findLine(lineID)
	if line == nil {
		return shared.NewDomainError("LINE_NOT_FOUND", "Document line not found")
	}
	line.MarkDeleted()
	d.recalculateTotals()
	d.Touch()
	return nil
}

// SetDiscount applies a document-level discount and recalculates totals
func (d *FinancialDocument) SetDiscount(discountType DiscountType, value decimal.Decimal) error {
	if !d.CanModify() {
		return shared.NewDomainError("INVALID_STATE", "Cannot change the discount on a non-draft document")
	}
	if !discountType.IsValid() {
		return shared.NewDomainError("INVALID_DISCOUNT_TYPE", "Discount type must be percent or amount")
	}
	if value.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount value cannot be negative")
	}

	d.Discount = &Discount{Type: discountType, Value: value}
	d.recalculateTotals()
	d.Touch()
	return nil
}

// ClearDiscount removes the document-level discount and recalculates totals
func (d *FinancialDocument) ClearDiscount() error {
	if !d.CanModify() {
		return shared.NewDomainError("INVALID_STATE", "Cannot change the discount on a non-draft document")
	}
	d.Discount = nil
	d.recalculateTotals()
	d.Touch()
	return nil
}

// Send transitions the document from draft to sent
func (d *FinancialDocument) Send() error {
	if !d.Status.CanTransitionTo(d.Type, StatusSent) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send document in %s status", d.Status))
	}

	now := time.Now()
	d.Status = StatusSent
	d.SentAt = &now
	d.Touch()

	d.AddDomainEvent(NewDocumentSentEvent(d))

	return nil
}

// MarkPending marks a sent quote as awaiting a client response
func (d *FinancialDocument) MarkPending() error {
	if !d.IsQuote() {
		return shared.NewDomainError("INVALID_STATE", "Only quotes can be marked pending")
	}
	if !d.Status.CanTransitionTo(d.Type, StatusPending) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark document pending in %s status", d.Status))
	}

	d.Status = StatusPending
	d.Touch()
	return nil
}

// Accept records client acceptance of a quote. The signature payload is
// stored opaquely and echoed in the event.
func (d *FinancialDocument) Accept(signature string) error {
	if !d.IsQuote() {
		return shared.NewDomainError("INVALID_STATE", "Only quotes can be accepted")
	}
	if !d.Status.CanTransitionTo(d.Type, StatusAccepted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot accept document in %s status", d.Status))
	}

	now := time.Now()
	d.Status = StatusAccepted
	d.AcceptedAt = &now
	d.AcceptanceSignature = signature
	d.Touch()

	d.AddDomainEvent(NewDocumentAcceptedEvent(d))

	return nil
}

// Reject records client rejection of a quote. A reason is required.
func (d *FinancialDocument) Reject(reason string) error {
	if !d.IsQuote() {
		return shared.NewDomainError("INVALID_STATE", "Only quotes can be rejected")
	}
	if !d.Status.CanTransitionTo(d.Type, StatusRejected) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject document in %s status", d.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}

	now := time.Now()
	d.Status = StatusRejected
	d.RejectedAt = &now
	d.RejectionReason = reason
	d.Touch()

	d.AddDomainEvent(NewDocumentRejectedEvent(d))

	return nil
}

// ConvertToInvoice derives a new draft invoice from an accepted quote.
// A quote produces at most one invoice; the guard checks the
// back-reference, not the status alone. Lines and the discount
// configuration are copied; the new aggregate shares no mutable state
// with the quote.
func (d *FinancialDocument) ConvertToInvoice(invoiceNumber string, issueDate time.Time, dueDate *time.Time) (*FinancialDocument, error) {
	if !d.IsQuote() {
		return nil, shared.NewDomainError("INVALID_STATE", "Only quotes can be converted to invoices")
	}
	if d.ConvertedInvoiceID != nil {
		return nil, shared.NewDomainError("ALREADY_CONVERTED", "Quote has already been converted to an invoice")
	}
	if !d.Status.CanTransitionTo(d.Type, StatusConverted) {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot convert document in %s status", d.Status))
	}

	invoice, err := NewInvoice(d.CompanyID, d.ClientID, invoiceNumber, issueDate, dueDate, d.Currency)
	if err != nil {
		return nil, err
	}
	invoice.ExchangeRate = d.ExchangeRate

	for i := range d.Lines {
		src := &d.Lines[i]
		if src.IsDeleted() {
			continue
		}
		line, err := invoice.AddLine(src.Type, src.Title, src.Quantity, src.UnitPrice, src.VatRate)
		if err != nil {
			return nil, err
		}
		if src.Description != "" {
			line.SetDescription(src.Description)
		}
		if src.Discount != nil {
			if err := invoice.SetLineDiscount(line.ID, src.Discount.Type, src.Discount.Value); err != nil {
				return nil, err
			}
		}
	}
	if d.Discount != nil {
		if err := invoice.SetDiscount(d.Discount.Type, d.Discount.Value); err != nil {
			return nil, err
		}
	}

	sourceID := d.ID
	invoice.SourceQuoteID = &sourceID
	invoiceID := invoice.ID
	d.ConvertedInvoiceID = &invoiceID

	d.Status = StatusConverted
	d.Touch()

	d.AddDomainEvent(NewDocumentConvertedEvent(d, invoice))

	return invoice, nil
}

// RecordPayment applies a payment to an invoice. The amount must be in
// the invoice currency and strictly positive. The invoice transitions to
// paid once the paid total reaches the gross total.
func (d *FinancialDocument) RecordPayment(amount valueobject.Money, reference string) error {
	if !d.IsInvoice() {
		return shared.NewDomainError("INVALID_STATE", "Payments can only be recorded on invoices")
	}
	switch d.Status {
	case StatusSent, StatusPartial, StatusOverdue:
		// Payments accepted
	default:
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record a payment on an invoice in %s status", d.Status))
	}
	if amount.Currency() != d.Currency {
		return fmt.Errorf("payment in %s on a %s invoice: %w", amount.Currency(), d.Currency, valueobject.ErrCurrencyMismatch)
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	d.Payments = append(d.Payments, NewPaymentRecord(amount, reference))

	paid, err := d.AmountPaid.Add(amount)
	if err != nil {
		return err
	}
	d.AmountPaid = paid
	d.AmountDue, _ = d.TotalGross.SubtractClamped(d.AmountPaid)

	settled, err := d.AmountPaid.GreaterThanOrEqual(d.TotalGross)
	if err != nil {
		return err
	}
	if settled {
		now := time.Now()
		d.Status = StatusPaid
		d.PaymentStatus = PaymentStatusPaid
		d.PaidAt = &now
		d.AddDomainEvent(NewDocumentPaidEvent(d))
	} else {
		d.Status = StatusPartial
		d.PaymentStatus = PaymentStatusPartial
		d.AddDomainEvent(NewDocumentPaymentRecordedEvent(d, amount, reference))
	}

	d.Touch()

	return nil
}

// MarkOverdue flags an invoice whose due date has passed. Only meaningful
// for sent or partially paid invoices with a due date in the past.
func (d *FinancialDocument) MarkOverdue(now time.Time) error {
	if !d.IsInvoice() {
		return shared.NewDomainError("INVALID_STATE", "Only invoices can be marked overdue")
	}
	if !d.Status.CanTransitionTo(d.Type, StatusOverdue) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark an invoice overdue in %s status", d.Status))
	}
	if d.DueDate == nil || !d.DueDate.Before(now) {
		return shared.NewDomainError("INVALID_STATE", "Invoice due date has not passed")
	}

	d.Status = StatusOverdue
	d.Touch()

	d.AddDomainEvent(NewDocumentOverdueEvent(d))

	return nil
}

// IsOverdue returns true if the document is past its due date and not settled
func (d *FinancialDocument) IsOverdue(now time.Time) bool {
	if !d.IsInvoice() || d.Status.IsTerminal() {
		return false
	}
	return d.DueDate != nil && d.DueDate.Before(now)
}

// Cancel cancels the document. Forbidden from paid or cancelled.
func (d *FinancialDocument) Cancel(reason string) error {
	if !d.Status.CanTransitionTo(d.Type, StatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel document in %s status", d.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	d.Status = StatusCancelled
	d.CancelledAt = &now
	d.CancelReason = reason
	d.Touch()

	d.AddDomainEvent(NewDocumentCancelledEvent(d))

	return nil
}

// Delete soft-deletes the document. Only permitted from draft; quotes
// that have been accepted or converted can never be deleted.
func (d *FinancialDocument) Delete() error {
	if d.IsQuote() && (d.AcceptedAt != nil || d.ConvertedInvoiceID != nil) {
		return shared.NewDomainError("INVALID_STATE", "Cannot delete a quote that has been accepted or converted")
	}
	if !d.Status.CanTransitionTo(d.Type, StatusDeleted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot delete document in %s status", d.Status))
	}

	now := time.Now()
	d.Status = StatusDeleted
	d.DeletedAt = &now
	d.Touch()

	d.AddDomainEvent(NewDocumentDeletedEvent(d))

	return nil
}

// RecalculateTotals re-derives the document totals from the current lines
// and discount. Idempotent: calling it twice with no intervening mutation
// yields identical totals.
func (d *FinancialDocument) RecalculateTotals() {
	d.recalculateTotals()
}

func (d *FinancialDocument) recalculateTotals() {
	totals := CalculateTotals(d.Lines, d.Discount, d.Currency)
	d.SubtotalNet = totals.SubtotalNet
	d.DiscountAmount = totals.DiscountAmount
	d.TotalNet = totals.TotalNet
	d.TotalTax = totals.TotalTax
	d.TotalGross = totals.TotalGross

	if d.IsInvoice() {
		d.AmountDue, _ = d.TotalGross.SubtractClamped(d.AmountPaid)
	}
}

// ActiveLines returns the lines that have not been soft-deleted, in position order
func (d *FinancialDocument) ActiveLines() []LineItem {
	lines := make([]LineItem, 0, len(d.Lines))
	for i := range d.Lines {
		if !d.Lines[i].IsDeleted() {
			lines = append(lines, d.Lines[i])
		}
	}
	return lines
}

// LineCount returns the number of active lines
func (d *FinancialDocument) LineCount() int {
	return len(d.ActiveLines())
}

// GetLine returns a line by its identifier, or nil if not owned
func (d *FinancialDocument) GetLine(lineID valueobject.Identifier) *LineItem {
	return d.findLine(lineID)
}

func (d *FinancialDocument) findLine(lineID valueobject.Identifier) *LineItem {
	for i := range d.Lines {
		if d.Lines[i].ID.Equals(lineID) && !d.Lines[i].IsDeleted() {
			return &d.Lines[i]
		}
	}
	return nil
}

func (d *FinancialDocument) nextPosition() int {
	max := 0
	for i := range d.Lines {
		if d.Lines[i].Position > max {
			max = d.Lines[i].Position
		}
	}
	return max + 1
}
