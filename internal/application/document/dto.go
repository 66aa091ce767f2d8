package document

import (
	"time"

	"github.com/facturio/backend/internal/domain/document"
	"github.com/facturio/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ==================== Request DTOs ====================

// CreateDocumentRequest represents a request to create a quote or invoice
type CreateDocumentRequest struct {
	CompanyID  valueobject.Identifier    `json:"company_id"`
	ClientID   valueobject.Identifier    `json:"client_id"`
	IssueDate  *time.Time                `json:"issue_date"`
	DueDate    *time.Time                `json:"due_date"`    // Invoices
	ValidUntil *time.Time                `json:"valid_until"` // Quotes
	Currency   valueobject.Currency      `json:"currency"`
	Lines      []CreateLineInput         `json:"lines"`
	Discount   *DiscountInput            `json:"discount"`
}

// CreateLineInput represents a line in the create document request
type CreateLineInput struct {
	Type        document.LineType `json:"type"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Quantity    decimal.Decimal   `json:"quantity"`
	Unit        string            `json:"unit"`
	UnitPrice   decimal.Decimal   `json:"unit_price"`
	VatRate     decimal.Decimal   `json:"vat_rate"`
	CountryCode string            `json:"country_code"`
	Discount    *DiscountInput    `json:"discount"`
}

// DiscountInput represents a percent or fixed discount
type DiscountInput struct {
	Type  document.DiscountType `json:"type"`
	Value decimal.Decimal       `json:"value"`
}

// UpdateDocumentRequest represents a request to update a draft document header
type UpdateDocumentRequest struct {
	ClientID   valueobject.Identifier `json:"client_id"`
	IssueDate  time.Time              `json:"issue_date"`
	DueDate    *time.Time             `json:"due_date"`    // Invoices
	ValidUntil *time.Time             `json:"valid_until"` // Quotes
}

// AddLineRequest represents a request to add a line to a draft document
type AddLineRequest struct {
	Type        document.LineType `json:"type"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Quantity    decimal.Decimal   `json:"quantity"`
	Unit        string            `json:"unit"`
	UnitPrice   decimal.Decimal   `json:"unit_price"`
	VatRate     decimal.Decimal   `json:"vat_rate"`
	CountryCode string            `json:"country_code"`
}

// UpdateLineRequest represents a request to update an existing line
type UpdateLineRequest struct {
	Title       string          `json:"title"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VatRate     decimal.Decimal `json:"vat_rate"`
	CountryCode string          `json:"country_code"`
}

// AcceptQuoteRequest carries the optional acceptance signature payload
type AcceptQuoteRequest struct {
	Signature string `json:"signature"`
}

// RejectQuoteRequest carries the mandatory rejection reason
type RejectQuoteRequest struct {
	Reason string `json:"reason"`
}

// ConvertQuoteRequest represents a request to convert a quote to an invoice
type ConvertQuoteRequest struct {
	IssueDate *time.Time `json:"issue_date"`
	DueDate   *time.Time `json:"due_date"`
}

// RecordPaymentRequest represents a payment applied to an invoice
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
}

// CancelDocumentRequest carries the mandatory cancellation reason
type CancelDocumentRequest struct {
	Reason string `json:"reason"`
}

// DocumentListFilter represents filtering options for listing documents
type DocumentListFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	ClientID *valueobject.Identifier
	Status   *document.DocumentStatus
	Statuses []document.DocumentStatus
}

// ==================== Response DTOs ====================

// MoneyResponse renders a monetary value with its currency
type MoneyResponse struct {
	Amount   string               `json:"amount"`
	Currency valueobject.Currency `json:"currency"`
}

func toMoneyResponse(m valueobject.Money) MoneyResponse {
	return MoneyResponse{
		Amount:   m.StringFixed(2),
		Currency: m.Currency(),
	}
}

// LineResponse represents a document line in API responses
type LineResponse struct {
	ID          valueobject.Identifier `json:"id"`
	Type        document.LineType      `json:"type"`
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	Quantity    string                 `json:"quantity"`
	Unit        string                 `json:"unit,omitempty"`
	UnitPrice   MoneyResponse          `json:"unit_price"`
	VatRate     string                 `json:"vat_rate"`
	Discount    *DiscountInput         `json:"discount,omitempty"`
	Position    int                    `json:"position"`
	SubtotalNet MoneyResponse          `json:"subtotal_net"`
	TaxAmount   MoneyResponse          `json:"tax_amount"`
}

// PaymentResponse represents a recorded payment in API responses
type PaymentResponse struct {
	ID         valueobject.Identifier `json:"id"`
	Amount     MoneyResponse          `json:"amount"`
	Reference  string                 `json:"reference,omitempty"`
	ReceivedAt time.Time              `json:"received_at"`
}

// DocumentResponse represents a full document in API responses
type DocumentResponse struct {
	ID                  valueobject.Identifier  `json:"id"`
	Type                document.DocumentType   `json:"type"`
	CompanyID           valueobject.Identifier  `json:"company_id"`
	ClientID            valueobject.Identifier  `json:"client_id"`
	DocumentNumber      string                  `json:"document_number"`
	IssueDate           time.Time               `json:"issue_date"`
	DueDate             *time.Time              `json:"due_date,omitempty"`
	ValidUntil          *time.Time              `json:"valid_until,omitempty"`
	Status              document.DocumentStatus `json:"status"`
	Currency            valueobject.Currency    `json:"currency"`
	Discount            *DiscountInput          `json:"discount,omitempty"`
	Lines               []LineResponse          `json:"lines"`
	SubtotalNet         MoneyResponse           `json:"subtotal_net"`
	DiscountAmount      MoneyResponse           `json:"discount_amount"`
	TotalNet            MoneyResponse           `json:"total_net"`
	TotalTax            MoneyResponse           `json:"total_tax"`
	TotalGross          MoneyResponse           `json:"total_gross"`
	AmountPaid          *MoneyResponse          `json:"amount_paid,omitempty"`
	AmountDue           *MoneyResponse          `json:"amount_due,omitempty"`
	PaymentStatus       document.PaymentStatus  `json:"payment_status,omitempty"`
	Payments            []PaymentResponse       `json:"payments,omitempty"`
	SourceQuoteID       *valueobject.Identifier `json:"source_quote_id,omitempty"`
	ConvertedInvoiceID  *valueobject.Identifier `json:"converted_invoice_id,omitempty"`
	AcceptanceSignature string                  `json:"acceptance_signature,omitempty"`
	RejectionReason     string                  `json:"rejection_reason,omitempty"`
	CancelReason        string                  `json:"cancel_reason,omitempty"`
	SentAt              *time.Time              `json:"sent_at,omitempty"`
	AcceptedAt          *time.Time              `json:"accepted_at,omitempty"`
	PaidAt              *time.Time              `json:"paid_at,omitempty"`
	Version             int                     `json:"version"`
	CreatedAt           time.Time               `json:"created_at"`
	UpdatedAt           time.Time               `json:"updated_at"`
}

// DocumentListItemResponse is the compact representation for list views
type DocumentListItemResponse struct {
	ID             valueobject.Identifier  `json:"id"`
	Type           document.DocumentType   `json:"type"`
	ClientID       valueobject.Identifier  `json:"client_id"`
	DocumentNumber string                  `json:"document_number"`
	IssueDate      time.Time               `json:"issue_date"`
	Status         document.DocumentStatus `json:"status"`
	TotalGross     MoneyResponse           `json:"total_gross"`
	AmountDue      *MoneyResponse          `json:"amount_due,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
}

// ToDocumentResponse converts a domain document to its response DTO
func ToDocumentResponse(doc *document.FinancialDocument) DocumentResponse {
	lines := doc.ActiveLines()
	lineResponses := make([]LineResponse, 0, len(lines))
	for i := range lines {
		lineResponses = append(lineResponses, toLineResponse(&lines[i]))
	}

	resp := DocumentResponse{
		ID:                  doc.ID,
		Type:                doc.Type,
		CompanyID:           doc.CompanyID,
		ClientID:            doc.ClientID,
		DocumentNumber:      doc.DocumentNumber,
		IssueDate:           doc.IssueDate,
		DueDate:             doc.DueDate,
		ValidUntil:          doc.ValidUntil,
		Status:              doc.Status,
		Currency:            doc.Currency,
		Discount:            toDiscountInput(doc.Discount),
		Lines:               lineResponses,
		SubtotalNet:         toMoneyResponse(doc.SubtotalNet),
		DiscountAmount:      toMoneyResponse(doc.DiscountAmount),
		TotalNet:            toMoneyResponse(doc.TotalNet),
		TotalTax:            toMoneyResponse(doc.TotalTax),
		TotalGross:          toMoneyResponse(doc.TotalGross),
		SourceQuoteID:       doc.SourceQuoteID,
		ConvertedInvoiceID:  doc.ConvertedInvoiceID,
		AcceptanceSignature: doc.AcceptanceSignature,
		RejectionReason:     doc.RejectionReason,
		CancelReason:        doc.CancelReason,
		SentAt:              doc.SentAt,
		AcceptedAt:          doc.AcceptedAt,
		PaidAt:              doc.PaidAt,
		Version:             doc.GetVersion(),
		CreatedAt:           doc.GetCreatedAt(),
		UpdatedAt:           doc.GetUpdatedAt(),
	}

	if doc.IsInvoice() {
		paid := toMoneyResponse(doc.AmountPaid)
		due := toMoneyResponse(doc.AmountDue)
		resp.AmountPaid = &paid
		resp.AmountDue = &due
		resp.PaymentStatus = doc.PaymentStatus
		resp.Payments = toPaymentResponses(doc.Payments)
	}

	return resp
}

// ToDocumentListItemResponses converts domain documents to list item DTOs
func ToDocumentListItemResponses(docs []*document.FinancialDocument) []DocumentListItemResponse {
	items := make([]DocumentListItemResponse, 0, len(docs))
	for _, doc := range docs {
		item := DocumentListItemResponse{
			ID:             doc.ID,
			Type:           doc.Type,
			ClientID:       doc.ClientID,
			DocumentNumber: doc.DocumentNumber,
			IssueDate:      doc.IssueDate,
			Status:         doc.Status,
			TotalGross:     toMoneyResponse(doc.TotalGross),
			CreatedAt:      doc.GetCreatedAt(),
		}
		if doc.IsInvoice() {
			due := toMoneyResponse(doc.AmountDue)
			item.AmountDue = &due
		}
		items = append(items, item)
	}
	return items
}

func toLineResponse(line *document.LineItem) LineResponse {
	return LineResponse{
		ID:          line.ID,
		Type:        line.Type,
		Title:       line.Title,
		Description: line.Description,
		Quantity:    line.Quantity.Amount().String(),
		Unit:        line.Quantity.Unit(),
		UnitPrice:   toMoneyResponse(line.UnitPrice),
		VatRate:     line.VatRate.Rate().String(),
		Discount:    toDiscountInput(line.Discount),
		Position:    line.Position,
		SubtotalNet: toMoneyResponse(line.SubtotalNet),
		TaxAmount:   toMoneyResponse(line.TaxAmount.RoundBank(2)),
	}
}

func toDiscountInput(d *document.Discount) *DiscountInput {
	if d == nil {
		return nil
	}
	return &DiscountInput{Type: d.Type, Value: d.Value}
}

func toPaymentResponses(payments document.PaymentRecords) []PaymentResponse {
	responses := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		responses = append(responses, PaymentResponse{
			ID:         p.ID,
			Amount:     toMoneyResponse(p.Money()),
			Reference:  p.Reference,
			ReceivedAt: p.ReceivedAt,
		})
	}
	return responses
}
