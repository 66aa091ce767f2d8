package models

import (
	"time"

	"github.com/facturio/backend/internal/domain/document"
	"github.com/facturio/backend/internal/domain/shared"
	"github.com/facturio/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// FinancialDocumentModel is the persistence model for the FinancialDocument
// aggregate root. Monetary columns store the decimal magnitude; the document
// currency lives in its own column and is reattached when mapping back to
// the domain.
type FinancialDocumentModel struct {
	AggregateModel
	Type                document.DocumentType   `gorm:"type:varchar(10);not null;index"`
	CompanyID           valueobject.Identifier  `gorm:"type:uuid;not null;index;uniqueIndex:idx_document_company_number,priority:1"`
	ClientID            valueobject.Identifier  `gorm:"type:uuid;not null;index"`
	DocumentNumber      string                  `gorm:"type:varchar(50);not null;uniqueIndex:idx_document_company_number,priority:2"`
	IssueDate           time.Time               `gorm:"not null"`
	DueDate             *time.Time              `gorm:"index"`
	ValidUntil          *time.Time
	Status              document.DocumentStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Currency            valueobject.Currency    `gorm:"type:varchar(3);not null;default:'EUR'"`
	ExchangeRate        decimal.Decimal         `gorm:"type:decimal(18,6);not null;default:1"`
	DiscountType        *document.DiscountType  `gorm:"type:varchar(10)"`
	DiscountValue       decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	Lines               []DocumentLineModel     `gorm:"foreignKey:DocumentID;references:ID"`
	SubtotalNet         decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount      decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	TotalNet            decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	TotalTax            decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	TotalGross          decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	AmountPaid          decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	AmountDue           decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentStatus       document.PaymentStatus  `gorm:"type:varchar(10);not null;default:'NONE'"`
	Payments            document.PaymentRecords `gorm:"type:jsonb"`
	SourceQuoteID       *valueobject.Identifier `gorm:"type:uuid;index"`
	ConvertedInvoiceID  *valueobject.Identifier `gorm:"type:uuid"`
	AcceptanceSignature string                  `gorm:"type:text"`
	RejectionReason     string                  `gorm:"type:varchar(500)"`
	CancelReason        string                  `gorm:"type:varchar(500)"`
	SentAt              *time.Time
	AcceptedAt          *time.Time
	RejectedAt          *time.Time
	PaidAt              *time.Time
	CancelledAt         *time.Time
	DeletedAt           *time.Time
}

// TableName returns the table name for GORM
func (FinancialDocumentModel) TableName() string {
	return "financial_documents"
}

// ToDomain converts the persistence model to a domain FinancialDocument aggregate.
func (m *FinancialDocumentModel) ToDomain() *document.FinancialDocument {
	doc := &document.FinancialDocument{
		Type:                m.Type,
		CompanyID:           m.CompanyID,
		ClientID:            m.ClientID,
		DocumentNumber:      m.DocumentNumber,
		IssueDate:           m.IssueDate,
		DueDate:             m.DueDate,
		ValidUntil:          m.ValidUntil,
		Status:              m.Status,
		Currency:            m.Currency,
		ExchangeRate:        m.ExchangeRate,
		SubtotalNet:         restoreMoney(m.SubtotalNet, m.Currency),
		DiscountAmount:      restoreMoney(m.DiscountAmount, m.Currency),
		TotalNet:            restoreMoney(m.TotalNet, m.Currency),
		TotalTax:            restoreMoney(m.TotalTax, m.Currency),
		TotalGross:          restoreMoney(m.TotalGross, m.Currency),
		AmountPaid:          restoreMoney(m.AmountPaid, m.Currency),
		AmountDue:           restoreMoney(m.AmountDue, m.Currency),
		PaymentStatus:       m.PaymentStatus,
		Payments:            m.Payments,
		SourceQuoteID:       m.SourceQuoteID,
		ConvertedInvoiceID:  m.ConvertedInvoiceID,
		AcceptanceSignature: m.AcceptanceSignature,
		RejectionReason:     m.RejectionReason,
		CancelReason:        m.CancelReason,
		SentAt:              m.SentAt,
		AcceptedAt:          m.AcceptedAt,
		RejectedAt:          m.RejectedAt,
		PaidAt:              m.PaidAt,
		CancelledAt:         m.CancelledAt,
		DeletedAt:           m.DeletedAt,
		Lines:               make([]document.LineItem, len(m.Lines)),
	}
	m.PopulateAggregateRoot(&doc.BaseAggregateRoot)
	if m.DiscountType != nil {
		doc.Discount = &document.Discount{Type: *m.DiscountType, Value: m.DiscountValue}
	}
	if doc.Payments == nil {
		doc.Payments = document.PaymentRecords{}
	}
	for i := range m.Lines {
		doc.Lines[i] = *m.Lines[i].ToDomain()
	}
	return doc
}

// FromDomain populates the persistence model from a domain FinancialDocument aggregate.
func (m *FinancialDocumentModel) FromDomain(d *document.FinancialDocument) {
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	m.Type = d.Type
	m.CompanyID = d.CompanyID
	m.ClientID = d.ClientID
	m.DocumentNumber = d.DocumentNumber
	m.IssueDate = d.IssueDate
	m.DueDate = d.DueDate
	m.ValidUntil = d.ValidUntil
	m.Status = d.Status
	m.Currency = d.Currency
	m.ExchangeRate = d.ExchangeRate
	if d.Discount != nil {
		discountType := d.Discount.Type
		m.DiscountType = &discountType
		m.DiscountValue = d.Discount.Value
	} else {
		m.DiscountType = nil
		m.DiscountValue = decimal.Zero
	}
	m.SubtotalNet = d.SubtotalNet.Amount()
	m.DiscountAmount = d.DiscountAmount.Amount()
	m.TotalNet = d.TotalNet.Amount()
	m.TotalTax = d.TotalTax.Amount()
	m.TotalGross = d.TotalGross.Amount()
	m.AmountPaid = d.AmountPaid.Amount()
	m.AmountDue = d.AmountDue.Amount()
	m.PaymentStatus = d.PaymentStatus
	m.Payments = d.Payments
	m.SourceQuoteID = d.SourceQuoteID
	m.ConvertedInvoiceID = d.ConvertedInvoiceID
	m.AcceptanceSignature = d.AcceptanceSignature
	m.RejectionReason = d.RejectionReason
	m.CancelReason = d.CancelReason
	m.SentAt = d.SentAt
	m.AcceptedAt = d.AcceptedAt
	m.RejectedAt = d.RejectedAt
	m.PaidAt = d.PaidAt
	m.CancelledAt = d.CancelledAt
	m.DeletedAt = d.DeletedAt
	m.Lines = make([]DocumentLineModel, len(d.Lines))
	for i := range d.Lines {
		m.Lines[i] = *DocumentLineModelFromDomain(&d.Lines[i])
	}
}

// FinancialDocumentModelFromDomain creates a new persistence model from a domain FinancialDocument.
func FinancialDocumentModelFromDomain(d *document.FinancialDocument) *FinancialDocumentModel {
	m := &FinancialDocumentModel{}
	m.FromDomain(d)
	return m
}

// DocumentLineModel is the persistence model for the LineItem entity.
type DocumentLineModel struct {
	ID            valueobject.Identifier `gorm:"type:uuid;primary_key"`
	DocumentID    valueobject.Identifier `gorm:"type:uuid;not null;index"`
	Type          document.LineType      `gorm:"type:varchar(10);not null"`
	Title         string                 `gorm:"type:varchar(200);not null"`
	Description   string                 `gorm:"type:text"`
	Quantity      decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	Unit          string                 `gorm:"type:varchar(20)"`
	UnitPrice     decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	Currency      valueobject.Currency   `gorm:"type:varchar(3);not null;default:'EUR'"`
	VatRate       decimal.Decimal        `gorm:"type:decimal(6,3);not null;default:0"`
	VatCountry    string                 `gorm:"type:varchar(2);not null;default:'FR'"`
	DiscountType  *document.DiscountType `gorm:"type:varchar(10)"`
	DiscountValue decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	Position      int                    `gorm:"not null;default:0"`
	SubtotalNet   decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount     decimal.Decimal        `gorm:"type:decimal(18,6);not null;default:0"`
	TotalNet      decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	DeletedAt     *time.Time
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DocumentLineModel) TableName() string {
	return "document_lines"
}

// ToDomain converts the persistence model to a domain LineItem entity.
func (m *DocumentLineModel) ToDomain() *document.LineItem {
	line := &document.LineItem{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		DocumentID:  m.DocumentID,
		Type:        m.Type,
		Title:       m.Title,
		Description: m.Description,
		Quantity:    restoreQuantity(m.Quantity, m.Unit),
		UnitPrice:   restoreMoney(m.UnitPrice, m.Currency),
		VatRate:     restoreVatRate(m.VatRate, m.VatCountry),
		Position:    m.Position,
		SubtotalNet: restoreMoney(m.SubtotalNet, m.Currency),
		TaxAmount:   restoreMoney(m.TaxAmount, m.Currency),
		TotalNet:    restoreMoney(m.TotalNet, m.Currency),
		DeletedAt:   m.DeletedAt,
	}
	if m.DiscountType != nil {
		line.Discount = &document.Discount{Type: *m.DiscountType, Value: m.DiscountValue}
	}
	return line
}

// FromDomain populates the persistence model from a domain LineItem entity.
func (m *DocumentLineModel) FromDomain(l *document.LineItem) {
	m.ID = l.ID
	m.DocumentID = l.DocumentID
	m.Type = l.Type
	m.Title = l.Title
	m.Description = l.Description
	m.Quantity = l.Quantity.Amount()
	m.Unit = l.Quantity.Unit()
	m.UnitPrice = l.UnitPrice.Amount()
	m.Currency = l.UnitPrice.Currency()
	m.VatRate = l.VatRate.Rate()
	m.VatCountry = l.VatRate.CountryCode()
	if l.Discount != nil {
		discountType := l.Discount.Type
		m.DiscountType = &discountType
		m.DiscountValue = l.Discount.Value
	} else {
		m.DiscountType = nil
		m.DiscountValue = decimal.Zero
	}
	m.Position = l.Position
	m.SubtotalNet = l.SubtotalNet.Amount()
	m.TaxAmount = l.TaxAmount.Amount()
	m.TotalNet = l.TotalNet.Amount()
	m.DeletedAt = l.DeletedAt
	m.CreatedAt = l.CreatedAt
	m.UpdatedAt = l.UpdatedAt
}

// DocumentLineModelFromDomain creates a new persistence model from a domain LineItem.
func DocumentLineModelFromDomain(l *document.LineItem) *DocumentLineModel {
	m := &DocumentLineModel{}
	m.FromDomain(l)
	return m
}

// DocumentSequenceModel tracks the per-company, per-type, per-year numbering
// sequence. Rows are locked FOR UPDATE while a number is allocated so two
// concurrent allocations can never hand out the same value.
type DocumentSequenceModel struct {
	CompanyID valueobject.Identifier `gorm:"type:uuid;primary_key"`
	DocType   document.DocumentType  `gorm:"type:varchar(10);primary_key"`
	Year      int                    `gorm:"primary_key"`
	Value     int64                  `gorm:"not null;default:0"`
	UpdatedAt time.Time              `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DocumentSequenceModel) TableName() string {
	return "document_sequences"
}

func restoreMoney(amount decimal.Decimal, currency valueobject.Currency) valueobject.Money {
	m, _ := valueobject.NewMoney(amount, currency)
	return m
}

func restoreQuantity(value decimal.Decimal, unit string) valueobject.Quantity {
	q, _ := valueobject.NewQuantity(value, unit)
	return q
}

func restoreVatRate(rate decimal.Decimal, countryCode string) valueobject.VatRate {
	v, _ := valueobject.NewVatRate(rate, countryCode)
	return v
}
