package document

import (
	"time"

	"github.com/facturio/backend/internal/domain/shared"
	"github.com/facturio/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LineType represents the kind of a document line
type LineType string

const (
	LineTypeProduct LineType = "PRODUCT"
	LineTypeService LineType = "SERVICE"
	LineTypeText    LineType = "TEXT"    // Free text, carries no amounts
	LineTypeSection LineType = "SECTION" // Section heading, carries no amounts
)

// IsValid checks if the line type is a valid LineType
func (t LineType) IsValid() bool {
	switch t {
	case LineTypeProduct, LineTypeService, LineTypeText, LineTypeSection:
		return true
	}
	return false
}

// IsBillable returns true if lines of this type contribute to totals
func (t LineType) IsBillable() bool {
	return t == LineTypeProduct || t == LineTypeService
}

// DiscountType represents how a discount value is interpreted
type DiscountType string

const (
	DiscountPercent DiscountType = "PERCENT"
	DiscountAmount  DiscountType = "AMOUNT"
)

// IsValid checks if the discount type is valid
func (t DiscountType) IsValid() bool {
	return t == DiscountPercent || t == DiscountAmount
}

// Discount is a percent-or-amount reduction applied to a line or a document
type Discount struct {
	Type  DiscountType    `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// AmountOn resolves the discount against a base amount. Percent values
// above 100 and fixed amounts above the base clamp to the base, so the
// discounted result never goes negative.
func (d Discount) AmountOn(base valueobject.Money) valueobject.Money {
	var amount decimal.Decimal
	switch d.Type {
	case DiscountPercent:
		amount = base.Amount().Mul(d.Value).Div(decimal.NewFromInt(100))
	case DiscountAmount:
		amount = d.Value
	default:
		amount = decimal.Zero
	}
	if amount.GreaterThan(base.Amount()) {
		amount = base.Amount()
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	m, _ := valueobject.NewMoney(amount, base.Currency())
	return m
}

// LineItem is a single billable row of a financial document. Derived
// amounts (SubtotalNet, TaxAmount, TotalNet) are recomputed by every
// mutator and never set by callers. Lines are soft-deleted to preserve
// the audit trail.
type LineItem struct {
	shared.BaseEntity
	DocumentID  valueobject.Identifier
	Type        LineType
	Title       string
	Description string
	Quantity    valueobject.Quantity
	UnitPrice   valueobject.Money // Net price per unit
	VatRate     valueobject.VatRate
	Discount    *Discount
	Position    int
	SubtotalNet valueobject.Money // After line discount, before tax
	TaxAmount   valueobject.Money
	TotalNet    valueobject.Money // The line's contribution to the document's pre-tax total
	DeletedAt   *time.Time
}

// NewLineItem creates a new line item attached to a document
func NewLineItem(documentID valueobject.Identifier, lineType LineType, title string, quantity valueobject.Quantity, unitPrice valueobject.Money, vatRate valueobject.VatRate, position int) (*LineItem, error) {
	if documentID.IsNil() {
		return nil, shared.NewDomainError("INVALID_DOCUMENT", "Document ID cannot be empty")
	}
	if !lineType.IsValid() {
		return nil, shared.NewDomainError("INVALID_LINE_TYPE", "Line type is not valid")
	}
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Line title cannot be empty")
	}
	if lineType.IsBillable() && !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	item := &LineItem{
		BaseEntity: shared.NewBaseEntity(),
		DocumentID: documentID,
		Type:       lineType,
		Title:      title,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		VatRate:    vatRate,
		Position:   position,
	}
	item.recalculateAmounts()
	return item, nil
}

// Update replaces the billable attributes of the line and re-derives amounts
func (l *LineItem) Update(title string, quantity valueobject.Quantity, unitPrice valueobject.Money, vatRate valueobject.VatRate) error {
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Line title cannot be empty")
	}
	if l.Type.IsBillable() && !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	l.Title = title
	l.Quantity = quantity
	l.UnitPrice = unitPrice
	l.VatRate = vatRate
	l.recalculateAmounts()
	l.Touch()
	return nil
}

// SetDescription sets the free-form description
func (l *LineItem) SetDescription(description string) {
	l.Description = description
	l.Touch()
}

// SetDiscount applies a line-level discount and re-derives amounts
func (l *LineItem) SetDiscount(discountType DiscountType, value decimal.Decimal) error {
	if !discountType.IsValid() {
		return shared.NewDomainError("INVALID_DISCOUNT_TYPE", "Discount type must be percent or amount")
	}
	if value.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount value cannot be negative")
	}

	l.Discount = &Discount{Type: discountType, Value: value}
	l.recalculateAmounts()
	l.Touch()
	return nil
}

// ClearDiscount removes the line-level discount and re-derives amounts
func (l *LineItem) ClearDiscount() {
	l.Discount = nil
	l.recalculateAmounts()
	l.Touch()
}

// SetPosition moves the line to a new position within the document
func (l *LineItem) SetPosition(position int) {
	l.Position = position
	l.Touch()
}

// MarkDeleted soft-deletes the line
func (l *LineItem) MarkDeleted() {
	now := time.Now()
	l.DeletedAt = &now
	l.Touch()
}

// IsDeleted returns true if the line has been soft-deleted
func (l *LineItem) IsDeleted() bool {
	return l.DeletedAt != nil
}

// recalculateAmounts re-derives SubtotalNet, TaxAmount and TotalNet from
// the current quantity, price, VAT rate and discount. Text and section
// lines always carry zero amounts.
func (l *LineItem) recalculateAmounts() {
	currency := l.UnitPrice.Currency()
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	if !l.Type.IsBillable() {
		l.SubtotalNet = valueobject.Zero(currency)
		l.TaxAmount = valueobject.Zero(currency)
		l.TotalNet = valueobject.Zero(currency)
		return
	}

	rawSubtotal, _ := l.UnitPrice.Multiply(l.Quantity.Amount())
	subtotal := rawSubtotal
	if l.Discount != nil {
		discountAmount := l.Discount.AmountOn(rawSubtotal)
		subtotal, _ = rawSubtotal.SubtractClamped(discountAmount)
	}

	l.SubtotalNet = subtotal
	l.TaxAmount = l.VatRate.Calculate(subtotal)
	l.TotalNet = subtotal
}
