package document

import (
	"github.com/facturio/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Totals holds the derived monetary fields of a document. All values are
// in the document currency and satisfy TotalGross = TotalNet + TotalTax.
type Totals struct {
	SubtotalNet    valueobject.Money // Sum of line subtotals, before the document discount
	DiscountAmount valueobject.Money
	TotalNet       valueobject.Money
	TotalTax       valueobject.Money
	TotalGross     valueobject.Money
}

// vatBucket accumulates the net subtotal of lines sharing one VAT rate
type vatBucket struct {
	rate     valueobject.VatRate
	subtotal decimal.Decimal
}

// CalculateTotals derives document totals from the current lines and the
// document-level discount. It is the only place the discount/tax formula
// exists; every caller that needs totals goes through it.
//
// The document discount is apportioned across VAT-rate buckets in
// proportion to each bucket's share of the pre-discount subtotal, so tax
// is computed on the correctly discounted taxable base per rate instead
// of systematically under- or over-taxing one bucket. Tax is rounded once
// per bucket to 2 decimals using banker's rounding.
func CalculateTotals(lines []LineItem, discount *Discount, currency valueobject.Currency) Totals {
	subtotal := decimal.Zero
	buckets := make([]*vatBucket, 0, 2)

	for i := range lines {
		line := &lines[i]
		if line.IsDeleted() || !line.Type.IsBillable() {
			continue
		}
		subtotal = subtotal.Add(line.SubtotalNet.Amount())

		found := false
		for _, b := range buckets {
			if b.rate.Equals(line.VatRate) {
				b.subtotal = b.subtotal.Add(line.SubtotalNet.Amount())
				found = true
				break
			}
		}
		if !found {
			buckets = append(buckets, &vatBucket{rate: line.VatRate, subtotal: line.SubtotalNet.Amount()})
		}
	}

	subtotalNet := mustMoney(subtotal, currency)

	discountAmount := valueobject.Zero(currency)
	if discount != nil {
		discountAmount = discount.AmountOn(subtotalNet)
	}
	totalNet, _ := subtotalNet.Subtract(discountAmount)

	hundred := decimal.NewFromInt(100)
	totalTax := decimal.Zero
	for _, b := range buckets {
		// Proportional share of the document discount for this bucket.
		// A zero subtotal means zero shares for every bucket.
		proportionalDiscount := decimal.Zero
		if !subtotal.IsZero() {
			proportionalDiscount = b.subtotal.Div(subtotal).Mul(discountAmount.Amount())
		}
		taxable := b.subtotal.Sub(proportionalDiscount)
		if taxable.IsNegative() {
			taxable = decimal.Zero
		}
		bucketTax := taxable.Mul(b.rate.Rate()).Div(hundred).RoundBank(2)
		totalTax = totalTax.Add(bucketTax)
	}

	totalTaxMoney := mustMoney(totalTax, currency)
	totalGross, _ := totalNet.Add(totalTaxMoney)

	return Totals{
		SubtotalNet:    subtotalNet,
		DiscountAmount: discountAmount,
		TotalNet:       totalNet,
		TotalTax:       totalTaxMoney,
		TotalGross:     totalGross,
	}
}

func mustMoney(amount decimal.Decimal, currency valueobject.Currency) valueobject.Money {
	m, err := valueobject.NewMoney(amount, currency)
	if err != nil {
		// Amounts reaching this point are sums of non-negative line
		// subtotals in the document currency.
		panic(err)
	}
	return m
}
