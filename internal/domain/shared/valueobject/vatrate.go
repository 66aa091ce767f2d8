package valueobject

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/shopspring/decimal"
)

// VAT rate errors
var (
	ErrInvalidRate        = errors.New("VAT rate cannot be negative")
	ErrInvalidCountryCode = errors.New("country code must be exactly 2 letters")
)

// VatRate is a value object representing a VAT percentage bound to a
// country. It is immutable; Calculate is a pure multiplication with no
// rounding, rounding happens once at the document-total level.
type VatRate struct {
	rate        decimal.Decimal
	countryCode string
}

// NewVatRate creates a new VatRate
func NewVatRate(rate decimal.Decimal, countryCode string) (VatRate, error) {
	if rate.IsNegative() {
		return VatRate{}, fmt.Errorf("%w: %s", ErrInvalidRate, rate)
	}
	if len(countryCode) != 2 || !isLetters(countryCode) {
		return VatRate{}, fmt.Errorf("%w: %q", ErrInvalidCountryCode, countryCode)
	}
	return VatRate{rate: rate, countryCode: countryCode}, nil
}

// NewVatRateFromFloat creates a VatRate from a float64 percentage
func NewVatRateFromFloat(rate float64, countryCode string) (VatRate, error) {
	return NewVatRate(decimal.NewFromFloat(rate), countryCode)
}

// French VAT rates. Convenience constructors only; reference rates are
// supplied by configuration, not business logic.

// FrenchStandardRate returns the French standard rate (20%)
func FrenchStandardRate() VatRate {
	return VatRate{rate: decimal.NewFromInt(20), countryCode: "FR"}
}

// FrenchIntermediateRate returns the French intermediate rate (10%)
func FrenchIntermediateRate() VatRate {
	return VatRate{rate: decimal.NewFromInt(10), countryCode: "FR"}
}

// FrenchReducedRate returns the French reduced rate (5.5%)
func FrenchReducedRate() VatRate {
	return VatRate{rate: decimal.NewFromFloat(5.5), countryCode: "FR"}
}

// FrenchSuperReducedRate returns the French super-reduced rate (2.1%)
func FrenchSuperReducedRate() VatRate {
	return VatRate{rate: decimal.NewFromFloat(2.1), countryCode: "FR"}
}

// FrenchZeroRate returns a zero rate (exempt operations)
func FrenchZeroRate() VatRate {
	return VatRate{rate: decimal.Zero, countryCode: "FR"}
}

// Rate returns the percentage value
func (v VatRate) Rate() decimal.Decimal {
	return v.rate
}

// CountryCode returns the 2-letter country code
func (v VatRate) CountryCode() string {
	return v.countryCode
}

// IsZero returns true if the rate is zero
func (v VatRate) IsZero() bool {
	return v.rate.IsZero()
}

// Calculate returns the tax amount on the given net amount:
// net * rate / 100, exact, no rounding.
func (v VatRate) Calculate(net Money) Money {
	tax := net.Amount().Mul(v.rate).Div(decimal.NewFromInt(100))
	return Money{amount: tax, currency: net.Currency()}
}

// Equals returns true if both rates have the same percentage and country
func (v VatRate) Equals(other VatRate) bool {
	return v.countryCode == other.countryCode && v.rate.Equal(other.rate)
}

// String returns a human-readable representation such as "20% (FR)"
func (v VatRate) String() string {
	return fmt.Sprintf("%s%% (%s)", v.rate.String(), v.countryCode)
}

func isLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
