package document

import "fmt"

// Document number prefixes follow the French convention: DEV (devis)
// for quotes, FAC (facture) for invoices.
const (
	PrefixQuote   = "DEV"
	PrefixInvoice = "FAC"
)

// DefaultPrefix returns the number prefix for a document type
func DefaultPrefix(docType DocumentType) string {
	if docType == TypeInvoice {
		return PrefixInvoice
	}
	return PrefixQuote
}

// FormatDocumentNumber renders a document number as PREFIX-YYYY-NNNN.
// The sequence resets per company, type and year; the repository owns
// the sequence itself.
func FormatDocumentNumber(prefix string, year int, sequence int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, sequence)
}
