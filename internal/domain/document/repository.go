package document

import (
	"context"
	"time"

	"github.com/facturio/backend/internal/domain/shared"
	"github.com/facturio/backend/internal/domain/shared/valueobject"
)

// DocumentRepository defines persistence operations for financial documents
type DocumentRepository interface {
	// FindByID loads a document with its lines
	FindByID(ctx context.Context, id valueobject.Identifier) (*FinancialDocument, error)

	// FindByNumber loads a document by its company-scoped number
	FindByNumber(ctx context.Context, companyID valueobject.Identifier, number string) (*FinancialDocument, error)

	// FindAll returns documents matching the filter, paginated
	FindAll(ctx context.Context, companyID valueobject.Identifier, filter shared.Filter) (shared.Paginated[*FinancialDocument], error)

	// FindDueBefore returns invoices in a payable status whose due date
	// is before the cutoff. Used by the overdue sweep.
	FindDueBefore(ctx context.Context, cutoff time.Time) ([]*FinancialDocument, error)

	// Save inserts or updates a document and its lines
	Save(ctx context.Context, doc *FinancialDocument) error

	// NextSequence atomically allocates the next document number sequence
	// for the company, type and year
	NextSequence(ctx context.Context, companyID valueobject.Identifier, docType DocumentType, year int) (int64, error)
}
