package document

import (
	"context"
	"time"

	"github.com/facturio/backend/internal/domain/document"
	"github.com/facturio/backend/internal/domain/shared/valueobject"
)

// DocumentNumberGenerator allocates gapless document numbers per company,
// type and year. The sequence itself lives in the repository so the
// allocation is atomic under concurrent requests.
type DocumentNumberGenerator struct {
	repo document.DocumentRepository
}

// NewDocumentNumberGenerator creates a new DocumentNumberGenerator
func NewDocumentNumberGenerator(repo document.DocumentRepository) *DocumentNumberGenerator {
	return &DocumentNumberGenerator{repo: repo}
}

// Next returns the next document number for the company and type, such
// as DEV-2026-0001 or FAC-2026-0042
func (g *DocumentNumberGenerator) Next(ctx context.Context, companyID valueobject.Identifier, docType document.DocumentType, issueDate time.Time) (string, error) {
	year := issueDate.Year()
	seq, err := g.repo.NextSequence(ctx, companyID, docType, year)
	if err != nil {
		return "", err
	}
	return document.FormatDocumentNumber(document.DefaultPrefix(docType), year, seq), nil
}
