package document

import (
	"context"
	"time"

	"github.com/facturio/backend/internal/domain/document"
	"github.com/facturio/backend/internal/domain/shared"
	"github.com/facturio/backend/internal/domain/shared/valueobject"
)

// QuoteService handles quote business operations
type QuoteService struct {
	docRepo        document.DocumentRepository
	numbers        *DocumentNumberGenerator
	eventPublisher shared.EventPublisher
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(docRepo document.DocumentRepository) *QuoteService {
	return &QuoteService{
		docRepo: docRepo,
		numbers: NewDocumentNumberGenerator(docRepo),
	}
}

// SetEventPublisher sets the event publisher for downstream integration
func (s *QuoteService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new draft quote with its initial lines
func (s *QuoteService) Create(ctx context.Context, req CreateDocumentRequest) (*DocumentResponse, error) {
	issueDate := time.Now()
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}
	currency := req.Currency
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	number, err := s.numbers.Next(ctx, req.CompanyID, document.TypeQuote, issueDate)
	if err != nil {
		return nil, err
	}

	quote, err := document.NewQuote(req.CompanyID, req.ClientID, number, issueDate, req.ValidUntil, currency)
	if err != nil {
		return nil, err
	}

	for _, input := range req.Lines {
		if err := applyCreateLine(quote, input); err != nil {
			return nil, err
		}
	}
	if req.Discount != nil {
		if err := quote.SetDiscount(req.Discount.Type, req.Discount.Value); err != nil {
			return nil, err
		}
	}

	if err := s.docRepo.Save(ctx, quote); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, quote)

	response := ToDocumentResponse(quote)
	return &response, nil
}

// GetByID retrieves a quote by ID
func (s *QuoteService) GetByID(ctx context.Context, id valueobject.Identifier) (*DocumentResponse, error) {
	quote, err := s.loadQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToDocumentResponse(quote)
	return &response, nil
}

// GetByNumber retrieves a quote by its document number
func (s *QuoteService) GetByNumber(ctx context.Context, companyID valueobject.Identifier, number string) (*DocumentResponse, error) {
	doc, err := s.docRepo.FindByNumber(ctx, companyID, number)
	if err != nil {
		return nil, err
	}
	if !doc.IsQuote() {
		return nil, shared.ErrNotFound
	}
	response := ToDocumentResponse(doc)
	return &response, nil
}

// List retrieves quotes for a company with filtering and pagination
func (s *QuoteService) List(ctx context.Context, companyID valueobject.Identifier, filter DocumentListFilter) (shared.Paginated[DocumentListItemResponse], error) {
	domainFilter := buildDomainFilter(filter, document.TypeQuote)

	page, err := s.docRepo.FindAll(ctx, companyID, domainFilter)
	if err != nil {
		return shared.Paginated[DocumentListItemResponse]{}, err
	}

	return shared.NewPaginated(ToDocumentListItemResponses(page.Items), page.Total, page.Page, page.PageSize), nil
}

// Update changes the header of a draft quote
func (s *QuoteService) Update(ctx context.Context, id valueobject.Identifier, req UpdateDocumentRequest) (*DocumentResponse, error) {
	return s.mutate(ctx, id, func(quote *document.FinancialDocument) error {
		return quote.UpdateDetails(req.ClientID, req.IssueDate, req.DueDate, req.ValidUntil)
	})
}

// AddLine adds a line to a draft quote
func (s *QuoteService) AddLine(ctx context.Context, id valueobject.Identifier, req AddLineRequest) (*DocumentResponse, error) {
	return s.mutate(ctx, id, func(quote *document.FinancialDocument) error {
		return applyAddLine(quote, req)
	})
}

// UpdateLine updates a line on a draft quote
func (s *QuoteService) UpdateLine(ctx context.Context, id, lineID valueobject.Identifier, req UpdateLineRequest) (*DocumentResponse, error) {
	return s.mutate(ctx, id, func(quote *document.FinancialDocument) error {
		return applyUpdateLine(quote, lineID, req)
	})
}

// SetLineDiscount applies a discount to a single quote line
func (s *QuoteService) SetLineDiscount(ctx context.Context, id, lineID valueobject.Identifier, req DiscountInput) (*DocumentResponse, error) {
	return s.mutate(ctx, id, func(quote *document.FinancialDocument) error {
		return quote.SetLineDiscount(lineID, req.Type, req.Value)
	})
}

// RemoveLine removes a line from a draft quote
func (s *QuoteService) RemoveLine(ctx context.Context, id, lineID valueobject.Identifier) (*DocumentResponse, error) {
	return s.mutate(ctx, id, func(quote *document.FinancialDocument) error {
		return quote.RemoveLine(lineID)
	})
}

// SetDiscount applies a document-level discount to a draft quote
func (s *QuoteService) SetDiscount(ctx context.Context, id valueobject.Identifier, req DiscountInput) (*DocumentResponse, error) {
	return s.mutate(ctx, id, func(quote *document.FinancialDocument) error {
		return quote.SetDiscount(req.Type, req.Value)
	})
}

// ClearDiscount removes the document-level discount from a draft quote
func (s *QuoteService) ClearDiscount(ctx context.Context, id valueobject.Identifier) (*DocumentResponse, error) {
	return s.mutate(ctx, id, func(quote *document.FinancialDocument) error {
		return quote.ClearDiscount()
	})
}

// Send transitions a draft quote to sent
func (s *QuoteService) Send(ctx context.Context, id valueobject.Identifier) (*DocumentResponse, error) {
	return s.mutate(ctx, id, func(quote *document.FinancialDocument) error {
		return quote.Send()
	})
}

// MarkPending marks a sent quote as awaiting a client response
func (s *QuoteService) MarkPending(ctx context.Context, id valueobject.Identifier) (*DocumentResponse, error) {
	return s.mutate(ctx, id, func(quote *document.FinancialDocument) error {
		return quote.MarkPending()
	})
}

// Accept records client acceptance of a quote
func (s *QuoteService) Accept(ctx context.Context, id valueobject.Identifier, req AcceptQuoteRequest) (*DocumentResponse, error) {
	return s.mutate(ctx, id, func(quote *document.FinancialDocument) error {
		return quote.Accept(req.Signature)
	})
}

// Reject records client rejection of a quote
func (s *QuoteService) Reject(ctx context.Context, id valueobject.Identifier, req RejectQuoteRequest) (*DocumentResponse, error) {
	return s.mutate(ctx, id, func(quote *document.FinancialDocument) error {
		return quote.Reject(req.Reason)
	})
}

// Convert derives a draft invoice from an accepted quote. The quote and
// the new invoice are saved together, the conversion event rides on the
// quote.
func (s *QuoteService) Convert(ctx context.Context, id valueobject.Identifier, req ConvertQuoteRequest) (*DocumentResponse, error) {
	quote, err := s.loadQuote(ctx, id)
	if err != nil {
		return nil, err
	}

	issueDate := time.Now()
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}

	number, err := s.numbers.Next(ctx, quote.CompanyID, document.TypeInvoice, issueDate)
	if err != nil {
		return nil, err
	}

	invoice, err := quote.ConvertToInvoice(number, issueDate, req.DueDate)
	if err != nil {
		return nil, err
	}

	if err := s.docRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	if err := s.docRepo.Save(ctx, quote); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, quote)
	s.publishEvents(ctx, invoice)

	response := ToDocumentResponse(invoice)
	return &response, nil
}

// Cancel cancels a quote
func (s *QuoteService) Cancel(ctx context.Context, id valueobject.Identifier, req CancelDocumentRequest) (*DocumentResponse, error) {
	return s.mutate(ctx, id, func(quote *document.FinancialDocument) error {
		return quote.Cancel(req.Reason)
	})
}

// Delete soft-deletes a draft quote
func (s *QuoteService) Delete(ctx context.Context, id valueobject.Identifier) error {
	quote, err := s.loadQuote(ctx, id)
	if err != nil {
		return err
	}
	if err := quote.Delete(); err != nil {
		return err
	}
	if err := s.docRepo.Save(ctx, quote); err != nil {
		return err
	}
	s.publishEvents(ctx, quote)
	return nil
}

func (s *QuoteService) loadQuote(ctx context.Context, id valueobject.Identifier) (*document.FinancialDocument, error) {
	doc, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.IsQuote() {
		return nil, shared.ErrNotFound
	}
	return doc, nil
}

func (s *QuoteService) mutate(ctx context.Context, id valueobject.Identifier, fn func(*document.FinancialDocument) error) (*DocumentResponse, error) {
	quote, err := s.loadQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(quote); err != nil {
		return nil, err
	}
	if err := s.docRepo.Save(ctx, quote); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, quote)

	response := ToDocumentResponse(quote)
	return &response, nil
}

func (s *QuoteService) publishEvents(ctx context.Context, doc *document.FinancialDocument) {
	if s.eventPublisher == nil {
		doc.ClearDomainEvents()
		return
	}
	for _, event := range doc.ReleaseEvents() {
		// Delivery failures are handled by the outbox retry loop, the
		// business operation itself already committed.
		_ = s.eventPublisher.Publish(ctx, event)
	}
}
