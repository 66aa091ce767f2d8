package document

import (
	"context"
	"time"

	"github.com/facturio/backend/internal/domain/document"
	"github.com/facturio/backend/internal/domain/shared"
	"github.com/facturio/backend/internal/domain/shared/valueobject"
)

// InvoiceService handles invoice business operations
type InvoiceService struct {
	docRepo        document.DocumentRepository
	numbers        *DocumentNumberGenerator
	eventPublisher shared.EventPublisher
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(docRepo document.DocumentRepository) *InvoiceService {
	return &InvoiceService{
		docRepo: docRepo,
		numbers: NewDocumentNumberGenerator(docRepo),
	}
}

// SetEventPublisher sets the event publisher for downstream integration
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new draft invoice with its initial lines
func (s *InvoiceService) Create(ctx context.Context, req CreateDocumentRequest) (*DocumentResponse, error) {
	issueDate := time.Now()
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}
	currency := req.Currency
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	number, err := s.numbers.Next(ctx, req.CompanyID, document.TypeInvoice, issueDate)
	if err != nil {
		return nil, err
	}

	invoice, err := document.NewInvoice(req.CompanyID, req.ClientID, number, issueDate, req.DueDate, currency)
	if err != nil {
		return nil, err
	}

	for _, input := range req.Lines {
		if err := applyCreateLine(invoice, input); err != nil {
			return nil, err
		}
	}
	if req.Discount != nil {
		if err := invoice.SetDiscount(req.Discount.Type, req.Discount.Value); err != nil {
			return nil, err
		}
	}

	if err := s.docRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, invoice)

	response := ToDocumentResponse(invoice)
	return &response, nil
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, id valueobject.Identifier) (*DocumentResponse, error) {
	invoice, err := s.loadInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToDocumentResponse(invoice)
	return &response, nil
}

// GetByNumber retrieves an invoice by its document number
func (s *InvoiceService) GetByNumber(ctx context.Context, companyID valueobject.Identifier, number string) (*DocumentResponse, error) {
	doc, err := s.docRepo.FindByNumber(ctx, companyID, number)
	if err != nil {
		return nil, err
	}
	if !doc.IsInvoice() {
		return nil, shared.ErrNotFound
	}
	response := ToDocumentResponse(doc)
	return &response, nil
}

// List retrieves invoices for a company with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, companyID valueobject.Identifier, filter DocumentListFilter) (shared.Paginated[DocumentListItemResponse], error) {
	domainFilter := buildDomainFilter(filter, document.TypeInvoice)

	page, err := s.docRepo.FindAll(ctx, companyID, domainFilter)
	if err != nil {
		return shared.Paginated[DocumentListItemResponse]{}, err
	}

	return shared.NewPaginated(ToDocumentListItemResponses(page.Items), page.Total, page.Page, page.PageSize), nil
}

// Update changes the header of a draft invoice
func (s *InvoiceService) Update(ctx context.Context, id valueobject.Identifier, req UpdateDocumentRequest) (*DocumentResponse, error) {
	return s.mutate(ctx, id, func(invoice *document.FinancialDocument) error {
		return invoice.UpdateDetails(req.ClientID, req.IssueDate, req.DueDate, req.ValidUntil)
	})
}

// AddLine adds a line to a draft invoice
func (s *InvoiceService) AddLine(ctx context.Context, id valueobject.Identifier, req AddLineRequest) (*DocumentResponse, error) {
	return s.mutate(ctx, id, func(invoice *document.FinancialDocument) error {
		return applyAddLine(invoice, req)
	})
}

// UpdateLine updates a line on a draft invoice
func (s *InvoiceService) UpdateLine(ctx context.Context, id, lineID valueobject.Identifier, req UpdateLineRequest) (*DocumentResponse, error) {
	return s.mutate(ctx, id, func(invoice *document.FinancialDocument) error {
		return applyUpdateLine(invoice, lineID, req)
	})
}

// SetLineDiscount applies a discount to a single invoice line
func (s *InvoiceService) SetLineDiscount(ctx context.Context, id, lineID valueobject.Identifier, req DiscountInput) (*DocumentResponse, error) {
	return s.mutate(ctx, id, func(invoice *document.FinancialDocument) error {
		return invoice.SetLineDiscount(lineID, req.Type, req.Value)
	})
}

// RemoveLine removes a line from a draft invoice
func (s *InvoiceService) RemoveLine(ctx context.Context, id, lineID valueobject.Identifier) (*DocumentResponse, error) {
	return s.mutate(ctx, id, func(invoice *document.FinancialDocument) error {
		return invoice.RemoveLine(lineID)
	})
}

// SetDiscount applies a document-level discount to a draft invoice
func (s *InvoiceService) SetDiscount(ctx context.Context, id valueobject.Identifier, req DiscountInput) (*DocumentResponse, error) {
	return s.mutate(ctx, id, func(invoice *document.FinancialDocument) error {
		return invoice.SetDiscount(req.Type, req.Value)
	})
}

// ClearDiscount removes the document-level discount from a draft invoice
func (s *InvoiceService) ClearDiscount(ctx context.Context, id valueobject.Identifier) (*DocumentResponse, error) {
	return s.mutate(ctx, id, func(invoice *document.FinancialDocument) error {
		return invoice.ClearDiscount()
	})
}

// Send transitions a draft invoice to sent
func (s *InvoiceService) Send(ctx context.Context, id valueobject.Identifier) (*DocumentResponse, error) {
	return s.mutate(ctx, id, func(invoice *document.FinancialDocument) error {
		return invoice.Send()
	})
}

// RecordPayment applies a payment to an invoice
func (s *InvoiceService) RecordPayment(ctx context.Context, id valueobject.Identifier, req RecordPaymentRequest) (*DocumentResponse, error) {
	invoice, err := s.loadInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	amount, err := valueobject.NewMoney(req.Amount, invoice.Currency)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", err.Error())
	}
	if err := invoice.RecordPayment(amount, req.Reference); err != nil {
		return nil, err
	}

	if err := s.docRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, invoice)

	response := ToDocumentResponse(invoice)
	return &response, nil
}

// MarkOverdueInvoices sweeps payable invoices past their due date and
// marks them overdue. Returns the number of invoices flagged.
func (s *InvoiceService) MarkOverdueInvoices(ctx context.Context, now time.Time) (int, error) {
	invoices, err := s.docRepo.FindDueBefore(ctx, now)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, invoice := range invoices {
		if err := invoice.MarkOverdue(now); err != nil {
			continue
		}
		if err := s.docRepo.Save(ctx, invoice); err != nil {
			return marked, err
		}
		s.publishEvents(ctx, invoice)
		marked++
	}
	return marked, nil
}

// Cancel cancels an invoice
func (s *InvoiceService) Cancel(ctx context.Context, id valueobject.Identifier, req CancelDocumentRequest) (*DocumentResponse, error) {
	return s.mutate(ctx, id, func(invoice *document.FinancialDocument) error {
		return invoice.Cancel(req.Reason)
	})
}

// Delete soft-deletes a draft invoice
func (s *InvoiceService) Delete(ctx context.Context, id valueobject.Identifier) error {
	invoice, err := s.loadInvoice(ctx, id)
	if err != nil {
		return err
	}
	if err := invoice.Delete(); err != nil {
		return err
	}
	if err := s.docRepo.Save(ctx, invoice); err != nil {
		return err
	}
	s.publishEvents(ctx, invoice)
	return nil
}

func (s *InvoiceService) loadInvoice(ctx context.Context, id valueobject.Identifier) (*document.FinancialDocument, error) {
	doc, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.IsInvoice() {
		return nil, shared.ErrNotFound
	}
	return doc, nil
}

func (s *InvoiceService) mutate(ctx context.Context, id valueobject.Identifier, fn func(*document.FinancialDocument) error) (*DocumentResponse, error) {
	invoice, err := s.loadInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(invoice); err != nil {
		return nil, err
	}
	if err := s.docRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, invoice)

	response := ToDocumentResponse(invoice)
	return &response, nil
}

func (s *InvoiceService) publishEvents(ctx context.Context, doc *document.FinancialDocument) {
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
