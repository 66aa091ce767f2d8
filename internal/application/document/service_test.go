package document

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/facturio/backend/internal/domain/document"
	"github.com/facturio/backend/internal/domain/shared"
	"github.com/facturio/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDocumentRepository is a mock implementation of DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id valueobject.Identifier) (*document.FinancialDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.FinancialDocument), args.Error(1)
}

func (m *MockDocumentRepository) FindByNumber(ctx context.Context, companyID valueobject.Identifier, number string) (*document.FinancialDocument, error) {
	args := m.Called(ctx, companyID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.FinancialDocument), args.Error(1)
}

func (m *MockDocumentRepository) FindAll(ctx context.Context, companyID valueobject.Identifier, filter shared.Filter) (shared.Paginated[*document.FinancialDocument], error) {
	args := m.Called(ctx, companyID, filter)
	return args.Get(0).(shared.Paginated[*document.FinancialDocument]), args.Error(1)
}

func (m *MockDocumentRepository) FindDueBefore(ctx context.Context, cutoff time.Time) ([]*document.FinancialDocument, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*document.FinancialDocument), args.Error(1)
}

func (m *MockDocumentRepository) Save(ctx context.Context, doc *document.FinancialDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) NextSequence(ctx context.Context, companyID valueobject.Identifier, docType document.DocumentType, year int) (int64, error) {
	args := m.Called(ctx, companyID, docType, year)
	return args.Get(0).(int64), args.Error(1)
}

// Test helpers

var (
	testCompanyID = valueobject.NewIdentifier()
	testClientID  = valueobject.NewIdentifier()
)

func testLineInput(price int64) CreateLineInput {
	return CreateLineInput{
		Type:      document.LineTypeService,
		Title:     "Consulting",
		Quantity:  decimal.NewFromInt(1),
		Unit:      "h",
		UnitPrice: decimal.NewFromInt(price),
		VatRate:   decimal.NewFromInt(20),
	}
}

func newStoredQuote(t *testing.T) *document.FinancialDocument {
	t.Helper()
	quote, err := document.NewQuote(testCompanyID, testClientID, "DEV-2026-0001", time.Now(), nil, valueobject.EUR)
	require.NoError(t, err)
	price, _ := valueobject.NewMoneyEURFromFloat(100)
	qty, _ := valueobject.NewQuantityFromInt(1, "h")
	_, err = quote.AddLine(document.LineTypeService, "Consulting", qty, price, valueobject.FrenchStandardRate())
	require.NoError(t, err)
	quote.ClearDomainEvents()
	return quote
}

func newStoredSentInvoice(t *testing.T) *document.FinancialDocument {
	t.Helper()
	dueDate := time.Now().AddDate(0, 0, 30)
	invoice, err := document.NewInvoice(testCompanyID, testClientID, "FAC-2026-0001", time.Now(), &dueDate, valueobject.EUR)
	require.NoError(t, err)
	price, _ := valueobject.NewMoneyEURFromFloat(100)
	qty, _ := valueobject.NewQuantityFromInt(2, "h")
	_, err = invoice.AddLine(document.LineTypeService, "Consulting", qty, price, valueobject.FrenchStandardRate())
	require.NoError(t, err)
	require.NoError(t, invoice.Send())
	invoice.ClearDomainEvents()
	return invoice
}

// Quote service tests

func TestQuoteService_Create(t *testing.T) {
	t.Run("creates quote with generated number", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		service := NewQuoteService(repo)
		ctx := context.Background()

		repo.On("NextSequence", ctx, testCompanyID, document.TypeQuote, mock.AnythingOfType("int")).Return(int64(1), nil)
		repo.On("Save", ctx, mock.AnythingOfType("*document.FinancialDocument")).Return(nil)

		result, err := service.Create(ctx, CreateDocumentRequest{
			CompanyID: testCompanyID,
			ClientID:  testClientID,
			Lines:     []CreateLineInput{testLineInput(100), testLineInput(100)},
		})

		require.NoError(t, err)
		assert.Equal(t, document.TypeQuote, result.Type)
		assert.Equal(t, document.StatusDraft, result.Status)
		assert.Contains(t, result.DocumentNumber, "DEV-")
		assert.Len(t, result.Lines, 2)
		assert.Equal(t, "240.00", result.TotalGross.Amount)
		repo.AssertExpectations(t)
	})

	t.Run("creates quote with document discount", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		service := NewQuoteService(repo)
		ctx := context.Background()

		repo.On("NextSequence", ctx, testCompanyID, document.TypeQuote, mock.AnythingOfType("int")).Return(int64(2), nil)
		repo.On("Save", ctx, mock.AnythingOfType("*document.FinancialDocument")).Return(nil)

		result, err := service.Create(ctx, CreateDocumentRequest{
			CompanyID: testCompanyID,
			ClientID:  testClientID,
			Lines:     []CreateLineInput{testLineInput(100), testLineInput(100)},
			Discount:  &DiscountInput{Type: document.DiscountPercent, Value: decimal.NewFromInt(10)},
		})

		require.NoError(t, err)
		assert.Equal(t, "20.00", result.DiscountAmount.Amount)
		assert.Equal(t, "216.00", result.TotalGross.Amount)
		repo.AssertExpectations(t)
	})

	t.Run("fails when number allocation fails", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		service := NewQuoteService(repo)
		ctx := context.Background()

		repo.On("NextSequence", ctx, testCompanyID, document.TypeQuote, mock.AnythingOfType("int")).Return(int64(0), errors.New("db down"))

		_, err := service.Create(ctx, CreateDocumentRequest{
			CompanyID: testCompanyID,
			ClientID:  testClientID,
		})

		assert.Error(t, err)
		repo.AssertNotCalled(t, "Save")
	})

	t.Run("rejects invalid line input", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		service := NewQuoteService(repo)
		ctx := context.Background()

		repo.On("NextSequence", ctx, testCompanyID, document.TypeQuote, mock.AnythingOfType("int")).Return(int64(3), nil)

		badLine := testLineInput(100)
		badLine.VatRate = decimal.NewFromInt(-5)

		_, err := service.Create(ctx, CreateDocumentRequest{
			CompanyID: testCompanyID,
			ClientID:  testClientID,
			Lines:     []CreateLineInput{badLine},
		})

		assert.Error(t, err)
		repo.AssertNotCalled(t, "Save")
	})
}

func TestQuoteService_GetByID(t *testing.T) {
	t.Run("returns quote", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		service := NewQuoteService(repo)
		ctx := context.Background()
		quote := newStoredQuote(t)

		repo.On("FindByID", ctx, quote.ID).Return(quote, nil)

		result, err := service.GetByID(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, quote.DocumentNumber, result.DocumentNumber)
	})

	t.Run("hides invoices", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		service := NewQuoteService(repo)
		ctx := context.Background()
		invoice := newStoredSentInvoice(t)

		repo.On("FindByID", ctx, invoice.ID).Return(invoice, nil)

		_, err := service.GetByID(ctx, invoice.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("propagates not found", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		service := NewQuoteService(repo)
		ctx := context.Background()
		id := valueobject.NewIdentifier()

		repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := service.GetByID(ctx, id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestQuoteService_Update(t *testing.T) {
	t.Run("updates draft header", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		service := NewQuoteService(repo)
		ctx := context.Background()
		quote := newStoredQuote(t)
		newClient := valueobject.NewIdentifier()
		validUntil := time.Now().AddDate(0, 2, 0)

		repo.On("FindByID", ctx, quote.ID).Return(quote, nil)
		repo.On("Save", ctx, quote).Return(nil)

		result, err := service.Update(ctx, quote.ID, UpdateDocumentRequest{
			ClientID:   newClient,
			IssueDate:  quote.IssueDate,
			ValidUntil: &validUntil,
		})

		require.NoError(t, err)
		assert.Equal(t, newClient, result.ClientID)
		require.NotNil(t, result.ValidUntil)
		repo.AssertExpectations(t)
	})

	t.Run("rejects update once sent", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		service := NewQuoteService(repo)
		ctx := context.Background()
		quote := newStoredQuote(t)
		require.NoError(t, quote.Send())

		repo.On("FindByID", ctx, quote.ID).Return(quote, nil)

		_, err := service.Update(ctx, quote.ID, UpdateDocumentRequest{
			ClientID:  testClientID,
			IssueDate: quote.IssueDate,
		})

		assert.Error(t, err)
		repo.AssertNotCalled(t, "Save")
	})
}

func TestQuoteService_Send(t *testing.T) {
	repo := new(MockDocumentRepository)
	service := NewQuoteService(repo)
	ctx := context.Background()
	quote := newStoredQuote(t)

	repo.On("FindByID", ctx, quote.ID).Return(quote, nil)
	repo.On("Save", ctx, quote).Return(nil)

	result, err := service.Send(ctx, quote.ID)

	require.NoError(t, err)
	assert.Equal(t, document.StatusSent, result.Status)
	repo.AssertExpectations(t)
}

func TestQuoteService_AcceptAndReject(t *testing.T) {
	t.Run("accept records signature", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		service := NewQuoteService(repo)
		ctx := context.Background()
		quote := newStoredQuote(t)
		require.NoError(t, quote.Send())

		repo.On("FindByID", ctx, quote.ID).Return(quote, nil)
		repo.On("Save", ctx, quote).Return(nil)

		result, err := service.Accept(ctx, quote.ID, AcceptQuoteRequest{Signature: "sig"})

		require.NoError(t, err)
		assert.Equal(t, document.StatusAccepted, result.Status)
		assert.Equal(t, "sig", result.AcceptanceSignature)
	})

	t.Run("reject requires reason", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		service := NewQuoteService(repo)
		ctx := context.Background()
		quote := newStoredQuote(t)
		require.NoError(t, quote.Send())

		repo.On("FindByID", ctx, quote.ID).Return(quote, nil)

		_, err := service.Reject(ctx, quote.ID, RejectQuoteRequest{})
		assert.Error(t, err)
		repo.AssertNotCalled(t, "Save")
	})
}

func TestQuoteService_Convert(t *testing.T) {
	t.Run("converts accepted quote and saves both documents", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		service := NewQuoteService(repo)
		ctx := context.Background()
		quote := newStoredQuote(t)
		require.NoError(t, quote.Send())
		require.NoError(t, quote.Accept(""))
		quote.ClearDomainEvents()

		repo.On("FindByID", ctx, quote.ID).Return(quote, nil)
		repo.On("NextSequence", ctx, testCompanyID, document.TypeInvoice, mock.AnythingOfType("int")).Return(int64(7), nil)
		repo.On("Save", ctx, mock.AnythingOfType("*document.FinancialDocument")).Return(nil).Twice()

		dueDate := time.Now().AddDate(0, 0, 30)
		result, err := service.Convert(ctx, quote.ID, ConvertQuoteRequest{DueDate: &dueDate})

		require.NoError(t, err)
		assert.Equal(t, document.TypeInvoice, result.Type)
		assert.Contains(t, result.DocumentNumber, "FAC-")
		assert.Contains(t, result.DocumentNumber, "-0007")
		require.NotNil(t, result.SourceQuoteID)
		assert.True(t, result.SourceQuoteID.Equals(quote.ID))
		assert.Equal(t, document.StatusConverted, quote.Status)
		repo.AssertExpectations(t)
	})

	t.Run("refuses unaccepted quote", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		service := NewQuoteService(repo)
		ctx := context.Background()
		quote := newStoredQuote(t)

		repo.On("FindByID", ctx, quote.ID).Return(quote, nil)
		repo.On("NextSequence", ctx, testCompanyID, document.TypeInvoice, mock.AnythingOfType("int")).Return(int64(8), nil)

		_, err := service.Convert(ctx, quote.ID, ConvertQuoteRequest{})
		assert.Error(t, err)
		repo.AssertNotCalled(t, "Save")
	})
}

func TestQuoteService_List(t *testing.T) {
	repo := new(MockDocumentRepository)
	service := NewQuoteService(repo)
	ctx := context.Background()
	quote := newStoredQuote(t)

	page := shared.NewPaginated([]*document.FinancialDocument{quote}, 1, 1, 20)
	repo.On("FindAll", ctx, testCompanyID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["type"] == string(document.TypeQuote) && f.Page == 1 && f.PageSize == 20
	})).Return(page, nil)

	result, err := service.List(ctx, testCompanyID, DocumentListFilter{})

	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
	require.Len(t, result.Items, 1)
	assert.Equal(t, quote.DocumentNumber, result.Items[0].DocumentNumber)
}

// Invoice service tests

func TestInvoiceService_Create(t *testing.T) {
	repo := new(MockDocumentRepository)
	service := NewInvoiceService(repo)
	ctx := context.Background()

	repo.On("NextSequence", ctx, testCompanyID, document.TypeInvoice, mock.AnythingOfType("int")).Return(int64(1), nil)
	repo.On("Save", ctx, mock.AnythingOfType("*document.FinancialDocument")).Return(nil)

	dueDate := time.Now().AddDate(0, 0, 30)
	result, err := service.Create(ctx, CreateDocumentRequest{
		CompanyID: testCompanyID,
		ClientID:  testClientID,
		DueDate:   &dueDate,
		Lines:     []CreateLineInput{testLineInput(100)},
	})

	require.NoError(t, err)
	assert.Equal(t, document.TypeInvoice, result.Type)
	assert.Contains(t, result.DocumentNumber, "FAC-")
	require.NotNil(t, result.AmountDue)
	assert.Equal(t, "120.00", result.AmountDue.Amount)
	repo.AssertExpectations(t)
}

func TestInvoiceService_RecordPayment(t *testing.T) {
	t.Run("partial payment", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		service := NewInvoiceService(repo)
		ctx := context.Background()
		invoice := newStoredSentInvoice(t)

		repo.On("FindByID", ctx, invoice.ID).Return(invoice, nil)
		repo.On("Save", ctx, invoice).Return(nil)

		result, err := service.RecordPayment(ctx, invoice.ID, RecordPaymentRequest{
			Amount:    decimal.NewFromInt(100),
			Reference: "VIR-001",
		})

		require.NoError(t, err)
		assert.Equal(t, document.StatusPartial, result.Status)
		assert.Equal(t, "100.00", result.AmountPaid.Amount)
		assert.Equal(t, "140.00", result.AmountDue.Amount)
		require.Len(t, result.Payments, 1)
		assert.Equal(t, "VIR-001", result.Payments[0].Reference)
	})

	t.Run("rejects payment on quote", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		service := NewInvoiceService(repo)
		ctx := context.Background()
		quote := newStoredQuote(t)

		repo.On("FindByID", ctx, quote.ID).Return(quote, nil)

		_, err := service.RecordPayment(ctx, quote.ID, RecordPaymentRequest{Amount: decimal.NewFromInt(10)})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		service := NewInvoiceService(repo)
		ctx := context.Background()
		invoice := newStoredSentInvoice(t)

		repo.On("FindByID", ctx, invoice.ID).Return(invoice, nil)

		_, err := service.RecordPayment(ctx, invoice.ID, RecordPaymentRequest{Amount: decimal.NewFromInt(-10)})
		assert.Error(t, err)
		repo.AssertNotCalled(t, "Save")
	})
}

func TestInvoiceService_MarkOverdueInvoices(t *testing.T) {
	repo := new(MockDocumentRepository)
	service := NewInvoiceService(repo)
	ctx := context.Background()

	overdue := newStoredSentInvoice(t)
	past := time.Now().AddDate(0, 0, -5)
	overdue.DueDate = &past

	// Already paid invoices come back from the query but the domain
	// guard skips them.
	paid := newStoredSentInvoice(t)
	amount, _ := valueobject.NewMoneyEURFromFloat(240)
	require.NoError(t, paid.RecordPayment(amount, ""))
	paid.ClearDomainEvents()

	now := time.Now()
	repo.On("FindDueBefore", ctx, now).Return([]*document.FinancialDocument{overdue, paid}, nil)
	repo.On("Save", ctx, overdue).Return(nil)

	marked, err := service.MarkOverdueInvoices(ctx, now)

	require.NoError(t, err)
	assert.Equal(t, 1, marked)
	assert.Equal(t, document.StatusOverdue, overdue.Status)
	assert.Equal(t, document.StatusPaid, paid.Status)
	repo.AssertExpectations(t)
}

func TestInvoiceService_Delete(t *testing.T) {
	repo := new(MockDocumentRepository)
	service := NewInvoiceService(repo)
	ctx := context.Background()

	invoice, err := document.NewInvoice(testCompanyID, testClientID, "FAC-2026-0009", time.Now(), nil, valueobject.EUR)
	require.NoError(t, err)
	invoice.ClearDomainEvents()

	repo.On("FindByID", ctx, invoice.ID).Return(invoice, nil)
	repo.On("Save", ctx, invoice).Return(nil)

	require.NoError(t, service.Delete(ctx, invoice.ID))
	assert.Equal(t, document.StatusDeleted, invoice.Status)
	repo.AssertExpectations(t)
}

func TestDocumentNumberGenerator_Next(t *testing.T) {
	repo := new(MockDocumentRepository)
	gen := NewDocumentNumberGenerator(repo)
	ctx := context.Background()

	issueDate := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	repo.On("NextSequence", ctx, testCompanyID, document.TypeInvoice, 2026).Return(int64(42), nil)

	number, err := gen.Next(ctx, testCompanyID, document.TypeInvoice, issueDate)

	require.NoError(t, err)
	assert.Equal(t, "FAC-2026-0042", number)
}
