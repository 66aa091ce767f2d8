package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/facturio/backend/internal/domain/document"
	"github.com/facturio/backend/internal/domain/shared"
	"github.com/facturio/backend/internal/domain/shared/valueobject"
	"github.com/facturio/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDocumentRepository implements document.DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByID loads a document with its lines
func (r *GormDocumentRepository) FindByID(ctx context.Context, id valueobject.Identifier) (*document.FinancialDocument, error) {
	var model models.FinancialDocumentModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", preloadLinesOrdered).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber loads a document by its company-scoped number
func (r *GormDocumentRepository) FindByNumber(ctx context.Context, companyID valueobject.Identifier, number string) (*document.FinancialDocument, error) {
	var model models.FinancialDocumentModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", preloadLinesOrdered).
		Where("company_id = ? AND document_number = ?", companyID, number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns documents for a company matching the filter, paginated.
// Lines are not loaded; list views only need the document head and totals.
func (r *GormDocumentRepository) FindAll(ctx context.Context, companyID valueobject.Identifier, filter shared.Filter) (shared.Paginated[*document.FinancialDocument], error) {
	scoped := func() *gorm.DB {
		return r.applyFilterWithoutPagination(
			r.db.WithContext(ctx).Model(&models.FinancialDocumentModel{}).Where("company_id = ?", companyID),
			filter,
		)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return shared.Paginated[*document.FinancialDocument]{}, err
	}

	var rows []models.FinancialDocumentModel
	if err := r.applyPagination(scoped(), filter).Find(&rows).Error; err != nil {
		return shared.Paginated[*document.FinancialDocument]{}, err
	}

	docs := make([]*document.FinancialDocument, len(rows))
	for i := range rows {
		docs[i] = rows[i].ToDomain()
	}
	return shared.NewPaginated(docs, total, filter.Page, filter.PageSize), nil
}

// FindDueBefore returns invoices in a payable status whose due date has
// passed the cutoff. Used by the overdue sweep.
func (r *GormDocumentRepository) FindDueBefore(ctx context.Context, cutoff time.Time) ([]*document.FinancialDocument, error) {
	payable := []document.DocumentStatus{document.StatusSent, document.StatusPartial}

	var rows []models.FinancialDocumentModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", preloadLinesOrdered).
		Where("type = ? AND status IN ? AND due_date < ?", document.TypeInvoice, payable, cutoff).
		Order("due_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	docs := make([]*document.FinancialDocument, len(rows))
	for i := range rows {
		docs[i] = rows[i].ToDomain()
	}
	return docs, nil
}

// Save inserts or updates a document and reconciles its lines. Updates
// carry an optimistic version check; inserts verify number uniqueness
// within the company before writing.
func (r *GormDocumentRepository) Save(ctx context.Context, doc *document.FinancialDocument) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.FinancialDocumentModelFromDomain(doc)

		var currentVersion int
		err := tx.Model(&models.FinancialDocumentModel{}).
			Where("id = ?", model.ID).
			Select("version").
			Take(&currentVersion).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			var count int64
			if err := tx.Model(&models.FinancialDocumentModel{}).
				Where("company_id = ? AND document_number = ?", model.CompanyID, model.DocumentNumber).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return shared.ErrAlreadyExists
			}
			if err := tx.Omit("Lines").Create(model).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if currentVersion != model.Version {
				return shared.ErrConcurrencyConflict
			}
			model.Version++
			result := tx.Model(&models.FinancialDocumentModel{}).
				Where("id = ? AND version = ?", model.ID, currentVersion).
				Select("*").Omit("Lines", "created_at").
				Updates(model)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return shared.ErrConcurrencyConflict
			}
			doc.IncrementVersion()
		}

		currentLineIDs := make([]valueobject.Identifier, len(model.Lines))
		for i := range model.Lines {
			currentLineIDs[i] = model.Lines[i].ID
		}

		// Remove rows for lines the aggregate no longer carries
		if len(currentLineIDs) > 0 {
			if err := tx.Where("document_id = ? AND id NOT IN ?", model.ID, currentLineIDs).
				Delete(&models.DocumentLineModel{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("document_id = ?", model.ID).
				Delete(&models.DocumentLineModel{}).Error; err != nil {
				return err
			}
		}

		for i := range model.Lines {
			model.Lines[i].DocumentID = model.ID
			if err := tx.Save(&model.Lines[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// NextSequence atomically allocates the next document number sequence for
// the company, type and year. The sequence row is locked FOR UPDATE so
// concurrent allocations serialize and never hand out duplicates.
func (r *GormDocumentRepository) NextSequence(ctx context.Context, companyID valueobject.Identifier, docType document.DocumentType, year int) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq models.DocumentSequenceModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("company_id = ? AND doc_type = ? AND year = ?", companyID, docType, year).
			First(&seq).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			seq = models.DocumentSequenceModel{
				CompanyID: companyID,
				DocType:   docType,
				Year:      year,
				Value:     1,
				UpdatedAt: time.Now(),
			}
			if err := tx.Create(&seq).Error; err != nil {
				return err
			}
			next = 1
			return nil
		}
		if err != nil {
			return err
		}

		seq.Value++
		seq.UpdatedAt = time.Now()
		if err := tx.Model(&models.DocumentSequenceModel{}).
			Where("company_id = ? AND doc_type = ? AND year = ?", companyID, docType, year).
			Updates(map[string]interface{}{"value": seq.Value, "updated_at": seq.UpdatedAt}).Error; err != nil {
			return err
		}
		next = seq.Value
		return nil
	})
	return next, err
}

func preloadLinesOrdered(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// applyPagination applies ordering and pagination to the query
func (r *GormDocumentRepository) applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, DocumentSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination.
// Deleted documents are hidden unless a status filter asks for them.
func (r *GormDocumentRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("document_number ILIKE ?", "%"+filter.Search+"%")
	}

	statusFiltered := false
	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "client_id":
			query = query.Where("client_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
			statusFiltered = true
		case "statuses":
			switch statuses := value.(type) {
			case []document.DocumentStatus:
				if len(statuses) > 0 {
					query = query.Where("status IN ?", statuses)
					statusFiltered = true
				}
			case []string:
				if len(statuses) > 0 {
					query = query.Where("status IN ?", statuses)
					statusFiltered = true
				}
			}
		case "issued_from":
			if t, ok := value.(time.Time); ok {
				query = query.Where("issue_date >= ?", t)
			}
		case "issued_to":
			if t, ok := value.(time.Time); ok {
				query = query.Where("issue_date <= ?", t)
			}
		}
	}

	if !statusFiltered {
		query = query.Where("status <> ?", document.StatusDeleted)
	}

	return query
}

// Ensure GormDocumentRepository implements DocumentRepository
var _ document.DocumentRepository = (*GormDocumentRepository)(nil)
