package document

import (
	"github.com/facturio/backend/internal/domain/document"
	"github.com/facturio/backend/internal/domain/shared"
	"github.com/facturio/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// defaultCountryCode backs VAT rates whose input omits the country
const defaultCountryCode = "FR"

func buildQuantity(value decimal.Decimal, unit string) (valueobject.Quantity, error) {
	return valueobject.NewQuantity(value, unit)
}

func buildUnitPrice(value decimal.Decimal, currency valueobject.Currency) (valueobject.Money, error) {
	return valueobject.NewMoney(value, currency)
}

func buildVatRate(rate decimal.Decimal, countryCode string) (valueobject.VatRate, error) {
	if countryCode == "" {
		countryCode = defaultCountryCode
	}
	return valueobject.NewVatRate(rate, countryCode)
}

func applyCreateLine(doc *document.FinancialDocument, input CreateLineInput) error {
	line, err := addLineFromInput(doc, input.Type, input.Title, input.Quantity, input.Unit, input.UnitPrice, input.VatRate, input.CountryCode)
	if err != nil {
		return err
	}
	if input.Description != "" {
		line.SetDescription(input.Description)
	}
	if input.Discount != nil {
		return doc.SetLineDiscount(line.ID, input.Discount.Type, input.Discount.Value)
	}
	return nil
}

func applyAddLine(doc *document.FinancialDocument, req AddLineRequest) error {
	line, err := addLineFromInput(doc, req.Type, req.Title, req.Quantity, req.Unit, req.UnitPrice, req.VatRate, req.CountryCode)
	if err != nil {
		return err
	}
	if req.Description != "" {
		line.SetDescription(req.Description)
	}
	return nil
}

func applyUpdateLine(doc *document.FinancialDocument, lineID valueobject.Identifier, req UpdateLineRequest) error {
	quantity, err := buildQuantity(req.Quantity, req.Unit)
	if err != nil {
		return shared.NewDomainError("INVALID_QUANTITY", err.Error())
	}
	unitPrice, err := buildUnitPrice(req.UnitPrice, doc.Currency)
	if err != nil {
		return shared.NewDomainError("INVALID_PRICE", err.Error())
	}
	vatRate, err := buildVatRate(req.VatRate, req.CountryCode)
	if err != nil {
		return shared.NewDomainError("INVALID_VAT_RATE", err.Error())
	}
	return doc.UpdateLine(lineID, req.Title, quantity, unitPrice, vatRate)
}

func addLineFromInput(doc *document.FinancialDocument, lineType document.LineType, title string, quantity decimal.Decimal, unit string, unitPrice, vatRate decimal.Decimal, countryCode string) (*document.LineItem, error) {
	qty, err := buildQuantity(quantity, unit)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_QUANTITY", err.Error())
	}
	price, err := buildUnitPrice(unitPrice, doc.Currency)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PRICE", err.Error())
	}
	rate, err := buildVatRate(vatRate, countryCode)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_VAT_RATE", err.Error())
	}
	return doc.AddLine(lineType, title, qty, price, rate)
}

func buildDomainFilter(filter DocumentListFilter, docType document.DocumentType) shared.Filter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	domainFilter.Filters["type"] = string(docType)

	if filter.ClientID != nil {
		domainFilter.Filters["client_id"] = filter.ClientID.String()
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		domainFilter.Filters["statuses"] = statuses
	}

	return domainFilter
}
