package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledgerline/expense-search/internal/application/port"
	"github.com/ledgerline/expense-search/internal/domain/entity"
	"github.com/ledgerline/expense-search/internal/domain/query"
)

// FiltersService converts between the advanced-filters form and the textual
// query grammar.
type FiltersService interface {
	// QueryStringFromForm renders form values as a query string. The sort
	// always resets to the default; form submission never carries one.
	QueryStringFromForm(form *entity.AdvancedFiltersForm) string

	// FormValuesFromQuery parses rawQuery and projects its filters into
	// form shape, dropping values that no longer resolve against the
	// reference collections
	FormValuesFromQuery(ctx context.Context, rawQuery string) (*entity.AdvancedFiltersForm, error)
}

type filtersServiceImpl struct {
	referenceRepo port.ReferenceDataRepository
	logger        Logger
}

// NewFiltersService creates a new FiltersService
func NewFiltersService(referenceRepo port.ReferenceDataRepository, logger Logger) FiltersService {
	return &filtersServiceImpl{
		referenceRepo: referenceRepo,
		logger:        logger,
	}
}

// QueryStringFromForm renders the form as query text: type, status and
// policyID first, then the fixed default sort, then filter segments in
// their serialization order.
func (s *filtersServiceImpl) QueryStringFromForm(form *entity.AdvancedFiltersForm) string {
	if form == nil {
		form = &entity.AdvancedFiltersForm{}
	}

	dataType := form.Type
	if dataType == "" {
		dataType = string(query.DefaultDataType)
	}
	status := form.Status
	if status == "" {
		status = string(query.DefaultStatus)
	}

	parts := []string{
		query.RootKeyType + ":" + query.SanitizeValue(dataType),
		query.RootKeyStatus + ":" + query.SanitizeValue(status),
	}
	if form.PolicyID != "" {
		parts = append(parts, query.RootKeyPolicyID+":"+query.SanitizeValue(form.PolicyID))
	}
	parts = append(parts,
		query.RootKeySortBy+":"+query.DefaultSortBy,
		query.RootKeySortOrder+":"+string(query.DefaultSortOrder),
	)

	for _, key := range query.FilterKeys() {
		filters := formFilters(form, key)
		if len(filters) == 0 {
			continue
		}
		parts = append(parts, query.BuildFilterString(key, filters))
	}
	return strings.Join(parts, " ")
}

// FormValuesFromQuery projects a parsed query into form shape. Values that
// no longer resolve against the reference collections are dropped, so the
// form never shows a chip for a deleted entity.
func (s *filtersServiceImpl) FormValuesFromQuery(ctx context.Context, rawQuery string) (*entity.AdvancedFiltersForm, error) {
	q, perr := query.BuildSearchQueryJSON(rawQuery)
	if perr != nil {
		s.logger.Info("Rejected malformed query", "input", rawQuery, "position", perr.Position, "reason", perr.Reason)
		return nil, perr
	}

	ref, err := s.referenceRepo.Load(ctx)
	if err != nil {
		s.logger.Error("Failed to load reference data", "error", err)
		return nil, fmt.Errorf("load reference data: %w", err)
	}

	return projectFormValues(q, ref), nil
}

// projectFormValues is the pure reverse mapping from canonical query to
// form values against one reference snapshot.
func projectFormValues(q *query.SearchQueryJSON, ref *entity.ReferenceData) *entity.AdvancedFiltersForm {
	form := &entity.AdvancedFiltersForm{
		Type:   string(query.DefaultDataType),
		Status: string(query.DefaultStatus),
	}
	if query.IsKnownTypeStatus(q.Type, q.Status) {
		form.Type = string(q.Type)
		form.Status = string(q.Status)
	}
	form.PolicyID = q.PolicyID

	form.DateBefore, form.DateAfter = boundSlots(q.FlatFilters[query.KeyDate])
	form.LessThan, form.GreaterThan = boundSlots(q.FlatFilters[query.KeyAmount])

	form.Category = keepValues(q.FlatFilters[query.KeyCategory], func(v string) bool {
		return ref.HasCategory(q.PolicyID, v)
	})
	form.Tag = keepValues(q.FlatFilters[query.KeyTag], func(v string) bool {
		return ref.HasTag(q.PolicyID, v)
	})
	form.Currency = keepValues(q.FlatFilters[query.KeyCurrency], ref.HasCurrency)
	form.CardID = keepValues(q.FlatFilters[query.KeyCardID], ref.HasCard)
	form.TaxRate = keepValues(q.FlatFilters[query.KeyTaxRate], ref.HasTaxRate)
	form.In = keepValues(q.FlatFilters[query.KeyIn], ref.HasReport)
	form.From = keepValues(q.FlatFilters[query.KeyFrom], ref.HasAccount)
	form.To = keepValues(q.FlatFilters[query.KeyTo], ref.HasAccount)
	form.ExpenseType = keepValues(q.FlatFilters[query.KeyExpenseType], nil)

	form.Merchant = firstEqValue(q.FlatFilters[query.KeyMerchant])
	form.Description = firstEqValue(q.FlatFilters[query.KeyDescription])
	form.ReportID = firstEqValue(q.FlatFilters[query.KeyReportID])
	form.Keyword = strings.Join(eqValues(q.FlatFilters[query.KeyKeyword]), " ")

	return form
}

// formFilters projects one form field into its ordered constraint list.
// Date renders before then after; amount renders greater then less.
func formFilters(form *entity.AdvancedFiltersForm, key query.FilterKey) []query.QueryFilter {
	switch key {
	case query.KeyAmount:
		var filters []query.QueryFilter
		if form.GreaterThan != "" {
			filters = append(filters, query.QueryFilter{Operator: query.OpGt, Value: form.GreaterThan})
		}
		if form.LessThan != "" {
			filters = append(filters, query.QueryFilter{Operator: query.OpLt, Value: form.LessThan})
		}
		return filters
	case query.KeyDate:
		var filters []query.QueryFilter
		if form.DateBefore != "" {
			filters = append(filters, query.QueryFilter{Operator: query.OpLt, Value: form.DateBefore})
		}
		if form.DateAfter != "" {
			filters = append(filters, query.QueryFilter{Operator: query.OpGt, Value: form.DateAfter})
		}
		return filters
	case query.KeyCategory:
		return eqFilters(dedupe(form.Category))
	case query.KeyTag:
		return eqFilters(dedupe(form.Tag))
	case query.KeyMerchant:
		return eqFilters(singleton(form.Merchant))
	case query.KeyDescription:
		return eqFilters(singleton(form.Description))
	case query.KeyReportID:
		return eqFilters(singleton(form.ReportID))
	case query.KeyFrom:
		return eqFilters(dedupe(form.From))
	case query.KeyTo:
		return eqFilters(dedupe(form.To))
	case query.KeyIn:
		return eqFilters(dedupe(form.In))
	case query.KeyCardID:
		return eqFilters(dedupe(form.CardID))
	case query.KeyTaxRate:
		return eqFilters(dedupe(form.TaxRate))
	case query.KeyCurrency:
		return eqFilters(dedupe(form.Currency))
	case query.KeyKeyword:
		return eqFilters(strings.Fields(form.Keyword))
	case query.KeyExpenseType:
		return eqFilters(dedupe(form.ExpenseType))
	default:
		return nil
	}
}

// eqFilters wraps values as equality constraints, skipping empties.
func eqFilters(values []string) []query.QueryFilter {
	filters := make([]query.QueryFilter, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		filters = append(filters, query.QueryFilter{Operator: query.OpEq, Value: v})
	}
	return filters
}

// dedupe removes repeated values preserving first occurrence.
func dedupe(values []string) []string {
	if len(values) < 2 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func singleton(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}

// keepValues collects the equality values that pass the membership check.
// A nil check keeps every value. Duplicates collapse to first occurrence.
func keepValues(filters []query.QueryFilter, resolves func(string) bool) []string {
	var out []string
	seen := make(map[string]struct{}, len(filters))
	for _, f := range filters {
		if f.Operator != query.OpEq {
			continue
		}
		if _, ok := seen[f.Value]; ok {
			continue
		}
		if resolves != nil && !resolves(f.Value) {
			continue
		}
		seen[f.Value] = struct{}{}
		out = append(out, f.Value)
	}
	return out
}

// eqValues collects every equality value in order, duplicates included.
func eqValues(filters []query.QueryFilter) []string {
	var out []string
	for _, f := range filters {
		if f.Operator == query.OpEq {
			out = append(out, f.Value)
		}
	}
	return out
}

// firstEqValue returns the first equality value, or empty.
func firstEqValue(filters []query.QueryFilter) string {
	for _, f := range filters {
		if f.Operator == query.OpEq {
			return f.Value
		}
	}
	return ""
}

// boundSlots splits range constraints into their form slots: the first
// less-than match fills the upper slot, the first greater-than match the
// lower slot. Redundant constraints on the same operator are dropped.
func boundSlots(filters []query.QueryFilter) (lt, gt string) {
	for _, f := range filters {
		switch f.Operator {
		case query.OpLt:
			if lt == "" {
				lt = f.Value
			}
		case query.OpGt:
			if gt == "" {
				gt = f.Value
			}
		}
	}
	return lt, gt
}
