package entity

// AdvancedFiltersForm is the flat, edit-friendly shape of a search query's
// filters. List fields hold one entry per selected value; date and amount
// are split into their bound slots so the form can edit each side
// independently.
type AdvancedFiltersForm struct {
	Type     string `json:"type,omitempty"`
	Status   string `json:"status,omitempty"`
	PolicyID string `json:"policyID,omitempty"`

	DateBefore string `json:"dateBefore,omitempty"`
	DateAfter  string `json:"dateAfter,omitempty"`

	LessThan    string `json:"lessThan,omitempty"`
	GreaterThan string `json:"greaterThan,omitempty"`

	Category    []string `json:"category,omitempty"`
	Tag         []string `json:"tag,omitempty"`
	Currency    []string `json:"currency,omitempty"`
	From        []string `json:"from,omitempty"`
	To          []string `json:"to,omitempty"`
	In          []string `json:"in,omitempty"`
	CardID      []string `json:"cardID,omitempty"`
	TaxRate     []string `json:"taxRate,omitempty"`
	ExpenseType []string `json:"expenseType,omitempty"`

	Merchant    string `json:"merchant,omitempty"`
	Description string `json:"description,omitempty"`
	ReportID    string `json:"reportID,omitempty"`
	Keyword     string `json:"keyword,omitempty"`
}
