package entity

// Card is one payment card of the workspace card list.
type Card struct {
	CardID string `json:"cardID"`
	Bank   string `json:"bank"`
	Name   string `json:"name"`
}

// ReferenceData is the snapshot of reference collections a form projection
// validates filter values against. Policy-scoped collections are keyed by
// policy ID; an empty policy scope means the union of all policies.
type ReferenceData struct {
	PolicyCategories map[string][]string        `json:"policyCategories"`
	PolicyTags       map[string][]string        `json:"policyTags"`
	Currencies       []string                   `json:"currencies"`
	PersonalDetails  map[string]PersonalDetails `json:"personalDetailsList"`
	Cards            map[string]Card            `json:"cards"`
	Reports          map[string]Report          `json:"reports"`
	TaxRates         map[string][]string        `json:"taxRates"`
}

// HasCategory reports whether a category name exists in the scoped policy,
// or in any policy when no scope is given.
func (r *ReferenceData) HasCategory(policyID, name string) bool {
	return r.hasScopedValue(r.PolicyCategories, policyID, name)
}

// HasTag reports whether a tag name exists in the scoped policy, or in any
// policy when no scope is given.
func (r *ReferenceData) HasTag(policyID, name string) bool {
	return r.hasScopedValue(r.PolicyTags, policyID, name)
}

func (r *ReferenceData) hasScopedValue(scoped map[string][]string, policyID, name string) bool {
	if policyID != "" {
		return containsString(scoped[policyID], name)
	}
	for _, names := range scoped {
		if containsString(names, name) {
			return true
		}
	}
	return false
}

// HasCurrency reports whether a currency code is in the currency list.
func (r *ReferenceData) HasCurrency(code string) bool {
	return containsString(r.Currencies, code)
}

// HasCard reports whether a card ID is in the card list.
func (r *ReferenceData) HasCard(cardID string) bool {
	_, ok := r.Cards[cardID]
	return ok
}

// HasReport reports whether a report ID is in the report collection.
func (r *ReferenceData) HasReport(reportID string) bool {
	_, ok := r.Reports[reportID]
	return ok
}

// HasAccount reports whether an account ID resolves in the personal
// details directory.
func (r *ReferenceData) HasAccount(accountID string) bool {
	_, ok := r.PersonalDetails[accountID]
	return ok
}

// HasTaxRate reports whether a tax rate ID appears in any named tax
// group's ID list.
func (r *ReferenceData) HasTaxRate(rateID string) bool {
	for _, ids := range r.TaxRates {
		if containsString(ids, rateID) {
			return true
		}
	}
	return false
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
