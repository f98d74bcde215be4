package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// PersonalDetails identifies one account in the personal details directory.
type PersonalDetails struct {
	AccountID   string `json:"accountID"`
	DisplayName string `json:"displayName"`
	Login       string `json:"login"`
}

// EmptyIdentity is the sentinel used when an account cannot be resolved,
// for example a transaction with no manager. It formats to an empty name.
var EmptyIdentity = PersonalDetails{}

// TransactionComment carries the free-text description of a transaction.
type TransactionComment struct {
	Comment string `json:"comment"`
}

// Transaction is one expense row of a search results payload. Amounts are
// integer minor units; a nil amount means the backend has not priced the
// row yet. Dates are fixed-width "YYYY-MM-DD HH:MM:SS" strings.
type Transaction struct {
	TransactionID   string             `json:"transactionID"`
	Amount          *int64             `json:"amount,omitempty"`
	Currency        string             `json:"currency"`
	Merchant        string             `json:"merchant"`
	Category        string             `json:"category"`
	Tag             string             `json:"tag"`
	Created         string             `json:"created"`
	ModifiedCreated string             `json:"modifiedCreated,omitempty"`
	ReportID        string             `json:"reportID"`
	AccountID       string             `json:"accountID"`
	ManagerID       string             `json:"managerID"`
	TransactionType string             `json:"transactionType"`
	Action          string             `json:"action"`
	Comment         TransactionComment `json:"comment"`
}

// EffectiveDate is the transaction's modified creation date when an edit
// recorded one, else the original creation date.
func (t *Transaction) EffectiveDate() string {
	if t.ModifiedCreated != "" {
		return t.ModifiedCreated
	}
	return t.Created
}

// Report is one report header record of a search results payload.
type Report struct {
	ReportID   string `json:"reportID"`
	Type       string `json:"type"`
	ReportName string `json:"reportName"`
	Total      *int64 `json:"total,omitempty"`
	Currency   string `json:"currency"`
	AccountID  string `json:"accountID"`
	ManagerID  string `json:"managerID"`
	Created    string `json:"created"`
}

// ReportAction is one chat message record of a search results payload.
type ReportAction struct {
	ReportActionID string `json:"reportActionID"`
	ReportID       string `json:"reportID"`
	AccountID      string `json:"accountID"`
	Created        string `json:"created"`
	Message        string `json:"message"`
	Deleted        bool   `json:"deleted"`
}

// SearchResultsMetadata carries the per-column visibility flags the backend
// computes for a results payload.
type SearchResultsMetadata struct {
	ShouldShowCategoryColumn bool `json:"shouldShowCategoryColumn"`
	ShouldShowTagColumn      bool `json:"shouldShowTagColumn"`
	ShouldShowTaxColumn      bool `json:"shouldShowTaxColumn"`
}

// SearchResults is the decoded form of one search results payload. The wire
// format is a single flat object whose keys carry a type prefix
// (report_<id>, transaction_<id>, reportActions_<reportID>) next to the
// personalDetailsList and search side tables; decoding splits it into
// per-collection storage. Record order within each collection preserves key
// encounter order, which downstream grouping relies on.
type SearchResults struct {
	Metadata        SearchResultsMetadata
	Reports         []Report
	Transactions    []Transaction
	ReportActions   []ReportAction
	PersonalDetails map[string]PersonalDetails
}

var _ json.Unmarshaler = (*SearchResults)(nil)

// UnmarshalJSON walks the payload's top-level keys in document order and
// routes each record by its prefix. Unknown keys are skipped.
func (r *SearchResults) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode search results: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("decode search results: expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode search results: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("decode search results: non-string key %v", keyTok)
		}

		switch {
		case key == KeyPersonalDetailsList:
			if err := dec.Decode(&r.PersonalDetails); err != nil {
				return fmt.Errorf("decode personal details: %w", err)
			}
		case key == KeySearchMetadata:
			if err := dec.Decode(&r.Metadata); err != nil {
				return fmt.Errorf("decode search metadata: %w", err)
			}
		case strings.HasPrefix(key, PrefixReportActions):
			if err := r.decodeReportActions(dec, strings.TrimPrefix(key, PrefixReportActions)); err != nil {
				return err
			}
		case strings.HasPrefix(key, PrefixReport):
			var rep Report
			if err := dec.Decode(&rep); err != nil {
				return fmt.Errorf("decode report %s: %w", key, err)
			}
			if rep.ReportID == "" {
				rep.ReportID = strings.TrimPrefix(key, PrefixReport)
			}
			r.Reports = append(r.Reports, rep)
		case strings.HasPrefix(key, PrefixTransaction):
			var txn Transaction
			if err := dec.Decode(&txn); err != nil {
				return fmt.Errorf("decode transaction %s: %w", key, err)
			}
			if txn.TransactionID == "" {
				txn.TransactionID = strings.TrimPrefix(key, PrefixTransaction)
			}
			r.Transactions = append(r.Transactions, txn)
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return fmt.Errorf("skip key %s: %w", key, err)
			}
		}
	}
	return nil
}

// decodeReportActions reads one reportActions_<reportID> record, a map of
// action ID to action. Map iteration has no stable order, so actions are
// appended sorted by their ID to keep decoding deterministic.
func (r *SearchResults) decodeReportActions(dec *json.Decoder, reportID string) error {
	var actions map[string]ReportAction
	if err := dec.Decode(&actions); err != nil {
		return fmt.Errorf("decode report actions for %s: %w", reportID, err)
	}

	ids := make([]string, 0, len(actions))
	for id := range actions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		action := actions[id]
		if action.ReportActionID == "" {
			action.ReportActionID = id
		}
		if action.ReportID == "" {
			action.ReportID = reportID
		}
		r.ReportActions = append(r.ReportActions, action)
	}
	return nil
}

// Details resolves an account from the personal details directory, falling
// back to the empty identity.
func (r *SearchResults) Details(accountID string) PersonalDetails {
	if d, ok := r.PersonalDetails[accountID]; ok {
		return d
	}
	return EmptyIdentity
}
