package entity

// TransactionListItem is one flat row of a search response: the transaction
// plus its resolved identities and display-ready fields. Items are built
// fresh for every response and never stored.
type TransactionListItem struct {
	Transaction
	From              PersonalDetails `json:"from"`
	To                PersonalDetails `json:"to"`
	FormattedFrom     string          `json:"formattedFrom"`
	FormattedTo       string          `json:"formattedTo"`
	FormattedMerchant string          `json:"formattedMerchant"`
	FormattedTotal    *int64          `json:"formattedTotal,omitempty"`
	Date              string          `json:"date"`
}

// ReportListItem is one report group of a search response: the report
// header plus its child transaction rows in encounter order.
type ReportListItem struct {
	Report
	FormattedName string                `json:"formattedName"`
	From          PersonalDetails       `json:"from"`
	To            PersonalDetails       `json:"to"`
	Transactions  []TransactionListItem `json:"transactions"`
}

// ReportActionListItem is one chat message row of a search response.
type ReportActionListItem struct {
	ReportAction
	From          PersonalDetails `json:"from"`
	FormattedFrom string          `json:"formattedFrom"`
	Date          string          `json:"date"`
}
