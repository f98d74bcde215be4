package entity

// Report type constants
const (
	ReportTypeExpense = "expense"
	ReportTypeIOU     = "iou"
	ReportTypeChat    = "chat"
)

// Transaction type constants
const (
	TransactionTypeCash = "cash"
	TransactionTypeCard = "card"
)

// Row action constants
const (
	ActionView   = "view"
	ActionReview = "review"
)

// Merchant placeholders the backend writes while a transaction is being
// created or scanned. They are never shown to users; the formatter blanks
// them.
const (
	MerchantPartialPlaceholder = "(none)"
	MerchantDefaultPlaceholder = "Expense"
)

// Key prefixes of the search results wire payload. Each record key is one
// of these prefixes followed by the record's ID.
const (
	PrefixReport        = "report_"
	PrefixTransaction   = "transaction_"
	PrefixReportActions = "reportActions_"
)

// Side-table keys of the search results wire payload.
const (
	KeyPersonalDetailsList = "personalDetailsList"
	KeySearchMetadata      = "search"
)
