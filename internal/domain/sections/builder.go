// Package sections turns decoded search results into display-ready list
// items: flat transaction rows, report groups, or chat rows depending on
// the query's type and status.
package sections

import (
	"strconv"
	"time"

	"github.com/ledgerline/expense-search/internal/domain/entity"
	"github.com/ledgerline/expense-search/internal/domain/query"
)

// Kind names which list item variant a Sections value carries.
type Kind string

const (
	KindTransactions  Kind = "transactions"
	KindReports       Kind = "reports"
	KindReportActions Kind = "reportActions"
)

// Sections is one built search response: exactly one of the item slices is
// populated, per Kind. The visibility flags are global across all rows of
// the response.
type Sections struct {
	Kind               Kind                          `json:"kind"`
	Transactions       []entity.TransactionListItem  `json:"transactions,omitempty"`
	Reports            []entity.ReportListItem       `json:"reports,omitempty"`
	ReportActions      []entity.ReportActionListItem `json:"reportActions,omitempty"`
	ShouldShowMerchant bool                          `json:"shouldShowMerchant"`
	ShouldShowYear     bool                          `json:"shouldShowYear"`
	Metadata           entity.SearchResultsMetadata  `json:"metadata"`
}

// IOUNameFormatter renders the synthesized name of an IOU report from the
// payer's display name and the formatted total.
type IOUNameFormatter func(payer, formattedTotal string) string

// Builder assembles Sections from decoded search results.
type Builder struct {
	iouName IOUNameFormatter
	now     func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithIOUNameFormatter overrides the IOU report name template, for example
// to localize it.
func WithIOUNameFormatter(f IOUNameFormatter) Option {
	return func(b *Builder) {
		b.iouName = f
	}
}

// WithClock overrides the clock used for the year visibility flag.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// NewBuilder creates a Builder with the default English IOU template and
// the wall clock.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		iouName: func(payer, formattedTotal string) string {
			return payer + " owes " + formattedTotal
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build dispatches on the query's type and status: chat searches produce
// chat rows, the expense/all view produces flat transaction rows, and every
// other view groups transactions under their reports.
func (b *Builder) Build(dataType query.SearchDataType, status query.SearchStatus, results *entity.SearchResults) *Sections {
	switch {
	case dataType == query.DataTypeChat:
		return b.buildReportActionSections(results)
	case dataType == query.DataTypeExpense && status == query.StatusAll:
		return b.buildTransactionSections(results)
	default:
		return b.buildReportSections(results)
	}
}

func (b *Builder) buildTransactionSections(results *entity.SearchResults) *Sections {
	items := make([]entity.TransactionListItem, 0, len(results.Transactions))
	for _, txn := range results.Transactions {
		items = append(items, b.transactionItem(txn, results))
	}
	return &Sections{
		Kind:               KindTransactions,
		Transactions:       items,
		ShouldShowMerchant: ShouldShowMerchant(results),
		ShouldShowYear:     b.shouldShowYear(results),
		Metadata:           results.Metadata,
	}
}

// buildReportSections groups transactions under their parent reports. The
// payload carries records in no guaranteed order, so a transaction may
// arrive before its report: the group is created on first sight of either
// and the header is filled in whenever the report record shows up,
// preserving transactions already attached. Groups whose report record
// never arrives keep only the report ID.
func (b *Builder) buildReportSections(results *entity.SearchResults) *Sections {
	groups := make(map[string]*entity.ReportListItem)
	var order []string

	ensure := func(reportID string) *entity.ReportListItem {
		if g, ok := groups[reportID]; ok {
			return g
		}
		g := &entity.ReportListItem{Report: entity.Report{ReportID: reportID}}
		groups[reportID] = g
		order = append(order, reportID)
		return g
	}

	for _, rep := range results.Reports {
		g := ensure(rep.ReportID)
		attached := g.Transactions
		g.Report = rep
		g.Transactions = attached
		g.From = results.Details(rep.AccountID)
		g.To = results.Details(rep.ManagerID)
		g.FormattedName = b.reportName(rep, g.From)
	}
	for _, txn := range results.Transactions {
		g := ensure(txn.ReportID)
		g.Transactions = append(g.Transactions, b.transactionItem(txn, results))
	}

	items := make([]entity.ReportListItem, 0, len(order))
	for _, id := range order {
		items = append(items, *groups[id])
	}
	SortReportsByNewestTransaction(items)

	return &Sections{
		Kind:               KindReports,
		Reports:            items,
		ShouldShowMerchant: ShouldShowMerchant(results),
		ShouldShowYear:     b.shouldShowYear(results),
		Metadata:           results.Metadata,
	}
}

// buildReportActionSections produces chat rows, excluding actions flagged
// as deleted, newest first.
func (b *Builder) buildReportActionSections(results *entity.SearchResults) *Sections {
	var items []entity.ReportActionListItem
	for _, action := range results.ReportActions {
		if action.Deleted {
			continue
		}
		from := results.Details(action.AccountID)
		items = append(items, entity.ReportActionListItem{
			ReportAction:  action,
			From:          from,
			FormattedFrom: FormatDisplayName(from),
			Date:          action.Created,
		})
	}
	SortReportActionsByCreated(items)

	return &Sections{
		Kind:           KindReportActions,
		ReportActions:  items,
		ShouldShowYear: b.shouldShowYear(results),
		Metadata:       results.Metadata,
	}
}

func (b *Builder) transactionItem(txn entity.Transaction, results *entity.SearchResults) entity.TransactionListItem {
	from := results.Details(txn.AccountID)
	to := results.Details(txn.ManagerID)
	return entity.TransactionListItem{
		Transaction:       txn,
		From:              from,
		To:                to,
		FormattedFrom:     FormatDisplayName(from),
		FormattedTo:       FormatDisplayName(to),
		FormattedMerchant: FormatMerchant(txn.Merchant),
		FormattedTotal:    txn.Amount,
		Date:              txn.EffectiveDate(),
	}
}

func (b *Builder) reportName(rep entity.Report, from entity.PersonalDetails) string {
	if rep.Type == entity.ReportTypeIOU {
		var total int64
		if rep.Total != nil {
			total = *rep.Total
		}
		return b.iouName(FormatDisplayName(from), FormatAmount(total, rep.Currency))
	}
	return rep.ReportName
}

// ShouldShowMerchant reports whether any transaction in the payload has a
// merchant worth displaying. The flag applies to the whole response, not
// per row.
func ShouldShowMerchant(results *entity.SearchResults) bool {
	for _, txn := range results.Transactions {
		if FormatMerchant(txn.Merchant) != "" {
			return true
		}
	}
	return false
}

// shouldShowYear reports whether any record's effective date falls outside
// the current calendar year, in which case every date in the response
// renders with its year.
func (b *Builder) shouldShowYear(results *entity.SearchResults) bool {
	current := strconv.Itoa(b.now().Year())
	for _, txn := range results.Transactions {
		if y := yearOf(txn.EffectiveDate()); y != "" && y != current {
			return true
		}
	}
	for _, rep := range results.Reports {
		if y := yearOf(rep.Created); y != "" && y != current {
			return true
		}
	}
	for _, action := range results.ReportActions {
		if y := yearOf(action.Created); y != "" && y != current {
			return true
		}
	}
	return false
}
