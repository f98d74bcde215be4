package sections

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ledgerline/expense-search/internal/domain/entity"
	"github.com/ledgerline/expense-search/internal/domain/query"
)

// stringColumns maps sortable string columns to their accessor. The second
// return value reports whether the row participates in the sort; rows that
// do not participate keep their exact position.
var stringColumns = map[string]func(*entity.TransactionListItem) (string, bool){
	query.ColumnTo: func(it *entity.TransactionListItem) (string, bool) {
		return it.FormattedTo, true
	},
	query.ColumnFrom: func(it *entity.TransactionListItem) (string, bool) {
		return it.FormattedFrom, true
	},
	query.ColumnDate: func(it *entity.TransactionListItem) (string, bool) {
		return it.Date, true
	},
	query.ColumnMerchant: func(it *entity.TransactionListItem) (string, bool) {
		return it.FormattedMerchant, true
	},
	query.ColumnType: func(it *entity.TransactionListItem) (string, bool) {
		return it.TransactionType, true
	},
	query.ColumnAction: func(it *entity.TransactionListItem) (string, bool) {
		return it.Action, true
	},
	query.ColumnTag: func(it *entity.TransactionListItem) (string, bool) {
		return it.Tag, it.Tag != ""
	},
	query.ColumnCategory: func(it *entity.TransactionListItem) (string, bool) {
		return it.Category, it.Category != ""
	},
	query.ColumnDescription: func(it *entity.TransactionListItem) (string, bool) {
		return it.Comment.Comment, it.Comment.Comment != ""
	},
}

// SortTransactions orders flat transaction rows by one column. Columns
// without a sort mapping (receipt, tax amount) leave the slice untouched,
// and rows whose sort value is missing keep their exact position while the
// rest sort around them. String columns compare locale-aware and
// case-insensitive; the total column compares numerically.
func SortTransactions(items []entity.TransactionListItem, column string, order query.SortOrder) {
	if column == query.ColumnTotal {
		sortParticipating(items,
			func(it *entity.TransactionListItem) bool { return it.FormattedTotal != nil },
			func(a, b *entity.TransactionListItem) bool { return *a.FormattedTotal < *b.FormattedTotal },
			order)
		return
	}

	access, ok := stringColumns[column]
	if !ok {
		return
	}
	// A collator is not safe for concurrent use, so each sort builds its
	// own.
	cl := collate.New(language.Und, collate.IgnoreCase)
	sortParticipating(items,
		func(it *entity.TransactionListItem) bool {
			_, participates := access(it)
			return participates
		},
		func(a, b *entity.TransactionListItem) bool {
			va, _ := access(a)
			vb, _ := access(b)
			return cl.CompareString(va, vb) < 0
		},
		order)
}

// sortParticipating stably sorts only the rows the predicate admits,
// writing them back into the admitted positions so every other row keeps
// its place.
func sortParticipating(items []entity.TransactionListItem, participates func(*entity.TransactionListItem) bool, less func(a, b *entity.TransactionListItem) bool, order query.SortOrder) {
	idx := make([]int, 0, len(items))
	for i := range items {
		if participates(&items[i]) {
			idx = append(idx, i)
		}
	}
	if len(idx) < 2 {
		return
	}

	sub := make([]entity.TransactionListItem, len(idx))
	for i, j := range idx {
		sub[i] = items[j]
	}
	sort.SliceStable(sub, func(a, b int) bool {
		if order == query.SortDesc {
			return less(&sub[b], &sub[a])
		}
		return less(&sub[a], &sub[b])
	})
	for i, j := range idx {
		items[j] = sub[i]
	}
}

// SortReportsByNewestTransaction orders report groups by the newest
// effective date among each group's transactions, newest first. Dates are
// fixed-width strings, so byte comparison agrees with chronological order.
// Groups without transactions sort last.
func SortReportsByNewestTransaction(items []entity.ReportListItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return newestTransactionDate(&items[i]) > newestTransactionDate(&items[j])
	})
}

func newestTransactionDate(rep *entity.ReportListItem) string {
	newest := ""
	for i := range rep.Transactions {
		if d := rep.Transactions[i].Date; d > newest {
			newest = d
		}
	}
	return newest
}

// SortReportActionsByCreated orders chat rows newest first.
func SortReportActionsByCreated(items []entity.ReportActionListItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Created > items[j].Created
	})
}

// Sort orders a built response for one request. Report groups always order
// by newest contained transaction and chat rows by creation time, so the
// column only drives the flat transaction view.
func (s *Sections) Sort(column string, order query.SortOrder) {
	switch s.Kind {
	case KindTransactions:
		SortTransactions(s.Transactions, column, order)
	case KindReports:
		SortReportsByNewestTransaction(s.Reports)
	case KindReportActions:
		SortReportActionsByCreated(s.ReportActions)
	}
}
