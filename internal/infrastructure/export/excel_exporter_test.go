package export

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ledgerline/expense-search/internal/domain/entity"
	"github.com/ledgerline/expense-search/internal/domain/query"
	"github.com/ledgerline/expense-search/internal/domain/sections"
	"github.com/ledgerline/expense-search/internal/infrastructure/storage"
)

func newTestExporter(t *testing.T) (*ExcelExporter, string) {
	t.Helper()
	tempDir := t.TempDir()
	logger := zap.NewNop()
	exporter := NewExcelExporter(
		storage.NewLocalFileStorage(tempDir, logger),
		storage.NewLocalFolderManager(tempDir, logger),
		logger,
	)
	return exporter.(*ExcelExporter), tempDir
}

func testQuery(t *testing.T, raw string) *query.SearchQueryJSON {
	t.Helper()
	q, perr := query.BuildSearchQueryJSON(raw)
	if perr != nil {
		t.Fatalf("BuildSearchQueryJSON(%q) error = %v", raw, perr)
	}
	return q
}

func intPtr(v int64) *int64 { return &v }

func TestExcelExporter_TransactionsWorkbook(t *testing.T) {
	exporter, tempDir := newTestExporter(t)
	q := testQuery(t, "merchant:Acme")

	secs := &sections.Sections{
		Kind:               sections.KindTransactions,
		ShouldShowMerchant: true,
		Metadata:           entity.SearchResultsMetadata{ShouldShowCategoryColumn: true},
		Transactions: []entity.TransactionListItem{
			{
				Transaction:       entity.Transaction{Currency: "USD", Category: "Travel"},
				FormattedFrom:     "Ana García",
				FormattedTo:       "Ben Okafor",
				FormattedMerchant: "Acme",
				FormattedTotal:    intPtr(1234),
				Date:              "2024-05-01",
			},
			{
				Transaction:   entity.Transaction{Currency: "USD"},
				FormattedFrom: "Ben Okafor",
				Date:          "2024-06-02",
			},
		},
	}

	result, err := exporter.Export(context.Background(), q, secs)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.FileName, "search-"), "file name %q", result.FileName)
	assert.True(t, strings.HasSuffix(result.FileName, ".xlsx"), "file name %q", result.FileName)
	assert.Greater(t, result.Size, int64(0))

	day := time.Now().Format("2006-01-02")
	assert.Equal(t, filepath.Join(tempDir, day, result.FileName), result.FilePath)
	assert.FileExists(t, result.FilePath)

	wb, err := excelize.OpenFile(result.FilePath)
	require.NoError(t, err)
	defer wb.Close()

	// Merchant and category shown, tag hidden: Date, From, To, Merchant,
	// Category, Amount.
	for cell, want := range map[string]string{
		"A1": "Date", "B1": "From", "C1": "To", "D1": "Merchant", "E1": "Category", "F1": "Amount",
		"A2": "2024-05-01", "B2": "Ana García", "C2": "Ben Okafor", "D2": "Acme", "E2": "Travel", "F2": "$12.34",
		"A3": "2024-06-02", "F3": "",
	} {
		got, err := wb.GetCellValue("Transactions", cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, "cell %s", cell)
	}
}

func TestExcelExporter_ReportsWorkbook(t *testing.T) {
	exporter, _ := newTestExporter(t)
	q := testQuery(t, "type:expense status:approved")

	secs := &sections.Sections{
		Kind: sections.KindReports,
		Reports: []entity.ReportListItem{
			{
				Report:        entity.Report{Total: intPtr(500), Currency: "USD"},
				FormattedName: "May travel",
				Transactions: []entity.TransactionListItem{
					{
						Transaction:    entity.Transaction{Currency: "USD"},
						FormattedFrom:  "Ana García",
						FormattedTotal: intPtr(500),
						Date:           "2024-05-01",
					},
				},
			},
		},
	}

	result, err := exporter.Export(context.Background(), q, secs)
	require.NoError(t, err)

	wb, err := excelize.OpenFile(result.FilePath)
	require.NoError(t, err)
	defer wb.Close()

	// All flags off: Report, Date, From, To, Amount.
	for cell, want := range map[string]string{
		"A1": "Report", "B1": "Date", "E1": "Amount",
		"A2": "May travel", "E2": "$5.00",
		"A3": "", "B3": "2024-05-01", "C3": "Ana García", "E3": "$5.00",
	} {
		got, err := wb.GetCellValue("Reports", cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, "cell %s", cell)
	}
}

func TestExcelExporter_ChatWorkbook(t *testing.T) {
	exporter, _ := newTestExporter(t)
	q := testQuery(t, "type:chat keyword:refund")

	secs := &sections.Sections{
		Kind: sections.KindReportActions,
		ReportActions: []entity.ReportActionListItem{
			{
				ReportAction:  entity.ReportAction{Message: "Refund approved"},
				FormattedFrom: "Ana García",
				Date:          "2024-05-01",
			},
		},
	}

	result, err := exporter.Export(context.Background(), q, secs)
	require.NoError(t, err)

	wb, err := excelize.OpenFile(result.FilePath)
	require.NoError(t, err)
	defer wb.Close()

	for cell, want := range map[string]string{
		"A1": "Date", "B1": "From", "C1": "Message",
		"A2": "2024-05-01", "B2": "Ana García", "C2": "Refund approved",
	} {
		got, err := wb.GetCellValue("Chat", cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, "cell %s", cell)
	}
}

func TestExcelExporter_UnknownKind(t *testing.T) {
	exporter, _ := newTestExporter(t)
	q := testQuery(t, "merchant:Acme")

	_, err := exporter.Export(context.Background(), q, &sections.Sections{Kind: sections.Kind("bogus")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown section kind")
}
