package export

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ledgerline/expense-search/internal/application/port"
	"github.com/ledgerline/expense-search/internal/domain/entity"
	"github.com/ledgerline/expense-search/internal/domain/query"
	"github.com/ledgerline/expense-search/internal/domain/sections"
)

// sheetNames maps a section kind to its worksheet name.
var sheetNames = map[sections.Kind]string{
	sections.KindTransactions:  "Transactions",
	sections.KindReports:       "Reports",
	sections.KindReportActions: "Chat",
}

// ExcelExporter writes built result sections into an XLSX workbook under a
// dated folder. It implements port.SectionExporter.
type ExcelExporter struct {
	storage port.FileStorage
	folders port.FolderManager
	logger  *zap.Logger
}

// NewExcelExporter creates a new Excel exporter
func NewExcelExporter(storage port.FileStorage, folders port.FolderManager, logger *zap.Logger) port.SectionExporter {
	return &ExcelExporter{
		storage: storage,
		folders: folders,
		logger:  logger,
	}
}

// Export renders the sections into a workbook and saves it as
// <base>/<yyyy-mm-dd>/search-<hash>-<timestamp>.xlsx.
func (e *ExcelExporter) Export(ctx context.Context, q *query.SearchQueryJSON, secs *sections.Sections) (*port.ExportResult, error) {
	e.logger.Info("Exporting search results",
		zap.Uint32("query_hash", q.Hash),
		zap.String("kind", string(secs.Kind)))

	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetNames[secs.Kind]
	if sheet == "" {
		return nil, fmt.Errorf("unknown section kind %q", secs.Kind)
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	switch secs.Kind {
	case sections.KindTransactions:
		e.writeTransactions(f, sheet, secs)
	case sections.KindReports:
		e.writeReports(f, sheet, secs)
	case sections.KindReportActions:
		e.writeReportActions(f, sheet, secs)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	now := time.Now()
	day := now.Format("2006-01-02")
	if _, err := e.folders.CreateFolder(ctx, day); err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("search-%08x-%s.xlsx", q.Hash, now.Format("20060102-150405"))
	relPath := filepath.Join(e.folders.SanitizeName(day), fileName)
	if err := e.storage.Save(ctx, relPath, buf.Bytes()); err != nil {
		return nil, err
	}

	result := &port.ExportResult{
		FileName: fileName,
		FilePath: e.storage.GetFullPath(relPath),
		Size:     int64(buf.Len()),
	}

	e.logger.Info("Export written",
		zap.String("file", result.FilePath),
		zap.Int64("size", result.Size))

	return result, nil
}

// transactionColumns builds the header respecting the per-response
// visibility flags.
func transactionColumns(secs *sections.Sections) []string {
	headers := []string{"Date", "From", "To"}
	if secs.ShouldShowMerchant {
		headers = append(headers, "Merchant")
	}
	if secs.Metadata.ShouldShowCategoryColumn {
		headers = append(headers, "Category")
	}
	if secs.Metadata.ShouldShowTagColumn {
		headers = append(headers, "Tag")
	}
	return append(headers, "Amount")
}

func transactionValues(secs *sections.Sections, item entity.TransactionListItem) []string {
	row := []string{item.Date, item.FormattedFrom, item.FormattedTo}
	if secs.ShouldShowMerchant {
		row = append(row, item.FormattedMerchant)
	}
	if secs.Metadata.ShouldShowCategoryColumn {
		row = append(row, item.Category)
	}
	if secs.Metadata.ShouldShowTagColumn {
		row = append(row, item.Tag)
	}
	return append(row, formatItemTotal(item))
}

func (e *ExcelExporter) writeTransactions(f *excelize.File, sheet string, secs *sections.Sections) {
	e.writeRow(f, sheet, 1, transactionColumns(secs))
	for i, item := range secs.Transactions {
		e.writeRow(f, sheet, i+2, transactionValues(secs, item))
	}
}

// writeReports writes one header row per report followed by its child
// transaction rows, prefixed by an empty report column.
func (e *ExcelExporter) writeReports(f *excelize.File, sheet string, secs *sections.Sections) {
	headers := append([]string{"Report"}, transactionColumns(secs)...)
	e.writeRow(f, sheet, 1, headers)

	rowNum := 2
	for _, report := range secs.Reports {
		reportRow := make([]string, len(headers))
		reportRow[0] = report.FormattedName
		if report.Total != nil {
			reportRow[len(headers)-1] = sections.FormatAmount(*report.Total, report.Currency)
		}
		e.writeRow(f, sheet, rowNum, reportRow)
		rowNum++

		for _, item := range report.Transactions {
			e.writeRow(f, sheet, rowNum, append([]string{""}, transactionValues(secs, item)...))
			rowNum++
		}
	}
}

func (e *ExcelExporter) writeReportActions(f *excelize.File, sheet string, secs *sections.Sections) {
	e.writeRow(f, sheet, 1, []string{"Date", "From", "Message"})
	for i, item := range secs.ReportActions {
		e.writeRow(f, sheet, i+2, []string{item.Date, item.FormattedFrom, item.Message})
	}
}

func (e *ExcelExporter) writeRow(f *excelize.File, sheet string, rowNum int, values []string) {
	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			continue
		}
		e.setCell(f, sheet, cell, value)
	}
}

// setCell sets a cell value, logging instead of failing the export
func (e *ExcelExporter) setCell(f *excelize.File, sheet, cell, value string) {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("sheet", sheet),
			zap.String("cell", cell),
			zap.Error(err))
	}
}

func formatItemTotal(item entity.TransactionListItem) string {
	if item.FormattedTotal == nil {
		return ""
	}
	return sections.FormatAmount(*item.FormattedTotal, item.Currency)
}

// Verify interface compliance
var _ port.SectionExporter = (*ExcelExporter)(nil)
