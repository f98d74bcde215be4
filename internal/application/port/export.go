package port

import (
	"context"

	"github.com/ledgerline/expense-search/internal/domain/query"
	"github.com/ledgerline/expense-search/internal/domain/sections"
)

// ExportResult describes a generated workbook on disk
type ExportResult struct {
	FileName string
	FilePath string
	Size     int64
}

// SectionExporter renders search result sections into a downloadable workbook
type SectionExporter interface {
	Export(ctx context.Context, q *query.SearchQueryJSON, secs *sections.Sections) (*ExportResult, error)
}
