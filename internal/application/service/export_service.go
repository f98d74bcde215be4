package service

import (
	"context"
	"fmt"

	"github.com/ledgerline/expense-search/internal/application/port"
)

// ExportService turns an executed search into a downloadable workbook.
type ExportService interface {
	Export(ctx context.Context, rawQuery string) (*port.ExportResult, error)
}

type exportServiceImpl struct {
	search   SearchService
	exporter port.SectionExporter
	logger   Logger
}

// NewExportService creates a new ExportService
func NewExportService(search SearchService, exporter port.SectionExporter, logger Logger) ExportService {
	return &exportServiceImpl{
		search:   search,
		exporter: exporter,
		logger:   logger,
	}
}

// Export executes the query and renders its sections through the exporter.
// Parse failures and missing snapshots propagate unchanged so callers can
// map them to their own status codes.
func (s *exportServiceImpl) Export(ctx context.Context, rawQuery string) (*port.ExportResult, error) {
	resp, err := s.search.Execute(ctx, rawQuery)
	if err != nil {
		return nil, err
	}

	result, err := s.exporter.Export(ctx, resp.Query, resp.Sections)
	if err != nil {
		s.logger.Error("Failed to export sections", "error", err, "hash", resp.Query.Hash)
		return nil, fmt.Errorf("export sections: %w", err)
	}

	s.logger.Info("Search exported", "hash", resp.Query.Hash, "file", result.FileName, "size", result.Size)
	return result, nil
}
