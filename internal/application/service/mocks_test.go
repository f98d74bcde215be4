package service

import (
	"context"
	"time"

	"github.com/ledgerline/expense-search/internal/application/port"
	"github.com/ledgerline/expense-search/internal/domain/entity"
	"github.com/ledgerline/expense-search/internal/domain/query"
	"github.com/ledgerline/expense-search/internal/domain/sections"
)

// Mock repositories shared by the service tests. Each method delegates to
// its func field when set, otherwise answers with a benign default.

type mockSnapshotRepo struct {
	saveFunc             func(ctx context.Context, snapshot *entity.SearchSnapshot) error
	getLatestByHashFunc  func(ctx context.Context, hash uint32) (*entity.SearchSnapshot, error)
	deleteOlderThanFunc  func(ctx context.Context, cutoff time.Time) (int64, error)
	deleteSupersededFunc func(ctx context.Context) (int64, error)
}

func (m *mockSnapshotRepo) Save(ctx context.Context, snapshot *entity.SearchSnapshot) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, snapshot)
	}
	snapshot.ID = 1
	return nil
}

func (m *mockSnapshotRepo) GetLatestByHash(ctx context.Context, hash uint32) (*entity.SearchSnapshot, error) {
	if m.getLatestByHashFunc != nil {
		return m.getLatestByHashFunc(ctx, hash)
	}
	return nil, nil
}

func (m *mockSnapshotRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.deleteOlderThanFunc != nil {
		return m.deleteOlderThanFunc(ctx, cutoff)
	}
	return 0, nil
}

func (m *mockSnapshotRepo) DeleteSuperseded(ctx context.Context) (int64, error) {
	if m.deleteSupersededFunc != nil {
		return m.deleteSupersededFunc(ctx)
	}
	return 0, nil
}

type mockSavedSearchRepo struct {
	createFunc    func(ctx context.Context, search *entity.SavedSearch) error
	getByIDFunc   func(ctx context.Context, id string) (*entity.SavedSearch, error)
	getByNameFunc func(ctx context.Context, name string) (*entity.SavedSearch, error)
	listFunc      func(ctx context.Context) ([]*entity.SavedSearch, error)
	updateFunc    func(ctx context.Context, search *entity.SavedSearch) error
	deleteFunc    func(ctx context.Context, id string) error
}

func (m *mockSavedSearchRepo) Create(ctx context.Context, search *entity.SavedSearch) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, search)
	}
	return nil
}

func (m *mockSavedSearchRepo) GetByID(ctx context.Context, id string) (*entity.SavedSearch, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockSavedSearchRepo) GetByName(ctx context.Context, name string) (*entity.SavedSearch, error) {
	if m.getByNameFunc != nil {
		return m.getByNameFunc(ctx, name)
	}
	return nil, nil
}

func (m *mockSavedSearchRepo) List(ctx context.Context) ([]*entity.SavedSearch, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return []*entity.SavedSearch{}, nil
}

func (m *mockSavedSearchRepo) Update(ctx context.Context, search *entity.SavedSearch) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, search)
	}
	return nil
}

func (m *mockSavedSearchRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockRecentSearchRepo struct {
	recordUseFunc         func(ctx context.Context, hash uint32, queryString string, usedAt time.Time) error
	listFunc              func(ctx context.Context, limit int) ([]*entity.RecentSearch, error)
	deleteOlderThanFunc   func(ctx context.Context, cutoff time.Time) (int64, error)
	deleteBeyondCountFunc func(ctx context.Context, keep int) (int64, error)
}

func (m *mockRecentSearchRepo) RecordUse(ctx context.Context, hash uint32, queryString string, usedAt time.Time) error {
	if m.recordUseFunc != nil {
		return m.recordUseFunc(ctx, hash, queryString, usedAt)
	}
	return nil
}

func (m *mockRecentSearchRepo) List(ctx context.Context, limit int) ([]*entity.RecentSearch, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit)
	}
	return []*entity.RecentSearch{}, nil
}

func (m *mockRecentSearchRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.deleteOlderThanFunc != nil {
		return m.deleteOlderThanFunc(ctx, cutoff)
	}
	return 0, nil
}

func (m *mockRecentSearchRepo) DeleteBeyondCount(ctx context.Context, keep int) (int64, error) {
	if m.deleteBeyondCountFunc != nil {
		return m.deleteBeyondCountFunc(ctx, keep)
	}
	return 0, nil
}

type mockReferenceRepo struct {
	loadFunc                  func(ctx context.Context) (*entity.ReferenceData, error)
	upsertPersonalDetailsFunc func(ctx context.Context, details map[string]entity.PersonalDetails) error
}

func (m *mockReferenceRepo) Load(ctx context.Context) (*entity.ReferenceData, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx)
	}
	return &entity.ReferenceData{}, nil
}

func (m *mockReferenceRepo) UpsertPersonalDetails(ctx context.Context, details map[string]entity.PersonalDetails) error {
	if m.upsertPersonalDetailsFunc != nil {
		return m.upsertPersonalDetailsFunc(ctx, details)
	}
	return nil
}

type mockExporter struct {
	exportFunc func(ctx context.Context, q *query.SearchQueryJSON, secs *sections.Sections) (*port.ExportResult, error)
}

func (m *mockExporter) Export(ctx context.Context, q *query.SearchQueryJSON, secs *sections.Sections) (*port.ExportResult, error) {
	if m.exportFunc != nil {
		return m.exportFunc(ctx, q, secs)
	}
	return &port.ExportResult{FileName: "export.xlsx", FilePath: "/exports/export.xlsx", Size: 1024}, nil
}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}
