package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ledgerline/expense-search/internal/application/service"
	"github.com/ledgerline/expense-search/internal/domain/entity"
	"github.com/ledgerline/expense-search/internal/domain/event"
	"github.com/ledgerline/expense-search/internal/domain/query"
)

// MockSearchService counts PruneSnapshots calls
type MockSearchService struct {
	mu            sync.Mutex
	pruneCount    int
	pruneReturn   int64
	pruneErr      error
	pruneHappened chan struct{}
}

func NewMockSearchService() *MockSearchService {
	return &MockSearchService{pruneHappened: make(chan struct{}, 16)}
}

func (m *MockSearchService) Execute(ctx context.Context, rawQuery string) (*service.SearchResponse, error) {
	return nil, errors.New("not implemented")
}

func (m *MockSearchService) Describe(ctx context.Context, rawQuery string) (*service.QueryDescription, error) {
	return nil, errors.New("not implemented")
}

func (m *MockSearchService) Ingest(ctx context.Context, rawQuery string, payload []byte) (*query.SearchQueryJSON, error) {
	return nil, errors.New("not implemented")
}

func (m *MockSearchService) PruneSnapshots(ctx context.Context) (int64, error) {
	m.mu.Lock()
	m.pruneCount++
	ret, err := m.pruneReturn, m.pruneErr
	m.mu.Unlock()
	select {
	case m.pruneHappened <- struct{}{}:
	default:
	}
	return ret, err
}

func (m *MockSearchService) PruneCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pruneCount
}

// MockRecentSearchService counts Prune calls
type MockRecentSearchService struct {
	mu          sync.Mutex
	pruneCount  int
	pruneReturn int64
	pruneErr    error
}

func (m *MockRecentSearchService) List(ctx context.Context, limit int) ([]*entity.RecentSearch, error) {
	return nil, nil
}

func (m *MockRecentSearchService) HandleSearchExecuted(ctx context.Context, evt *event.Event) error {
	return nil
}

func (m *MockRecentSearchService) Prune(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneCount++
	return m.pruneReturn, m.pruneErr
}

func (m *MockRecentSearchService) PruneCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pruneCount
}

func TestRetentionWorker_RunsBothPrunes(t *testing.T) {
	search := NewMockSearchService()
	search.pruneReturn = 3
	recent := &MockRecentSearchService{pruneReturn: 2}

	w := NewRetentionWorker(
		RetentionWorkerConfig{Interval: 10 * time.Millisecond},
		search, recent, zap.NewNop(),
	)

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	select {
	case <-search.pruneHappened:
	case <-time.After(2 * time.Second):
		t.Fatal("prune pass never ran")
	}

	require.NoError(t, w.Stop())

	assert.GreaterOrEqual(t, search.PruneCount(), 1)
	assert.GreaterOrEqual(t, recent.PruneCount(), 1)
}

func TestRetentionWorker_ContinuesAfterRecentFailure(t *testing.T) {
	search := NewMockSearchService()
	recent := &MockRecentSearchService{pruneErr: errors.New("db locked")}

	w := NewRetentionWorker(
		RetentionWorkerConfig{Interval: 10 * time.Millisecond},
		search, recent, zap.NewNop(),
	)

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	// The snapshot prune still runs when the recent prune fails
	select {
	case <-search.pruneHappened:
	case <-time.After(2 * time.Second):
		t.Fatal("snapshot prune never ran after recent prune failure")
	}
}

func TestRetentionWorker_StartTwice(t *testing.T) {
	w := NewRetentionWorker(
		RetentionWorkerConfig{Interval: time.Hour},
		NewMockSearchService(), &MockRecentSearchService{}, zap.NewNop(),
	)

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	assert.Error(t, w.Start(context.Background()))
}

func TestRetentionWorker_StopWithoutStart(t *testing.T) {
	w := NewRetentionWorker(
		DefaultRetentionWorkerConfig(),
		NewMockSearchService(), &MockRecentSearchService{}, zap.NewNop(),
	)
	assert.NoError(t, w.Stop())
}

func TestWorkerManager_Lifecycle(t *testing.T) {
	m := NewWorkerManager(zap.NewNop())
	assert.Equal(t, 0, m.GetWorkerCount())
	assert.False(t, m.IsRunning())

	w := NewRetentionWorker(
		RetentionWorkerConfig{Interval: time.Hour},
		NewMockSearchService(), &MockRecentSearchService{}, zap.NewNop(),
	)
	m.Register(w)
	assert.Equal(t, 1, m.GetWorkerCount())

	require.NoError(t, m.StartAll(context.Background()))
	assert.True(t, m.IsRunning())

	assert.Error(t, m.StartAll(context.Background()))

	require.NoError(t, m.StopAll())
	assert.False(t, m.IsRunning())

	// Stopping again is a no-op
	assert.NoError(t, m.StopAll())
}
