package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ledgerline/expense-search/internal/application/dispatcher"
	"github.com/ledgerline/expense-search/internal/domain/entity"
	"github.com/ledgerline/expense-search/internal/domain/event"
)

func TestRecentSearchService_HandleSearchExecuted(t *testing.T) {
	t.Run("records one use keyed by the recent-search hash", func(t *testing.T) {
		var gotHash uint32
		var gotQuery string
		var gotUsedAt time.Time
		repo := &mockRecentSearchRepo{
			recordUseFunc: func(ctx context.Context, hash uint32, queryString string, usedAt time.Time) error {
				gotHash = hash
				gotQuery = queryString
				gotUsedAt = usedAt
				return nil
			},
		}
		svc := NewRecentSearchService(repo, nil, 0, 0, &mockLogger{})

		evt := event.NewEvent(event.TypeSearchExecuted, 0xCAFE, "type:expense status:all sortBy:date sortOrder:desc merchant:Acme", map[string]interface{}{
			"recent_search_hash": 12345,
		})
		if err := svc.HandleSearchExecuted(context.Background(), evt); err != nil {
			t.Fatalf("HandleSearchExecuted() error = %v", err)
		}

		if gotHash != 12345 {
			t.Errorf("hash = %d, want 12345", gotHash)
		}
		if gotQuery != evt.Query {
			t.Errorf("query = %q, want %q", gotQuery, evt.Query)
		}
		if !gotUsedAt.Equal(evt.Timestamp) {
			t.Errorf("usedAt = %v, want event timestamp %v", gotUsedAt, evt.Timestamp)
		}
	})

	t.Run("rejects an event without the recent-search hash", func(t *testing.T) {
		svc := NewRecentSearchService(&mockRecentSearchRepo{}, nil, 0, 0, &mockLogger{})

		evt := event.NewEvent(event.TypeSearchExecuted, 0xCAFE, "merchant:Acme", nil)
		if err := svc.HandleSearchExecuted(context.Background(), evt); err == nil {
			t.Fatal("expected error for missing payload field")
		}
	})

	t.Run("accepts a zero recent-search hash", func(t *testing.T) {
		recorded := false
		repo := &mockRecentSearchRepo{
			recordUseFunc: func(ctx context.Context, hash uint32, queryString string, usedAt time.Time) error {
				recorded = true
				if hash != 0 {
					t.Errorf("hash = %d, want 0", hash)
				}
				return nil
			},
		}
		svc := NewRecentSearchService(repo, nil, 0, 0, &mockLogger{})

		evt := event.NewEvent(event.TypeSearchExecuted, 0xCAFE, "merchant:Acme", map[string]interface{}{
			"recent_search_hash": 0,
		})
		if err := svc.HandleSearchExecuted(context.Background(), evt); err != nil {
			t.Fatalf("HandleSearchExecuted() error = %v", err)
		}
		if !recorded {
			t.Fatal("expected RecordUse to be called")
		}
	})

	t.Run("emits recent_search.noted sharing the trigger's correlation", func(t *testing.T) {
		d := dispatcher.NewDispatcher()
		var mu sync.Mutex
		var noted []*event.Event
		d.Subscribe(event.TypeRecentSearchNoted, func(ctx context.Context, evt *event.Event) error {
			mu.Lock()
			noted = append(noted, evt)
			mu.Unlock()
			return nil
		})

		svc := NewRecentSearchService(&mockRecentSearchRepo{}, d, 0, 0, &mockLogger{})
		trigger := event.NewEvent(event.TypeSearchExecuted, 0xCAFE, "merchant:Acme", map[string]interface{}{
			"recent_search_hash": 777,
		})
		if err := svc.HandleSearchExecuted(context.Background(), trigger); err != nil {
			t.Fatalf("HandleSearchExecuted() error = %v", err)
		}
		if err := d.Close(); err != nil {
			t.Fatalf("close dispatcher: %v", err)
		}

		mu.Lock()
		defer mu.Unlock()
		if len(noted) != 1 {
			t.Fatalf("expected 1 noted event, got %d", len(noted))
		}
		if noted[0].QueryHash != 777 {
			t.Errorf("noted hash = %d, want 777", noted[0].QueryHash)
		}
		if noted[0].CorrelationID != trigger.CorrelationID {
			t.Errorf("correlation = %q, want %q", noted[0].CorrelationID, trigger.CorrelationID)
		}
	})
}

func TestRecentSearchService_List(t *testing.T) {
	t.Run("defaults the limit", func(t *testing.T) {
		var gotLimit int
		repo := &mockRecentSearchRepo{
			listFunc: func(ctx context.Context, limit int) ([]*entity.RecentSearch, error) {
				gotLimit = limit
				return []*entity.RecentSearch{}, nil
			},
		}
		svc := NewRecentSearchService(repo, nil, 0, 0, &mockLogger{})

		if _, err := svc.List(context.Background(), 0); err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if gotLimit != defaultRecentLimit {
			t.Errorf("limit = %d, want %d", gotLimit, defaultRecentLimit)
		}
	})

	t.Run("passes an explicit limit through", func(t *testing.T) {
		var gotLimit int
		repo := &mockRecentSearchRepo{
			listFunc: func(ctx context.Context, limit int) ([]*entity.RecentSearch, error) {
				gotLimit = limit
				return []*entity.RecentSearch{}, nil
			},
		}
		svc := NewRecentSearchService(repo, nil, 0, 0, &mockLogger{})

		if _, err := svc.List(context.Background(), 3); err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if gotLimit != 3 {
			t.Errorf("limit = %d, want 3", gotLimit)
		}
	})
}

func TestRecentSearchService_Prune(t *testing.T) {
	t.Run("applies age then count bounds", func(t *testing.T) {
		var cutoff time.Time
		var keep int
		repo := &mockRecentSearchRepo{
			deleteOlderThanFunc: func(ctx context.Context, c time.Time) (int64, error) {
				cutoff = c
				return 4, nil
			},
			deleteBeyondCountFunc: func(ctx context.Context, k int) (int64, error) {
				keep = k
				return 2, nil
			},
		}
		svc := NewRecentSearchService(repo, nil, 50, time.Hour, &mockLogger{})

		n, err := svc.Prune(context.Background())
		if err != nil {
			t.Fatalf("Prune() error = %v", err)
		}
		if n != 6 {
			t.Errorf("pruned = %d, want 6", n)
		}
		if keep != 50 {
			t.Errorf("keep = %d, want 50", keep)
		}
		if time.Since(cutoff) < 59*time.Minute || time.Since(cutoff) > 61*time.Minute {
			t.Errorf("cutoff %v not about an hour ago", cutoff)
		}
	})

	t.Run("zero bounds disable both prunes", func(t *testing.T) {
		repo := &mockRecentSearchRepo{
			deleteOlderThanFunc: func(ctx context.Context, c time.Time) (int64, error) {
				t.Error("age prune should be disabled")
				return 0, nil
			},
			deleteBeyondCountFunc: func(ctx context.Context, k int) (int64, error) {
				t.Error("count prune should be disabled")
				return 0, nil
			},
		}
		svc := NewRecentSearchService(repo, nil, 0, 0, &mockLogger{})

		n, err := svc.Prune(context.Background())
		if err != nil {
			t.Fatalf("Prune() error = %v", err)
		}
		if n != 0 {
			t.Errorf("pruned = %d, want 0", n)
		}
	})
}
