package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ledgerline/expense-search/internal/application/dispatcher"
	"github.com/ledgerline/expense-search/internal/domain/entity"
	"github.com/ledgerline/expense-search/internal/domain/event"
	"github.com/ledgerline/expense-search/internal/domain/query"
)

func TestSavedSearchService_Create(t *testing.T) {
	t.Run("normalizes the query before storing", func(t *testing.T) {
		var created *entity.SavedSearch
		repo := &mockSavedSearchRepo{
			createFunc: func(ctx context.Context, search *entity.SavedSearch) error {
				created = search
				return nil
			},
		}
		svc := NewSavedSearchService(repo, nil, &mockLogger{})

		got, err := svc.Create(context.Background(), "team travel", "tag:urgent type:expense status:approved")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if created == nil {
			t.Fatal("expected repository create")
		}
		wantQuery := "type:expense status:approved sortBy:date sortOrder:desc tag:urgent"
		if created.Query != wantQuery {
			t.Errorf("stored query = %q, want %q", created.Query, wantQuery)
		}
		q, _ := query.BuildSearchQueryJSON(wantQuery)
		if created.Hash != q.Hash {
			t.Errorf("stored hash = %d, want %d", created.Hash, q.Hash)
		}
		if got.ID == "" {
			t.Error("expected a generated ID")
		}
		if got.CreatedAt.IsZero() || !got.CreatedAt.Equal(got.UpdatedAt) {
			t.Error("expected matching creation timestamps")
		}
	})

	t.Run("two phrasings of one query store the same hash", func(t *testing.T) {
		var hashes []uint32
		repo := &mockSavedSearchRepo{
			createFunc: func(ctx context.Context, search *entity.SavedSearch) error {
				hashes = append(hashes, search.Hash)
				return nil
			},
		}
		svc := NewSavedSearchService(repo, nil, &mockLogger{})

		if _, err := svc.Create(context.Background(), "first", "category:B,A merchant:Acme"); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if _, err := svc.Create(context.Background(), "second", "merchant:Acme category:A,B"); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if len(hashes) != 2 || hashes[0] != hashes[1] {
			t.Errorf("hashes = %v, want two equal values", hashes)
		}
	})

	t.Run("requires a name", func(t *testing.T) {
		svc := NewSavedSearchService(&mockSavedSearchRepo{}, nil, &mockLogger{})

		_, err := svc.Create(context.Background(), "   ", "merchant:Acme")
		if !errors.Is(err, ErrSavedSearchNameInvalid) {
			t.Fatalf("expected ErrSavedSearchNameInvalid, got %v", err)
		}
	})

	t.Run("strips control characters from the name", func(t *testing.T) {
		var created *entity.SavedSearch
		repo := &mockSavedSearchRepo{
			createFunc: func(ctx context.Context, search *entity.SavedSearch) error {
				created = search
				return nil
			},
		}
		svc := NewSavedSearchService(repo, nil, &mockLogger{})

		if _, err := svc.Create(context.Background(), "team\x00 travel\n", "merchant:Acme"); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if created.Name != "team travel" {
			t.Errorf("stored name = %q, want %q", created.Name, "team travel")
		}
	})

	t.Run("rejects an overlong name", func(t *testing.T) {
		svc := NewSavedSearchService(&mockSavedSearchRepo{}, nil, &mockLogger{})

		_, err := svc.Create(context.Background(), strings.Repeat("n", 200), "merchant:Acme")
		if !errors.Is(err, ErrSavedSearchNameInvalid) {
			t.Fatalf("expected ErrSavedSearchNameInvalid, got %v", err)
		}
	})

	t.Run("rejects a taken name", func(t *testing.T) {
		repo := &mockSavedSearchRepo{
			getByNameFunc: func(ctx context.Context, name string) (*entity.SavedSearch, error) {
				return &entity.SavedSearch{ID: "existing", Name: name}, nil
			},
		}
		svc := NewSavedSearchService(repo, nil, &mockLogger{})

		_, err := svc.Create(context.Background(), "team travel", "merchant:Acme")
		if !errors.Is(err, ErrSavedSearchNameTaken) {
			t.Fatalf("expected ErrSavedSearchNameTaken, got %v", err)
		}
	})

	t.Run("rejects a malformed query", func(t *testing.T) {
		svc := NewSavedSearchService(&mockSavedSearchRepo{}, nil, &mockLogger{})

		_, err := svc.Create(context.Background(), "broken", "merchant:")
		var perr *query.ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("expected *query.ParseError, got %v", err)
		}
	})

	t.Run("dispatches saved_search.created", func(t *testing.T) {
		d := dispatcher.NewDispatcher()
		var mu sync.Mutex
		var got []*event.Event
		d.Subscribe(event.TypeSavedSearchCreated, func(ctx context.Context, evt *event.Event) error {
			mu.Lock()
			got = append(got, evt)
			mu.Unlock()
			return nil
		})

		svc := NewSavedSearchService(&mockSavedSearchRepo{}, d, &mockLogger{})
		created, err := svc.Create(context.Background(), "team travel", "merchant:Acme")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if err := d.Close(); err != nil {
			t.Fatalf("close dispatcher: %v", err)
		}

		mu.Lock()
		defer mu.Unlock()
		if len(got) != 1 {
			t.Fatalf("expected 1 event, got %d", len(got))
		}
		if got[0].GetPayloadString("saved_search_id") != created.ID {
			t.Errorf("event saved_search_id = %q, want %q", got[0].GetPayloadString("saved_search_id"), created.ID)
		}
	})
}

func TestSavedSearchService_Get(t *testing.T) {
	t.Run("returns ErrSavedSearchNotFound for an unknown ID", func(t *testing.T) {
		svc := NewSavedSearchService(&mockSavedSearchRepo{}, nil, &mockLogger{})

		_, err := svc.Get(context.Background(), "nope")
		if !errors.Is(err, ErrSavedSearchNotFound) {
			t.Fatalf("expected ErrSavedSearchNotFound, got %v", err)
		}
	})

	t.Run("returns the stored search", func(t *testing.T) {
		repo := &mockSavedSearchRepo{
			getByIDFunc: func(ctx context.Context, id string) (*entity.SavedSearch, error) {
				return &entity.SavedSearch{ID: id, Name: "mine"}, nil
			},
		}
		svc := NewSavedSearchService(repo, nil, &mockLogger{})

		search, err := svc.Get(context.Background(), "abc")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if search.Name != "mine" {
			t.Errorf("Name = %q", search.Name)
		}
	})
}

func TestSavedSearchService_Update(t *testing.T) {
	stored := func() *mockSavedSearchRepo {
		return &mockSavedSearchRepo{
			getByIDFunc: func(ctx context.Context, id string) (*entity.SavedSearch, error) {
				return &entity.SavedSearch{
					ID:        id,
					Name:      "old name",
					Query:     "type:expense status:all sortBy:date sortOrder:desc",
					Hash:      1,
					CreatedAt: time.Now().Add(-time.Hour),
					UpdatedAt: time.Now().Add(-time.Hour),
				}, nil
			},
		}
	}

	t.Run("replaces the query and re-normalizes", func(t *testing.T) {
		repo := stored()
		var updated *entity.SavedSearch
		repo.updateFunc = func(ctx context.Context, search *entity.SavedSearch) error {
			updated = search
			return nil
		}
		svc := NewSavedSearchService(repo, nil, &mockLogger{})

		_, err := svc.Update(context.Background(), "abc", "", "status:paid merchant:Acme")
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.Query != "type:expense status:paid sortBy:date sortOrder:desc merchant:Acme" {
			t.Errorf("updated query = %q", updated.Query)
		}
		if updated.Name != "old name" {
			t.Errorf("name should be unchanged, got %q", updated.Name)
		}
		if time.Since(updated.UpdatedAt) > time.Minute {
			t.Error("UpdatedAt should be refreshed")
		}
	})

	t.Run("rejects renaming onto another search", func(t *testing.T) {
		repo := stored()
		repo.getByNameFunc = func(ctx context.Context, name string) (*entity.SavedSearch, error) {
			return &entity.SavedSearch{ID: "other", Name: name}, nil
		}
		svc := NewSavedSearchService(repo, nil, &mockLogger{})

		_, err := svc.Update(context.Background(), "abc", "taken", "")
		if !errors.Is(err, ErrSavedSearchNameTaken) {
			t.Fatalf("expected ErrSavedSearchNameTaken, got %v", err)
		}
	})

	t.Run("missing search yields ErrSavedSearchNotFound", func(t *testing.T) {
		svc := NewSavedSearchService(&mockSavedSearchRepo{}, nil, &mockLogger{})

		_, err := svc.Update(context.Background(), "ghost", "new", "")
		if !errors.Is(err, ErrSavedSearchNotFound) {
			t.Fatalf("expected ErrSavedSearchNotFound, got %v", err)
		}
	})
}

func TestSavedSearchService_Delete(t *testing.T) {
	t.Run("deletes and dispatches saved_search.deleted", func(t *testing.T) {
		repo := &mockSavedSearchRepo{
			getByIDFunc: func(ctx context.Context, id string) (*entity.SavedSearch, error) {
				return &entity.SavedSearch{ID: id, Name: "mine", Query: "type:expense status:all sortBy:date sortOrder:desc", Hash: 9}, nil
			},
		}
		var deletedID string
		repo.deleteFunc = func(ctx context.Context, id string) error {
			deletedID = id
			return nil
		}

		d := dispatcher.NewDispatcher()
		var mu sync.Mutex
		var got []*event.Event
		d.Subscribe(event.TypeSavedSearchDeleted, func(ctx context.Context, evt *event.Event) error {
			mu.Lock()
			got = append(got, evt)
			mu.Unlock()
			return nil
		})

		svc := NewSavedSearchService(repo, d, &mockLogger{})
		if err := svc.Delete(context.Background(), "abc"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if err := d.Close(); err != nil {
			t.Fatalf("close dispatcher: %v", err)
		}

		if deletedID != "abc" {
			t.Errorf("deleted ID = %q", deletedID)
		}
		mu.Lock()
		defer mu.Unlock()
		if len(got) != 1 || got[0].QueryHash != 9 {
			t.Errorf("expected one deletion event with hash 9, got %v", got)
		}
	})

	t.Run("missing search yields ErrSavedSearchNotFound", func(t *testing.T) {
		svc := NewSavedSearchService(&mockSavedSearchRepo{}, nil, &mockLogger{})

		if err := svc.Delete(context.Background(), "ghost"); !errors.Is(err, ErrSavedSearchNotFound) {
			t.Fatalf("expected ErrSavedSearchNotFound, got %v", err)
		}
	})
}
