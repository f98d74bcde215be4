package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/expense-search/internal/application/dispatcher"
	"github.com/ledgerline/expense-search/internal/application/port"
	"github.com/ledgerline/expense-search/internal/domain/entity"
	"github.com/ledgerline/expense-search/internal/domain/event"
	"github.com/ledgerline/expense-search/internal/domain/query"
	"github.com/ledgerline/expense-search/pkg/utils"
)

// ErrSavedSearchNotFound is returned when an ID resolves to no saved search.
var ErrSavedSearchNotFound = errors.New("saved search not found")

// ErrSavedSearchNameTaken is returned when a name is already in use.
var ErrSavedSearchNameTaken = errors.New("saved search name already in use")

// ErrSavedSearchNameInvalid is returned when a name is empty or too long.
var ErrSavedSearchNameInvalid = errors.New("invalid saved search name")

// SavedSearchService manages named queries. Queries are normalized through
// the canonical form before storing, so two saved searches with the same
// meaning carry the same query text and hash.
type SavedSearchService interface {
	Create(ctx context.Context, name, rawQuery string) (*entity.SavedSearch, error)
	Get(ctx context.Context, id string) (*entity.SavedSearch, error)
	List(ctx context.Context) ([]*entity.SavedSearch, error)
	Update(ctx context.Context, id, name, rawQuery string) (*entity.SavedSearch, error)
	Delete(ctx context.Context, id string) error
}

type savedSearchServiceImpl struct {
	repo       port.SavedSearchRepository
	dispatcher dispatcher.Dispatcher
	logger     Logger
}

// NewSavedSearchService creates a new SavedSearchService
func NewSavedSearchService(repo port.SavedSearchRepository, disp dispatcher.Dispatcher, logger Logger) SavedSearchService {
	return &savedSearchServiceImpl{
		repo:       repo,
		dispatcher: disp,
		logger:     logger,
	}
}

// Create stores a new named query under a fresh uuid.
func (s *savedSearchServiceImpl) Create(ctx context.Context, name, rawQuery string) (*entity.SavedSearch, error) {
	name = utils.SanitizeString(strings.TrimSpace(name))
	if err := utils.ValidateSearchName(name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSavedSearchNameInvalid, err)
	}

	q, perr := query.BuildSearchQueryJSON(rawQuery)
	if perr != nil {
		s.logger.Info("Rejected malformed query", "input", rawQuery, "position", perr.Position, "reason", perr.Reason)
		return nil, perr
	}

	existing, err := s.repo.GetByName(ctx, name)
	if err != nil {
		s.logger.Error("Failed to check saved search name", "error", err, "name", name)
		return nil, err
	}
	if existing != nil {
		return nil, ErrSavedSearchNameTaken
	}

	now := time.Now()
	search := &entity.SavedSearch{
		ID:        uuid.NewString(),
		Name:      name,
		Query:     query.ToQueryString(q),
		Hash:      q.Hash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, search); err != nil {
		s.logger.Error("Failed to create saved search", "error", err, "name", name)
		return nil, err
	}

	if s.dispatcher != nil {
		evt := event.NewEvent(event.TypeSavedSearchCreated, search.Hash, search.Query, map[string]interface{}{
			"saved_search_id": search.ID,
			"name":            search.Name,
		})
		s.dispatcher.DispatchAsync(ctx, evt)
	}

	s.logger.Info("Saved search created", "id", search.ID, "name", search.Name, "hash", search.Hash)
	return search, nil
}

// Get retrieves a saved search by ID.
func (s *savedSearchServiceImpl) Get(ctx context.Context, id string) (*entity.SavedSearch, error) {
	search, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get saved search", "error", err, "id", id)
		return nil, err
	}
	if search == nil {
		return nil, ErrSavedSearchNotFound
	}
	return search, nil
}

// List retrieves all saved searches.
func (s *savedSearchServiceImpl) List(ctx context.Context) ([]*entity.SavedSearch, error) {
	searches, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list saved searches", "error", err)
		return nil, err
	}
	return searches, nil
}

// Update renames a saved search or replaces its query, re-normalizing.
func (s *savedSearchServiceImpl) Update(ctx context.Context, id, name, rawQuery string) (*entity.SavedSearch, error) {
	search, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get saved search", "error", err, "id", id)
		return nil, err
	}
	if search == nil {
		return nil, ErrSavedSearchNotFound
	}

	if name = utils.SanitizeString(strings.TrimSpace(name)); name != "" && name != search.Name {
		if err := utils.ValidateSearchName(name); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSavedSearchNameInvalid, err)
		}
		other, err := s.repo.GetByName(ctx, name)
		if err != nil {
			s.logger.Error("Failed to check saved search name", "error", err, "name", name)
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, ErrSavedSearchNameTaken
		}
		search.Name = name
	}

	if rawQuery != "" {
		q, perr := query.BuildSearchQueryJSON(rawQuery)
		if perr != nil {
			s.logger.Info("Rejected malformed query", "input", rawQuery, "position", perr.Position, "reason", perr.Reason)
			return nil, perr
		}
		search.Query = query.ToQueryString(q)
		search.Hash = q.Hash
	}

	search.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, search); err != nil {
		s.logger.Error("Failed to update saved search", "error", err, "id", id)
		return nil, err
	}

	s.logger.Info("Saved search updated", "id", search.ID, "name", search.Name, "hash", search.Hash)
	return search, nil
}

// Delete removes a saved search by ID.
func (s *savedSearchServiceImpl) Delete(ctx context.Context, id string) error {
	search, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get saved search", "error", err, "id", id)
		return err
	}
	if search == nil {
		return ErrSavedSearchNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete saved search", "error", err, "id", id)
		return err
	}

	if s.dispatcher != nil {
		evt := event.NewEvent(event.TypeSavedSearchDeleted, search.Hash, search.Query, map[string]interface{}{
			"saved_search_id": search.ID,
			"name":            search.Name,
		})
		s.dispatcher.DispatchAsync(ctx, evt)
	}

	s.logger.Info("Saved search deleted", "id", id, "name", search.Name)
	return nil
}
