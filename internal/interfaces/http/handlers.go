package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ledgerline/expense-search/internal/application/service"
	"github.com/ledgerline/expense-search/internal/domain/entity"
	"github.com/ledgerline/expense-search/internal/domain/query"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	searchService  service.SearchService
	filtersService service.FiltersService
	savedService   service.SavedSearchService
	recentService  service.RecentSearchService
	exportService  service.ExportService
	logger         Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	searchService service.SearchService,
	filtersService service.FiltersService,
	savedService service.SavedSearchService,
	recentService service.RecentSearchService,
	exportService service.ExportService,
	logger Logger,
) *Handlers {
	return &Handlers{
		searchService:  searchService,
		filtersService: filtersService,
		savedService:   savedService,
		recentService:  recentService,
		exportService:  exportService,
		logger:         logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// IngestSnapshotRequest carries a raw query and its results payload. The
// results stay raw bytes so the stored snapshot is byte-identical to what
// the producer sent.
type IngestSnapshotRequest struct {
	Query   string          `json:"query" binding:"required"`
	Results json.RawMessage `json:"results" binding:"required"`
}

// FormValuesRequest asks for the form projection of a query string
type FormValuesRequest struct {
	Query string `json:"query"`
}

// QueryStringResponse carries a rendered query string
type QueryStringResponse struct {
	QueryString string `json:"queryString"`
}

// SavedSearchRequest carries saved-search fields. On update, empty fields
// leave the stored value unchanged.
type SavedSearchRequest struct {
	Name  string `json:"name"`
	Query string `json:"query"`
}

// ListRecentSearchesRequest represents query parameters for listing recent searches
type ListRecentSearchesRequest struct {
	Limit int `form:"limit"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// Search handles GET /api/v1/search
func (h *Handlers) Search(c *gin.Context) {
	result, err := h.searchService.Execute(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.logger.Error("Search failed", "query", c.Query("q"), "error", err)
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// DescribeQuery handles GET /api/v1/search/query
func (h *Handlers) DescribeQuery(c *gin.Context) {
	desc, err := h.searchService.Describe(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.logger.Error("Query canonicalization failed", "query", c.Query("q"), "error", err)
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    desc,
	})
}

// IngestSnapshot handles POST /api/v1/search/snapshots
func (h *Handlers) IngestSnapshot(c *gin.Context) {
	var req IngestSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid snapshot request", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	q, err := h.searchService.Ingest(c.Request.Context(), req.Query, req.Results)
	if err != nil {
		h.logger.Error("Snapshot ingest failed", "query", req.Query, "error", err)
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    q,
	})
}

// ExportSearch handles GET /api/v1/search/export. On success the workbook
// itself is served as an attachment rather than the JSON envelope.
func (h *Handlers) ExportSearch(c *gin.Context) {
	result, err := h.exportService.Export(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.logger.Error("Export failed", "query", c.Query("q"), "error", err)
		h.respondServiceError(c, err)
		return
	}

	c.FileAttachment(result.FilePath, result.FileName)
}

// QueryFromForm handles POST /api/v1/search/form/query
func (h *Handlers) QueryFromForm(c *gin.Context) {
	var form entity.AdvancedFiltersForm
	if err := c.ShouldBindJSON(&form); err != nil {
		h.logger.Error("Invalid form body", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	queryString := h.filtersService.QueryStringFromForm(&form)

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    QueryStringResponse{QueryString: queryString},
	})
}

// FormFromQuery handles POST /api/v1/search/form
func (h *Handlers) FormFromQuery(c *gin.Context) {
	var req FormValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid form request", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	form, err := h.filtersService.FormValuesFromQuery(c.Request.Context(), req.Query)
	if err != nil {
		h.logger.Error("Form projection failed", "query", req.Query, "error", err)
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    form,
	})
}

// ListSavedSearches handles GET /api/v1/saved-searches
func (h *Handlers) ListSavedSearches(c *gin.Context) {
	searches, err := h.savedService.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list saved searches", "error", err)
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    searches,
	})
}

// CreateSavedSearch handles POST /api/v1/saved-searches
func (h *Handlers) CreateSavedSearch(c *gin.Context) {
	var req SavedSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid saved search request", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	search, err := h.savedService.Create(c.Request.Context(), req.Name, req.Query)
	if err != nil {
		h.logger.Error("Failed to create saved search", "name", req.Name, "error", err)
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    search,
	})
}

// GetSavedSearch handles GET /api/v1/saved-searches/:id
func (h *Handlers) GetSavedSearch(c *gin.Context) {
	id := c.Param("id")

	search, err := h.savedService.Get(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get saved search", "id", id, "error", err)
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    search,
	})
}

// UpdateSavedSearch handles PUT /api/v1/saved-searches/:id
func (h *Handlers) UpdateSavedSearch(c *gin.Context) {
	id := c.Param("id")

	var req SavedSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid saved search request", "id", id, "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	search, err := h.savedService.Update(c.Request.Context(), id, req.Name, req.Query)
	if err != nil {
		h.logger.Error("Failed to update saved search", "id", id, "error", err)
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    search,
	})
}

// DeleteSavedSearch handles DELETE /api/v1/saved-searches/:id
func (h *Handlers) DeleteSavedSearch(c *gin.Context) {
	id := c.Param("id")

	if err := h.savedService.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("Failed to delete saved search", "id", id, "error", err)
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
	})
}

// ListRecentSearches handles GET /api/v1/recent-searches
func (h *Handlers) ListRecentSearches(c *gin.Context) {
	var req ListRecentSearchesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid query parameters",
		})
		return
	}

	if req.Limit > 100 {
		req.Limit = 100
	}

	searches, err := h.recentService.List(c.Request.Context(), req.Limit)
	if err != nil {
		h.logger.Error("Failed to list recent searches", "error", err)
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    searches,
	})
}

// respondServiceError maps service failures to status codes. Parse errors
// keep their offset and reason so query editors can surface them.
func (h *Handlers) respondServiceError(c *gin.Context, err error) {
	var perr *query.ParseError

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &perr):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidPayload),
		errors.Is(err, service.ErrSavedSearchNameInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrSnapshotNotFound),
		errors.Is(err, service.ErrSavedSearchNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrSavedSearchNameTaken):
		status = http.StatusConflict
	}

	c.JSON(status, Response{
		Success: false,
		Error:   err.Error(),
	})
}
