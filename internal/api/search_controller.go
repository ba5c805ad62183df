package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rolinkstone/new-talawang-sub001/internal/auth"
	"github.com/rolinkstone/new-talawang-sub001/internal/service"
)

// SearchController role-scoped search and statistics endpoints
type SearchController struct {
	searchService service.SearchService
}

// NewSearchController creates a search controller
func NewSearchController(searchService service.SearchService) *SearchController {
	return &SearchController{
		searchService: searchService,
	}
}

// Search GET /api/v1/search?q=&limit=
func (c *SearchController) Search(ctx *gin.Context) {
	principal, ok := auth.GetPrincipal(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	term := ctx.Query("q")

	limit := service.DefaultSearchLimit
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			Error(ctx, http.StatusBadRequest, "invalid limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	result, err := c.searchService.Search(principal, term, limit)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Search(ctx, result.Records, SearchMeta{
		Count:        len(result.Records),
		Limit:        limit,
		SearchTerm:   term,
		FilterType:   result.FilterType,
		StatusFilter: result.StatusFilter,
		Message:      result.Message,
	})
}

// Stats GET /api/v1/search/stats
func (c *SearchController) Stats(ctx *gin.Context) {
	principal, ok := auth.GetPrincipal(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	stats, err := c.searchService.Stats(principal)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, stats)
}
