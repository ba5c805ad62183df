package service

import (
	"fmt"
	"strings"

	"github.com/rolinkstone/new-talawang-sub001/internal/auth"
	"github.com/rolinkstone/new-talawang-sub001/internal/model"
	"github.com/rolinkstone/new-talawang-sub001/internal/repository"
	"gorm.io/gorm"
)

// Filter-type tags distinguishing primary results from the legacy
// name-scoped fallback.
const (
	FilterTypePPKID           = "ppk_id"
	FilterTypePPKNamaFallback = "ppk_nama_fallback"
)

// DefaultSearchLimit applied when the caller does not pass a limit
const DefaultSearchLimit = 50

// excludedSearchStatuses statuses hidden from the search endpoint.
// This is deliberately stricter than the generic role-scoped listing.
var excludedSearchStatuses = []model.Status{
	model.StatusDiajukan,
	model.StatusSelesai,
	model.StatusDikembalikan,
}

// SearchResult scoped search hits plus response metadata
type SearchResult struct {
	Records      []*model.KegiatanModel
	FilterType   string
	StatusFilter string
	Message      string
}

// StatsResult role-scoped dashboard counters
type StatsResult struct {
	TotalKegiatan int64            `json:"total_kegiatan"`
	TotalSelesai  int64            `json:"total_selesai"`
	StatusCount   map[string]int64 `json:"status_count"`
}

// SearchService role-scoped search and statistics
type SearchService interface {
	Search(principal *auth.Principal, term string, limit int) (*SearchResult, error)
	Stats(principal *auth.Principal) (*StatsResult, error)
}

// searchService implementation
type searchService struct {
	kegiatanRepo repository.KegiatanRepository
}

// NewSearchService creates a search service
func NewSearchService(db *gorm.DB) SearchService {
	return &searchService{
		kegiatanRepo: repository.NewKegiatanRepository(db),
	}
}

// Search runs the scoped substring search. Admin and kabalai see every
// record; a PPK is scoped to cases assigned to them by id, falling back to
// a name-scoped lookup for legacy rows that stored the approver by name;
// regular users are scoped to their own submissions.
func (s *searchService) Search(principal *auth.Principal, term string, limit int) (*SearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: search term cannot be empty", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	opts := &repository.SearchOptions{
		Term:            term,
		Limit:           limit,
		ExcludeStatuses: excludedSearchStatuses,
	}
	switch principal.Role {
	case auth.RoleAdmin, auth.RoleKabalai:
		// no ownership restriction
	case auth.RolePPK:
		opts.PPKID = principal.ID
	default:
		opts.OwnerID = principal.ID
	}

	records, err := s.kegiatanRepo.Search(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search kegiatan: %w", err)
	}

	result := &SearchResult{
		Records:      records,
		FilterType:   FilterTypePPKID,
		StatusFilter: statusFilterLabel(),
	}

	// Legacy rows stored the approver by display name rather than by
	// stable id. When an id-scoped PPK search comes back empty, retry
	// scoped by name and tag the result so callers can tell them apart.
	if len(records) == 0 && principal.Role == auth.RolePPK && principal.DisplayName() != "" {
		fallbackOpts := &repository.SearchOptions{
			Term:            term,
			Limit:           limit,
			PPKNama:         principal.DisplayName(),
			ExcludeStatuses: excludedSearchStatuses,
		}
		fallbackRecords, err := s.kegiatanRepo.Search(fallbackOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to search kegiatan by nama ppk: %w", err)
		}
		if len(fallbackRecords) > 0 {
			result.Records = fallbackRecords
			result.FilterType = FilterTypePPKNamaFallback
			result.Message = "matched by PPK name (legacy records without ppk_id)"
		}
	}

	return result, nil
}

// Stats computes the role-scoped counters without a search predicate
func (s *searchService) Stats(principal *auth.Principal) (*StatsResult, error) {
	ownerID := ""
	if !principal.Role.Elevated() {
		ownerID = principal.ID
	}

	total, err := s.kegiatanRepo.Count(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count kegiatan: %w", err)
	}
	counts, err := s.kegiatanRepo.CountByStatus(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count kegiatan by status: %w", err)
	}

	return &StatsResult{
		TotalKegiatan: total,
		TotalSelesai:  counts[string(model.StatusSelesai)],
		StatusCount:   counts,
	}, nil
}

// statusFilterLabel human-readable description of the exclusion policy
func statusFilterLabel() string {
	names := make([]string, 0, len(excludedSearchStatuses))
	for _, s := range excludedSearchStatuses {
		names = append(names, string(s))
	}
	return "excludes " + strings.Join(names, ", ")
}
