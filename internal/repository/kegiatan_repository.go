package repository

import (
	"strings"
	"time"

	"github.com/rolinkstone/new-talawang-sub001/internal/model"
	"github.com/rolinkstone/new-talawang-sub001/internal/utils"
	"gorm.io/gorm"
)

// searchColumns fixed set of text columns matched case-insensitively by a search term
var searchColumns = []string{
	"nama_kegiatan",
	"mak",
	"nomor_surat_tugas",
	"lokasi",
	"nama_ppk",
	"nama_mengetahui",
}

// SearchOptions filter set for a scoped kegiatan search.
// Exactly one of OwnerID / PPKID / PPKNama may be set; empty means no
// ownership restriction (elevated roles).
type SearchOptions struct {
	Term            string
	Limit           int
	OwnerID         string
	PPKID           string
	PPKNama         string
	ExcludeStatuses []model.Status
}

// KegiatanFilter optional list predicates
type KegiatanFilter struct {
	Status    *model.Status
	UserID    *string
	PPKID     *string
	MAK       *string
	StartTime *string
	EndTime   *string
	SortBy    string // column name, validated before use
	SortOrder string // asc or desc
	Page      int
	PageSize  int
}

// KegiatanRepository kegiatan persistence
type KegiatanRepository interface {
	Save(kegiatan *model.KegiatanModel) error
	FindByID(id uint) (*model.KegiatanModel, error)
	FindByFilter(filter *KegiatanFilter) ([]*model.KegiatanModel, int64, error)
	Search(opts *SearchOptions) ([]*model.KegiatanModel, error)
	UpdateColumns(id uint, updates map[string]interface{}) error
	CancelConditional(id uint, now time.Time) (int64, error)
	CountByStatus(ownerID string) (map[string]int64, error)
	Count(ownerID string) (int64, error)
}

// kegiatanRepository gorm implementation
type kegiatanRepository struct {
	db *gorm.DB
}

// NewKegiatanRepository creates a kegiatan repository
func NewKegiatanRepository(db *gorm.DB) KegiatanRepository {
	return &kegiatanRepository{db: db}
}

// Save persists a kegiatan
func (r *kegiatanRepository) Save(kegiatan *model.KegiatanModel) error {
	return r.db.Save(kegiatan).Error
}

// FindByID loads one kegiatan with its personnel entries and cost lines
func (r *kegiatanRepository) FindByID(id uint) (*model.KegiatanModel, error) {
	var kegiatan model.KegiatanModel
	err := r.db.Preload("Pegawai").Preload("Pegawai.Rincian").
		Where("id = ?", id).First(&kegiatan).Error
	if err != nil {
		return nil, err
	}
	return &kegiatan, nil
}

// FindByFilter lists kegiatan with optional predicates and pagination
func (r *kegiatanRepository) FindByFilter(filter *KegiatanFilter) ([]*model.KegiatanModel, int64, error) {
	query := r.db.Model(&model.KegiatanModel{})

	if filter != nil {
		if filter.Status != nil {
			query = query.Where("status = ?", string(*filter.Status))
		}
		if filter.UserID != nil {
			query = query.Where("user_id = ?", *filter.UserID)
		}
		if filter.PPKID != nil {
			query = query.Where("ppk_id = ?", *filter.PPKID)
		}
		if filter.MAK != nil {
			query = query.Where("mak = ?", *filter.MAK)
		}
		if filter.StartTime != nil {
			query = query.Where("created_at >= ?", *filter.StartTime)
		}
		if filter.EndTime != nil {
			query = query.Where("created_at <= ?", *filter.EndTime)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := 1
	pageSize := 20
	if filter != nil {
		if filter.Page > 0 {
			page = filter.Page
		}
		if filter.PageSize > 0 {
			pageSize = filter.PageSize
		}
	}

	order := "updated_at DESC"
	if filter != nil && filter.SortBy != "" {
		if err := utils.ValidateSortField(filter.SortBy); err != nil {
			return nil, 0, err
		}
		direction := "ASC"
		if filter.SortOrder != "" {
			if err := utils.ValidateSortOrder(filter.SortOrder); err != nil {
				return nil, 0, err
			}
			direction = strings.ToUpper(filter.SortOrder)
		}
		order = filter.SortBy + " " + direction
	}

	var records []*model.KegiatanModel
	err := query.Order(order).
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&records).Error
	return records, total, err
}

// Search runs the scoped substring search, ordered by last update descending
func (r *kegiatanRepository) Search(opts *SearchOptions) ([]*model.KegiatanModel, error) {
	query := r.db.Model(&model.KegiatanModel{})

	switch {
	case opts.OwnerID != "":
		query = query.Where("user_id = ?", opts.OwnerID)
	case opts.PPKID != "":
		query = query.Where("ppk_id = ?", opts.PPKID)
	case opts.PPKNama != "":
		query = query.Where("nama_ppk = ?", opts.PPKNama)
	}

	if len(opts.ExcludeStatuses) > 0 {
		excluded := make([]string, 0, len(opts.ExcludeStatuses))
		for _, s := range opts.ExcludeStatuses {
			excluded = append(excluded, string(s))
		}
		query = query.Where("status NOT IN ?", excluded)
	}

	if opts.Term != "" {
		pattern := "%" + strings.ToLower(opts.Term) + "%"
		conditions := make([]string, 0, len(searchColumns))
		args := make([]interface{}, 0, len(searchColumns))
		for _, col := range searchColumns {
			conditions = append(conditions, "LOWER("+col+") LIKE ?")
			args = append(args, pattern)
		}
		query = query.Where(strings.Join(conditions, " OR "), args...)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	var records []*model.KegiatanModel
	err := query.Order("updated_at DESC").Limit(limit).Find(&records).Error
	return records, err
}

// UpdateColumns applies a partial update to one kegiatan
func (r *kegiatanRepository) UpdateColumns(id uint, updates map[string]interface{}) error {
	return r.db.Model(&model.KegiatanModel{}).Where("id = ?", id).Updates(updates).Error
}

// CancelConditional atomically cancels a kegiatan. The predicate excludes
// terminal statuses and completed cases (ST number and date both set), so
// two concurrent cancels cannot both succeed; callers branch on the
// affected-row count.
func (r *kegiatanRepository) CancelConditional(id uint, now time.Time) (int64, error) {
	res := r.db.Model(&model.KegiatanModel{}).
		Where("id = ?", id).
		Where("status NOT IN ?", []string{string(model.StatusSelesai), string(model.StatusDibatalkan)}).
		Where("NOT (nomor_surat_tugas <> '' AND tanggal_surat IS NOT NULL)").
		Updates(map[string]interface{}{
			"status":        string(model.StatusDibatalkan),
			"dibatalkan_at": now,
			"updated_at":    now,
		})
	return res.RowsAffected, res.Error
}

// CountByStatus per-status counts, optionally restricted to an owner
func (r *kegiatanRepository) CountByStatus(ownerID string) (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	query := r.db.Model(&model.KegiatanModel{}).
		Select("status, COUNT(*) AS total").
		Group("status")
	if ownerID != "" {
		query = query.Where("user_id = ?", ownerID)
	}

	var rows []row
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

// Count total kegiatan, optionally restricted to an owner
func (r *kegiatanRepository) Count(ownerID string) (int64, error) {
	query := r.db.Model(&model.KegiatanModel{})
	if ownerID != "" {
		query = query.Where("user_id = ?", ownerID)
	}
	var total int64
	err := query.Count(&total).Error
	return total, err
}
