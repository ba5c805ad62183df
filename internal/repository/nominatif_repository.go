package repository

import (
	"github.com/rolinkstone/new-talawang-sub001/internal/model"
	"gorm.io/gorm"
)

// NominatifRepository personnel-entry persistence
type NominatifRepository interface {
	Save(entry *model.NominatifPegawaiModel) error
	FindByID(id uint) (*model.NominatifPegawaiModel, error)
	FindByKegiatanID(kegiatanID uint) ([]*model.NominatifPegawaiModel, error)
	Delete(id uint) error
	DeleteByKegiatanID(kegiatanID uint) error
}

// nominatifRepository gorm implementation
type nominatifRepository struct {
	db *gorm.DB
}

// NewNominatifRepository creates a personnel-entry repository
func NewNominatifRepository(db *gorm.DB) NominatifRepository {
	return &nominatifRepository{db: db}
}

// Save persists an entry with its cost lines
func (r *nominatifRepository) Save(entry *model.NominatifPegawaiModel) error {
	return r.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(entry).Error
}

// FindByID loads one entry with its cost lines
func (r *nominatifRepository) FindByID(id uint) (*model.NominatifPegawaiModel, error) {
	var entry model.NominatifPegawaiModel
	err := r.db.Preload("Rincian").Where("id = ?", id).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindByKegiatanID lists entries for one kegiatan
func (r *nominatifRepository) FindByKegiatanID(kegiatanID uint) ([]*model.NominatifPegawaiModel, error) {
	var entries []*model.NominatifPegawaiModel
	err := r.db.Preload("Rincian").
		Where("kegiatan_id = ?", kegiatanID).
		Order("nama ASC").
		Find(&entries).Error
	return entries, err
}

// Delete removes one entry and its cost lines
func (r *nominatifRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pegawai_id = ?", id).Delete(&model.RincianBiayaModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.NominatifPegawaiModel{}).Error
	})
}

// DeleteByKegiatanID removes all entries owned by a kegiatan
func (r *nominatifRepository) DeleteByKegiatanID(kegiatanID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&model.NominatifPegawaiModel{}).
			Where("kegiatan_id = ?", kegiatanID).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) > 0 {
			if err := tx.Where("pegawai_id IN ?", ids).Delete(&model.RincianBiayaModel{}).Error; err != nil {
				return err
			}
		}
		return tx.Where("kegiatan_id = ?", kegiatanID).Delete(&model.NominatifPegawaiModel{}).Error
	})
}
