package model

import (
	"errors"
	"time"
)

// Cost category names for nominatif cost lines.
const (
	BiayaTransport  = "transport"
	BiayaUangHarian = "uang_harian"
	BiayaPenginapan = "penginapan"
)

// NominatifPegawaiModel one employee's participation in a kegiatan
type NominatifPegawaiModel struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	KegiatanID uint   `gorm:"not null;index" json:"kegiatan_id"`
	NIP        string `gorm:"column:nip;type:varchar(32);not null" json:"nip"`
	Nama       string `gorm:"type:varchar(255);not null" json:"nama"`
	Golongan   string `gorm:"type:varchar(16)" json:"golongan"`
	Jabatan    string `gorm:"type:varchar(128)" json:"jabatan"`

	// aggregate of the attached cost lines
	TotalBiaya int64 `gorm:"not null;default:0" json:"total_biaya"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Rincian []RincianBiayaModel `gorm:"foreignKey:PegawaiID;constraint:OnDelete:CASCADE" json:"rincian,omitempty"`
}

// TableName table name
func (NominatifPegawaiModel) TableName() string {
	return "nominatif_pegawai"
}

// Validate validates the personnel entry
func (nm *NominatifPegawaiModel) Validate() error {
	if nm.KegiatanID == 0 {
		return errors.New("kegiatan ID is required")
	}
	if nm.NIP == "" {
		return errors.New("NIP is required")
	}
	if nm.Nama == "" {
		return errors.New("nama is required")
	}
	return nil
}

// HitungTotal recomputes the entry total from its cost lines
func (nm *NominatifPegawaiModel) HitungTotal() int64 {
	var total int64
	for i := range nm.Rincian {
		nm.Rincian[i].Jumlah = nm.Rincian[i].LineTotal()
		total += nm.Rincian[i].Jumlah
	}
	nm.TotalBiaya = total
	return total
}

// RincianBiayaModel one cost line (transport, uang harian, penginapan)
type RincianBiayaModel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PegawaiID uint   `gorm:"not null;index" json:"pegawai_id"`
	Kategori  string `gorm:"type:varchar(32);not null" json:"kategori"`
	Kuantitas int    `gorm:"not null;default:0" json:"kuantitas"`
	HargaUnit int64  `gorm:"not null;default:0" json:"harga_unit"`
	Jumlah    int64  `gorm:"not null;default:0" json:"jumlah"`
}

// TableName table name
func (RincianBiayaModel) TableName() string {
	return "rincian_biaya"
}

// LineTotal quantity times unit price
func (rm *RincianBiayaModel) LineTotal() int64 {
	return int64(rm.Kuantitas) * rm.HargaUnit
}

// Validate validates the cost line
func (rm *RincianBiayaModel) Validate() error {
	switch rm.Kategori {
	case BiayaTransport, BiayaUangHarian, BiayaPenginapan:
	default:
		return errors.New("kategori is invalid")
	}
	if rm.Kuantitas < 0 {
		return errors.New("kuantitas cannot be negative")
	}
	if rm.HargaUnit < 0 {
		return errors.New("harga unit cannot be negative")
	}
	return nil
}
