package model

import (
	"errors"
	"time"
)

// KegiatanModel travel-activity case record
type KegiatanModel struct {
	ID              uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	NamaKegiatan    string     `gorm:"type:text;not null" json:"nama_kegiatan"`
	MAK             string     `gorm:"column:mak;type:varchar(64);index" json:"mak"`
	NomorSuratTugas string     `gorm:"type:varchar(128);index" json:"nomor_surat_tugas"`
	TanggalSurat    *time.Time `json:"tanggal_surat"`
	Status          Status     `gorm:"type:varchar(32);not null;index" json:"status"`
	Lokasi          string     `gorm:"type:varchar(255)" json:"lokasi"`
	TanggalKegiatan *time.Time `gorm:"index" json:"tanggal_kegiatan"`

	// ownership and approval chain
	UserID         string     `gorm:"type:varchar(64);not null;index" json:"user_id"`
	NamaPengaju    string     `gorm:"type:varchar(255)" json:"nama_pengaju"`
	PPKID          string     `gorm:"column:ppk_id;type:varchar(64);index" json:"ppk_id"`
	NamaPPK        string     `gorm:"column:nama_ppk;type:varchar(255)" json:"nama_ppk"`
	DisetujuiOleh  string     `gorm:"type:varchar(255)" json:"disetujui_oleh"`
	DisetujuiAt    *time.Time `json:"disetujui_at"`
	NamaMengetahui string     `gorm:"type:varchar(255)" json:"nama_mengetahui"`
	MengetahuiAt   *time.Time `json:"mengetahui_at"`

	// derived aggregates, recomputed when personnel entries change
	JumlahPegawai int   `gorm:"not null;default:0" json:"jumlah_pegawai"`
	TotalBiaya    int64 `gorm:"not null;default:0" json:"total_biaya"`

	DibatalkanAt *time.Time `json:"dibatalkan_at"`
	CreatedAt    time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null;index" json:"updated_at"`

	Pegawai []NominatifPegawaiModel `gorm:"foreignKey:KegiatanID;constraint:OnDelete:CASCADE" json:"pegawai,omitempty"`
}

// TableName table name
func (KegiatanModel) TableName() string {
	return "kegiatan"
}

// Validate validates the kegiatan model
func (km *KegiatanModel) Validate() error {
	if km.NamaKegiatan == "" {
		return errors.New("nama kegiatan is required")
	}
	if km.UserID == "" {
		return errors.New("user ID is required")
	}
	if !km.Status.IsValid() {
		return errors.New("status is invalid")
	}
	return nil
}

// Completed a case is complete once both ST number and date are recorded
func (km *KegiatanModel) Completed() bool {
	return km.NomorSuratTugas != "" && km.TanggalSurat != nil
}
