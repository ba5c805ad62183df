package service

import (
	"context"
	"testing"
	"time"

	"github.com/rolinkstone/new-talawang-sub001/internal/auth"
	"github.com/rolinkstone/new-talawang-sub001/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.KegiatanModel{},
		&model.NominatifPegawaiModel{},
		&model.RincianBiayaModel{},
		&model.AuditLogModel{},
	))
	return db
}

func pengajuPrincipal() *auth.Principal {
	return &auth.Principal{ID: "user-1", Username: "budi", Name: "Budi Santoso", Role: auth.RoleRegular}
}

func ppkPrincipal() *auth.Principal {
	return &auth.Principal{ID: "ppk-1", Username: "siti", Name: "Siti Rahma", Role: auth.RolePPK}
}

func kabalaiPrincipal() *auth.Principal {
	return &auth.Principal{ID: "kabalai-1", Username: "agus", Name: "Agus Wijaya", Role: auth.RoleKabalai}
}

func createKegiatan(t *testing.T, svc KegiatanService) *model.KegiatanModel {
	kegiatan, err := svc.Create(context.Background(), pengajuPrincipal(), &CreateKegiatanRequest{
		NamaKegiatan: "Monitoring Program Gizi",
		MAK:          "524111",
		Lokasi:       "Sampit",
		PPKID:        "ppk-1",
		NamaPPK:      "Siti Rahma",
	})
	require.NoError(t, err)
	return kegiatan
}

func TestCreateKegiatan(t *testing.T) {
	svc := NewKegiatanService(setupServiceDB(t), nil, nil)

	kegiatan := createKegiatan(t, svc)
	assert.Equal(t, model.StatusDiajukan, kegiatan.Status)
	assert.Equal(t, "user-1", kegiatan.UserID)
	assert.Equal(t, "Budi Santoso", kegiatan.NamaPengaju)
	assert.NotZero(t, kegiatan.ID)
}

func TestCreateKegiatanRejectsInvalidName(t *testing.T) {
	svc := NewKegiatanService(setupServiceDB(t), nil, nil)

	_, err := svc.Create(context.Background(), pengajuPrincipal(), &CreateKegiatanRequest{
		NamaKegiatan: "   ",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestApproveByRole(t *testing.T) {
	svc := NewKegiatanService(setupServiceDB(t), nil, nil)
	kegiatan := createKegiatan(t, svc)

	// regular users cannot approve
	_, err := svc.Approve(context.Background(), pengajuPrincipal(), kegiatan.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// PPK approval moves to disetujui-ppk
	approved, err := svc.Approve(context.Background(), ppkPrincipal(), kegiatan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDisetujuiPPK, approved.Status)
	assert.Equal(t, "Siti Rahma", approved.DisetujuiOleh)
	assert.NotNil(t, approved.DisetujuiAt)

	// kabalai approval moves to disetujui-kabalai
	approved, err = svc.Approve(context.Background(), kabalaiPrincipal(), kegiatan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDisetujuiKabalai, approved.Status)
	assert.Equal(t, "Agus Wijaya", approved.NamaMengetahui)

	// a second PPK approval is now an illegal transition
	_, err = svc.Approve(context.Background(), ppkPrincipal(), kegiatan.ID)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestReject(t *testing.T) {
	svc := NewKegiatanService(setupServiceDB(t), nil, nil)
	kegiatan := createKegiatan(t, svc)

	_, err := svc.Reject(context.Background(), pengajuPrincipal(), kegiatan.ID, "data tidak lengkap")
	assert.ErrorIs(t, err, ErrForbidden)

	rejected, err := svc.Reject(context.Background(), ppkPrincipal(), kegiatan.ID, "data tidak lengkap")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDikembalikan, rejected.Status)
}

func TestTransfer(t *testing.T) {
	svc := NewKegiatanService(setupServiceDB(t), nil, nil)
	kegiatan := createKegiatan(t, svc)

	transferred, err := svc.Transfer(context.Background(), kabalaiPrincipal(), kegiatan.ID, &TransferRequest{
		ToPPKID:   "ppk-2",
		ToNamaPPK: "Dewi Lestari",
		Reason:    "PPK lama cuti",
	})
	require.NoError(t, err)
	assert.Equal(t, "ppk-2", transferred.PPKID)
	assert.Equal(t, "Dewi Lestari", transferred.NamaPPK)

	// cancelled records cannot be transferred
	_, err = svc.Cancel(context.Background(), pengajuPrincipal(), kegiatan.ID)
	require.NoError(t, err)
	_, err = svc.Transfer(context.Background(), kabalaiPrincipal(), kegiatan.ID, &TransferRequest{
		ToPPKID: "ppk-3", ToNamaPPK: "X",
	})
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestCompleteRequiresSuratTugas(t *testing.T) {
	svc := NewKegiatanService(setupServiceDB(t), nil, nil)
	kegiatan := createKegiatan(t, svc)

	_, err := svc.Approve(context.Background(), ppkPrincipal(), kegiatan.ID)
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), ppkPrincipal(), kegiatan.ID, &CompleteRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	tanggal := time.Now()
	_, err = svc.Complete(context.Background(), ppkPrincipal(), kegiatan.ID, &CompleteRequest{
		NomorSuratTugas: "ST-12/2025",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	completed, err := svc.Complete(context.Background(), ppkPrincipal(), kegiatan.ID, &CompleteRequest{
		NomorSuratTugas: "ST-12/2025",
		TanggalSurat:    &tanggal,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusSelesai, completed.Status)
	assert.Equal(t, "ST-12/2025", completed.NomorSuratTugas)
	assert.True(t, completed.Completed())
}

func TestCompleteFromDiajukanIsIllegal(t *testing.T) {
	svc := NewKegiatanService(setupServiceDB(t), nil, nil)
	kegiatan := createKegiatan(t, svc)

	tanggal := time.Now()
	_, err := svc.Complete(context.Background(), ppkPrincipal(), kegiatan.ID, &CompleteRequest{
		NomorSuratTugas: "ST-12/2025",
		TanggalSurat:    &tanggal,
	})
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestCancel(t *testing.T) {
	svc := NewKegiatanService(setupServiceDB(t), nil, nil)
	kegiatan := createKegiatan(t, svc)

	result, err := svc.Cancel(context.Background(), pengajuPrincipal(), kegiatan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDibatalkan, result.Kegiatan.Status)
	assert.Equal(t, "Budi Santoso", result.DibatalkanOleh)
	assert.False(t, result.DibatalkanAt.IsZero())

	// double cancel
	_, err = svc.Cancel(context.Background(), pengajuPrincipal(), kegiatan.ID)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestCancelCompletedCase(t *testing.T) {
	svc := NewKegiatanService(setupServiceDB(t), nil, nil)
	kegiatan := createKegiatan(t, svc)

	_, err := svc.Approve(context.Background(), ppkPrincipal(), kegiatan.ID)
	require.NoError(t, err)
	tanggal := time.Now()
	_, err = svc.Complete(context.Background(), ppkPrincipal(), kegiatan.ID, &CompleteRequest{
		NomorSuratTugas: "ST-12/2025",
		TanggalSurat:    &tanggal,
	})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), pengajuPrincipal(), kegiatan.ID)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestCancelNotFound(t *testing.T) {
	svc := NewKegiatanService(setupServiceDB(t), nil, nil)

	_, err := svc.Cancel(context.Background(), pengajuPrincipal(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListScopesRegularUsers(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewKegiatanService(db, nil, nil)

	createKegiatan(t, svc)
	_, err := svc.Create(context.Background(), &auth.Principal{ID: "user-2", Username: "rina", Role: auth.RoleRegular},
		&CreateKegiatanRequest{NamaKegiatan: "Kegiatan Lain"})
	require.NoError(t, err)

	records, total, err := svc.List(pengajuPrincipal(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, records, 1)
	assert.Equal(t, "user-1", records[0].UserID)

	// elevated roles see everything
	_, total, err = svc.List(kabalaiPrincipal(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestAddPegawai(t *testing.T) {
	svc := NewKegiatanService(setupServiceDB(t), nil, nil)
	kegiatan := createKegiatan(t, svc)

	entry, err := svc.AddPegawai(context.Background(), pengajuPrincipal(), kegiatan.ID, &AddPegawaiRequest{
		NIP:      "198001012005011001",
		Nama:     "Joko Susilo",
		Golongan: "III/c",
		Jabatan:  "Analis Kebijakan",
		Rincian: []RincianRequest{
			{Kategori: string(model.BiayaTransport), Kuantitas: 2, HargaUnit: 500000},
			{Kategori: string(model.BiayaUangHarian), Kuantitas: 3, HargaUnit: 150000},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1450000), entry.TotalBiaya)

	updated, err := svc.Get(kegiatan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.JumlahPegawai)
	assert.Equal(t, int64(1450000), updated.TotalBiaya)
}

func TestAddPegawaiRejectsBadNIP(t *testing.T) {
	svc := NewKegiatanService(setupServiceDB(t), nil, nil)
	kegiatan := createKegiatan(t, svc)

	_, err := svc.AddPegawai(context.Background(), pengajuPrincipal(), kegiatan.ID, &AddPegawaiRequest{
		NIP:  "12345",
		Nama: "Joko Susilo",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAddPegawaiOnTerminalKegiatan(t *testing.T) {
	svc := NewKegiatanService(setupServiceDB(t), nil, nil)
	kegiatan := createKegiatan(t, svc)

	_, err := svc.Cancel(context.Background(), pengajuPrincipal(), kegiatan.ID)
	require.NoError(t, err)

	_, err = svc.AddPegawai(context.Background(), pengajuPrincipal(), kegiatan.ID, &AddPegawaiRequest{
		NIP:  "198001012005011001",
		Nama: "Joko Susilo",
	})
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestDeletePegawaiRecomputesAggregates(t *testing.T) {
	svc := NewKegiatanService(setupServiceDB(t), nil, nil)
	kegiatan := createKegiatan(t, svc)

	entry, err := svc.AddPegawai(context.Background(), pengajuPrincipal(), kegiatan.ID, &AddPegawaiRequest{
		NIP:  "198001012005011001",
		Nama: "Joko Susilo",
		Rincian: []RincianRequest{
			{Kategori: string(model.BiayaPenginapan), Kuantitas: 1, HargaUnit: 400000},
		},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePegawai(context.Background(), pengajuPrincipal(), kegiatan.ID, entry.ID))

	updated, err := svc.Get(kegiatan.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.JumlahPegawai)
	assert.Equal(t, int64(0), updated.TotalBiaya)

	// entry from another kegiatan id is not reachable
	err = svc.DeletePegawai(context.Background(), pengajuPrincipal(), kegiatan.ID, entry.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
