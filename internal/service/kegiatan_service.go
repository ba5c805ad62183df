package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rolinkstone/new-talawang-sub001/internal/auth"
	"github.com/rolinkstone/new-talawang-sub001/internal/metrics"
	"github.com/rolinkstone/new-talawang-sub001/internal/model"
	"github.com/rolinkstone/new-talawang-sub001/internal/repository"
	"github.com/rolinkstone/new-talawang-sub001/internal/utils"
	"gorm.io/gorm"
)

// StatusNotifier pushes status-change events to connected clients
type StatusNotifier interface {
	NotifyStatusChange(kegiatanID uint, status model.Status, actor string)
}

// KegiatanService travel-activity lifecycle operations
type KegiatanService interface {
	Create(ctx context.Context, principal *auth.Principal, req *CreateKegiatanRequest) (*model.KegiatanModel, error)
	Get(id uint) (*model.KegiatanModel, error)
	List(principal *auth.Principal, filter *repository.KegiatanFilter) ([]*model.KegiatanModel, int64, error)
	Approve(ctx context.Context, principal *auth.Principal, id uint) (*model.KegiatanModel, error)
	Reject(ctx context.Context, principal *auth.Principal, id uint, reason string) (*model.KegiatanModel, error)
	Transfer(ctx context.Context, principal *auth.Principal, id uint, req *TransferRequest) (*model.KegiatanModel, error)
	Complete(ctx context.Context, principal *auth.Principal, id uint, req *CompleteRequest) (*model.KegiatanModel, error)
	Cancel(ctx context.Context, principal *auth.Principal, id uint) (*CancelResult, error)
	AddPegawai(ctx context.Context, principal *auth.Principal, kegiatanID uint, req *AddPegawaiRequest) (*model.NominatifPegawaiModel, error)
	ListPegawai(kegiatanID uint) ([]*model.NominatifPegawaiModel, error)
	DeletePegawai(ctx context.Context, principal *auth.Principal, kegiatanID uint, pegawaiID uint) error
}

// CreateKegiatanRequest payload for submitting a new kegiatan
type CreateKegiatanRequest struct {
	NamaKegiatan    string     `json:"nama_kegiatan" binding:"required"`
	MAK             string     `json:"mak"`
	Lokasi          string     `json:"lokasi"`
	TanggalKegiatan *time.Time `json:"tanggal_kegiatan"`
	PPKID           string     `json:"ppk_id"`
	NamaPPK         string     `json:"nama_ppk"`
}

// TransferRequest payload for reassigning the PPK
type TransferRequest struct {
	ToPPKID   string `json:"to_ppk_id" binding:"required"`
	ToNamaPPK string `json:"to_nama_ppk" binding:"required"`
	Reason    string `json:"reason"`
}

// CompleteRequest payload for recording the assignment letter
type CompleteRequest struct {
	NomorSuratTugas string     `json:"nomor_surat_tugas"`
	TanggalSurat    *time.Time `json:"tanggal_surat"`
}

// RincianRequest one cost line in an AddPegawaiRequest
type RincianRequest struct {
	Kategori  string `json:"kategori" binding:"required"`
	Kuantitas int    `json:"kuantitas"`
	HargaUnit int64  `json:"harga_unit"`
}

// AddPegawaiRequest payload for attaching a personnel entry
type AddPegawaiRequest struct {
	NIP      string           `json:"nip" binding:"required"`
	Nama     string           `json:"nama" binding:"required"`
	Golongan string           `json:"golongan"`
	Jabatan  string           `json:"jabatan"`
	Rincian  []RincianRequest `json:"rincian"`
}

// CancelResult the updated record plus caller-facing cancellation metadata.
// DibatalkanAt here is observed post-commit and may differ slightly from
// the persisted server-clock timestamp.
type CancelResult struct {
	Kegiatan       *model.KegiatanModel `json:"kegiatan"`
	DibatalkanOleh string               `json:"dibatalkan_oleh"`
	DibatalkanAt   time.Time            `json:"dibatalkan_at"`
}

// kegiatanService implementation
type kegiatanService struct {
	db            *gorm.DB
	kegiatanRepo  repository.KegiatanRepository
	nominatifRepo repository.NominatifRepository
	auditLogSvc   AuditLogService
	notifier      StatusNotifier
}

// NewKegiatanService creates a kegiatan service; notifier may be nil
func NewKegiatanService(
	db *gorm.DB,
	auditLogSvc AuditLogService,
	notifier StatusNotifier,
) KegiatanService {
	return &kegiatanService{
		db:            db,
		kegiatanRepo:  repository.NewKegiatanRepository(db),
		nominatifRepo: repository.NewNominatifRepository(db),
		auditLogSvc:   auditLogSvc,
		notifier:      notifier,
	}
}

// Create submits a new kegiatan in status diajukan
func (s *kegiatanService) Create(ctx context.Context, principal *auth.Principal, req *CreateKegiatanRequest) (*model.KegiatanModel, error) {
	if err := utils.ValidateNamaKegiatan(req.NamaKegiatan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := time.Now()
	kegiatan := &model.KegiatanModel{
		NamaKegiatan:    utils.SanitizeString(strings.TrimSpace(req.NamaKegiatan)),
		MAK:             req.MAK,
		Lokasi:          utils.SanitizeString(req.Lokasi),
		TanggalKegiatan: req.TanggalKegiatan,
		Status:          model.StatusDiajukan,
		UserID:          principal.ID,
		NamaPengaju:     principal.DisplayName(),
		PPKID:           req.PPKID,
		NamaPPK:         req.NamaPPK,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := kegiatan.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.kegiatanRepo.Save(kegiatan); err != nil {
		return nil, fmt.Errorf("failed to create kegiatan: %w", err)
	}

	metrics.RecordKegiatanCreated()
	s.audit(ctx, principal, "create", kegiatan.ID, map[string]interface{}{
		"nama_kegiatan": kegiatan.NamaKegiatan,
		"mak":           kegiatan.MAK,
	})

	return kegiatan, nil
}

// Get loads one kegiatan with personnel entries
func (s *kegiatanService) Get(id uint) (*model.KegiatanModel, error) {
	kegiatan, err := s.kegiatanRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get kegiatan: %w", err)
	}
	return kegiatan, nil
}

// List lists kegiatan; regular-role viewers only see their own records
func (s *kegiatanService) List(principal *auth.Principal, filter *repository.KegiatanFilter) ([]*model.KegiatanModel, int64, error) {
	if filter == nil {
		filter = &repository.KegiatanFilter{}
	}
	if !principal.Role.Elevated() {
		owner := principal.ID
		filter.UserID = &owner
	}
	return s.kegiatanRepo.FindByFilter(filter)
}

// Approve advances the record to the approval state matching the caller's role
func (s *kegiatanService) Approve(ctx context.Context, principal *auth.Principal, id uint) (*model.KegiatanModel, error) {
	var target model.Status
	switch principal.Role {
	case auth.RolePPK:
		target = model.StatusDisetujuiPPK
	case auth.RoleKabalai, auth.RoleAdmin:
		target = model.StatusDisetujuiKabalai
	default:
		return nil, ErrForbidden
	}

	kegiatan, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := model.ValidateTransition(kegiatan.Status, target); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIllegalTransition, err)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":     string(target),
		"updated_at": now,
	}
	if target == model.StatusDisetujuiPPK {
		updates["disetujui_oleh"] = principal.DisplayName()
		updates["disetujui_at"] = now
	} else {
		updates["nama_mengetahui"] = principal.DisplayName()
		updates["mengetahui_at"] = now
	}
	if err := s.kegiatanRepo.UpdateColumns(id, updates); err != nil {
		return nil, fmt.Errorf("failed to approve kegiatan: %w", err)
	}

	metrics.RecordApproval("approve")
	s.audit(ctx, principal, "approve", id, map[string]interface{}{"status": string(target)})
	s.notify(id, target, principal.DisplayName())

	return s.Get(id)
}

// Reject returns the record to the submitter
func (s *kegiatanService) Reject(ctx context.Context, principal *auth.Principal, id uint, reason string) (*model.KegiatanModel, error) {
	if !principal.Role.Elevated() {
		return nil, ErrForbidden
	}

	kegiatan, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := model.ValidateTransition(kegiatan.Status, model.StatusDikembalikan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIllegalTransition, err)
	}

	now := time.Now()
	if err := s.kegiatanRepo.UpdateColumns(id, map[string]interface{}{
		"status":     string(model.StatusDikembalikan),
		"updated_at": now,
	}); err != nil {
		return nil, fmt.Errorf("failed to reject kegiatan: %w", err)
	}

	metrics.RecordApproval("reject")
	s.audit(ctx, principal, "reject", id, map[string]interface{}{"reason": reason})
	s.notify(id, model.StatusDikembalikan, principal.DisplayName())

	return s.Get(id)
}

// Transfer reassigns the budget-commitment officer
func (s *kegiatanService) Transfer(ctx context.Context, principal *auth.Principal, id uint, req *TransferRequest) (*model.KegiatanModel, error) {
	if !principal.Role.Elevated() {
		return nil, ErrForbidden
	}

	kegiatan, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if kegiatan.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: status %q is terminal", ErrIllegalTransition, kegiatan.Status)
	}

	now := time.Now()
	if err := s.kegiatanRepo.UpdateColumns(id, map[string]interface{}{
		"ppk_id":     req.ToPPKID,
		"nama_ppk":   req.ToNamaPPK,
		"updated_at": now,
	}); err != nil {
		return nil, fmt.Errorf("failed to transfer kegiatan: %w", err)
	}

	metrics.RecordApproval("transfer")
	s.audit(ctx, principal, "transfer", id, map[string]interface{}{
		"to_ppk_id": req.ToPPKID,
		"reason":    req.Reason,
	})

	return s.Get(id)
}

// Complete records the assignment letter and closes the case
func (s *kegiatanService) Complete(ctx context.Context, principal *auth.Principal, id uint, req *CompleteRequest) (*model.KegiatanModel, error) {
	if !principal.Role.Elevated() {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(req.NomorSuratTugas) == "" || req.TanggalSurat == nil {
		return nil, fmt.Errorf("%w: nomor surat tugas and tanggal surat are both required", ErrInvalidInput)
	}

	kegiatan, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := model.ValidateTransition(kegiatan.Status, model.StatusSelesai); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIllegalTransition, err)
	}

	now := time.Now()
	if err := s.kegiatanRepo.UpdateColumns(id, map[string]interface{}{
		"status":            string(model.StatusSelesai),
		"nomor_surat_tugas": strings.TrimSpace(req.NomorSuratTugas),
		"tanggal_surat":     req.TanggalSurat,
		"updated_at":        now,
	}); err != nil {
		return nil, fmt.Errorf("failed to complete kegiatan: %w", err)
	}

	metrics.RecordApproval("complete")
	s.audit(ctx, principal, "complete", id, map[string]interface{}{
		"nomor_surat_tugas": req.NomorSuratTugas,
	})
	s.notify(id, model.StatusSelesai, principal.DisplayName())

	return s.Get(id)
}

// Cancel cancels a non-terminal, non-completed kegiatan.
// The update is a single conditional statement, so concurrent cancels on
// the same record cannot both succeed; the pre-read exists only to pick
// the precise error for the caller.
func (s *kegiatanService) Cancel(ctx context.Context, principal *auth.Principal, id uint) (*CancelResult, error) {
	kegiatan, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if kegiatan.Status == model.StatusDibatalkan {
		return nil, ErrAlreadyCancelled
	}
	if kegiatan.Completed() {
		return nil, fmt.Errorf("%w: surat tugas already recorded, case is immutable", ErrIllegalTransition)
	}

	now := time.Now()
	affected, err := s.kegiatanRepo.CancelConditional(id, now)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel kegiatan: %w", err)
	}
	if affected == 0 {
		// lost a race: classify against the current row state
		current, readErr := s.Get(id)
		if readErr != nil {
			return nil, readErr
		}
		if current.Status == model.StatusDibatalkan {
			return nil, ErrAlreadyCancelled
		}
		return nil, fmt.Errorf("%w: status %q cannot be cancelled", ErrIllegalTransition, current.Status)
	}

	metrics.RecordApproval("cancel")
	s.audit(ctx, principal, "cancel", id, map[string]interface{}{
		"previous_status": string(kegiatan.Status),
	})
	s.notify(id, model.StatusDibatalkan, principal.DisplayName())

	updated, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return &CancelResult{
		Kegiatan:       updated,
		DibatalkanOleh: principal.DisplayName(),
		DibatalkanAt:   time.Now(),
	}, nil
}

// AddPegawai attaches a personnel entry and recomputes the aggregates
func (s *kegiatanService) AddPegawai(ctx context.Context, principal *auth.Principal, kegiatanID uint, req *AddPegawaiRequest) (*model.NominatifPegawaiModel, error) {
	kegiatan, err := s.Get(kegiatanID)
	if err != nil {
		return nil, err
	}
	if kegiatan.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: status %q is terminal", ErrIllegalTransition, kegiatan.Status)
	}

	if err := utils.ValidateNIP(req.NIP); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := time.Now()
	entry := &model.NominatifPegawaiModel{
		KegiatanID: kegiatanID,
		NIP:        req.NIP,
		Nama:       utils.SanitizeString(req.Nama),
		Golongan:   req.Golongan,
		Jabatan:    req.Jabatan,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, line := range req.Rincian {
		rincian := model.RincianBiayaModel{
			Kategori:  line.Kategori,
			Kuantitas: line.Kuantitas,
			HargaUnit: line.HargaUnit,
		}
		if err := rincian.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		entry.Rincian = append(entry.Rincian, rincian)
	}
	entry.HitungTotal()
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.nominatifRepo.Save(entry); err != nil {
		return nil, fmt.Errorf("failed to save pegawai: %w", err)
	}
	if err := s.recomputeAggregates(kegiatanID); err != nil {
		return nil, err
	}

	s.audit(ctx, principal, "add_pegawai", kegiatanID, map[string]interface{}{
		"nip":  req.NIP,
		"nama": req.Nama,
	})

	return entry, nil
}

// ListPegawai lists personnel entries for one kegiatan
func (s *kegiatanService) ListPegawai(kegiatanID uint) ([]*model.NominatifPegawaiModel, error) {
	if _, err := s.Get(kegiatanID); err != nil {
		return nil, err
	}
	return s.nominatifRepo.FindByKegiatanID(kegiatanID)
}

// DeletePegawai removes a personnel entry and recomputes the aggregates
func (s *kegiatanService) DeletePegawai(ctx context.Context, principal *auth.Principal, kegiatanID uint, pegawaiID uint) error {
	kegiatan, err := s.Get(kegiatanID)
	if err != nil {
		return err
	}
	if kegiatan.Status.IsTerminal() {
		return fmt.Errorf("%w: status %q is terminal", ErrIllegalTransition, kegiatan.Status)
	}

	entry, err := s.nominatifRepo.FindByID(pegawaiID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get pegawai: %w", err)
	}
	if entry.KegiatanID != kegiatanID {
		return ErrNotFound
	}

	if err := s.nominatifRepo.Delete(pegawaiID); err != nil {
		return fmt.Errorf("failed to delete pegawai: %w", err)
	}
	if err := s.recomputeAggregates(kegiatanID); err != nil {
		return err
	}

	s.audit(ctx, principal, "delete_pegawai", kegiatanID, map[string]interface{}{
		"pegawai_id": pegawaiID,
	})

	return nil
}

// recomputeAggregates refreshes jumlah_pegawai and total_biaya from the entries
func (s *kegiatanService) recomputeAggregates(kegiatanID uint) error {
	entries, err := s.nominatifRepo.FindByKegiatanID(kegiatanID)
	if err != nil {
		return fmt.Errorf("failed to list pegawai: %w", err)
	}
	var total int64
	for _, entry := range entries {
		total += entry.TotalBiaya
	}
	return s.kegiatanRepo.UpdateColumns(kegiatanID, map[string]interface{}{
		"jumlah_pegawai": len(entries),
		"total_biaya":    total,
		"updated_at":     time.Now(),
	})
}

func (s *kegiatanService) audit(ctx context.Context, principal *auth.Principal, action string, id uint, details map[string]interface{}) {
	if s.auditLogSvc == nil {
		return
	}
	_ = s.auditLogSvc.RecordAction(ctx, principal.ID, principal.Username, action, "kegiatan", fmt.Sprintf("%d", id), details)
}

func (s *kegiatanService) notify(id uint, status model.Status, actor string) {
	if s.notifier != nil {
		s.notifier.NotifyStatusChange(id, status, actor)
	}
}
