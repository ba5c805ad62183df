package service

import (
	"context"
	"testing"

	"github.com/rolinkstone/new-talawang-sub001/internal/model"
	"github.com/rolinkstone/new-talawang-sub001/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordActionPersistsRequestMetadata(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewAuditLogService(repository.NewAuditLogRepository(db))

	ctx := WithRequestMetadata(context.Background(), "req-12345", "10.0.0.1", "talawang-web/1.0")
	require.NoError(t, svc.RecordAction(ctx, "user-1", "budi", "create", "kegiatan", "1",
		map[string]interface{}{"nama_kegiatan": "Rapat"}))

	var row model.AuditLogModel
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, "req-12345", row.RequestID)
	assert.Equal(t, "10.0.0.1", row.IP)
	assert.Equal(t, "talawang-web/1.0", row.UserAgent)
	assert.Equal(t, "create", row.Action)
}

func TestRecordActionWithoutMetadata(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewAuditLogService(repository.NewAuditLogRepository(db))

	require.NoError(t, svc.RecordAction(context.Background(), "user-1", "budi", "cancel", "kegiatan", "2", nil))

	var row model.AuditLogModel
	require.NoError(t, db.First(&row).Error)
	assert.Empty(t, row.RequestID)
	assert.Empty(t, row.IP)
	assert.Empty(t, row.UserAgent)
}

func TestLifecycleActionsCarryContextMetadata(t *testing.T) {
	db := setupServiceDB(t)
	auditSvc := NewAuditLogService(repository.NewAuditLogRepository(db))
	svc := NewKegiatanService(db, auditSvc, nil)

	ctx := WithRequestMetadata(context.Background(), "req-67890", "192.168.1.7", "curl/8.0")
	_, err := svc.Create(ctx, pengajuPrincipal(), &CreateKegiatanRequest{
		NamaKegiatan: "Monitoring Lapangan",
	})
	require.NoError(t, err)

	var row model.AuditLogModel
	require.NoError(t, db.Where("action = ?", "create").First(&row).Error)
	assert.Equal(t, "req-67890", row.RequestID)
	assert.Equal(t, "192.168.1.7", row.IP)
}
