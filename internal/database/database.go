package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rolinkstone/new-talawang-sub001/internal/config"
	"github.com/rolinkstone/new-talawang-sub001/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PoolConfig connection pool settings
type PoolConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int // seconds
	ConnMaxIdleTime int // seconds
}

// BuildDSN builds a PostgreSQL DSN
func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// GetPoolConfig default pool settings
func GetPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: 3600,
		ConnMaxIdleTime: 600,
	}
}

// GetProductionPoolConfig production pool settings
func GetProductionPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxIdleConns:    20,
		MaxOpenConns:    200,
		ConnMaxLifetime: 3600,
		ConnMaxIdleTime: 300, // shorter idle window under production load
	}
}

// Connect opens a database connection with the default pool settings
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	return connect(cfg, GetPoolConfig())
}

// ConnectProduction opens a database connection with production pool settings
func ConnectProduction(cfg config.DatabaseConfig) (*gorm.DB, error) {
	return connect(cfg, GetProductionPoolConfig())
}

func connect(cfg config.DatabaseConfig, fallback *PoolConfig) (*gorm.DB, error) {
	dsn := BuildDSN(cfg)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	pool := &PoolConfig{
		MaxIdleConns:    cfg.MaxIdleConns,
		MaxOpenConns:    cfg.MaxOpenConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}
	if pool.MaxIdleConns == 0 {
		pool.MaxIdleConns = fallback.MaxIdleConns
	}
	if pool.MaxOpenConns == 0 {
		pool.MaxOpenConns = fallback.MaxOpenConns
	}
	if pool.ConnMaxLifetime == 0 {
		pool.ConnMaxLifetime = fallback.ConnMaxLifetime
	}
	if pool.ConnMaxIdleTime == 0 {
		pool.ConnMaxIdleTime = fallback.ConnMaxIdleTime
	}

	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTime) * time.Second)

	return db, nil
}

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.KegiatanModel{},
		&model.NominatifPegawaiModel{},
		&model.RincianBiayaModel{},
		&model.AuditLogModel{},
		&model.UserPinModel{},
	); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	if err := CreateIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// CreateIndexes creates database indexes
func CreateIndexes(db *gorm.DB) error {
	// kegiatan: scoped listing and search paths
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_kegiatan_user_id ON kegiatan(user_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_kegiatan_user_id: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_kegiatan_ppk_id ON kegiatan(ppk_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_kegiatan_ppk_id: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_kegiatan_status ON kegiatan(status)").Error; err != nil {
		return fmt.Errorf("failed to create idx_kegiatan_status: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_kegiatan_updated_at ON kegiatan(updated_at)").Error; err != nil {
		return fmt.Errorf("failed to create idx_kegiatan_updated_at: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_kegiatan_nama_ppk ON kegiatan(nama_ppk)").Error; err != nil {
		return fmt.Errorf("failed to create idx_kegiatan_nama_ppk: %w", err)
	}

	// nominatif
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_nominatif_kegiatan_id ON nominatif_pegawai(kegiatan_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_nominatif_kegiatan_id: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_rincian_pegawai_id ON rincian_biaya(pegawai_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_rincian_pegawai_id: %w", err)
	}

	// audit_logs
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_resource ON audit_logs(resource_type, resource_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_audit_resource: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_user_id ON audit_logs(user_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_audit_user_id: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_created_at ON audit_logs(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create idx_audit_created_at: %w", err)
	}

	return nil
}

// ConnectWithRetry retries the connection with exponential backoff
func ConnectWithRetry(cfg config.DatabaseConfig, maxRetries int, retryInterval time.Duration) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < maxRetries; i++ {
		db, err = Connect(cfg)
		if err == nil {
			return db, nil
		}

		if i < maxRetries-1 {
			time.Sleep(retryInterval)
			retryInterval *= 2
		}
	}

	return nil, fmt.Errorf("failed to connect database after %d retries: %w", maxRetries, err)
}

// CheckHealth reports whether the database connection is healthy
func CheckHealth(db *gorm.DB) bool {
	if db == nil {
		return false
	}

	sqlDB, err := db.DB()
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx) == nil
}

// Reconnect closes the old connection and opens a new one
func Reconnect(cfg config.DatabaseConfig, oldDB *gorm.DB) (*gorm.DB, error) {
	if oldDB != nil {
		if sqlDB, err := oldDB.DB(); err == nil {
			sqlDB.Close()
		}
	}

	return Connect(cfg)
}
