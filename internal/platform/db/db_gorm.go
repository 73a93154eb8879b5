// Package db はPostgreSQLへのGORM接続とマイグレーションを提供します。
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	historyadapters "portfolio_backend/internal/feature/history/adapters"
	holdingsadapters "portfolio_backend/internal/feature/holdings/adapters"
)

// retryInterval は接続リトライの間隔です。
const retryInterval = 3 * time.Second

// Config はデータベース接続設定です。
// InstanceName が設定されている場合は Cloud SQL の Unix ソケットで接続します。
type Config struct {
	User           string
	Password       string
	Name           string
	Host           string
	Port           string
	SSLMode        string
	InstanceName   string
	ConnectTimeout time.Duration
	RunMigrations  bool
}

// BuildDSN はpgx向けのkey=value形式のDSNを組み立てます。
func BuildDSN(cfg Config) string {
	host := cfg.Host
	if cfg.InstanceName != "" {
		host = "/cloudsql/" + cfg.InstanceName
	}
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	parts := []string{
		"host=" + quote(host),
		"user=" + quote(cfg.User),
		"password=" + quote(cfg.Password),
		"dbname=" + quote(cfg.Name),
	}
	if cfg.Port != "" && cfg.InstanceName == "" {
		parts = append(parts, "port="+cfg.Port)
	}
	parts = append(parts, "sslmode="+sslmode, "TimeZone=UTC")
	return strings.Join(parts, " ")
}

// quote は空白や引用符を含む値をlibpqの規則でクォートします。
func quote(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// ConnectWithRetry は timeout に達するまで一定間隔で接続を試みます。
func ConnectWithRetry(dsn string, timeout time.Duration, opener func(string) (*gorm.DB, error)) (*gorm.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var db *gorm.DB
	op := func() error {
		var err error
		db, err = opener(dsn)
		return err
	}
	b := backoff.WithContext(backoff.NewConstantBackOff(retryInterval), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
	}
	return db, nil
}

// OpenDB は設定に従ってPostgreSQLに接続し、必要ならマイグレーションを実行します。
func OpenDB(cfg Config, logger *zap.Logger) (*gorm.DB, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	opener := func(dsn string) (*gorm.DB, error) {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			logger.Warn("db connect failed, retrying", zap.Error(err))
		}
		return db, err
	}

	db, err := ConnectWithRetry(BuildDSN(cfg), timeout, opener)
	if err != nil {
		return nil, err
	}
	logger.Info("db connected", zap.String("host", cfg.Host), zap.String("name", cfg.Name))

	if cfg.RunMigrations {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		logger.Info("db migrated")
	}
	return db, nil
}

// Migrate は holdings と portfolio_history テーブルを作成・更新します。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&holdingsadapters.HoldingModel{},
		&historyadapters.SnapshotModel{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
