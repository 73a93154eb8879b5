// Package adapters はholdingsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"portfolio_backend/internal/feature/holdings/domain/entity"
	"portfolio_backend/internal/feature/holdings/usecase"
)

// pgUndefinedColumn is the SQLSTATE for undefined_column.
const pgUndefinedColumn = "42703"

const insertSavepoint = "holdings_insert"

// HoldingModel is the row shape of the holdings table.
// Market and Quantity are nullable to accept rows written before those columns existed.
type HoldingModel struct {
	ID       uint            `gorm:"primaryKey"`
	UserID   string          `gorm:"size:128;not null;index"`
	Name     string          `gorm:"size:255"`
	Code     string          `gorm:"size:32;not null"`
	Market   *string         `gorm:"size:8"`
	BuyPrice decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	Quantity *int            `gorm:"default:1"`
}

func (HoldingModel) TableName() string {
	return "holdings"
}

// holdingGorm はHoldingRepositoryインターフェースのGORM実装です。
type holdingGorm struct {
	db     *gorm.DB
	logger *zap.Logger
	// hasMarket は holdings テーブルに market 列が存在するかどうかです。
	// 構築時に一度検出し、挿入が列不足で失敗した場合は false に落とします。
	hasMarket atomic.Bool
}

var _ usecase.HoldingRepository = (*holdingGorm)(nil)

// NewHoldingRepository は指定されたDB接続でholdingGormの新しいインスタンスを生成します。
// テーブルが存在する場合、market 列の有無をここで一度だけ確認します。
func NewHoldingRepository(db *gorm.DB, logger *zap.Logger) *holdingGorm {
	r := &holdingGorm{db: db, logger: logger}
	hasMarket := true
	m := db.Migrator()
	if m.HasTable(&HoldingModel{}) && !m.HasColumn(&HoldingModel{}, "market") {
		hasMarket = false
		logger.Warn("holdings table has no market column; saving without it")
	}
	r.hasMarket.Store(hasMarket)
	return r
}

// FindByUserID はユーザーの保有銘柄を挿入順に返します。
func (r *holdingGorm) FindByUserID(ctx context.Context, userID string) ([]entity.Holding, error) {
	var rows []HoldingModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select holdings: %w", err)
	}
	out := make([]entity.Holding, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

// ReplaceAll は1つのトランザクション内でユーザーの行を削除し、新しい行を挿入します。
// market 列を含む挿入が列不足で失敗した場合は、market を除いて一度だけ再試行します。
// それ以外の失敗は再試行せずにエラーを返します。
// 再試行も失敗した場合はロールバックされ、以前の行は残ります。
func (r *holdingGorm) ReplaceAll(ctx context.Context, userID string, holdings []entity.Holding) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&HoldingModel{}).Error; err != nil {
			return fmt.Errorf("delete holdings: %w", err)
		}
		if len(holdings) == 0 {
			return nil
		}

		if !r.hasMarket.Load() {
			return insertWithoutMarket(tx, userID, holdings)
		}

		if err := tx.SavePoint(insertSavepoint).Error; err != nil {
			return fmt.Errorf("savepoint: %w", err)
		}
		rows := toModels(userID, holdings)
		err := tx.Create(&rows).Error
		if err == nil {
			return nil
		}
		if !isUndefinedColumn(err) {
			return fmt.Errorf("insert holdings: %w", err)
		}
		r.hasMarket.Store(false)
		r.logger.Warn("insert holdings with market failed; retrying without market",
			zap.String("user_id", userID), zap.Error(err))

		if err := tx.RollbackTo(insertSavepoint).Error; err != nil {
			return fmt.Errorf("rollback to savepoint: %w", err)
		}
		return insertWithoutMarket(tx, userID, holdings)
	})
}

func insertWithoutMarket(tx *gorm.DB, userID string, holdings []entity.Holding) error {
	rows := toModels(userID, holdings)
	if err := tx.Omit("market").Create(&rows).Error; err != nil {
		return fmt.Errorf("insert holdings: %w", err)
	}
	return nil
}

// isUndefinedColumn は挿入の失敗が列不足によるものかを判定します。
func isUndefinedColumn(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUndefinedColumn
	}
	// SQLite
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "has no column named") || strings.Contains(msg, "no such column")
}

func toModels(userID string, holdings []entity.Holding) []HoldingModel {
	ms := make([]HoldingModel, 0, len(holdings))
	for _, h := range holdings {
		market := h.Market
		qty := h.Quantity
		ms = append(ms, HoldingModel{
			UserID:   userID,
			Name:     h.Name,
			Code:     h.Code,
			Market:   &market,
			BuyPrice: h.BuyPrice,
			Quantity: &qty,
		})
	}
	return ms
}

func toEntity(m HoldingModel) entity.Holding {
	h := entity.Holding{
		UserID:   m.UserID,
		Name:     m.Name,
		Code:     m.Code,
		BuyPrice: m.BuyPrice,
	}
	if m.Market != nil {
		h.Market = *m.Market
	}
	if m.Quantity != nil {
		h.Quantity = *m.Quantity
	}
	return h.WithDefaults()
}
