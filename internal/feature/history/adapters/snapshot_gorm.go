// Package adapters はhistoryフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"portfolio_backend/internal/feature/history/domain/entity"
	"portfolio_backend/internal/feature/history/usecase"
)

// SnapshotModel is the row shape of the portfolio_history table.
// (user_id, date) is indexed but not unique; several rows per day are legal.
type SnapshotModel struct {
	ID                 uint      `gorm:"primaryKey"`
	UserID             string    `gorm:"size:128;not null;index:history_user_date,priority:1"`
	Date               time.Time `gorm:"type:date;not null;index:history_user_date,priority:2"`
	CreatedAt          time.Time `gorm:"not null;index"`
	TotalCurrentValue  float64   `gorm:"not null;default:0"`
	TotalInvestedValue float64   `gorm:"not null;default:0"`
	DailyReturn        float64   `gorm:"not null;default:0"`
	DailyReturnRate    float64   `gorm:"not null;default:0"`
	KRCurrentValue     *float64  `gorm:"column:kr_current_value"`
	KRInvestedValue    *float64  `gorm:"column:kr_invested_value"`
	USCurrentValue     *float64  `gorm:"column:us_current_value"`
	USInvestedValue    *float64  `gorm:"column:us_invested_value"`
}

func (SnapshotModel) TableName() string {
	return "portfolio_history"
}

type snapshotGorm struct {
	db *gorm.DB
}

var _ usecase.SnapshotRepository = (*snapshotGorm)(nil)

func NewSnapshotRepository(db *gorm.DB) *snapshotGorm {
	return &snapshotGorm{db: db}
}

func (r *snapshotGorm) Latest(ctx context.Context, userID string) (entity.Snapshot, error) {
	var m SnapshotModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.Snapshot{}, usecase.ErrSnapshotNotFound
	}
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("select latest snapshot: %w", err)
	}
	return toEntity(m), nil
}

func (r *snapshotGorm) Insert(ctx context.Context, s *entity.Snapshot) error {
	m := toModel(*s)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	s.ID = m.ID
	return nil
}

// Update は数値列のみ更新します。Select で列を明示するため、ゼロ値やnilも書き込まれます。
func (r *snapshotGorm) Update(ctx context.Context, s entity.Snapshot) error {
	m := toModel(s)
	res := r.db.WithContext(ctx).
		Model(&SnapshotModel{ID: s.ID}).
		Select(
			"total_current_value", "total_invested_value", "daily_return", "daily_return_rate",
			"kr_current_value", "kr_invested_value", "us_current_value", "us_invested_value",
		).
		Updates(&m)
	if res.Error != nil {
		return fmt.Errorf("update snapshot %d: %w", s.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update snapshot %d: %w", s.ID, usecase.ErrSnapshotNotFound)
	}
	return nil
}

func (r *snapshotGorm) ListSince(ctx context.Context, userID, since string) ([]entity.Snapshot, error) {
	var rows []SnapshotModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, since).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}
	out := make([]entity.Snapshot, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

func toModel(s entity.Snapshot) SnapshotModel {
	return SnapshotModel{
		ID:                 s.ID,
		UserID:             s.UserID,
		Date:               s.Date,
		CreatedAt:          s.CreatedAt,
		TotalCurrentValue:  s.TotalCurrent,
		TotalInvestedValue: s.TotalInvested,
		DailyReturn:        s.DailyReturn,
		DailyReturnRate:    s.DailyReturnRate,
		KRCurrentValue:     s.KRCurrent,
		KRInvestedValue:    s.KRInvested,
		USCurrentValue:     s.USCurrent,
		USInvestedValue:    s.USInvested,
	}
}

func toEntity(m SnapshotModel) entity.Snapshot {
	return entity.Snapshot{
		ID:              m.ID,
		UserID:          m.UserID,
		Date:            m.Date.UTC(),
		CreatedAt:       m.CreatedAt.UTC(),
		TotalCurrent:    m.TotalCurrentValue,
		TotalInvested:   m.TotalInvestedValue,
		DailyReturn:     m.DailyReturn,
		DailyReturnRate: m.DailyReturnRate,
		KRCurrent:       m.KRCurrentValue,
		KRInvested:      m.KRInvestedValue,
		USCurrent:       m.USCurrentValue,
		USInvested:      m.USInvestedValue,
	}
}
