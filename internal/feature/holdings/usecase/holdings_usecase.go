// Package usecase はholdingsフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"portfolio_backend/internal/feature/holdings/domain/entity"
)

// ErrInvalidUserID is returned when a user id is empty.
var ErrInvalidUserID = errors.New("user id is required")

// HoldingRepository は保有銘柄の永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type HoldingRepository interface {
	// FindByUserID はユーザーの保有銘柄をすべて返します。
	FindByUserID(ctx context.Context, userID string) ([]entity.Holding, error)

	// ReplaceAll はユーザーの保有銘柄を holdings で置き換えます。
	// 空のスライスの場合は削除のみ行います。
	ReplaceAll(ctx context.Context, userID string, holdings []entity.Holding) error
}

// HoldingsUsecase は保有銘柄の読み込みと保存を行います。
type HoldingsUsecase struct {
	repo   HoldingRepository
	logger *zap.Logger
}

// NewHoldingsUsecase はHoldingsUsecaseの新しいインスタンスを生成します。
func NewHoldingsUsecase(repo HoldingRepository, logger *zap.Logger) *HoldingsUsecase {
	return &HoldingsUsecase{repo: repo, logger: logger}
}

// Load はユーザーの保有銘柄を返します。
// ストアの読み込みに失敗した場合はログに出力し、空の一覧を返します。
func (u *HoldingsUsecase) Load(ctx context.Context, userID string) []entity.Holding {
	if userID == "" {
		return []entity.Holding{}
	}
	hs, err := u.repo.FindByUserID(ctx, userID)
	if err != nil {
		u.logger.Error("failed to load holdings", zap.String("user_id", userID), zap.Error(err))
		return []entity.Holding{}
	}
	out := make([]entity.Holding, 0, len(hs))
	for _, h := range hs {
		out = append(out, h.WithDefaults())
	}
	return out
}

// Replace はユーザーの保有銘柄を一括で置き換え、保存した件数を返します。
// 保存に失敗した場合はエラーを返します。
func (u *HoldingsUsecase) Replace(ctx context.Context, userID string, holdings []entity.Holding) (int, error) {
	if userID == "" {
		return 0, ErrInvalidUserID
	}
	rows := make([]entity.Holding, 0, len(holdings))
	for _, h := range holdings {
		h.UserID = userID
		rows = append(rows, h.WithDefaults())
	}
	if err := u.repo.ReplaceAll(ctx, userID, rows); err != nil {
		u.logger.Error("failed to save holdings", zap.String("user_id", userID), zap.Int("count", len(rows)), zap.Error(err))
		return 0, err
	}
	u.logger.Info("holdings saved", zap.String("user_id", userID), zap.Int("count", len(rows)))
	return len(rows), nil
}
