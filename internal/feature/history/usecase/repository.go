package usecase

import (
	"context"

	"portfolio_backend/internal/feature/history/domain/entity"
)

// SnapshotRepository はポートフォリオ履歴の永続化層を抽象化します。
type SnapshotRepository interface {
	// Latest は created_at が最も新しい行を返します。行がない場合は ErrSnapshotNotFound です。
	Latest(ctx context.Context, userID string) (entity.Snapshot, error)

	// Insert は新しい行を追加し、採番されたIDを s に設定します。
	Insert(ctx context.Context, s *entity.Snapshot) error

	// Update は s.ID の行の評価額・投資額・損益を更新します。date と created_at は変更しません。
	Update(ctx context.Context, s entity.Snapshot) error

	// ListSince は date が since (YYYY-MM-DD) 以降の行を created_at の昇順で返します。
	ListSince(ctx context.Context, userID, since string) ([]entity.Snapshot, error)
}
