package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"portfolio_backend/internal/feature/history/domain/entity"
)

// DateLayout は date 列の比較に使う書式です。
const DateLayout = "2006-01-02"

// 期間ごとの遡る日数。ALL は上限なしではなく約10年です。
var rangeDays = map[string]int{
	"1W":  7,
	"1M":  30,
	"3M":  90,
	"1Y":  365,
	"ALL": 3650,
}

const defaultRangeDays = 3650

// RangeDays は期間指定を日数に変換します。未知の値は ALL と同じ扱いです。
func RangeDays(r string) int {
	if d, ok := rangeDays[r]; ok {
		return d
	}
	return defaultRangeDays
}

// HistoryUsecase は履歴の取得と市場別損益の付加を行います。
type HistoryUsecase struct {
	repo   SnapshotRepository
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

func NewHistoryUsecase(repo SnapshotRepository, loc *time.Location, logger *zap.Logger) *HistoryUsecase {
	if loc == nil {
		loc = time.UTC
	}
	return &HistoryUsecase{repo: repo, loc: loc, logger: logger, now: time.Now}
}

// Get は期間内の履歴を作成順に返します。読み込みに失敗した場合は空の一覧です。
func (u *HistoryUsecase) Get(ctx context.Context, userID, rng string) []entity.EnrichedSnapshot {
	since := CalendarDay(u.now(), u.loc).AddDate(0, 0, -RangeDays(rng)).Format(DateLayout)

	rows, err := u.repo.ListSince(ctx, userID, since)
	if err != nil {
		u.logger.Error("failed to load history", zap.String("user_id", userID), zap.String("since", since), zap.Error(err))
		return []entity.EnrichedSnapshot{}
	}

	out := make([]entity.EnrichedSnapshot, 0, len(rows))
	for _, r := range rows {
		out = append(out, entity.Enrich(r))
	}
	return out
}
