// Package usecase はhistoryフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"portfolio_backend/internal/feature/history/domain/entity"
)

// FreshnessWindow 以内に作成された最新行は新規行を作らず上書きします。
const FreshnessWindow = time.Hour

const (
	StatusSuccess = "success"
	StatusError   = "error"

	ActionUpdated  = "updated"
	ActionInserted = "inserted"
)

// SnapshotInput はスナップショット保存の入力です。
type SnapshotInput struct {
	UserID        string
	TotalCurrent  float64
	TotalInvested float64
	KRCurrent     float64
	KRInvested    float64
	USCurrent     float64
	USInvested    float64
}

// Result はスナップショット保存の結果です。Status が StatusError の場合は Message に理由が入ります。
type Result struct {
	Status  string
	Action  string
	Message string
}

// SnapshotUsecase はスナップショットを最新行に統合するか新規行として追加します。
type SnapshotUsecase struct {
	repo   SnapshotRepository
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// NewSnapshotUsecase はSnapshotUsecaseの新しいインスタンスを生成します。
// loc は新規行の日付(カレンダー日)を決めるタイムゾーンです。nilの場合はUTCです。
func NewSnapshotUsecase(repo SnapshotRepository, loc *time.Location, logger *zap.Logger) *SnapshotUsecase {
	if loc == nil {
		loc = time.UTC
	}
	return &SnapshotUsecase{repo: repo, loc: loc, logger: logger, now: time.Now}
}

// Save はスナップショットを保存します。エラーは返さず、Resultに失敗を記録します。
func (u *SnapshotUsecase) Save(ctx context.Context, in SnapshotInput) Result {
	ret, rate := entity.Returns(in.TotalCurrent, in.TotalInvested)
	now := u.now()

	s := entity.Snapshot{
		UserID:          in.UserID,
		TotalCurrent:    in.TotalCurrent,
		TotalInvested:   in.TotalInvested,
		DailyReturn:     ret,
		DailyReturnRate: rate,
		KRCurrent:       &in.KRCurrent,
		KRInvested:      &in.KRInvested,
		USCurrent:       &in.USCurrent,
		USInvested:      &in.USInvested,
	}

	latest, err := u.repo.Latest(ctx, in.UserID)
	switch {
	case err == nil && now.Sub(latest.CreatedAt) < FreshnessWindow:
		s.ID = latest.ID
		s.Date = latest.Date
		s.CreatedAt = latest.CreatedAt
		if err := u.repo.Update(ctx, s); err != nil {
			return u.fail(in.UserID, ActionUpdated, err)
		}
		u.logger.Info("snapshot updated", zap.String("user_id", in.UserID), zap.Uint("id", s.ID))
		return Result{Status: StatusSuccess, Action: ActionUpdated}

	case err == nil || errors.Is(err, ErrSnapshotNotFound):
		s.Date = CalendarDay(now, u.loc)
		s.CreatedAt = now.UTC()
		if err := u.repo.Insert(ctx, &s); err != nil {
			return u.fail(in.UserID, ActionInserted, err)
		}
		u.logger.Info("snapshot inserted", zap.String("user_id", in.UserID), zap.Uint("id", s.ID))
		return Result{Status: StatusSuccess, Action: ActionInserted}

	default:
		return u.fail(in.UserID, "", err)
	}
}

func (u *SnapshotUsecase) fail(userID, action string, err error) Result {
	u.logger.Error("failed to save snapshot", zap.String("user_id", userID), zap.String("action", action), zap.Error(err))
	return Result{Status: StatusError, Action: action, Message: err.Error()}
}

// CalendarDay は t の loc における日付を UTC の0時として返します。
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
