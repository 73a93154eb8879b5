package cache

import (
	"time"
)

// TimeUntilNext は now から次の hour 時（loc のローカル時刻）までの期間を返します。
// 上場銘柄一覧は毎朝更新されるため、キャッシュのTTLに使います。
func TimeUntilNext(now time.Time, hour int, loc *time.Location) time.Duration {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)

	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, loc)

	// 今日の指定時刻が既に過ぎている場合は翌日を使用
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}

	return next.Sub(now)
}

// UntilNext は呼び出し時点から次の hour 時までの期間を返す関数を作ります。
func UntilNext(hour int, loc *time.Location) func() time.Duration {
	return func() time.Duration {
		return TimeUntilNext(time.Now(), hour, loc)
	}
}
