// Package entity defines the domain models for the portfolio history feature.
package entity

import "time"

// Snapshot is one persisted point of a user's portfolio value.
// KR/US values are nil for rows recorded before per-market tracking existed.
type Snapshot struct {
	ID              uint
	UserID          string
	Date            time.Time
	CreatedAt       time.Time
	TotalCurrent    float64
	TotalInvested   float64
	DailyReturn     float64
	DailyReturnRate float64
	KRCurrent       *float64
	KRInvested      *float64
	USCurrent       *float64
	USInvested      *float64
}

// EnrichedSnapshot は市場別の損益を付加したSnapshotです。
type EnrichedSnapshot struct {
	Snapshot
	KRReturn *float64
	KRRate   *float64
	USReturn *float64
	USRate   *float64
}

// Returns は評価額と投資額から損益と損益率(%)を計算します。
// 投資額が0以下の場合、損益率は0です。
func Returns(current, invested float64) (ret, rate float64) {
	ret = current - invested
	if invested > 0 {
		rate = ret / invested * 100
	}
	return ret, rate
}

// Enrich はKR/USの評価額と投資額が揃っている市場について損益を付加します。
func Enrich(s Snapshot) EnrichedSnapshot {
	e := EnrichedSnapshot{Snapshot: s}
	e.KRReturn, e.KRRate = marketReturns(s.KRCurrent, s.KRInvested)
	e.USReturn, e.USRate = marketReturns(s.USCurrent, s.USInvested)
	return e
}

func marketReturns(current, invested *float64) (*float64, *float64) {
	if current == nil || invested == nil {
		return nil, nil
	}
	ret, rate := Returns(*current, *invested)
	return &ret, &rate
}
