// Package entity defines the domain models for the holdings feature.
package entity

import "github.com/shopspring/decimal"

const (
	// DefaultMarket is used when a holding has no market recorded.
	DefaultMarket = "KR"
	// DefaultQuantity is used when a holding has no quantity recorded.
	DefaultQuantity = 1
)

// Holding is one position in a user's portfolio.
// A user's holdings are replaced wholesale on every save; there is no partial update.
type Holding struct {
	UserID   string
	Name     string
	Code     string
	Market   string
	BuyPrice decimal.Decimal
	Quantity int
}

// WithDefaults は未設定の市場と数量をデフォルト値で補ったコピーを返します。
func (h Holding) WithDefaults() Holding {
	if h.Market == "" {
		h.Market = DefaultMarket
	}
	if h.Quantity <= 0 {
		h.Quantity = DefaultQuantity
	}
	return h
}
