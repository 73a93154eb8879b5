// Package entity defines the domain models for the quote feature.
package entity

import "time"

// Quote is a point-in-time price/change/rate triple for a security.
// Error is set when the upstream lookup failed and the values are zeroed.
type Quote struct {
	Code   string
	Price  float64
	Change string // signed for US quotes, as scraped for KR quotes
	Rate   float64
	Error  string
}

// DailyClose is one daily closing price from a time-series provider.
type DailyClose struct {
	Date  time.Time
	Close float64
}

// ScrapedQuote is the raw result of parsing a quote page.
type ScrapedQuote struct {
	Price  int64
	Change string
	Rate   float64
}

// ExchangeRate is the latest USD to KRW rate.
type ExchangeRate struct {
	Rate  float64
	Error string
}

// SoftFail は上流の失敗を表すゼロ値のQuoteを返します。
func SoftFail(code string, err error) Quote {
	return Quote{Code: code, Price: 0, Change: "0", Rate: 0, Error: err.Error()}
}
