// Package api はHTTPハンドラーが共有するリクエスト/レスポンスの型を定義します。
package api

// ErrorResponse はエラー時のレスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse は /healthz のレスポンスです。
type HealthResponse struct {
	Status  string `json:"status"`
	Symbols int    `json:"symbols"`
}

// StockItem は銘柄検索結果の1件です。
type StockItem struct {
	Name   string `json:"name"`
	Code   string `json:"code"`
	Market string `json:"market"`
}

// SearchResponse は GET /search のレスポンスです。
type SearchResponse struct {
	Items []StockItem `json:"items"`
}

// SearchParams は GET /search のクエリパラメータです。
type SearchParams struct {
	Q *string `form:"q,omitempty" json:"q,omitempty"`
}

// PriceParams は GET /price のクエリパラメータです。
type PriceParams struct {
	Code string `form:"code" json:"code"`
}

// PriceQuote は GET /price のレスポンスです。
type PriceQuote struct {
	Code   string  `json:"code"`
	Price  float64 `json:"price"`
	Change string  `json:"change"`
	Rate   float64 `json:"rate"`
	Error  string  `json:"error,omitempty"`
}

// ExchangeRateResponse は GET /exchange-rate のレスポンスです。
type ExchangeRateResponse struct {
	Rate  float64 `json:"rate"`
	Error string  `json:"error,omitempty"`
}

// HoldingItem はフロントエンドとやり取りする保有銘柄の形です。
type HoldingItem struct {
	Name     string  `json:"name"`
	Code     string  `json:"code"`
	Market   string  `json:"market,omitempty"`
	BuyPrice float64 `json:"buyPrice"`
	Quantity *int    `json:"quantity,omitempty" binding:"omitempty,gt=0"`
}

// HoldingsRequest は POST /holdings/{user_id} のリクエストボディです。
// holdings キーが無いボディは全削除と区別できないため拒否します。空配列は許可します。
type HoldingsRequest struct {
	Holdings []HoldingItem `json:"holdings" binding:"required,dive"`
}

// HoldingsSaveResponse は POST /holdings/{user_id} のレスポンスです。
type HoldingsSaveResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// SnapshotRequest は POST /history/snapshot のリクエストボディです。
type SnapshotRequest struct {
	UserID        string  `json:"user_id" binding:"required"`
	TotalCurrent  float64 `json:"total_current"`
	TotalInvested float64 `json:"total_invested"`
	KRCurrent     float64 `json:"kr_current"`
	KRInvested    float64 `json:"kr_invested"`
	USCurrent     float64 `json:"us_current"`
	USInvested    float64 `json:"us_invested"`
}

// SnapshotResponse は POST /history/snapshot のレスポンスです。
type SnapshotResponse struct {
	Status  string `json:"status"`
	Action  string `json:"action,omitempty"`
	Message string `json:"message,omitempty"`
}

// HistoryRange は履歴取得の期間です。
type HistoryRange string

// HistoryRange の値。
const (
	HistoryRangeN1W HistoryRange = "1W"
	HistoryRangeN1M HistoryRange = "1M"
	HistoryRangeN3M HistoryRange = "3M"
	HistoryRangeN1Y HistoryRange = "1Y"
	HistoryRangeALL HistoryRange = "ALL"
)

// GetHistoryParams は GET /history/{user_id} のクエリパラメータです。
type GetHistoryParams struct {
	Range *HistoryRange `form:"range,omitempty" json:"range,omitempty"`
}

// HistoryRow は GET /history/{user_id} のレスポンスの1行です。
type HistoryRow struct {
	ID                 uint     `json:"id"`
	UserID             string   `json:"user_id"`
	Date               string   `json:"date"`
	CreatedAt          string   `json:"created_at"`
	TotalCurrentValue  float64  `json:"total_current_value"`
	TotalInvestedValue float64  `json:"total_invested_value"`
	DailyReturn        float64  `json:"daily_return"`
	DailyReturnRate    float64  `json:"daily_return_rate"`
	KRCurrentValue     *float64 `json:"kr_current_value"`
	KRInvestedValue    *float64 `json:"kr_invested_value"`
	USCurrentValue     *float64 `json:"us_current_value"`
	USInvestedValue    *float64 `json:"us_invested_value"`
	KRReturn           *float64 `json:"kr_return,omitempty"`
	KRRate             *float64 `json:"kr_rate,omitempty"`
	USReturn           *float64 `json:"us_return,omitempty"`
	USRate             *float64 `json:"us_rate,omitempty"`
}
