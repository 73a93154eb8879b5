// Package handler はquoteフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	"portfolio_backend/internal/api"
	"portfolio_backend/internal/feature/quote/domain/entity"
)

// QuoteUsecase は相場取得のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type QuoteUsecase interface {
	GetPrice(ctx context.Context, code string) entity.Quote
	GetExchangeRate(ctx context.Context) entity.ExchangeRate
}

// QuoteHandler は相場と為替レートのHTTPリクエストを処理します。
type QuoteHandler struct {
	uc QuoteUsecase
}

// NewQuoteHandler は指定されたusecaseでQuoteHandlerの新しいインスタンスを生成します。
func NewQuoteHandler(uc QuoteUsecase) *QuoteHandler {
	return &QuoteHandler{uc: uc}
}

// GetPrice は銘柄コードの現在値を返します。
//
// エンドポイント例:
// GET /price?code=005930
//
// 上流の取得に失敗した場合も200で、errorフィールド付きのゼロ値を返します。
func (h *QuoteHandler) GetPrice(c *gin.Context) {
	var params api.PriceParams
	if err := runtime.BindQueryParameter("form", true, true, "code", c.Request.URL.Query(), &params.Code); err != nil || params.Code == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "code is required"})
		return
	}

	q := h.uc.GetPrice(c.Request.Context(), params.Code)
	c.JSON(http.StatusOK, api.PriceQuote{
		Code:   q.Code,
		Price:  q.Price,
		Change: q.Change,
		Rate:   q.Rate,
		Error:  q.Error,
	})
}

// GetExchangeRate はUSD/KRWの為替レートを返します。
func (h *QuoteHandler) GetExchangeRate(c *gin.Context) {
	r := h.uc.GetExchangeRate(c.Request.Context())
	c.JSON(http.StatusOK, api.ExchangeRateResponse{Rate: r.Rate, Error: r.Error})
}
