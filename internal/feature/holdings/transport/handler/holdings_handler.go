// Package handler はholdingsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
	"github.com/shopspring/decimal"

	"portfolio_backend/internal/api"
	"portfolio_backend/internal/feature/holdings/domain/entity"
)

// HoldingsUsecase は保有銘柄のユースケースインターフェースを定義します。
type HoldingsUsecase interface {
	Load(ctx context.Context, userID string) []entity.Holding
	Replace(ctx context.Context, userID string, holdings []entity.Holding) (int, error)
}

// HoldingsHandler は保有銘柄のHTTPリクエストを処理します。
type HoldingsHandler struct {
	uc HoldingsUsecase
}

// NewHoldingsHandler は指定されたusecaseでHoldingsHandlerの新しいインスタンスを生成します。
func NewHoldingsHandler(uc HoldingsUsecase) *HoldingsHandler {
	return &HoldingsHandler{uc: uc}
}

func bindUserID(c *gin.Context) (string, bool) {
	var userID string
	if err := runtime.BindStyledParameterWithOptions("simple", "user_id", c.Param("user_id"), &userID,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true}); err != nil || userID == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "user_id is required"})
		return "", false
	}
	return userID, true
}

// List はユーザーの保有銘柄を返します。
//
// エンドポイント例:
// GET /holdings/alice
//
// 読み込みに失敗した場合も200で空配列を返します。
func (h *HoldingsHandler) List(c *gin.Context) {
	userID, ok := bindUserID(c)
	if !ok {
		return
	}

	hs := h.uc.Load(c.Request.Context(), userID)
	out := make([]api.HoldingItem, 0, len(hs))
	for _, x := range hs {
		qty := x.Quantity
		out = append(out, api.HoldingItem{
			Name:     x.Name,
			Code:     x.Code,
			Market:   x.Market,
			BuyPrice: x.BuyPrice.InexactFloat64(),
			Quantity: &qty,
		})
	}
	c.JSON(http.StatusOK, out)
}

// Save はユーザーの保有銘柄をリクエストの一覧で置き換えます。
//
// エンドポイント例:
// POST /holdings/alice
// {"holdings":[{"name":"삼성전자","code":"005930","market":"KR","buyPrice":71000,"quantity":3}]}
func (h *HoldingsHandler) Save(c *gin.Context) {
	userID, ok := bindUserID(c)
	if !ok {
		return
	}

	var req api.HoldingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
		return
	}

	hs := make([]entity.Holding, 0, len(req.Holdings))
	for _, item := range req.Holdings {
		qty := entity.DefaultQuantity
		if item.Quantity != nil {
			qty = *item.Quantity
		}
		hs = append(hs, entity.Holding{
			Name:     item.Name,
			Code:     item.Code,
			Market:   item.Market,
			BuyPrice: decimal.NewFromFloat(item.BuyPrice),
			Quantity: qty,
		})
	}

	n, err := h.uc.Replace(c.Request.Context(), userID, hs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, api.HoldingsSaveResponse{Status: "success", Count: n})
}
