// Package handler はhistoryフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	"portfolio_backend/internal/api"
	"portfolio_backend/internal/feature/history/domain/entity"
	"portfolio_backend/internal/feature/history/usecase"
)

// SnapshotUsecase はスナップショット保存のユースケースインターフェースです。
type SnapshotUsecase interface {
	Save(ctx context.Context, in usecase.SnapshotInput) usecase.Result
}

// HistoryUsecase は履歴取得のユースケースインターフェースです。
type HistoryUsecase interface {
	Get(ctx context.Context, userID, rng string) []entity.EnrichedSnapshot
}

// HistoryHandler はポートフォリオ履歴のHTTPリクエストを処理します。
type HistoryHandler struct {
	snapshots SnapshotUsecase
	history   HistoryUsecase
}

func NewHistoryHandler(snapshots SnapshotUsecase, history HistoryUsecase) *HistoryHandler {
	return &HistoryHandler{snapshots: snapshots, history: history}
}

// SaveSnapshot は現在の評価額を履歴に記録します。
//
// エンドポイント例:
// POST /history/snapshot
// {"user_id":"alice","total_current":1200,"total_invested":1000,"kr_current":700,"kr_invested":600,"us_current":500,"us_invested":400}
//
// 保存に失敗した場合も200で {"status":"error"} を返します。
func (h *HistoryHandler) SaveSnapshot(c *gin.Context) {
	var req api.SnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
		return
	}

	res := h.snapshots.Save(c.Request.Context(), usecase.SnapshotInput{
		UserID:        req.UserID,
		TotalCurrent:  req.TotalCurrent,
		TotalInvested: req.TotalInvested,
		KRCurrent:     req.KRCurrent,
		KRInvested:    req.KRInvested,
		USCurrent:     req.USCurrent,
		USInvested:    req.USInvested,
	})
	c.JSON(http.StatusOK, api.SnapshotResponse{Status: res.Status, Action: res.Action, Message: res.Message})
}

// GetHistory は期間内の履歴を返します。
//
// エンドポイント例:
// GET /history/alice?range=1M
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	var userID string
	if err := runtime.BindStyledParameterWithOptions("simple", "user_id", c.Param("user_id"), &userID,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true}); err != nil || userID == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "user_id is required"})
		return
	}

	var params api.GetHistoryParams
	if err := runtime.BindQueryParameter("form", true, false, "range", c.Request.URL.Query(), &params.Range); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid range"})
		return
	}
	rng := api.HistoryRangeALL
	if params.Range != nil && *params.Range != "" {
		rng = *params.Range
	}

	rows := h.history.Get(c.Request.Context(), userID, string(rng))
	out := make([]api.HistoryRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, toRow(r))
	}
	c.JSON(http.StatusOK, out)
}

func toRow(r entity.EnrichedSnapshot) api.HistoryRow {
	return api.HistoryRow{
		ID:                 r.ID,
		UserID:             r.UserID,
		Date:               r.Date.Format(usecase.DateLayout),
		CreatedAt:          r.CreatedAt.UTC().Format(time.RFC3339),
		TotalCurrentValue:  r.TotalCurrent,
		TotalInvestedValue: r.TotalInvested,
		DailyReturn:        r.DailyReturn,
		DailyReturnRate:    r.DailyReturnRate,
		KRCurrentValue:     r.KRCurrent,
		KRInvestedValue:    r.KRInvested,
		USCurrentValue:     r.USCurrent,
		USInvestedValue:    r.USInvested,
		KRReturn:           r.KRReturn,
		KRRate:             r.KRRate,
		USReturn:           r.USReturn,
		USRate:             r.USRate,
	}
}
