// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio_backend/internal/api"
)

// DirectorySizer は読み込まれた銘柄数を返します。
type DirectorySizer interface {
	Len() int
}

// HealthHandler はサービスヘルスチェック用の /healthz エンドポイントを処理します。
type HealthHandler struct {
	dir DirectorySizer
}

// NewHealthHandler は新しい HealthHandler を作成します。dir は nil でも構いません。
func NewHealthHandler(dir DirectorySizer) *HealthHandler {
	return &HealthHandler{dir: dir}
}

// Health はHTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
// 銘柄一覧の読み込みに失敗していても200を返します。検索がKRにフォールバックするだけで、サービスは動作します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		n := 0
		if h.dir != nil {
			n = h.dir.Len()
		}
		c.JSON(http.StatusOK, api.HealthResponse{Status: "ok", Symbols: n})
	}
}
