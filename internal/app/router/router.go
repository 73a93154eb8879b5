// Package router はginエンジンを組み立て、各フィーチャーのハンドラーをルートに登録します。
package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	historyhandler "portfolio_backend/internal/feature/history/transport/handler"
	holdingshandler "portfolio_backend/internal/feature/holdings/transport/handler"
	quotehandler "portfolio_backend/internal/feature/quote/transport/handler"
	symbollisthandler "portfolio_backend/internal/feature/symbollist/transport/handler"
	platformhandler "portfolio_backend/internal/platform/http/handler"
)

// Handlers はルーターに登録するハンドラーの集合です。
type Handlers struct {
	Health   *platformhandler.HealthHandler
	Symbol   *symbollisthandler.SymbolHandler
	Quote    *quotehandler.QuoteHandler
	Holdings *holdingshandler.HoldingsHandler
	History  *historyhandler.HistoryHandler
}

// NewRouter はCORSとリクエストログを適用したginエンジンを返します。
// 認証はありません。すべてのオリジン・メソッド・ヘッダーを許可します。
func NewRouter(h Handlers, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"*"}
	r.Use(cors.New(corsCfg))

	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)

	// 銘柄検索・相場
	r.GET("/search", h.Symbol.Search)
	r.GET("/price", h.Quote.GetPrice)
	r.GET("/exchange-rate", h.Quote.GetExchangeRate)

	// 保有銘柄
	r.GET("/holdings/:user_id", h.Holdings.List)
	r.POST("/holdings/:user_id", h.Holdings.Save)

	// 履歴
	r.POST("/history/snapshot", h.History.SaveSnapshot)
	r.GET("/history/:user_id", h.History.GetHistory)

	return r
}
