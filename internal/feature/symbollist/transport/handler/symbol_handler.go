package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	"portfolio_backend/internal/api"
	"portfolio_backend/internal/feature/symbollist/domain/entity"
)

// SymbolUsecase は銘柄検索のユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type SymbolUsecase interface {
	Search(ctx context.Context, query string) ([]entity.Symbol, error)
}

// SymbolHandler は銘柄検索に関するHTTPリクエストを処理します。
type SymbolHandler struct {
	uc SymbolUsecase
}

// NewSymbolHandler は新しい SymbolHandler を作成します。
func NewSymbolHandler(uc SymbolUsecase) *SymbolHandler {
	return &SymbolHandler{uc: uc}
}

// Search は銘柄名またはコードで銘柄を検索するAPIです。
//
// エンドポイント例:
// GET /search?q=samsung
//
// 検索に失敗した場合も空の一覧を返します。
func (h *SymbolHandler) Search(c *gin.Context) {
	var params api.SearchParams
	if err := runtime.BindQueryParameter("form", true, false, "q", c.Request.URL.Query(), &params.Q); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid query parameter q"})
		return
	}

	items := []api.StockItem{}
	if params.Q == nil || *params.Q == "" {
		c.JSON(http.StatusOK, api.SearchResponse{Items: items})
		return
	}

	symbols, err := h.uc.Search(c.Request.Context(), *params.Q)
	if err != nil {
		c.JSON(http.StatusOK, api.SearchResponse{Items: items})
		return
	}
	for _, s := range symbols {
		items = append(items, api.StockItem{Name: s.Name, Code: s.Code, Market: s.Market})
	}
	c.JSON(http.StatusOK, api.SearchResponse{Items: items})
}
