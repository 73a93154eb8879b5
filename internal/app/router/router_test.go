package router_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"portfolio_backend/internal/api"
	"portfolio_backend/internal/app/router"
	historyadapters "portfolio_backend/internal/feature/history/adapters"
	historyhandler "portfolio_backend/internal/feature/history/transport/handler"
	historyusecase "portfolio_backend/internal/feature/history/usecase"
	holdingsadapters "portfolio_backend/internal/feature/holdings/adapters"
	holdingshandler "portfolio_backend/internal/feature/holdings/transport/handler"
	holdingsusecase "portfolio_backend/internal/feature/holdings/usecase"
	quoteentity "portfolio_backend/internal/feature/quote/domain/entity"
	quotehandler "portfolio_backend/internal/feature/quote/transport/handler"
	quoteusecase "portfolio_backend/internal/feature/quote/usecase"
	symbolentity "portfolio_backend/internal/feature/symbollist/domain/entity"
	symbollisthandler "portfolio_backend/internal/feature/symbollist/transport/handler"
	symbollistusecase "portfolio_backend/internal/feature/symbollist/usecase"
	"portfolio_backend/internal/platform/db"
	platformhandler "portfolio_backend/internal/platform/http/handler"
)

type stubSeries struct{}

func (stubSeries) DailyCloses(ctx context.Context, symbol string, start time.Time) ([]quoteentity.DailyClose, error) {
	d := time.Date(2026, 10, 13, 0, 0, 0, 0, time.UTC)
	if symbol == quoteusecase.ExchangeRateSymbol {
		return []quoteentity.DailyClose{{Date: d, Close: 1380}}, nil
	}
	return []quoteentity.DailyClose{{Date: d.AddDate(0, 0, -1), Close: 200}, {Date: d, Close: 210}}, nil
}

type stubScraper struct{}

func (stubScraper) Scrape(ctx context.Context, code string) (quoteentity.ScrapedQuote, error) {
	return quoteentity.ScrapedQuote{Price: 71000, Change: "500", Rate: 0.71}, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))

	logger := zap.NewNop()
	dir := symbolentity.NewDirectory([]symbolentity.Symbol{
		{Code: "005930", Name: "삼성전자", Market: symbolentity.MarketKR},
		{Code: "AAPL", Name: "Apple Inc", Market: symbolentity.MarketUS},
	})

	quoteUC := quoteusecase.NewQuoteUsecase(stubSeries{}, stubScraper{}, dir, 0, logger)
	holdingsUC := holdingsusecase.NewHoldingsUsecase(holdingsadapters.NewHoldingRepository(gdb, logger), logger)
	snapshots := historyadapters.NewSnapshotRepository(gdb)

	return router.NewRouter(router.Handlers{
		Health:   platformhandler.NewHealthHandler(dir),
		Symbol:   symbollisthandler.NewSymbolHandler(symbollistusecase.NewSymbolUsecase(dir)),
		Quote:    quotehandler.NewQuoteHandler(quoteUC),
		Holdings: holdingshandler.NewHoldingsHandler(holdingsUC),
		History: historyhandler.NewHistoryHandler(
			historyusecase.NewSnapshotUsecase(snapshots, time.UTC, logger),
			historyusecase.NewHistoryUsecase(snapshots, time.UTC, logger),
		),
	}, logger)
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// TestRouter_Search はDirectoryからの検索結果が返ることを検証します。
func TestRouter_Search(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/search?q=aapl", "")
	require.Equal(t, http.StatusOK, w.Code)

	var res api.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, []api.StockItem{{Name: "Apple Inc", Code: "AAPL", Market: "US"}}, res.Items)
}

// TestRouter_Price はUS/KRの銘柄がそれぞれのソースに振り分けられることを検証します。
func TestRouter_Price(t *testing.T) {
	r := newTestRouter(t)

	var us api.PriceQuote
	w := do(r, http.MethodGet, "/price?code=AAPL", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &us))
	assert.InDelta(t, 210.0, us.Price, 1e-9)
	assert.Equal(t, "10.00", us.Change)
	assert.InDelta(t, 5.0, us.Rate, 1e-9)

	var kr api.PriceQuote
	w = do(r, http.MethodGet, "/price?code=005930", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &kr))
	assert.InDelta(t, 71000.0, kr.Price, 1e-9)
	assert.Equal(t, "500", kr.Change)

	var fx api.ExchangeRateResponse
	w = do(r, http.MethodGet, "/exchange-rate", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fx))
	assert.InDelta(t, 1380.0, fx.Rate, 1e-9)
	assert.Empty(t, fx.Error)
}

// TestRouter_HoldingsRoundTrip は保存した保有銘柄がそのまま読み込めることを検証します。
func TestRouter_HoldingsRoundTrip(t *testing.T) {
	r := newTestRouter(t)

	body := `{"holdings":[
		{"name":"삼성전자","code":"005930","market":"KR","buyPrice":71000,"quantity":3},
		{"name":"Apple Inc","code":"AAPL","market":"US","buyPrice":182.5}
	]}`
	w := do(r, http.MethodPost, "/holdings/alice", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","count":2}`, w.Body.String())

	w = do(r, http.MethodGet, "/holdings/alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[
		{"name":"삼성전자","code":"005930","market":"KR","buyPrice":71000,"quantity":3},
		{"name":"Apple Inc","code":"AAPL","market":"US","buyPrice":182.5,"quantity":1}
	]`, w.Body.String())

	w = do(r, http.MethodGet, "/holdings/bob", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

// TestRouter_SnapshotAndHistory は1時間以内の2回目のスナップショットが既存行の更新になることを検証します。
func TestRouter_SnapshotAndHistory(t *testing.T) {
	r := newTestRouter(t)

	first := `{"user_id":"alice","total_current":1200,"total_invested":1000,"kr_current":700,"kr_invested":600,"us_current":500,"us_invested":400}`
	w := do(r, http.MethodPost, "/history/snapshot", first)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","action":"inserted"}`, w.Body.String())

	second := `{"user_id":"alice","total_current":1100,"total_invested":1000,"kr_current":600,"kr_invested":600,"us_current":500,"us_invested":400}`
	w = do(r, http.MethodPost, "/history/snapshot", second)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","action":"updated"}`, w.Body.String())

	w = do(r, http.MethodGet, "/history/alice?range=1W", "")
	require.Equal(t, http.StatusOK, w.Code)

	var rows []api.HistoryRow
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.InDelta(t, 100.0, rows[0].DailyReturn, 1e-9)
	assert.InDelta(t, 10.0, rows[0].DailyReturnRate, 1e-9)
	require.NotNil(t, rows[0].KRReturn)
	assert.InDelta(t, 0.0, *rows[0].KRReturn, 1e-9)
	require.NotNil(t, rows[0].USRate)
	assert.InDelta(t, 25.0, *rows[0].USRate, 1e-9)
}

// TestRouter_CORS はすべてのオリジンが許可されることを検証します。
func TestRouter_CORS(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/holdings/alice", nil)
	req.Header.Set("Origin", "https://frontend.vercel.app")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

// TestRouter_HoldingsMissingKeyKeepsRows はholdingsキーの無いPOSTで既存の行が消えないことを検証します。
func TestRouter_HoldingsMissingKeyKeepsRows(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/holdings/alice", `{"holdings":[{"name":"Apple Inc","code":"AAPL","market":"US","buyPrice":182.5,"quantity":2}]}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/holdings/alice", `{"holdngs":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/holdings/alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"name":"Apple Inc","code":"AAPL","market":"US","buyPrice":182.5,"quantity":2}]`, w.Body.String())
}

// TestRouter_Healthz はDirectoryの銘柄数がヘルスチェックに含まれることを検証します。
func TestRouter_Healthz(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","symbols":2}`, w.Body.String())
}
