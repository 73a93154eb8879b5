package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	quoteentity "portfolio_backend/internal/feature/quote/domain/entity"
	quoteusecase "portfolio_backend/internal/feature/quote/usecase"
	symbolentity "portfolio_backend/internal/feature/symbollist/domain/entity"
	symbolusecase "portfolio_backend/internal/feature/symbollist/usecase"
	"portfolio_backend/internal/platform/externalapi/twelvedata/dto"
)

// noDataCode is the error code Twelve Data returns when a symbol has no rows in the window.
const noDataCode = 400

// Client はTwelve Data外部APIから終値系列と上場銘柄一覧を取得します。
type Client struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// ClientがSeriesSourceとListingSourceを実装していることをコンパイル時に検証します。
var (
	_ quoteusecase.SeriesSource   = (*Client)(nil)
	_ symbolusecase.ListingSource = (*Client)(nil)
)

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
func NewClient(cfg Config, client *http.Client, logger *zap.Logger) *Client {
	return &Client{cfg: cfg.withDefaults(), client: client, logger: logger}
}

// DailyCloses は start 以降の日足終値を日付の昇順で返します。
// 期間内にデータがない場合は空のスライスを返します。
func (t *Client) DailyCloses(ctx context.Context, symbol string, start time.Time) ([]quoteentity.DailyClose, error) {
	q := url.Values{}
	// クエリパラメータを追加
	q.Set("symbol", symbol)
	q.Set("interval", "1day")
	q.Set("start_date", start.Format("2006-01-02"))
	q.Set("order", "ASC")

	var body dto.TimeSeriesResponse
	if err := t.get(ctx, "/time_series", q, &body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		if body.Code == noDataCode && strings.Contains(strings.ToLower(body.Message), "no data") {
			return []quoteentity.DailyClose{}, nil
		}
		return nil, fmt.Errorf("twelvedata: %s", body.Message)
	}

	closes := make([]quoteentity.DailyClose, 0, len(body.Values))
	for _, v := range body.Values {
		// タイムスタンプをパース
		tm, err := time.Parse("2006-01-02", v.Datetime)
		if err != nil {
			tm, err = time.Parse("2006-01-02 15:04:05", v.Datetime)
			if err != nil {
				return nil, fmt.Errorf("parse time %q: %w", v.Datetime, err)
			}
		}
		// 終値をパース
		c, err := strconv.ParseFloat(v.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("parse close %q: %w", v.Close, err)
		}
		closes = append(closes, quoteentity.DailyClose{Date: tm, Close: c})
	}
	return closes, nil
}

// ListStocks は取引所に上場している銘柄一覧を返します。Marketは呼び出し側で設定します。
func (t *Client) ListStocks(ctx context.Context, exchange string) ([]symbolentity.Symbol, error) {
	q := url.Values{}
	q.Set("exchange", exchange)

	var body dto.StocksResponse
	if err := t.get(ctx, "/stocks", q, &body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		return nil, fmt.Errorf("twelvedata: %s", body.Message)
	}

	out := make([]symbolentity.Symbol, 0, len(body.Data))
	for _, d := range body.Data {
		if d.Symbol == "" {
			continue
		}
		out = append(out, symbolentity.Symbol{Code: d.Symbol, Name: d.Name})
	}
	return out, nil
}

// get はGETリクエストを実行し、JSONレスポンスを out にデコードします。
func (t *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	if t.cfg.APIKey != "" {
		q.Set("apikey", t.cfg.APIKey)
	}

	// URLを生成
	u := fmt.Sprintf("%s%s?%s", strings.TrimRight(t.cfg.BaseURL, "/"), path, q.Encode())

	// リクエストオブジェクトを作成
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	// リクエストを実行
	res, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			t.logger.Warn("failed to close response body", zap.Error(err))
		}
	}()

	if res.StatusCode >= 400 {
		return fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	// JSONレスポンスをDTOにデコード
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
