// Package naver はNaver Financeの銘柄ページから韓国株の相場を取得します。
package naver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/korean"

	"portfolio_backend/internal/feature/quote/domain/entity"
	"portfolio_backend/internal/feature/quote/usecase"
)

// userAgent はブラウザ以外のリクエストを拒否するページ向けのUser-Agentです。
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/110.0.0.0 Safari/537.36"

// ErrPriceNotFound is returned when the page lacks the current price node.
var ErrPriceNotFound = errors.New("stock data not found or blocked")

// ErrChangeNotFound is returned when the page lacks the change/rate node.
var ErrChangeNotFound = errors.New("change data not found")

// Scraper はNaver Financeの相場ページを解析するQuoteScraper実装です。
type Scraper struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// ScraperがQuoteScraperを実装していることをコンパイル時に検証します。
var _ usecase.QuoteScraper = (*Scraper)(nil)

// NewScraper は指定されたベースURLとHTTPクライアントでScraperを生成します。
func NewScraper(baseURL string, client *http.Client, logger *zap.Logger) *Scraper {
	return &Scraper{baseURL: strings.TrimRight(baseURL, "/"), client: client, logger: logger}
}

// Scrape は銘柄ページを取得し、現在値・前日比・騰落率を返します。
// ページ構造が変わっていた場合はエラーを返し、パニックはしません。
func (s *Scraper) Scrape(ctx context.Context, code string) (entity.ScrapedQuote, error) {
	u := fmt.Sprintf("%s/item/main.naver?code=%s", s.baseURL, url.QueryEscape(code))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return entity.ScrapedQuote{}, err
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := s.client.Do(req)
	if err != nil {
		return entity.ScrapedQuote{}, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			s.logger.Warn("failed to close response body", zap.Error(err))
		}
	}()

	if res.StatusCode >= 400 {
		return entity.ScrapedQuote{}, fmt.Errorf("naver http %d", res.StatusCode)
	}

	// ページはEUC-KRで配信される
	doc, err := goquery.NewDocumentFromReader(korean.EUCKR.NewDecoder().Reader(res.Body))
	if err != nil {
		return entity.ScrapedQuote{}, fmt.Errorf("parse html: %w", err)
	}
	return parseQuote(doc)
}

// parseQuote は相場ページのDOMから値を取り出します。
func parseQuote(doc *goquery.Document) (entity.ScrapedQuote, error) {
	priceNode := doc.Find(".no_today .blind").First()
	if priceNode.Length() == 0 {
		return entity.ScrapedQuote{}, ErrPriceNotFound
	}
	priceText := strings.ReplaceAll(strings.TrimSpace(priceNode.Text()), ",", "")
	price, err := strconv.ParseInt(priceText, 10, 64)
	if err != nil {
		return entity.ScrapedQuote{}, fmt.Errorf("parse price %q: %w", priceText, err)
	}

	exday := doc.Find(".no_exday").First()
	if exday.Length() == 0 {
		return entity.ScrapedQuote{}, ErrChangeNotFound
	}
	blinds := exday.Find(".blind")

	changeText, rateText := "0", "0"
	if blinds.Length() >= 2 {
		changeText = strings.TrimSpace(blinds.Eq(0).Text())
		rateText = strings.TrimSpace(blinds.Eq(1).Text())
	}

	rate, err := strconv.ParseFloat(strings.TrimSuffix(rateText, "%"), 64)
	if err != nil {
		return entity.ScrapedQuote{}, fmt.Errorf("parse rate %q: %w", rateText, err)
	}

	isUp := exday.Find(".ico.up").Length() > 0 || exday.Find(".ico.upper").Length() > 0
	isDown := exday.Find(".ico.down").Length() > 0 || exday.Find(".ico.low").Length() > 0
	if isDown {
		rate = -abs(rate)
	}
	if isUp {
		rate = abs(rate)
	}

	return entity.ScrapedQuote{Price: price, Change: changeText, Rate: rate}, nil
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
