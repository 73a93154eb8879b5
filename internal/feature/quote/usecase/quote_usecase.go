package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"portfolio_backend/internal/feature/quote/domain/entity"
)

const (
	// usLookbackDays は米国株の終値を取得する日数です。休場日を含めても2営業日以上が入ります。
	usLookbackDays = 14
	// exchangeRateLookbackDays は為替レートを取得する日数です。
	exchangeRateLookbackDays = 7
	// ExchangeRateSymbol はドル/ウォンの為替レートのシンボルです。
	ExchangeRateSymbol = "USD/KRW"
	// DefaultFallbackRate は為替レート取得失敗時に返すレートです。
	DefaultFallbackRate = 1400.0

	marketUS = "US"
)

// SeriesSource は日足の終値系列を取得するインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type SeriesSource interface {
	DailyCloses(ctx context.Context, symbol string, start time.Time) ([]entity.DailyClose, error)
}

// QuoteScraper は韓国株の相場ページを取得・解析するインターフェースです。
type QuoteScraper interface {
	Scrape(ctx context.Context, code string) (entity.ScrapedQuote, error)
}

// MarketClassifier は銘柄コードの市場区分（KR/US）を返します。
type MarketClassifier interface {
	MarketOf(code string) string
}

// QuoteUsecase は銘柄コードから現在値を取得するユースケースです。
// リトライやキャッシュは行わず、呼び出しごとに上流へ問い合わせます。
type QuoteUsecase struct {
	series       SeriesSource
	scraper      QuoteScraper
	markets      MarketClassifier
	fallbackRate float64
	now          func() time.Time
	logger       *zap.Logger
}

// NewQuoteUsecase はQuoteUsecaseの新しいインスタンスを生成します。
// fallbackRate が0以下の場合は DefaultFallbackRate を使用します。
func NewQuoteUsecase(series SeriesSource, scraper QuoteScraper, markets MarketClassifier, fallbackRate float64, logger *zap.Logger) *QuoteUsecase {
	if fallbackRate <= 0 {
		fallbackRate = DefaultFallbackRate
	}
	return &QuoteUsecase{
		series:       series,
		scraper:      scraper,
		markets:      markets,
		fallbackRate: fallbackRate,
		now:          time.Now,
		logger:       logger,
	}
}

// GetPrice は銘柄の現在値・前日比・騰落率を返します。
// 上流の失敗はエラーとして返さず、Errorを設定したゼロ値のQuoteに変換します。
func (u *QuoteUsecase) GetPrice(ctx context.Context, code string) entity.Quote {
	if code == "" {
		return entity.SoftFail(code, ErrCodeRequired)
	}

	var (
		q   entity.Quote
		err error
	)
	if u.markets.MarketOf(code) == marketUS {
		q, err = u.usQuote(ctx, code)
	} else {
		q, err = u.krQuote(ctx, code)
	}
	if err != nil {
		u.logger.Warn("price lookup failed", zap.String("code", code), zap.Error(err))
		return entity.SoftFail(code, err)
	}
	return q
}

// usQuote は直近の終値と1つ前の終値から前日比を計算します。
// 1行しかない場合は前日比0になります。
func (u *QuoteUsecase) usQuote(ctx context.Context, code string) (entity.Quote, error) {
	start := u.now().AddDate(0, 0, -usLookbackDays)
	rows, err := u.series.DailyCloses(ctx, code, start)
	if err != nil {
		return entity.Quote{}, fmt.Errorf("us stock data not found: %w", err)
	}
	if len(rows) == 0 {
		return entity.Quote{}, fmt.Errorf("us stock data not found: %w", ErrEmptySeries)
	}
	sortByDate(rows)

	latest := rows[len(rows)-1]
	prev := latest
	if len(rows) > 1 {
		prev = rows[len(rows)-2]
	}

	change := latest.Close - prev.Close
	rate := 0.0
	if prev.Close != 0 {
		rate = change / prev.Close * 100
	}
	return entity.Quote{
		Code:   code,
		Price:  latest.Close,
		Change: fmt.Sprintf("%.2f", change),
		Rate:   rate,
	}, nil
}

func (u *QuoteUsecase) krQuote(ctx context.Context, code string) (entity.Quote, error) {
	s, err := u.scraper.Scrape(ctx, code)
	if err != nil {
		return entity.Quote{}, err
	}
	return entity.Quote{
		Code:   code,
		Price:  float64(s.Price),
		Change: s.Change,
		Rate:   s.Rate,
	}, nil
}

// GetExchangeRate は直近7日間のUSD/KRWの最新終値を返します。
// 失敗した場合は固定のフォールバックレートとエラー内容を返します。
func (u *QuoteUsecase) GetExchangeRate(ctx context.Context) entity.ExchangeRate {
	start := u.now().AddDate(0, 0, -exchangeRateLookbackDays)
	rows, err := u.series.DailyCloses(ctx, ExchangeRateSymbol, start)
	if err == nil && len(rows) == 0 {
		err = ErrEmptySeries
	}
	if err != nil {
		u.logger.Warn("exchange rate lookup failed", zap.String("symbol", ExchangeRateSymbol), zap.Error(err))
		return entity.ExchangeRate{Rate: u.fallbackRate, Error: err.Error()}
	}
	sortByDate(rows)
	return entity.ExchangeRate{Rate: rows[len(rows)-1].Close}
}

func sortByDate(rows []entity.DailyClose) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
}
