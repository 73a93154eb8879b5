package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"portfolio_backend/internal/feature/symbollist/domain/entity"
	"portfolio_backend/internal/shared/ratelimiter"
)

// ListingSource は取引所ごとの上場銘柄一覧を取得するインターフェースです。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type ListingSource interface {
	ListStocks(ctx context.Context, exchange string) ([]entity.Symbol, error)
}

// DirectoryConfig は起動時に読み込む取引所の一覧です。
type DirectoryConfig struct {
	KRExchange  string
	USExchanges []string
}

// LoadDirectory は韓国の取引所と米国の各取引所の銘柄一覧を順に取得し、
// KR→USの順に連結したDirectoryを返します。
// どれか1つでも取得に失敗した場合は空のDirectoryを返し、検索と市場判定はKRにフォールバックします。
func LoadDirectory(ctx context.Context, src ListingSource, limiter ratelimiter.RateLimiterInterface, cfg DirectoryConfig, logger *zap.Logger) *entity.Directory {
	symbols, err := fetchAll(ctx, src, limiter, cfg)
	if err != nil {
		logger.Error("failed to load stock directory", zap.Error(err))
		return entity.NewDirectory(nil)
	}
	logger.Info("stock directory loaded", zap.Int("total", len(symbols)))
	return entity.NewDirectory(symbols)
}

func fetchAll(ctx context.Context, src ListingSource, limiter ratelimiter.RateLimiterInterface, cfg DirectoryConfig) ([]entity.Symbol, error) {
	var out []entity.Symbol

	fetch := func(exchange, market string) error {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		}
		list, err := src.ListStocks(ctx, exchange)
		if err != nil {
			return fmt.Errorf("list %s: %w", exchange, err)
		}
		for _, s := range list {
			s.Market = market
			out = append(out, s)
		}
		return nil
	}

	if err := fetch(cfg.KRExchange, entity.MarketKR); err != nil {
		return nil, err
	}
	for _, ex := range cfg.USExchanges {
		if err := fetch(ex, entity.MarketUS); err != nil {
			return nil, err
		}
	}
	return out, nil
}
