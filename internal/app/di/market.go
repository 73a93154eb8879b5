// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"portfolio_backend/internal/app/config"
	"portfolio_backend/internal/feature/quote/adapters/naver"
	"portfolio_backend/internal/feature/symbollist/domain/entity"
	symbollistusecase "portfolio_backend/internal/feature/symbollist/usecase"
	"portfolio_backend/internal/platform/cache"
	"portfolio_backend/internal/platform/externalapi/twelvedata"
	infrahttp "portfolio_backend/internal/platform/http"
	"portfolio_backend/internal/shared/ratelimiter"
)

// NewTwelveDataClient creates a Twelve Data client with its own timeout-configured HTTP client.
func NewTwelveDataClient(cfg *config.Config, logger *zap.Logger) *twelvedata.Client {
	return twelvedata.NewClient(cfg.Twelve, infrahttp.NewHTTPClient(cfg.Twelve.Timeout), logger)
}

// NewNaverScraper creates the KR quote page scraper.
func NewNaverScraper(cfg *config.Config, logger *zap.Logger) *naver.Scraper {
	return naver.NewScraper(cfg.Naver.BaseURL, infrahttp.NewHTTPClient(cfg.Naver.Timeout), logger)
}

// NewListingSource wraps the Twelve Data listing endpoint with a Redis cache.
// If rdb is nil, every call goes upstream.
func NewListingSource(rdb *redis.Client, client *twelvedata.Client, cfg *config.Config, logger *zap.Logger) *cache.CachingListingSource {
	ttl := cache.UntilNext(cfg.Listings.RefreshHour, cfg.Location)
	return cache.NewCachingListingSource(rdb, ttl, client, "listings", logger)
}

// NewListingLimiter returns the limiter used between listing requests.
func NewListingLimiter(cfg *config.Config) *ratelimiter.RateLimiter {
	return ratelimiter.NewRateLimiter(cfg.Listings.RateLimit, time.Minute)
}

// NewStockDirectory loads the directory once. It never returns nil.
func NewStockDirectory(ctx context.Context, src symbollistusecase.ListingSource, cfg *config.Config, logger *zap.Logger) *entity.Directory {
	return symbollistusecase.LoadDirectory(ctx, src, NewListingLimiter(cfg), symbollistusecase.DirectoryConfig{
		KRExchange:  cfg.Listings.KRExchange,
		USExchanges: cfg.Listings.USExchanges,
	}, logger)
}
