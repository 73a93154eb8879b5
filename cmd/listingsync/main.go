// Command listingsync は上場銘柄一覧をTwelve Dataから取得し直し、Redisのキャッシュを更新します。
// サーバーは起動時にこのキャッシュから銘柄一覧を読み込みます。
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"portfolio_backend/internal/app/config"
	"portfolio_backend/internal/app/di"
	"portfolio_backend/internal/platform/cache"
	"portfolio_backend/internal/platform/logger"
	infraredis "portfolio_backend/internal/platform/redis"
	"portfolio_backend/internal/shared/ratelimiter"
)

// refreshTimeout は1回の更新全体の上限です。
const refreshTimeout = 5 * time.Minute

func main() {
	once := flag.Bool("once", false, "refresh all listings once and exit")
	purge := flag.Bool("purge", false, "delete cached listings before refreshing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if !cfg.Redis.Enabled() {
		zl.Fatal("REDIS_HOST is not set; nothing to refresh")
	}
	rdb, err := infraredis.NewRedisClient(context.Background(), cfg.Redis, zl)
	if err != nil {
		zl.Fatal("redis unavailable", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	src := di.NewListingSource(rdb, di.NewTwelveDataClient(cfg, zl), cfg, zl)
	limiter := di.NewListingLimiter(cfg)
	exchanges := append([]string{cfg.Listings.KRExchange}, cfg.Listings.USExchanges...)

	if *purge {
		if err := src.Purge(context.Background()); err != nil {
			zl.Fatal("failed to purge listings", zap.Error(err))
		}
		zl.Info("cached listings purged")
	}

	if *once {
		if err := refreshAll(context.Background(), src, limiter, exchanges, zl); err != nil {
			zl.Fatal("refresh failed", zap.Error(err))
		}
		return
	}

	c := cron.New(cron.WithLocation(cfg.Location))
	if _, err := c.AddFunc(cfg.Listings.SyncSchedule, func() {
		if err := refreshAll(context.Background(), src, limiter, exchanges, zl); err != nil {
			zl.Error("scheduled refresh failed", zap.Error(err))
		}
	}); err != nil {
		zl.Fatal("invalid LISTING_SYNC_SCHEDULE", zap.String("schedule", cfg.Listings.SyncSchedule), zap.Error(err))
	}
	c.Start()
	zl.Info("listing sync scheduled", zap.String("schedule", cfg.Listings.SyncSchedule), zap.Strings("exchanges", exchanges))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	<-c.Stop().Done()
	zl.Info("listing sync stopped")
}

// refreshAll はすべての取引所の一覧を順に更新します。1つ失敗しても残りは続行し、最初のエラーを返します。
func refreshAll(ctx context.Context, src *cache.CachingListingSource, limiter ratelimiter.RateLimiterInterface, exchanges []string, zl *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	var firstErr error
	for _, ex := range exchanges {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		n, err := src.Refresh(ctx, ex)
		if err != nil {
			zl.Error("listing refresh failed", zap.String("exchange", ex), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		zl.Info("listing refreshed", zap.String("exchange", ex), zap.Int("symbols", n))
	}
	return firstErr
}
