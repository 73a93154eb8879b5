package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"portfolio_backend/internal/app/config"
	"portfolio_backend/internal/app/di"
	"portfolio_backend/internal/app/router"
	historyadapters "portfolio_backend/internal/feature/history/adapters"
	historyhandler "portfolio_backend/internal/feature/history/transport/handler"
	historyusecase "portfolio_backend/internal/feature/history/usecase"
	holdingsadapters "portfolio_backend/internal/feature/holdings/adapters"
	holdingshandler "portfolio_backend/internal/feature/holdings/transport/handler"
	holdingsusecase "portfolio_backend/internal/feature/holdings/usecase"
	quotehandler "portfolio_backend/internal/feature/quote/transport/handler"
	quoteusecase "portfolio_backend/internal/feature/quote/usecase"
	symbollisthandler "portfolio_backend/internal/feature/symbollist/transport/handler"
	symbollistusecase "portfolio_backend/internal/feature/symbollist/usecase"
	infradb "portfolio_backend/internal/platform/db"
	platformhandler "portfolio_backend/internal/platform/http/handler"
	"portfolio_backend/internal/platform/logger"
	infraredis "portfolio_backend/internal/platform/redis"
)

// directoryLoadTimeout は起動時の銘柄一覧読み込みの上限です。レート制限の待機を含みます。
const directoryLoadTimeout = 3 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// db
	db, err := infradb.OpenDB(cfg.DB, zl)
	if err != nil {
		zl.Fatal("failed to open database", zap.Error(err))
	}

	// Redis
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		if tmp, err := infraredis.NewRedisClient(context.Background(), cfg.Redis, zl); err != nil {
			zl.Warn("redis unavailable, running without listing cache")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					zl.Error("failed to close redis client", zap.Error(err))
				}
			}()
		}
	}

	// 外部API
	twelve := di.NewTwelveDataClient(cfg, zl)
	scraper := di.NewNaverScraper(cfg, zl)

	// 銘柄一覧はプロセス起動時に一度だけ読み込み、再起動まで変更しない
	loadCtx, cancel := context.WithTimeout(context.Background(), directoryLoadTimeout)
	dir := di.NewStockDirectory(loadCtx, di.NewListingSource(rdb, twelve, cfg, zl), cfg, zl)
	cancel()

	// Repository
	holdingRepo := holdingsadapters.NewHoldingRepository(db, zl)
	snapshotRepo := historyadapters.NewSnapshotRepository(db)

	// Usecase
	symbolUC := symbollistusecase.NewSymbolUsecase(dir)
	quoteUC := quoteusecase.NewQuoteUsecase(twelve, scraper, dir, cfg.Fallbacks.ExchangeRate, zl)
	holdingsUC := holdingsusecase.NewHoldingsUsecase(holdingRepo, zl)
	snapshotUC := historyusecase.NewSnapshotUsecase(snapshotRepo, cfg.Location, zl)
	historyUC := historyusecase.NewHistoryUsecase(snapshotRepo, cfg.Location, zl)

	// ルータ生成
	engine := router.NewRouter(router.Handlers{
		Health:   platformhandler.NewHealthHandler(dir),
		Symbol:   symbollisthandler.NewSymbolHandler(symbolUC),
		Quote:    quotehandler.NewQuoteHandler(quoteUC),
		Holdings: holdingshandler.NewHoldingsHandler(holdingsUC),
		History:  historyhandler.NewHistoryHandler(snapshotUC, historyUC),
	}, zl)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zl.Info("starting server", zap.String("port", cfg.Server.Port), zap.Int("symbols", dir.Len()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server")
	ctx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stop()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
}
