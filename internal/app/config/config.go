// Package config はプロセス全体の設定を .env・設定ファイル・環境変数から読み込みます。
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"portfolio_backend/internal/platform/db"
	"portfolio_backend/internal/platform/externalapi/twelvedata"
	"portfolio_backend/internal/platform/redis"
)

// Config holds all configuration for the portfolio backend.
type Config struct {
	Server    ServerConfig
	LogLevel  string
	Location  *time.Location
	DB        db.Config
	Redis     redis.Config
	Twelve    twelvedata.Config
	Naver     NaverConfig
	Listings  ListingsConfig
	Fallbacks FallbackConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// NaverConfig holds configuration for the KR quote page.
type NaverConfig struct {
	BaseURL string
	Timeout time.Duration
}

// ListingsConfig holds the exchanges loaded into the stock directory.
type ListingsConfig struct {
	KRExchange   string
	USExchanges  []string
	SyncSchedule string
	// RefreshHour はキャッシュが切れる時刻（Location の時）です。
	RefreshHour int
	// RateLimit は1分あたりの上場銘柄一覧の取得回数の上限です。
	RateLimit int
}

// FallbackConfig holds values returned when an upstream lookup fails.
type FallbackConfig struct {
	ExchangeRate float64
}

// Load は .env（存在すれば）、CONFIG_FILE（指定されていれば）、環境変数の順で設定を読み込みます。
// 後に読み込んだものが優先されます。
func Load() (*Config, error) {
	// .env が無いのはエラーではない
	_ = godotenv.Load(".env")

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	loc, err := time.LoadLocation(v.GetString("timezone"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	httpTimeout := v.GetDuration("http_timeout")

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("port"),
			ReadTimeout:     v.GetDuration("server_read_timeout"),
			WriteTimeout:    v.GetDuration("server_write_timeout"),
			ShutdownTimeout: v.GetDuration("server_shutdown_timeout"),
		},
		LogLevel: v.GetString("log_level"),
		Location: loc,
		DB: db.Config{
			User:           v.GetString("db_user"),
			Password:       v.GetString("db_password"),
			Name:           v.GetString("db_name"),
			Host:           v.GetString("db_host"),
			Port:           v.GetString("db_port"),
			SSLMode:        v.GetString("db_sslmode"),
			InstanceName:   v.GetString("instance_connection_name"),
			ConnectTimeout: v.GetDuration("db_connect_timeout"),
			RunMigrations:  v.GetBool("run_migrations"),
		},
		Redis: redis.Config{
			Host:     v.GetString("redis_host"),
			Port:     v.GetString("redis_port"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
		},
		Twelve: twelvedata.Config{
			APIKey:  v.GetString("twelve_data_api_key"),
			BaseURL: v.GetString("twelve_data_base_url"),
			Timeout: httpTimeout,
		},
		Naver: NaverConfig{
			BaseURL: v.GetString("naver_base_url"),
			Timeout: httpTimeout,
		},
		Listings: ListingsConfig{
			KRExchange:   v.GetString("listing_kr_exchange"),
			USExchanges:  splitList(v.GetString("listing_us_exchanges")),
			SyncSchedule: v.GetString("listing_sync_schedule"),
			RefreshHour:  v.GetInt("listing_refresh_hour"),
			RateLimit:    v.GetInt("listing_rate_limit"),
		},
		Fallbacks: FallbackConfig{
			ExchangeRate: v.GetFloat64("exchange_rate_fallback"),
		},
	}
	if cfg.Listings.RefreshHour < 0 || cfg.Listings.RefreshHour > 23 {
		return nil, fmt.Errorf("invalid LISTING_REFRESH_HOUR: %d", cfg.Listings.RefreshHour)
	}
	return cfg, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("server_read_timeout", "15s")
	v.SetDefault("server_write_timeout", "30s")
	v.SetDefault("server_shutdown_timeout", "10s")
	v.SetDefault("log_level", "info")
	v.SetDefault("timezone", "Asia/Seoul")

	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("db_connect_timeout", "60s")
	v.SetDefault("run_migrations", false)

	v.SetDefault("redis_db", 0)

	v.SetDefault("http_timeout", "10s")
	v.SetDefault("twelve_data_base_url", twelvedata.DefaultBaseURL)
	v.SetDefault("naver_base_url", "https://finance.naver.com")

	v.SetDefault("listing_kr_exchange", "KRX")
	v.SetDefault("listing_us_exchanges", "NASDAQ,NYSE,AMEX")
	v.SetDefault("listing_sync_schedule", "0 8 * * *")
	v.SetDefault("listing_refresh_hour", 8)
	// Twelve Data の無料プランは1分あたり8リクエスト
	v.SetDefault("listing_rate_limit", 8)

	v.SetDefault("exchange_rate_fallback", 1400.0)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
