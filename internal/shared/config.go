package shared

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	CacheTTL     time.Duration
	RateLimitRPS float64

	// allotment seeder knobs
	SeedWorkers  int
	SeedDays     int
	SeedQuantity int
}

// Load reads configuration from the environment, with an optional .env file
// when one exists in the working directory.
func Load() Config {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	viper.SetDefault("APP_ENV", "prod")
	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("METRICS_ADDR", ":9100")
	viper.SetDefault("MYSQL_DSN", "root:root@tcp(localhost:3306)/stayops?parseTime=true&charset=utf8mb4,utf8&loc=UTC")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_TTL_SECONDS", 900)
	viper.SetDefault("RATE_LIMIT_RPS", 50)
	viper.SetDefault("SEED_WORKERS", 8)
	viper.SetDefault("SEED_DAYS", 365)
	viper.SetDefault("SEED_QUANTITY", 10)

	_ = viper.ReadInConfig() // missing .env is fine
	viper.AutomaticEnv()

	return Config{
		AppEnv:      viper.GetString("APP_ENV"),
		HTTPAddr:    viper.GetString("HTTP_ADDR"),
		MetricsAddr: viper.GetString("METRICS_ADDR"),
		MySQLDSN:    viper.GetString("MYSQL_DSN"),
		RedisAddr:   viper.GetString("REDIS_ADDR"),
		RedisPass:   viper.GetString("REDIS_PASSWORD"),
		RedisDB:     viper.GetInt("REDIS_DB"),

		CacheTTL:     time.Duration(viper.GetInt("CACHE_TTL_SECONDS")) * time.Second,
		RateLimitRPS: viper.GetFloat64("RATE_LIMIT_RPS"),

		SeedWorkers:  viper.GetInt("SEED_WORKERS"),
		SeedDays:     viper.GetInt("SEED_DAYS"),
		SeedQuantity: viper.GetInt("SEED_QUANTITY"),
	}
}
