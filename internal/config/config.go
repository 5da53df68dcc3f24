package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Forecast  ForecastConfig
	Inventory InventoryConfig
	Storage   StorageConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	ForecastTTLSeconds int
}

// ForecastConfig carries the model-fitting defaults.
type ForecastConfig struct {
	MinDataPoints      int
	DefaultGranularity string
	DefaultHorizon     int
	ConfidenceLevel    float64
	BulkWorkers        int
}

// InventoryConfig carries the optimization defaults. OrderingCost and
// StockoutCostFraction are assumptions, not derivations, so they live in
// configuration.
type InventoryConfig struct {
	ServiceLevel         float64
	LeadTimeDays         int
	HoldingCostPct       float64
	OrderingCost         float64
	StockoutCostFraction float64
}

// StorageConfig points at the S3-compatible bucket used by the seed importer.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 30)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 120)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "pharmalytics")
		viper.SetDefault("DB_SSLMODE", "disable")

		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_FORECAST_TTL_SECONDS", 300)

		viper.SetDefault("FORECAST_MIN_DATA_POINTS", 30)
		viper.SetDefault("FORECAST_DEFAULT_GRANULARITY", "weekly")
		viper.SetDefault("FORECAST_DEFAULT_HORIZON", 4)
		viper.SetDefault("FORECAST_CONFIDENCE_LEVEL", 95.0)
		viper.SetDefault("FORECAST_BULK_WORKERS", 4)

		viper.SetDefault("INVENTORY_SERVICE_LEVEL", 95.0)
		viper.SetDefault("INVENTORY_LEAD_TIME_DAYS", 7)
		viper.SetDefault("INVENTORY_HOLDING_COST_PCT", 20.0)
		viper.SetDefault("INVENTORY_ORDERING_COST", 50.0)
		viper.SetDefault("INVENTORY_STOCKOUT_COST_FRACTION", 0.10)

		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_ACCESS_KEY", "")
		viper.SetDefault("STORAGE_SECRET_KEY", "")
		viper.SetDefault("STORAGE_BUCKET", "")
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)

		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:            viper.GetBool("CACHE_ENABLED"),
				RedisURL:           viper.GetString("REDIS_URL"),
				RedisHost:          viper.GetString("REDIS_HOST"),
				RedisPort:          viper.GetString("REDIS_PORT"),
				RedisPassword:      viper.GetString("REDIS_PASSWORD"),
				RedisDB:            viper.GetInt("REDIS_DB"),
				ForecastTTLSeconds: viper.GetInt("CACHE_FORECAST_TTL_SECONDS"),
			},
			Forecast: ForecastConfig{
				MinDataPoints:      viper.GetInt("FORECAST_MIN_DATA_POINTS"),
				DefaultGranularity: viper.GetString("FORECAST_DEFAULT_GRANULARITY"),
				DefaultHorizon:     viper.GetInt("FORECAST_DEFAULT_HORIZON"),
				ConfidenceLevel:    viper.GetFloat64("FORECAST_CONFIDENCE_LEVEL"),
				BulkWorkers:        viper.GetInt("FORECAST_BULK_WORKERS"),
			},
			Inventory: InventoryConfig{
				ServiceLevel:         viper.GetFloat64("INVENTORY_SERVICE_LEVEL"),
				LeadTimeDays:         viper.GetInt("INVENTORY_LEAD_TIME_DAYS"),
				HoldingCostPct:       viper.GetFloat64("INVENTORY_HOLDING_COST_PCT"),
				OrderingCost:         viper.GetFloat64("INVENTORY_ORDERING_COST"),
				StockoutCostFraction: viper.GetFloat64("INVENTORY_STOCKOUT_COST_FRACTION"),
			},
			Storage: StorageConfig{
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
		}
	})

	return instance
}
