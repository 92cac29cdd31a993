package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	OpenRouter  OpenRouterConfig `mapstructure:"openrouter"`
	Catalog     CatalogConfig    `mapstructure:"catalog"`
	Cache       CacheConfig      `mapstructure:"cache"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env      string `mapstructure:"env"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	Version  string `mapstructure:"version"`
	Name     string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// OpenRouterConfig OpenRouter 配置（外部生成能力）
type OpenRouterConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// CatalogConfig 餐點目錄設定
type CatalogConfig struct {
	Dir              string `mapstructure:"dir"`                // 目錄檔案所在路徑
	DefaultSource    string `mapstructure:"default_source"`     // 未指定地區時的預設來源
	MaxFileBytes     int64  `mapstructure:"max_file_bytes"`     // 單一來源檔案上限
	MaxRows          int    `mapstructure:"max_rows"`           // 單次載入的列數安全上限
	MaxInvalidRows   int    `mapstructure:"max_invalid_rows"`   // 無效列門檻，超過即中止解析
	MaxResults       int    `mapstructure:"max_results"`        // 單次查詢回傳餐點上限
	CacheMaxEntries  int    `mapstructure:"cache_max_entries"`  // 有界快取的條目上限
	CacheEvictBuffer int    `mapstructure:"cache_evict_buffer"` // 淘汰時額外清出的緩衝量
}

// CacheConfig 生成結果緩存配置（Redis，可停用）
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Addr    string        `mapstructure:"addr"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件，找不到時退回環境變數與預設值
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	// 設定預設值
	setDefaults()

	// 設定環境變數前綴
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("openrouter.enabled", "OPENROUTER_ENABLED")
	viper.BindEnv("openrouter.api_key", "OPENROUTER_API_KEY")
	viper.BindEnv("openrouter.model", "OPENROUTER_MODEL")
	viper.BindEnv("openrouter.max_tokens", "MODEL_MAX_TOKENS")
	viper.BindEnv("catalog.dir", "CATALOG_DIR")
	viper.BindEnv("catalog.default_source", "CATALOG_DEFAULT_SOURCE")
	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("cache.addr", "CACHE_ADDR")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	// 設定設定檔名稱和路徑
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// 讀取設定檔
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 添加調試日誌（logger 尚未初始化，改用 fmt.Println）
	fmt.Println("Loading configuration", "openrouter_api_key:", maskAPIKey(viper.GetString("openrouter.api_key")), "catalog_dir:", viper.GetString("catalog.dir"))

	// 解析設定
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// maskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "meal-recommender")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// OpenRouter 設定
	viper.SetDefault("openrouter.enabled", false)
	viper.SetDefault("openrouter.model", "mistralai/mistral-7b-instruct")
	viper.SetDefault("openrouter.max_tokens", 800)
	viper.SetDefault("openrouter.temperature", 0.7)
	viper.SetDefault("openrouter.timeout", "30s")

	// 目錄設定
	viper.SetDefault("catalog.dir", "data")
	viper.SetDefault("catalog.default_source", "maharashtra")
	viper.SetDefault("catalog.max_file_bytes", 10*1024*1024) // 10MB
	viper.SetDefault("catalog.max_rows", 10000)
	viper.SetDefault("catalog.max_invalid_rows", 100)
	viper.SetDefault("catalog.max_results", 50)
	viper.SetDefault("catalog.cache_max_entries", 500)
	viper.SetDefault("catalog.cache_evict_buffer", 10)

	// 生成結果緩存設定
	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.addr", "localhost:6379")
	viper.SetDefault("cache.ttl", "24h")

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 30)
	viper.SetDefault("rate_limit.window", "1m")

	// 新增 dedup window 預設
	viper.SetDefault("dedup_window", "1s")
	viper.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	// 驗證目錄設定
	if config.Catalog.Dir == "" {
		return fmt.Errorf("catalog dir is required")
	}
	if config.Catalog.MaxFileBytes <= 0 {
		return fmt.Errorf("invalid catalog max file bytes")
	}
	if config.Catalog.MaxRows <= 0 || config.Catalog.MaxInvalidRows <= 0 {
		return fmt.Errorf("invalid catalog row limits")
	}
	if config.Catalog.MaxResults <= 0 {
		return fmt.Errorf("invalid catalog max results")
	}
	if config.Catalog.CacheMaxEntries <= 0 {
		return fmt.Errorf("invalid catalog cache max entries")
	}
	if config.Catalog.CacheEvictBuffer < 0 || config.Catalog.CacheEvictBuffer >= config.Catalog.CacheMaxEntries {
		return fmt.Errorf("invalid catalog cache evict buffer")
	}

	// 驗證生成結果緩存設定
	if config.Cache.Enabled {
		if config.Cache.Addr == "" {
			return fmt.Errorf("invalid cache addr")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
	}

	// 驗證生成能力設定
	if config.OpenRouter.Enabled {
		if config.OpenRouter.APIKey == "" {
			return fmt.Errorf("openrouter api key is required when enabled")
		}
		if config.OpenRouter.Timeout <= 0 {
			return fmt.Errorf("invalid openrouter timeout")
		}
	}

	return nil
}
