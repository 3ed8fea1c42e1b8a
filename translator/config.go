package translator

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 服务运行配置，全部来自环境变量
type Config struct {
	Port             string
	FontsDir         string
	UploadDir        string
	OutputDir        string
	LogDir           string
	CacheDir         string
	TranslateWorkers int
	MinFontSize      float64

	AzureKey      string
	AzureEndpoint string
	AzureRegion   string
	AzureTimeout  time.Duration
}

// LoadConfig 加载.env（若存在）并读取环境变量，缺省值与目录约定见各字段
func LoadConfig() *Config {
	// .env不存在不是错误
	_ = godotenv.Load()

	cfg := &Config{
		Port:             envOr("PORT", "8080"),
		FontsDir:         envOr("FONTS_DIR", "fonts"),
		UploadDir:        envOr("UPLOAD_DIR", "uploads"),
		OutputDir:        envOr("OUTPUT_DIR", "outputs"),
		LogDir:           envOr("LOG_DIR", "logs"),
		CacheDir:         envOr("CACHE_DIR", "cache"),
		TranslateWorkers: envIntOr("TRANSLATE_WORKERS", 1),
		MinFontSize:      envFloatOr("MIN_FONT_SIZE", DefaultMinFontSize),
		AzureKey:         os.Getenv("AZURE_TRANSLATOR_KEY"),
		AzureEndpoint:    envOr("AZURE_TRANSLATOR_ENDPOINT", DefaultAzureEndpoint),
		AzureRegion:      envOr("AZURE_TRANSLATOR_REGION", "centralindia"),
		AzureTimeout:     time.Duration(envIntOr("AZURE_TRANSLATOR_TIMEOUT", 15)) * time.Second,
	}
	return cfg
}

// BuildProvider 按配置选择翻译服务：有Azure密钥用Azure，否则退回静态兜底
func (c *Config) BuildProvider() Provider {
	if c.AzureKey != "" {
		return NewAzureProvider(AzureConfig{
			Key:      c.AzureKey,
			Endpoint: c.AzureEndpoint,
			Region:   c.AzureRegion,
			Timeout:  c.AzureTimeout,
		})
	}
	if url := os.Getenv("LIBRETRANSLATE_URL"); url != "" {
		return NewLibreTranslateProvider(url, os.Getenv("LIBRETRANSLATE_API_KEY"))
	}
	return NewStaticProvider(nil)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return fallback
}
