package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration
type Config struct {
	Port             string
	Environment      string
	LogLevel         string
	CORSAllowOrigins []string
	MaxBodyBytes     int64
	MaxRecords       int
	// PDFFontPath は任意のTrueTypeフォントです。日本語などの商品名を描画する場合に指定します。
	PDFFontPath     string
	PDFBoldFontPath string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:             getEnv("PORT", "8080"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		CORSAllowOrigins: splitList(getEnv("CORS_ALLOW_ORIGINS", "*")),
		MaxBodyBytes:     getEnvInt64("MAX_BODY_BYTES", 1<<20),
		MaxRecords:       int(getEnvInt64("MAX_RECORDS", 200)),
		PDFFontPath:      os.Getenv("PDF_FONT_PATH"),
		PDFBoldFontPath:  os.Getenv("PDF_BOLD_FONT_PATH"),
	}
}

// AllowAllOrigins reports whether CORS should accept any origin.
func (c *Config) AllowAllOrigins() bool {
	for _, origin := range c.CORSAllowOrigins {
		if origin == "*" {
			return true
		}
	}
	return len(c.CORSAllowOrigins) == 0
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt64 は正の整数の環境変数を読み込みます。不正な値はデフォルト値になります。
func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
