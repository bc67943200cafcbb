package config

import (
	"os"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	// テスト用の環境変数を設定
	testCases := map[string]string{
		"PORT":               "9090",
		"ENVIRONMENT":        "test",
		"LOG_LEVEL":          "debug",
		"CORS_ALLOW_ORIGINS": "https://a.example.com, https://b.example.com",
		"MAX_BODY_BYTES":     "2048",
		"MAX_RECORDS":        "10",
		"PDF_FONT_PATH":      "/fonts/NotoSansJP-Regular.ttf",
	}

	for key, value := range testCases {
		os.Setenv(key, value)
	}

	// テスト後にクリーンアップ
	defer func() {
		for key := range testCases {
			os.Unsetenv(key)
		}
	}()

	cfg := LoadConfig()

	if cfg.Port != "9090" {
		t.Errorf("Expected Port to be '9090', got '%s'", cfg.Port)
	}

	if cfg.Environment != "test" {
		t.Errorf("Expected Environment to be 'test', got '%s'", cfg.Environment)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("Expected LogLevel to be 'debug', got '%s'", cfg.LogLevel)
	}

	if len(cfg.CORSAllowOrigins) != 2 || cfg.CORSAllowOrigins[1] != "https://b.example.com" {
		t.Errorf("Unexpected CORSAllowOrigins: %v", cfg.CORSAllowOrigins)
	}

	if cfg.AllowAllOrigins() {
		t.Errorf("Expected explicit origins to disable AllowAllOrigins")
	}

	if cfg.MaxBodyBytes != 2048 {
		t.Errorf("Expected MaxBodyBytes to be 2048, got %d", cfg.MaxBodyBytes)
	}

	if cfg.MaxRecords != 10 {
		t.Errorf("Expected MaxRecords to be 10, got %d", cfg.MaxRecords)
	}

	if cfg.PDFFontPath != "/fonts/NotoSansJP-Regular.ttf" || cfg.PDFBoldFontPath != "" {
		t.Errorf("Unexpected PDF font paths: %q %q", cfg.PDFFontPath, cfg.PDFBoldFontPath)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	// 環境変数をクリア
	vars := []string{
		"PORT", "ENVIRONMENT", "LOG_LEVEL",
		"CORS_ALLOW_ORIGINS", "MAX_BODY_BYTES", "MAX_RECORDS",
	}

	for _, v := range vars {
		os.Unsetenv(v)
	}

	cfg := LoadConfig()

	// デフォルト値の検証
	if cfg.Port != "8080" {
		t.Errorf("Expected default Port to be '8080', got '%s'", cfg.Port)
	}

	if cfg.Environment != "development" {
		t.Errorf("Expected default Environment to be 'development', got '%s'", cfg.Environment)
	}

	if !cfg.AllowAllOrigins() {
		t.Errorf("Expected default CORS to allow all origins")
	}

	if cfg.MaxBodyBytes != 1<<20 {
		t.Errorf("Expected default MaxBodyBytes to be %d, got %d", 1<<20, cfg.MaxBodyBytes)
	}

	if cfg.MaxRecords != 200 {
		t.Errorf("Expected default MaxRecords to be 200, got %d", cfg.MaxRecords)
	}
}

func TestLoadConfigInvalidNumbersFallBack(t *testing.T) {
	os.Setenv("MAX_RECORDS", "-3")
	os.Setenv("MAX_BODY_BYTES", "lots")
	defer os.Unsetenv("MAX_RECORDS")
	defer os.Unsetenv("MAX_BODY_BYTES")

	cfg := LoadConfig()

	if cfg.MaxRecords != 200 {
		t.Errorf("Expected MaxRecords fallback 200, got %d", cfg.MaxRecords)
	}
	if cfg.MaxBodyBytes != 1<<20 {
		t.Errorf("Expected MaxBodyBytes fallback, got %d", cfg.MaxBodyBytes)
	}
}
