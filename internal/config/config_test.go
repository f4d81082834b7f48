package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mind-engage/itembank/internal/config"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "PORT", "DB_DRIVER", "DB_DSN", "DB_PATH", "DATA_DIR",
		"DEFAULT_EXCEL_PATH", "DEFAULT_SHEET_INDEX", "CORS_ORIGINS", "REQUEST_TIMEOUT"} {
		t.Setenv(k, "")
	}
	cfg := config.FromEnv()
	if cfg.HTTPAddr != ":8000" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("DBDriver = %q", cfg.DBDriver)
	}
	if cfg.DBPath != filepath.Join("./data", "items.db") {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.DefaultSheetIndex != 1 {
		t.Errorf("DefaultSheetIndex = %d", cfg.DefaultSheetIndex)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.RequestTimeout != 120*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_DIR", "/srv/bank")
	t.Setenv("DB_PATH", "")
	t.Setenv("DEFAULT_SHEET_INDEX", "notanumber")
	t.Setenv("CORS_ORIGINS", " http://a.test , ,http://b.test")

	cfg := config.FromEnv()
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.DBPath != filepath.Join("/srv/bank", "items.db") {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.DefaultSheetIndex != 1 {
		t.Errorf("bad int should fall back, got %d", cfg.DefaultSheetIndex)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}
