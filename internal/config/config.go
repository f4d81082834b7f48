package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr       string
	RequestTimeout time.Duration

	DBDriver string
	DBDSN    string
	DBPath   string // sqlite file, used when DBDSN is empty

	DataDir string // uploads and relative ingestion paths

	DefaultExcelPath  string
	DefaultSheetIndex int // 0-based; the item sheet is the second one

	CORSOrigins []string

	LogLevel  string
	LogFormat string // json|console
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8000"
		if p := os.Getenv("PORT"); p != "" {
			addr = ":" + p
		}
	}
	dataDir := envOr("DATA_DIR", "./data")
	return Config{
		HTTPAddr:          addr,
		RequestTimeout:    time.Duration(envInt("REQUEST_TIMEOUT", 120)) * time.Second,
		DBDriver:          envOr("DB_DRIVER", "sqlite"),
		DBDSN:             os.Getenv("DB_DSN"),
		DBPath:            envOr("DB_PATH", filepath.Join(dataDir, "items.db")),
		DataDir:           dataDir,
		DefaultExcelPath:  os.Getenv("DEFAULT_EXCEL_PATH"),
		DefaultSheetIndex: envInt("DEFAULT_SHEET_INDEX", 1),
		CORSOrigins:       csvOr("CORS_ORIGINS", "*"),
		LogLevel:          envOr("LOG_LEVEL", "info"),
		LogFormat:         envOr("LOG_FORMAT", "json"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
