package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"unicode/utf8"

	"github.com/joho/godotenv"
)

type Config struct {
	DataPath   string
	ListenAddr string
	Separator  rune
	LogFormat  string // "text" or "json"
	ThemeColor string
	UploadDir  string
	DbDsn      string
	TgToken    string
	PublicURL  string
	ExportName string
}

const (
	DefaultDataPath   = "NYSDOH_sample.csv"
	DefaultListenAddr = ":8005"
	DefaultThemeColor = "#2E86C1"
	DefaultUploadDir  = "uploads"
	DefaultExportName = "custom_extract"
)

// Load reads envFile (a missing file is fine) and then the process environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	c := &Config{
		DataPath:   getenv("DATA_PATH", DefaultDataPath),
		ListenAddr: getenv("LISTEN_ADDR", DefaultListenAddr),
		Separator:  ',',
		LogFormat:  getenv("LOG_FORMAT", "text"),
		ThemeColor: getenv("THEME_COLOR", DefaultThemeColor),
		UploadDir:  getenv("UPLOAD_DIR", DefaultUploadDir),
		DbDsn:      os.Getenv("DB_DSN"),
		TgToken:    os.Getenv("TG_TOKEN"),
		PublicURL:  getenv("PUBLIC_URL", "http://localhost:8005"),
		ExportName: getenv("EXPORT_NAME", DefaultExportName),
	}
	if sep := os.Getenv("CSV_SEPARATOR"); sep != "" {
		r, err := ParseSeparator(sep)
		if err != nil {
			return nil, err
		}
		c.Separator = r
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ParseSeparator accepts a single character or the word "tab".
func ParseSeparator(s string) (rune, error) {
	if s == "tab" || s == `\t` {
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("CSV_SEPARATOR must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("invalid CSV_SEPARATOR %q", s)
	}
	return r, nil
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.DataPath == "" {
		return fmt.Errorf("DATA_PATH is required")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
