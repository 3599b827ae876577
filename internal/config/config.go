package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the configuration file is looked for when IPO_CONFIG
// is not set.
const DefaultPath = "config/ipo.yaml"

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for both front ends.
type Config struct {
	Predictor Predictor `yaml:"predictor"`
	Server    Server    `yaml:"server"`
	Display   Display   `yaml:"display"`
	Theme     Theme     `yaml:"theme"`
	Logging   Logging   `yaml:"logging"`
}

// Predictor locates the prediction service. Every call is addressed from
// BaseURL; the paths are relative to it.
type Predictor struct {
	BaseURL     string        `yaml:"base_url"`
	PredictPath string        `yaml:"predict_path"`
	HistoryPath string        `yaml:"history_path"`
	UpdatePath  string        `yaml:"update_path"`
	Timeout     time.Duration `yaml:"timeout"` // 0 = no timeout
}

// Server holds the web front end's listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns host:port for http.Server.
func (s Server) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Display controls how values are presented.
type Display struct {
	Locale         string        `yaml:"locale"`
	Currency       string        `yaml:"currency"`
	NoticeDuration time.Duration `yaml:"notice_duration"`
}

// Theme is the colour palette handed to both front ends.
type Theme struct {
	Primary    string `yaml:"primary"`
	Secondary  string `yaml:"secondary"`
	Background string `yaml:"background"`
	Text       string `yaml:"text"`
	Positive   string `yaml:"positive"`
	Negative   string `yaml:"negative"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Defaults returns the configuration used for anything the file and the
// environment leave unset.
func Defaults() *Config {
	return &Config{
		Predictor: Predictor{
			BaseURL:     "http://localhost:5000",
			PredictPath: "/api/predict",
			HistoryPath: "/api/history",
			UpdatePath:  "/api/update-price",
		},
		Server: Server{Host: "127.0.0.1", Port: 8080},
		Display: Display{
			Locale:         "en-IN",
			Currency:       "INR",
			NoticeDuration: 6 * time.Second,
		},
		Theme: Theme{
			Primary:    "#1976d2",
			Secondary:  "#f50057",
			Background: "#f5f5f5",
			Text:       "#212121",
			Positive:   "#2e7d32",
			Negative:   "#d32f2f",
		},
		Logging: Logging{Level: "info", Format: "text"},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// LoadDotEnv loads KEY=value pairs from the given files (".env" when none
// are named) into the process environment. Variables already set win, and
// missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Path returns the configuration file to load: IPO_CONFIG when set, else
// DefaultPath if it exists, else "" (defaults and environment only).
func Path() string {
	if v := os.Getenv("IPO_CONFIG"); v != "" {
		return v
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return DefaultPath
	}
	return ""
}

// Load reads the YAML configuration file at the given path over Defaults,
// applies environment variable overrides and validates the result. An empty
// path skips the file.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("IPO_PREDICTOR_URL"); v != "" {
		cfg.Predictor.BaseURL = v
	}

	if v := os.Getenv("IPO_PREDICTOR_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("IPO_PREDICTOR_TIMEOUT: %w", err)
		}
		cfg.Predictor.Timeout = d
	}

	if v := os.Getenv("IPO_HTTP_ADDR"); v != "" {
		host, portStr, err := net.SplitHostPort(v)
		if err != nil {
			return fmt.Errorf("IPO_HTTP_ADDR: %w", err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("IPO_HTTP_ADDR: invalid port %q", portStr)
		}
		cfg.Server.Host = host
		cfg.Server.Port = port
	}

	if v := os.Getenv("IPO_LOCALE"); v != "" {
		cfg.Display.Locale = v
	}
	if v := os.Getenv("IPO_CURRENCY"); v != "" {
		cfg.Display.Currency = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	return nil
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Predictor.BaseURL)
	if err != nil {
		return fmt.Errorf("predictor.base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("predictor.base_url %q: must be an absolute http(s) URL", c.Predictor.BaseURL)
	}
	for name, p := range map[string]string{
		"predict_path": c.Predictor.PredictPath,
		"history_path": c.Predictor.HistoryPath,
		"update_path":  c.Predictor.UpdatePath,
	} {
		if p != "" && !strings.HasPrefix(p, "/") {
			return fmt.Errorf("predictor.%s %q: must start with /", name, p)
		}
	}
	if c.Predictor.Timeout < 0 {
		return fmt.Errorf("predictor.timeout: must not be negative")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d: out of range", c.Server.Port)
	}

	if c.Display.NoticeDuration <= 0 {
		return fmt.Errorf("display.notice_duration: must be positive")
	}

	for name, v := range map[string]string{
		"primary":    c.Theme.Primary,
		"secondary":  c.Theme.Secondary,
		"background": c.Theme.Background,
		"text":       c.Theme.Text,
		"positive":   c.Theme.Positive,
		"negative":   c.Theme.Negative,
	} {
		if !hexColor.MatchString(v) {
			return fmt.Errorf("theme.%s %q: want #rgb or #rrggbb", name, v)
		}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q: unknown level", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format %q: want json or text", c.Logging.Format)
	}
	return nil
}
