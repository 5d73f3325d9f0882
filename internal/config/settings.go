package config

import (
	"errors"
	"net/url"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultBaseURL        = "http://127.0.0.1:8000"
	defaultTimeoutSeconds = 30
	defaultPageSize       = 20
	maxPageSize           = 100
	defaultTopN           = 10
	defaultUIWidth        = 100
)

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Logging LoggingConfig `toml:"logging"`
	History HistoryConfig `toml:"history"`
	Report  ReportConfig  `toml:"report"`
	UI      UIConfig      `toml:"ui"`
}

type ServerConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

type HistoryConfig struct {
	PageSize int `toml:"page_size"`
}

type ReportConfig struct {
	TopN int `toml:"top_n"`
}

type UIConfig struct {
	Width int `toml:"width"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			BaseURL:        defaultBaseURL,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Logging: LoggingConfig{Level: "info"},
		History: HistoryConfig{PageSize: defaultPageSize},
		Report:  ReportConfig{TopN: defaultTopN},
		UI:      UIConfig{Width: defaultUIWidth},
	}
}

func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return LoadFromPath(path)
}

func LoadFromPath(path string) (Config, error) {
	cfg := Default()
	if err := readTOML(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// BaseURL returns the backend root without a trailing slash. A bare
// host:port is treated as plain http.
func (c Config) BaseURL() string {
	raw := strings.TrimSpace(c.Server.BaseURL)
	if raw == "" {
		return defaultBaseURL
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	raw = strings.TrimRight(raw, "/")
	if raw == "http:" || raw == "https:" {
		return defaultBaseURL
	}
	return raw
}

// StreamBaseURL mirrors the base URL's transport security: https becomes
// wss and anything else ws.
func (c Config) StreamBaseURL() string {
	return StreamURLFor(c.BaseURL())
}

func StreamURLFor(baseURL string) string {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return "ws://" + strings.TrimPrefix(strings.TrimPrefix(baseURL, "http://"), "https://")
	}
	if strings.EqualFold(parsed.Scheme, "https") {
		parsed.Scheme = "wss"
	} else {
		parsed.Scheme = "ws"
	}
	return strings.TrimRight(parsed.String(), "/")
}

func (c Config) Timeout() time.Duration {
	if c.Server.TimeoutSeconds <= 0 {
		return defaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}

func (c Config) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

func (c Config) PageSize() int {
	size := c.History.PageSize
	if size <= 0 {
		return defaultPageSize
	}
	if size > maxPageSize {
		return maxPageSize
	}
	return size
}

func (c Config) TopN() int {
	if c.Report.TopN <= 0 {
		return defaultTopN
	}
	return c.Report.TopN
}

func (c Config) UIWidth() int {
	if c.UI.Width <= 0 {
		return defaultUIWidth
	}
	return c.UI.Width
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}
