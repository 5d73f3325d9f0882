package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"strings"

	"threadwatch/internal/config"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type ConfigCommand struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig func() (config.Config, error)
}

const (
	configFormatJSON = "json"
	configFormatTOML = "toml"
	configFormatYAML = "yaml"
)

type configOutput struct {
	ConfigPath string              `json:"config_path,omitempty" toml:"config_path,omitempty" yaml:"config_path,omitempty"`
	Server     serverConfigOutput  `json:"server" toml:"server" yaml:"server"`
	Logging    loggingConfigOutput `json:"logging" toml:"logging" yaml:"logging"`
	History    historyConfigOutput `json:"history" toml:"history" yaml:"history"`
	Report     reportConfigOutput  `json:"report" toml:"report" yaml:"report"`
	UI         uiConfigOutput      `json:"ui" toml:"ui" yaml:"ui"`
}

type serverConfigOutput struct {
	BaseURL        string `json:"base_url" toml:"base_url" yaml:"base_url"`
	StreamURL      string `json:"stream_url" toml:"stream_url" yaml:"stream_url"`
	TimeoutSeconds int    `json:"timeout_seconds" toml:"timeout_seconds" yaml:"timeout_seconds"`
}

type loggingConfigOutput struct {
	Level string `json:"level" toml:"level" yaml:"level"`
}

type historyConfigOutput struct {
	PageSize int `json:"page_size" toml:"page_size" yaml:"page_size"`
}

type reportConfigOutput struct {
	TopN int `json:"top_n" toml:"top_n" yaml:"top_n"`
}

type uiConfigOutput struct {
	Width int `json:"width" toml:"width" yaml:"width"`
}

func NewConfigCommand(stdout, stderr io.Writer, loadConfig func() (config.Config, error)) *ConfigCommand {
	return &ConfigCommand{
		stdout:     stdout,
		stderr:     stderr,
		loadConfig: loadConfig,
	}
}

func (c *ConfigCommand) Run(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	defaults := fs.Bool("default", false, "print default config values")
	format := fs.String("format", configFormatJSON, "output format: json|toml|yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resolvedFormat, err := resolveConfigFormat(*format)
	if err != nil {
		return err
	}
	var cfg config.Config
	if *defaults {
		cfg = config.Default()
	} else {
		cfg, err = c.loadConfig()
		if err != nil {
			return err
		}
	}
	out := buildConfigOutput(cfg)
	if path, err := config.ConfigPath(); err == nil {
		out.ConfigPath = path
	}
	return writeConfigOutput(c.stdout, resolvedFormat, out)
}

func buildConfigOutput(cfg config.Config) configOutput {
	return configOutput{
		Server: serverConfigOutput{
			BaseURL:        cfg.BaseURL(),
			StreamURL:      cfg.StreamBaseURL(),
			TimeoutSeconds: int(cfg.Timeout().Seconds()),
		},
		Logging: loggingConfigOutput{Level: cfg.LogLevel()},
		History: historyConfigOutput{PageSize: cfg.PageSize()},
		Report:  reportConfigOutput{TopN: cfg.TopN()},
		UI:      uiConfigOutput{Width: cfg.UIWidth()},
	}
}

func writeConfigOutput(out io.Writer, format string, payload any) error {
	switch format {
	case configFormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	case configFormatTOML:
		data, err := toml.Marshal(payload)
		if err != nil {
			return err
		}
		if len(data) == 0 || data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
		_, err = out.Write(data)
		return err
	case configFormatYAML:
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(payload); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return errors.New("unsupported format")
	}
}

func resolveConfigFormat(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", configFormatJSON:
		return configFormatJSON, nil
	case configFormatTOML:
		return configFormatTOML, nil
	case configFormatYAML, "yml":
		return configFormatYAML, nil
	default:
		return "", errors.New("invalid format: must be json, toml or yaml")
	}
}
