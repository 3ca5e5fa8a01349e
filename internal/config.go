package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"runtime"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	tagNameRe   = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
	extensionRe = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Site   SiteConfig        `yaml:"site"`
	Filter FilterConfig      `yaml:"filter"`
	Export ExportConfig      `yaml:"export"`
	Index  IndexConfig       `yaml:"index"`
	HTTP   HTTPConfig        `yaml:"http"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Site.Validate(); err != nil {
		return fmt.Errorf("site: %w", err)
	}
	if err := c.Filter.Validate(); err != nil {
		return fmt.Errorf("filter: %w", err)
	}
	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := c.Index.Validate(); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// SiteConfig describes where notes come from and where the site goes.
type SiteConfig struct {
	Name   string `yaml:"name"`
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
	Style  string `yaml:"style"`
	Watch  bool   `yaml:"watch"`
}

// Validate validates the site configuration. Output is checked separately
// because only build and serve need it.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Input, validation.Required),
	)
}

// RequireOutput reports an error when no output directory is configured.
func (c *SiteConfig) RequireOutput() error {
	if c.Output == "" {
		return errors.New("site: output directory is required")
	}
	return nil
}

// FilterConfig selects the notes included in the site.
type FilterConfig struct {
	Required      []string `yaml:"required"`
	Forbidden     []string `yaml:"forbidden"`
	StripRequired bool     `yaml:"strip_required"`
}

// Validate validates the filter configuration.
func (c *FilterConfig) Validate() error {
	tagRule := validation.Each(validation.Required, validation.Match(tagNameRe))
	return validation.ValidateStruct(c,
		validation.Field(&c.Required, tagRule),
		validation.Field(&c.Forbidden, tagRule),
	)
}

// ExportConfig tunes page generation.
type ExportConfig struct {
	Workers        int    `yaml:"workers"`
	Extension      string `yaml:"extension"`
	StyleExtension string `yaml:"style_extension"`
	SafeMode       bool   `yaml:"safe_mode"`
}

// Validate validates the export configuration.
func (c *ExportConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Workers, validation.Required, validation.Min(1), validation.Max(256)),
		validation.Field(&c.Extension, validation.Required, validation.Match(extensionRe)),
		validation.Field(&c.StyleExtension, validation.Required, validation.Match(extensionRe)),
	)
}

// IndexConfig holds the SQLite search index location used by serve and mcp.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// HTTPConfig holds preview server configuration.
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Site: SiteConfig{
			Input: ".",
		},
		Export: ExportConfig{
			Workers:        runtime.NumCPU(),
			Extension:      "html",
			StyleExtension: "css",
		},
		Index: IndexConfig{
			Path: "./ztk.db",
		},
		HTTP: HTTPConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
	}
}
