// Package config loads the exporter's YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pwnholic/plotbook/internal"
	"github.com/pwnholic/plotbook/internal/book"
	"github.com/pwnholic/plotbook/internal/clients"
)

type FileConfig struct {
	Log    LogConfig                 `yaml:"log"`
	Layout LayoutConfig              `yaml:"layout"`
	API    clients.APIConfig         `yaml:"api"`
	HTTP   clients.HTTPClientOptions `yaml:"http_client"`
	Server ServerConfig              `yaml:"server"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type LayoutConfig struct {
	book.ComposeOptions `yaml:",inline"`

	// FontPath points at a TrueType font; empty selects the embedded face.
	FontPath string `yaml:"font_path"`
	// CoverImagePath is an optional JPEG, PNG or WebP drawn on the cover.
	CoverImagePath string `yaml:"cover_image"`
}

type ServerConfig struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

func Default() *FileConfig {
	return &FileConfig{
		Log:    LogConfig{Level: "info"},
		Layout: LayoutConfig{ComposeOptions: book.DefaultComposeOptions()},
		API:    clients.DefaultAPIConfig(),
		HTTP:   clients.DefaultHTTPClientOptions(),
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Load reads path over the defaults, so a file only needs the keys it
// changes.
func Load(path string) (*FileConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *FileConfig) Validate() error {
	if _, err := internal.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	g := c.Layout.Geometry
	if g.PageWidth <= 0 || g.PageHeight <= 0 {
		return fmt.Errorf("layout.geometry: page size must be positive, got %gx%g", g.PageWidth, g.PageHeight)
	}
	if g.ColumnWidth() <= 0 {
		return fmt.Errorf("layout.geometry: side margins leave no room for text")
	}
	if g.TopMargin+g.BottomMargin >= g.PageHeight {
		return fmt.Errorf("layout.geometry: vertical margins leave no room for text")
	}

	styles := map[string]float64{
		"title_style":   c.Layout.TitleStyle.Size,
		"author_style":  c.Layout.AuthorStyle.Size,
		"meta_style":    c.Layout.MetaStyle.Size,
		"chapter_style": c.Layout.ChapterStyle.Size,
		"body_style":    c.Layout.BodyStyle.Size,
	}
	for name, size := range styles {
		if size <= 0 {
			return fmt.Errorf("layout.%s: size must be positive", name)
		}
	}

	if c.Layout.CoverImageMaxHeight <= 0 {
		return fmt.Errorf("layout.cover_image_max_height: must be positive")
	}

	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.HTTP.RetryCount < 0 {
		return fmt.Errorf("http_client.retry_count must be >= 0")
	}
	return nil
}
