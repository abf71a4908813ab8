package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// DefaultFile is the configuration file read from the working directory.
const DefaultFile = "config.toml"

var (
	ErrConfigNotFound = errors.New("no config.toml found")
	ErrConfigEmpty    = errors.New("config.toml is empty")
	ErrConfigInvalid  = errors.New("invalid configuration")
)

// Config is the site-wide configuration. It is loaded once per build and
// never mutated afterwards.
type Config struct {
	BaseURL        string `mapstructure:"baseurl"`
	Title          string `mapstructure:"title"`
	Author         string `mapstructure:"author"`
	FeedPath       string `mapstructure:"feed_path"`
	FeedFormat     string `mapstructure:"feed_format"`
	Verbose        bool   `mapstructure:"verbose"`
	ThemeDir       string `mapstructure:"theme"`
	ContentDir     string `mapstructure:"content_dir"`
	StaticDir      string `mapstructure:"static_dir"`
	OutputDir      string `mapstructure:"output_dir"`
	Macros         bool   `mapstructure:"macros"`
	HighlightStyle string `mapstructure:"highlight_style"`
}

// keys lists every setting so each one can be overridden from the
// environment, whether or not the file sets it.
var keys = []string{
	"baseurl", "title", "author", "feed_path", "feed_format", "verbose",
	"theme", "content_dir", "static_dir", "output_dir", "macros", "highlight_style",
}

// Load reads and decodes the configuration file at path from fsys.
// A missing or blank file is fatal for the build.
func Load(fsys afero.Fs, path string) (Config, error) {
	raw, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return Config{}, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigEmpty, path)
	}

	v := viper.New()
	v.SetFs(fsys)

	v.SetDefault("feed_path", "atom.xml")
	v.SetDefault("feed_format", "atom")
	v.SetDefault("theme", "theme")
	v.SetDefault("content_dir", "content")
	v.SetDefault("static_dir", "static")
	v.SetDefault("output_dir", "public")

	v.SetConfigFile(path)
	v.SetConfigType("toml")

	v.SetEnvPrefix("TOME")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("%w: error parsing config file %s: %w", ErrConfigInvalid, path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: unable to decode config into struct: %w", ErrConfigInvalid, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	cfg.FeedPath = strings.TrimPrefix(cfg.FeedPath, "/")
	return cfg, nil
}

func (c Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: baseurl is required", ErrConfigInvalid)
	}
	if c.Title == "" {
		return fmt.Errorf("%w: title is required", ErrConfigInvalid)
	}
	switch c.FeedFormat {
	case "atom", "rss":
	default:
		return fmt.Errorf("%w: feed_format must be atom or rss, got %q", ErrConfigInvalid, c.FeedFormat)
	}
	if c.FeedPath == "" {
		return fmt.Errorf("%w: feed_path cannot be empty", ErrConfigInvalid)
	}
	return nil
}
