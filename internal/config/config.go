package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config is the server configuration. Values come from, in increasing
// priority: Default, an optional YAML file, a .env file in the working
// directory and the process environment.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Comments CommentsConfig `yaml:"comments"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"             env:"PORT"             validate:"min=1,max=65535"`
	StaticDir       string        `yaml:"static_dir"       env:"STATIC_DIR"       validate:"required"`
	LogLevel        string        `yaml:"log_level"        env:"LOG_LEVEL"        validate:"oneof=panic fatal error warn warning info debug trace"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
}

// CommentsConfig controls the HN comment cache and its upstream client.
type CommentsConfig struct {
	Lifetime          time.Duration `yaml:"lifetime"            env:"HN_COMMENTS_LIFETIME"   validate:"gt=0"`
	UpstreamTimeout   time.Duration `yaml:"upstream_timeout"    env:"HN_UPSTREAM_TIMEOUT"    validate:"gt=0"`
	RefreshTimeout    time.Duration `yaml:"refresh_timeout"     env:"HN_REFRESH_TIMEOUT"     validate:"gt=0"`
	MaxConcurrent     int           `yaml:"max_concurrent"      env:"HN_MAX_CONCURRENT"      validate:"min=1"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"HN_REQUESTS_PER_SECOND" validate:"gte=0"`
	SearchURL         string        `yaml:"search_url"          env:"HN_SEARCH_URL"          validate:"url"`
	ItemURL           string        `yaml:"item_url"            env:"HN_ITEM_URL"            validate:"url"`
	BlogDomains       []string      `yaml:"blog_domains"        env:"BLOG_DOMAINS"           env-separator:"," validate:"min=1,dive,hostname_rfc1123"`
	Owner             string        `yaml:"owner"               env:"HN_OWNER"`
	OwnerAvatar       string        `yaml:"owner_avatar"        env:"HN_OWNER_AVATAR"`
	Prefetch          bool          `yaml:"prefetch"            env:"HN_PREFETCH"`
}

// Default returns the configuration used when nothing is overridden. Load
// starts from it, so it is the only place defaults are spelled out.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            3000,
			StaticDir:       "dist",
			LogLevel:        "info",
			ShutdownTimeout: 10 * time.Second,
		},
		Comments: CommentsConfig{
			Lifetime:          60 * time.Second,
			UpstreamTimeout:   10 * time.Second,
			RefreshTimeout:    2 * time.Minute,
			MaxConcurrent:     10,
			RequestsPerSecond: 0,
			SearchURL:         "https://hn.algolia.com/api/v1",
			ItemURL:           "https://hacker-news.firebaseio.com/v0",
			BlogDomains:       []string{"brandons.me", "brandonsmith.ninja"},
			Owner:             "brundolf",
			OwnerAvatar:       "/img/me.jpeg",
		},
	}
}

// Load reads the configuration. path names an optional YAML file; an empty
// path reads the environment only.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the validate tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort("", strconv.Itoa(s.Port))
}

// Level parses LogLevel. Validate guarantees it is a logrus level.
func (s ServerConfig) Level() log.Level {
	lvl, err := log.ParseLevel(s.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
