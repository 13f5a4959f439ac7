package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"trainmap.dev/internal/models"
)

const (
	DefaultPollIntervalSeconds = 15
	DefaultFetchTimeoutSeconds = 10
	DefaultMaxRetries          = 3
	DefaultSubjectPrefix       = "trainmap.positions"
)

// Config holds all the configuration settings for our application.
type Config struct {
	Port     int
	Env      string
	Settings Settings
}

// NewConfig creates a new instance of a Config struct.
func NewConfig(port int, env string, settings Settings) *Config {
	return &Config{
		Port:     port,
		Env:      env,
		Settings: settings,
	}
}

// Settings is the content of the configuration file, JSON or YAML.
type Settings struct {
	Feed     models.FeedConfig `json:"feed" yaml:"feed"`
	Stations StationsConfig    `json:"stations" yaml:"stations"`

	PollIntervalSeconds int `json:"poll_interval_seconds" yaml:"poll_interval_seconds" validate:"gte=0"`
	FetchTimeoutSeconds int `json:"fetch_timeout_seconds" yaml:"fetch_timeout_seconds" validate:"gte=0"`
	// MaxRetries bounds the retries of station table and bundle downloads.
	MaxRetries int `json:"max_retries" yaml:"max_retries" validate:"gte=0"`

	// DropUnresolved removes positions whose next stop did not resolve
	// before they are served or published.
	DropUnresolved bool `json:"drop_unresolved" yaml:"drop_unresolved"`

	NATS NATSConfig `json:"nats" yaml:"nats"`
}

// StationsConfig selects where the station directory is loaded from.
// Exactly one field must be set.
type StationsConfig struct {
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
	URL       string `json:"url,omitempty" yaml:"url,omitempty" validate:"omitempty,url"`
	BundleURL string `json:"bundle_url,omitempty" yaml:"bundle_url,omitempty" validate:"omitempty,url"`
}

// NATSConfig enables snapshot publishing when URL is set.
type NATSConfig struct {
	URL           string `json:"url,omitempty" yaml:"url,omitempty" validate:"omitempty,url"`
	SubjectPrefix string `json:"subject_prefix,omitempty" yaml:"subject_prefix,omitempty"`
}

// PollInterval returns the interval between ingestion cycles.
func (s Settings) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalSeconds) * time.Second
}

// FetchTimeout returns the upper bound of one feed request.
func (s Settings) FetchTimeout() time.Duration {
	return time.Duration(s.FetchTimeoutSeconds) * time.Second
}

func (s *Settings) applyDefaults() {
	if s.PollIntervalSeconds == 0 {
		s.PollIntervalSeconds = DefaultPollIntervalSeconds
	}
	if s.FetchTimeoutSeconds == 0 {
		s.FetchTimeoutSeconds = DefaultFetchTimeoutSeconds
	}
	if s.MaxRetries == 0 {
		s.MaxRetries = DefaultMaxRetries
	}
	if s.NATS.SubjectPrefix == "" {
		s.NATS.SubjectPrefix = DefaultSubjectPrefix
	}
}

var validate = validator.New()

// Validate checks field constraints and that exactly one station source is configured.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	sources := 0
	for _, v := range []string{s.Stations.Path, s.Stations.URL, s.Stations.BundleURL} {
		if v != "" {
			sources++
		}
	}
	switch {
	case sources == 0:
		return errors.New("invalid settings: one of stations.path, stations.url or stations.bundle_url is required")
	case sources > 1:
		return errors.New("invalid settings: only one of stations.path, stations.url or stations.bundle_url can be set")
	}
	return nil
}
