// Package config provides centralized configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults applied when neither a flag, an environment variable nor the
// config file sets a value.
const (
	DefaultDomain         = "github.com"
	DefaultPerPage        = 100
	DefaultPageLimit      = 10
	DefaultLabel          = "tracked-issue"
	DefaultRequestTimeout = 30 * time.Second
)

// Configuration keys. Flags are bound to these keys by the cmd package.
const (
	KeyToken               = "github.token"
	KeyDomain              = "github.domain"
	KeyRepository          = "github.repository"
	KeyRequestTimeout      = "github.request_timeout"
	KeyUsers               = "sync.users"
	KeyOrgs                = "sync.orgs"
	KeyPerPage             = "sync.per_page"
	KeyPageLimit           = "sync.page_limit"
	KeyLabel               = "sync.label"
	KeyDryRun              = "sync.dry_run"
	KeyCloseOnPartialFetch = "sync.close_on_partial_fetch"
	KeyLogLevel            = "log_level"
)

var (
	// ErrMissingToken is returned when no GitHub token was supplied.
	ErrMissingToken = errors.New("no GitHub token provided (set --gh-token, GH_TOKEN or GITHUB_TOKEN)")
	// ErrMissingUsers is returned when a sync is requested without users.
	ErrMissingUsers = errors.New("at least one GitHub username is required (--users)")
	// ErrInvalidPaging is returned for non-positive page size or page limit.
	ErrInvalidPaging = errors.New("per-page and page-limit must be at least 1")
)

// Config holds all configuration parameters for the application.
type Config struct {
	GitHub   GitHubConfig
	Sync     SyncConfig
	LogLevel string
}

// GitHubConfig holds GitHub specific configuration.
type GitHubConfig struct {
	Token string
	// Domain is github.com or the host of a GitHub Enterprise instance.
	Domain string
	// Repository is the tracking repository in "owner/name" form. Empty
	// means it is resolved from the environment or the git remote.
	Repository     string
	RequestTimeout time.Duration
}

// SyncConfig holds the parameters of a single reconciliation run.
type SyncConfig struct {
	Users     []string
	Orgs      []string
	PerPage   int
	PageLimit int
	Label     string
	DryRun    bool
	// CloseOnPartialFetch allows closing tracking issues even when one of
	// the per-user searches failed during the same run.
	CloseOnPartialFetch bool
}

// New returns a viper instance with defaults and environment bindings set.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault(KeyDomain, DefaultDomain)
	v.SetDefault(KeyRequestTimeout, DefaultRequestTimeout)
	v.SetDefault(KeyPerPage, DefaultPerPage)
	v.SetDefault(KeyPageLimit, DefaultPageLimit)
	v.SetDefault(KeyLabel, DefaultLabel)
	v.SetDefault(KeyLogLevel, "info")

	// Map specific environment variables
	_ = v.BindEnv(KeyToken, "GH_TOKEN", "GITHUB_TOKEN")
	_ = v.BindEnv(KeyDomain, "GITHUB_DOMAIN")
	_ = v.BindEnv(KeyRepository, "GITHUB_REPOSITORY")
	_ = v.BindEnv(KeyRequestTimeout, "TRACK_REQUEST_TIMEOUT")
	_ = v.BindEnv(KeyUsers, "TRACK_USERS")
	_ = v.BindEnv(KeyOrgs, "TRACK_ORGS")
	_ = v.BindEnv(KeyPerPage, "TRACK_PER_PAGE")
	_ = v.BindEnv(KeyPageLimit, "TRACK_PAGE_LIMIT")
	_ = v.BindEnv(KeyLabel, "TRACK_LABEL")
	_ = v.BindEnv(KeyDryRun, "TRACK_DRY_RUN")
	_ = v.BindEnv(KeyCloseOnPartialFetch, "TRACK_CLOSE_ON_PARTIAL_FETCH")
	_ = v.BindEnv(KeyLogLevel, "LOG_LEVEL")

	return v
}

// ReadFile merges a YAML (or any viper supported) config file into v.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// Load builds a Config from v and checks that a token is present.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		GitHub: GitHubConfig{
			Token:          strings.TrimSpace(v.GetString(KeyToken)),
			Domain:         strings.TrimSpace(v.GetString(KeyDomain)),
			Repository:     strings.TrimSpace(v.GetString(KeyRepository)),
			RequestTimeout: v.GetDuration(KeyRequestTimeout),
		},
		Sync: SyncConfig{
			Users:               getList(v, KeyUsers),
			Orgs:                getList(v, KeyOrgs),
			PerPage:             v.GetInt(KeyPerPage),
			PageLimit:           v.GetInt(KeyPageLimit),
			Label:               strings.TrimSpace(v.GetString(KeyLabel)),
			DryRun:              v.GetBool(KeyDryRun),
			CloseOnPartialFetch: v.GetBool(KeyCloseOnPartialFetch),
		},
		LogLevel: v.GetString(KeyLogLevel),
	}

	if cfg.GitHub.Domain == "" {
		cfg.GitHub.Domain = DefaultDomain
	}
	if cfg.Sync.Label == "" {
		cfg.Sync.Label = DefaultLabel
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig ensures that the values every command needs are provided.
func validateConfig(config *Config) error {
	if config.GitHub.Token == "" {
		return ErrMissingToken
	}
	if config.Sync.PerPage < 1 || config.Sync.PageLimit < 1 {
		return fmt.Errorf("%w: got per-page=%d page-limit=%d",
			ErrInvalidPaging, config.Sync.PerPage, config.Sync.PageLimit)
	}
	return nil
}

// ValidateSyncConfig validates the settings only a sync run requires.
func ValidateSyncConfig(config *Config) error {
	if len(config.Sync.Users) == 0 {
		return ErrMissingUsers
	}
	return nil
}

// ParseCommaList splits a comma-separated value, trimming whitespace and
// dropping empty items.
func ParseCommaList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// getList reads key either as a YAML list or as a comma-separated string.
func getList(v *viper.Viper, key string) []string {
	switch raw := v.Get(key).(type) {
	case nil:
		return nil
	case []string:
		return ParseCommaList(strings.Join(raw, ","))
	case []any:
		parts := make([]string, 0, len(raw))
		for _, item := range raw {
			parts = append(parts, fmt.Sprint(item))
		}
		return ParseCommaList(strings.Join(parts, ","))
	default:
		return ParseCommaList(v.GetString(key))
	}
}
