package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable New binds so the host environment does not
// leak into the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"GH_TOKEN", "GITHUB_TOKEN", "GITHUB_DOMAIN", "GITHUB_REPOSITORY",
		"TRACK_REQUEST_TIMEOUT", "TRACK_USERS", "TRACK_ORGS", "TRACK_PER_PAGE",
		"TRACK_PAGE_LIMIT", "TRACK_LABEL", "TRACK_DRY_RUN",
		"TRACK_CLOSE_ON_PARTIAL_FETCH", "LOG_LEVEL",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadGitHubConfig(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		wantErr     error
		wantToken   string
		wantDomain  string
		wantTimeout time.Duration
	}{
		{
			name:        "GH_TOKEN with defaults",
			env:         map[string]string{"GH_TOKEN": "gh-token"},
			wantToken:   "gh-token",
			wantDomain:  "github.com",
			wantTimeout: DefaultRequestTimeout,
		},
		{
			name:        "GITHUB_TOKEN fallback",
			env:         map[string]string{"GITHUB_TOKEN": "actions-token"},
			wantToken:   "actions-token",
			wantDomain:  "github.com",
			wantTimeout: DefaultRequestTimeout,
		},
		{
			name:        "GH_TOKEN wins over GITHUB_TOKEN",
			env:         map[string]string{"GH_TOKEN": "first", "GITHUB_TOKEN": "second"},
			wantToken:   "first",
			wantDomain:  "github.com",
			wantTimeout: DefaultRequestTimeout,
		},
		{
			name: "Custom GitHub domain and timeout",
			env: map[string]string{
				"GH_TOKEN":              "t",
				"GITHUB_DOMAIN":         "github.example.com",
				"TRACK_REQUEST_TIMEOUT": "5s",
			},
			wantToken:   "t",
			wantDomain:  "github.example.com",
			wantTimeout: 5 * time.Second,
		},
		{
			name:    "Missing token",
			env:     map[string]string{"GITHUB_DOMAIN": "github.com"},
			wantErr: ErrMissingToken,
		},
		{
			name:    "Invalid paging",
			env:     map[string]string{"GH_TOKEN": "t", "TRACK_PER_PAGE": "0"},
			wantErr: ErrInvalidPaging,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			config, err := Load(New())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, config)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, config.GitHub.Token)
			assert.Equal(t, tt.wantDomain, config.GitHub.Domain)
			assert.Equal(t, tt.wantTimeout, config.GitHub.RequestTimeout)
		})
	}
}

func TestLoadSyncDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GH_TOKEN", "t")

	config, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, DefaultPerPage, config.Sync.PerPage)
	assert.Equal(t, DefaultPageLimit, config.Sync.PageLimit)
	assert.Equal(t, DefaultLabel, config.Sync.Label)
	assert.False(t, config.Sync.DryRun)
	assert.False(t, config.Sync.CloseOnPartialFetch)
	assert.Empty(t, config.Sync.Users)
	assert.ErrorIs(t, ValidateSyncConfig(config), ErrMissingUsers)
}

func TestLoadUsersFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("GH_TOKEN", "t")
	t.Setenv("TRACK_USERS", "alice, bob,,")
	t.Setenv("TRACK_ORGS", "acme")

	config, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, []string{"alice", "bob"}, config.Sync.Users)
	assert.Equal(t, []string{"acme"}, config.Sync.Orgs)
	assert.NoError(t, ValidateSyncConfig(config))
}

func TestReadFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("GH_TOKEN", "t")
	t.Setenv("TRACK_PAGE_LIMIT", "3")

	path := filepath.Join(t.TempDir(), "track-issues.yaml")
	content := `github:
  repository: acme/tracker
sync:
  users:
    - alice
    - bob
  orgs: acme, widgets
  per_page: 50
  page_limit: 20
  label: mirrored
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v := New()
	require.NoError(t, ReadFile(v, path))

	config, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "acme/tracker", config.GitHub.Repository)
	assert.Equal(t, []string{"alice", "bob"}, config.Sync.Users)
	assert.Equal(t, []string{"acme", "widgets"}, config.Sync.Orgs)
	assert.Equal(t, 50, config.Sync.PerPage)
	// environment beats the config file
	assert.Equal(t, 3, config.Sync.PageLimit)
	assert.Equal(t, "mirrored", config.Sync.Label)
}

func TestReadFileMissing(t *testing.T) {
	err := ReadFile(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)

	assert.NoError(t, ReadFile(New(), ""))
}

func TestParseCommaList(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{input: "", want: nil},
		{input: "alice", want: []string{"alice"}},
		{input: "alice,bob", want: []string{"alice", "bob"}},
		{input: " alice , , bob ,", want: []string{"alice", "bob"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCommaList(tt.input))
		})
	}
}
