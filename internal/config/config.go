// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ericfisherdev/ghrepo/internal/domain/model"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubToken  string
	APIURL       string
	Repos        []model.RepoRef
	PollInterval time.Duration
	ListenAddr   string
	DBPath       string
}

// HasGitHubToken reports whether requests will be authenticated. Anonymous
// access works but is limited to 60 requests per hour.
func (c *Config) HasGitHubToken() bool {
	return c.GitHubToken != ""
}

// Load reads configuration from environment variables and returns a validated Config.
// GHREPO_GITHUB_TOKEN is optional; without it requests are anonymous.
// GHREPO_REPOS is a comma-separated list of owner/repo names to keep snapshots of.
// Optional variables with defaults: GHREPO_API_URL (https://api.github.com/),
// GHREPO_POLL_INTERVAL (1m), GHREPO_LISTEN_ADDR (127.0.0.1:8080),
// GHREPO_DB_PATH (ghrepo.db).
func Load() (*Config, error) {
	token := os.Getenv("GHREPO_GITHUB_TOKEN")

	apiURL := "https://api.github.com/"
	if v, ok := os.LookupEnv("GHREPO_API_URL"); ok && v != "" {
		u, err := url.Parse(v)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("GHREPO_API_URL must be an absolute URL, got %q", v)
		}
		apiURL = v
	}

	pollInterval := 1 * time.Minute
	if v, ok := os.LookupEnv("GHREPO_POLL_INTERVAL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("GHREPO_POLL_INTERVAL has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("GHREPO_POLL_INTERVAL must be positive, got %s", parsed)
		}
		pollInterval = parsed
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("GHREPO_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "ghrepo.db"
	if v, ok := os.LookupEnv("GHREPO_DB_PATH"); ok {
		dbPath = v
	}

	repos := []model.RepoRef{}
	if v, ok := os.LookupEnv("GHREPO_REPOS"); ok && v != "" {
		seen := make(map[string]bool)
		for _, name := range strings.Split(v, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			ref, err := model.ParseRepoRef(name)
			if err != nil {
				return nil, fmt.Errorf("GHREPO_REPOS: %w", err)
			}
			key := strings.ToLower(ref.FullName())
			if seen[key] {
				continue
			}
			seen[key] = true
			repos = append(repos, ref)
		}
	}

	return &Config{
		GitHubToken:  token,
		APIURL:       apiURL,
		Repos:        repos,
		PollInterval: pollInterval,
		ListenAddr:   listenAddr,
		DBPath:       dbPath,
	}, nil
}
