// Package github lists the public repositories of a GitHub account for the
// profile repository proxy.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultAPIBaseURL = "https://api.github.com"

// Repo is the subset of the repository listing the profile page renders.
type Repo struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	HTMLURL     string `json:"html_url"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Stars       int    `json:"stargazers_count"`
	Watchers    int    `json:"watchers_count"`
	Forks       int    `json:"forks_count"`
	CreatedAt   string `json:"created_at"`
}

// Config holds the GitHub API client configuration.
type Config struct {
	// BaseURL overrides the GitHub API host, tests point it at a local
	// server.
	BaseURL string
	// Token is an optional personal access token to lift the anonymous
	// rate limit.
	Token string
	// PerPage caps the number of repositories returned.
	PerPage int

	HTTPClient *http.Client
}

// Client fetches repository listings.
type Client struct {
	config     Config
	httpClient *http.Client
}

// New creates a new GitHub API client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultAPIBaseURL
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = 5
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		config:     cfg,
		httpClient: client,
	}
}

// ListRepos returns the account's repositories, oldest first, capped at the
// configured page size. Any upstream failure, unknown user included, comes
// back as an error for the caller to translate.
func (c *Client) ListRepos(ctx context.Context, username string) (any, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("github: username is required")
	}

	params := url.Values{
		"per_page": {fmt.Sprintf("%d", c.config.PerPage)},
		"sort":     {"created:asc"},
	}

	endpoint := fmt.Sprintf("%s/users/%s/repos?%s", c.config.BaseURL, url.PathEscape(username), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github: %s", apiErrorMessage(body))
	}

	var repos []Repo
	if err := json.Unmarshal(body, &repos); err != nil {
		return nil, fmt.Errorf("github: failed to decode repos response: %w", err)
	}

	return repos, nil
}

type githubAPIError struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
}

func apiErrorMessage(body []byte) string {
	var apiErr githubAPIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return apiErr.Message
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "github request failed"
	}

	return msg
}
