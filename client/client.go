// Package client is a typed consumer of the devlink JSON API. It owns the
// token lifecycle: hydrate a persisted session on startup, attach the token
// to every request, clear it on logout.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/devlink/devlink"
	"github.com/devlink/devlink/github"
	"github.com/google/uuid"
)

const tokenHeader = "x-auth-token"

// APIError is a non-2xx response decoded into the API error envelope.
type APIError struct {
	Status   int
	Msg      string
	Messages []string
}

func (e *APIError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("api error %d: %s", e.Status, strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Msg)
}

// IsAuthError reports whether the server rejected the session token.
func (e *APIError) IsAuthError() bool {
	return e.Status == http.StatusUnauthorized
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	store      SessionStore

	mu      sync.RWMutex
	session Session
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithSessionStore(store SessionStore) Option {
	return func(c *Client) {
		c.store = store
	}
}

// New creates a client. The persisted session, when present, is loaded but
// not yet verified, call Hydrate for that.
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		store:      NewMemorySessionStore(),
	}

	for _, opt := range opts {
		opt(c)
	}

	session, err := c.store.Load()
	if err != nil {
		return nil, fmt.Errorf("client: load session: %w", err)
	}
	c.session = session

	return c, nil
}

// Session returns a copy of the current session.
func (c *Client) Session() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// Hydrate verifies the persisted token against the server and returns the
// identity behind it. A rejected token clears the session so the next run
// starts unauthenticated.
func (c *Client) Hydrate(ctx context.Context) (*devlink.User, error) {
	if !c.Session().Valid() {
		return nil, nil
	}

	user, err := c.CurrentUser(ctx)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsAuthError() {
			if clearErr := c.clearSession(); clearErr != nil {
				return nil, clearErr
			}
			return nil, nil
		}
		return nil, err
	}

	return user, nil
}

// Register creates an account and starts a session with its first token.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	var resp devlink.TokenResponse
	err := c.do(ctx, http.MethodPost, "/api/users", devlink.RegisterPayload{
		Name:     name,
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return err
	}

	return c.setSession(Session{Token: resp.Token})
}

// Login exchanges credentials for a token and persists it.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp devlink.TokenResponse
	err := c.do(ctx, http.MethodPost, "/api/auth", devlink.LoginPayload{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return err
	}

	return c.setSession(Session{Token: resp.Token})
}

// Logout discards the session. The token stays valid server side until it
// expires, logout is purely a client side operation.
func (c *Client) Logout() error {
	return c.clearSession()
}

// CurrentUser returns the identity behind the session token.
func (c *Client) CurrentUser(ctx context.Context) (*devlink.User, error) {
	user := &devlink.User{}
	if err := c.do(ctx, http.MethodGet, "/api/auth", nil, user); err != nil {
		return nil, err
	}
	return user, nil
}

// MyProfile returns the caller's profile.
func (c *Client) MyProfile(ctx context.Context) (*devlink.Profile, error) {
	profile := &devlink.Profile{}
	if err := c.do(ctx, http.MethodGet, "/api/profile/me", nil, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Profiles returns every profile.
func (c *Client) Profiles(ctx context.Context) ([]*devlink.Profile, error) {
	profiles := []*devlink.Profile{}
	if err := c.do(ctx, http.MethodGet, "/api/profile", nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// ProfileByUser returns the profile owned by the given user.
func (c *Client) ProfileByUser(ctx context.Context, userID uuid.UUID) (*devlink.Profile, error) {
	profile := &devlink.Profile{}
	if err := c.do(ctx, http.MethodGet, "/api/profile/user/"+userID.String(), nil, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateProfile creates or updates the caller's profile.
func (c *Client) UpdateProfile(ctx context.Context, payload devlink.ProfilePayload) (*devlink.Profile, error) {
	profile := &devlink.Profile{}
	if err := c.do(ctx, http.MethodPost, "/api/profile", payload, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// DeleteAccount removes the account, its profile and its posts, then
// discards the session.
func (c *Client) DeleteAccount(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/api/profile", nil, nil); err != nil {
		return err
	}
	return c.clearSession()
}

// AddExperience prepends an experience entry and returns the profile.
func (c *Client) AddExperience(ctx context.Context, payload devlink.ExperiencePayload) (*devlink.Profile, error) {
	profile := &devlink.Profile{}
	if err := c.do(ctx, http.MethodPut, "/api/profile/experience", payload, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// DeleteExperience removes an experience entry and returns the profile.
func (c *Client) DeleteExperience(ctx context.Context, id uuid.UUID) (*devlink.Profile, error) {
	profile := &devlink.Profile{}
	if err := c.do(ctx, http.MethodDelete, "/api/profile/experience/"+id.String(), nil, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// AddEducation prepends an education entry and returns the profile.
func (c *Client) AddEducation(ctx context.Context, payload devlink.EducationPayload) (*devlink.Profile, error) {
	profile := &devlink.Profile{}
	if err := c.do(ctx, http.MethodPut, "/api/profile/education", payload, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// DeleteEducation removes an education entry and returns the profile.
func (c *Client) DeleteEducation(ctx context.Context, id uuid.UUID) (*devlink.Profile, error) {
	profile := &devlink.Profile{}
	if err := c.do(ctx, http.MethodDelete, "/api/profile/education/"+id.String(), nil, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// GithubRepos returns the public repositories behind a GitHub username.
func (c *Client) GithubRepos(ctx context.Context, username string) ([]github.Repo, error) {
	repos := []github.Repo{}
	if err := c.do(ctx, http.MethodGet, "/api/profile/github/"+username, nil, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// CreatePost publishes a post.
func (c *Client) CreatePost(ctx context.Context, text string) (*devlink.Post, error) {
	post := &devlink.Post{}
	if err := c.do(ctx, http.MethodPost, "/api/posts", devlink.PostPayload{Text: text}, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Posts returns every post, most recent first.
func (c *Client) Posts(ctx context.Context) ([]*devlink.Post, error) {
	posts := []*devlink.Post{}
	if err := c.do(ctx, http.MethodGet, "/api/posts", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Post returns one post by id.
func (c *Client) Post(ctx context.Context, id uuid.UUID) (*devlink.Post, error) {
	post := &devlink.Post{}
	if err := c.do(ctx, http.MethodGet, "/api/posts/"+id.String(), nil, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes one of the caller's posts.
func (c *Client) DeletePost(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/posts/"+id.String(), nil, nil)
}

// Like records a like and returns the likes list.
func (c *Client) Like(ctx context.Context, id uuid.UUID) ([]devlink.Like, error) {
	likes := []devlink.Like{}
	if err := c.do(ctx, http.MethodPut, "/api/posts/like/"+id.String(), nil, &likes); err != nil {
		return nil, err
	}
	return likes, nil
}

// Unlike removes a like and returns the likes list.
func (c *Client) Unlike(ctx context.Context, id uuid.UUID) ([]devlink.Like, error) {
	likes := []devlink.Like{}
	if err := c.do(ctx, http.MethodPut, "/api/posts/unlike/"+id.String(), nil, &likes); err != nil {
		return nil, err
	}
	return likes, nil
}

// Comment adds a comment and returns the comments list.
func (c *Client) Comment(ctx context.Context, postID uuid.UUID, text string) ([]devlink.Comment, error) {
	comments := []devlink.Comment{}
	err := c.do(ctx, http.MethodPost, "/api/posts/comment/"+postID.String(), devlink.PostPayload{Text: text}, &comments)
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// DeleteComment removes one of the caller's comments and returns the
// comments list.
func (c *Client) DeleteComment(ctx context.Context, postID, commentID uuid.UUID) ([]devlink.Comment, error) {
	comments := []devlink.Comment{}
	path := fmt.Sprintf("/api/posts/comment/%s/%s", postID, commentID)
	if err := c.do(ctx, http.MethodDelete, path, nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Client) setSession(session Session) error {
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
	return c.store.Save(session)
}

func (c *Client) clearSession() error {
	c.mu.Lock()
	c.session = Session{}
	c.mu.Unlock()
	return c.store.Clear()
}

func (c *Client) do(ctx context.Context, method, path string, body, target any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("client: create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if session := c.Session(); session.Valid() {
		req.Header.Set(tokenHeader, session.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp.StatusCode, data)
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}

	return nil
}

func decodeAPIError(status int, body []byte) error {
	apiErr := &APIError{Status: status}

	var envelope struct {
		Msg    string `json:"msg"`
		Errors []struct {
			Msg string `json:"msg"`
		} `json:"errors"`
	}

	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Msg = envelope.Msg
		for _, e := range envelope.Errors {
			apiErr.Messages = append(apiErr.Messages, e.Msg)
		}
	}

	if apiErr.Msg == "" && len(apiErr.Messages) == 0 {
		apiErr.Msg = strings.TrimSpace(string(body))
	}

	return apiErr
}
