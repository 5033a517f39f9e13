// Package github fetches a user's repositories from the GitHub REST API and
// turns them into portfolio projects.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"digital-garden/backend/internal/constants"
	apperrors "digital-garden/backend/pkg/errors"
	"digital-garden/backend/pkg/logger"
)

// Repo is the subset of the repository payload the garden uses
type Repo struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	FullName        string   `json:"full_name"`
	Description     string   `json:"description"`
	HTMLURL         string   `json:"html_url"`
	Homepage        string   `json:"homepage"`
	Language        string   `json:"language"`
	Topics          []string `json:"topics"`
	StargazersCount int      `json:"stargazers_count"`
	Fork            bool     `json:"fork"`
	Archived        bool     `json:"archived"`
	Private         bool     `json:"private"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
	Owner           struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// User is the authenticated account
type User struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	HTMLURL   string `json:"html_url,omitempty"`
}

// Client is a rate limited GitHub API client
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	limiter    *rate.Limiter
	now        func() time.Time
	log        *zap.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the default http client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken authenticates requests with a bearer token
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithRateLimit caps outbound requests per second
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithClock overrides time.Now, used by the status heuristic
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithLogger sets the client logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a client against baseURL, e.g. https://api.github.com
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(rate.Limit(5), 1),
		now:        time.Now,
		log:        logger.Named("github"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasToken reports whether requests are authenticated
func (c *Client) HasToken() bool {
	return c.token != ""
}

// get performs a GET against the API and decodes the JSON body into out
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return apperrors.NewContextTimeout("github "+path, 0)
		}
		return apperrors.NewContextCancelled("github "+path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return apperrors.NewGitHubRequestFailed(path, 0, err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", constants.UserAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewGitHubRequestFailed(path, 0, err)
	}
	defer resp.Body.Close()

	c.log.Debug("GitHub request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return apperrors.NewGitHubNotFound(path)
	case http.StatusUnauthorized, http.StatusForbidden:
		if resp.Header.Get("X-RateLimit-Remaining") == "0" {
			return apperrors.NewGitHubRateLimited(resetTime(resp.Header))
		}
		return apperrors.ErrGitHubUnauthorized
	case http.StatusTooManyRequests:
		return apperrors.NewGitHubRateLimited(resetTime(resp.Header))
	default:
		return apperrors.NewGitHubRequestFailed(path, resp.StatusCode, nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewGitHubRequestFailed(path, resp.StatusCode, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

func resetTime(h http.Header) time.Time {
	secs, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}

// ListUserRepos returns the owner's repositories, most recently updated first
func (c *Client) ListUserRepos(ctx context.Context, user string) ([]Repo, error) {
	q := url.Values{}
	q.Set("type", "owner")
	q.Set("sort", "updated")
	q.Set("per_page", strconv.Itoa(constants.ReposPerPage))

	var repos []Repo
	path := "/users/" + url.PathEscape(user) + "/repos?" + q.Encode()
	if err := c.get(ctx, path, &repos); err != nil {
		return nil, fmt.Errorf("failed to list repositories for %s: %w", user, err)
	}
	return repos, nil
}

// Languages returns up to five language names of a repository, largest first.
func (c *Client) Languages(ctx context.Context, fullName string) ([]string, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/repos/"+fullName+"/languages", &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch languages for %s: %w", fullName, err)
	}
	langs, err := orderedKeys(raw)
	if err != nil {
		return nil, apperrors.NewGitHubRequestFailed("/repos/"+fullName+"/languages", http.StatusOK, err)
	}
	if len(langs) > constants.MaxLanguagesPerRepo {
		langs = langs[:constants.MaxLanguagesPerRepo]
	}
	return langs, nil
}

// orderedKeys returns object keys in document order; the API already
// sorts languages by byte count
func orderedKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", tok)
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// AuthenticatedUser returns the account owning the token
func (c *Client) AuthenticatedUser(ctx context.Context) (*User, error) {
	if c.token == "" {
		return nil, apperrors.ErrGitHubUnauthorized
	}
	var u User
	if err := c.get(ctx, "/user", &u); err != nil {
		return nil, fmt.Errorf("failed to fetch authenticated user: %w", err)
	}
	return &u, nil
}
