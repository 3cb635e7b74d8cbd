// Package github implements the remote gateway over the GitHub REST API.
//
// Issues are the remote records; pull requests returned by the issues
// endpoint are ignored. The board status of an issue is carried by a label
// with a configurable prefix ("status: Doing" by default) and every other
// label is passed through as a tag.
package github

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/Mschirtzinger/boardsync/internal/logging"
	"github.com/Mschirtzinger/boardsync/internal/types"
)

const (
	// DefaultBaseURL is the public GitHub API endpoint.
	DefaultBaseURL = "https://api.github.com"
	// DefaultStatusPrefix marks labels that carry the board status.
	DefaultStatusPrefix = "status: "

	apiVersion  = "2022-11-28"
	perPage     = 100
	maxBodySize = 10 << 20
)

// Config configures a Client.
type Config struct {
	BaseURL      string
	Token        string
	Timeout      time.Duration
	StatusPrefix string
	UserAgent    string
	Retry        RetryConfig
}

// Client talks to the GitHub REST API. It is safe for concurrent use.
type Client struct {
	http   *http.Client
	base   string
	prefix string
	agent  string
	retry  RetryConfig
	logger *slog.Logger
}

// New creates a Client. An empty token makes unauthenticated requests,
// which only work for public repositories and cannot write.
//
// If logger is nil, slog.Default() is used.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", cfg.BaseURL, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	hc := &http.Client{Timeout: timeout}
	if cfg.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, hc)
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
		hc.Timeout = timeout
	}

	prefix := cfg.StatusPrefix
	if prefix == "" {
		prefix = DefaultStatusPrefix
	}
	agent := cfg.UserAgent
	if agent == "" {
		agent = "boardsync"
	}
	rc := cfg.Retry
	if rc.MaxAttempts == 0 {
		rc = DefaultRetryConfig()
	}

	return &Client{
		http:   hc,
		base:   base,
		prefix: prefix,
		agent:  agent,
		retry:  rc,
		logger: logging.Component(logger, "github"),
	}, nil
}

type response struct {
	body   []byte
	header http.Header
}

// get issues a GET for a path relative to the base URL, or for an absolute
// URL on the same host (pagination links).
func (c *Client) get(ctx context.Context, target string) (*response, error) {
	return c.do(ctx, http.MethodGet, target, nil)
}

func (c *Client) do(ctx context.Context, method, target string, body []byte) (*response, error) {
	u, err := c.resolve(target)
	if err != nil {
		return nil, err
	}

	// POST is not idempotent: retry it only when it was rejected unprocessed.
	retryable := types.IsRetryable
	if method == http.MethodPost {
		retryable = func(err error) bool { return errors.Is(err, types.ErrRateLimited) }
	}

	var resp *response
	err = retry(ctx, c.retry, c.logger, retryable, func() error {
		r, err := c.once(ctx, method, u, body)
		resp = r
		return err
	})
	return resp, err
}

func (c *Client) resolve(target string) (string, error) {
	if strings.HasPrefix(target, "/") {
		return c.base + target, nil
	}
	if !strings.HasPrefix(target, c.base+"/") {
		return "", fmt.Errorf("refusing to follow %q outside %s", target, c.base)
	}
	return target, nil
}

func (c *Client) once(ctx context.Context, method, target string, body []byte) (*response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", c.agent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	path := req.URL.Path
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s %s: %w: %v", method, path, types.ErrTransient, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: reading body: %v", method, path, types.ErrTransient, err)
	}

	if remaining := resp.Header.Get("X-RateLimit-Remaining"); remaining != "" {
		c.logger.Debug("api call", "method", method, "path", path, "status", resp.StatusCode, "rate_remaining", remaining)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(method, path, resp, data)
	}
	return &response{body: data, header: resp.Header}, nil
}

// nextLink extracts the rel="next" URL from a Link header.
func nextLink(h http.Header) string {
	for _, part := range strings.Split(h.Get("Link"), ",") {
		segs := strings.Split(part, ";")
		if len(segs) < 2 {
			continue
		}
		target := strings.Trim(strings.TrimSpace(segs[0]), "<>")
		for _, attr := range segs[1:] {
			if strings.TrimSpace(attr) == `rel="next"` {
				return target
			}
		}
	}
	return ""
}

// repoPath validates an "owner/repo" origin and returns its API path.
func repoPath(origin string) (string, error) {
	owner, name, ok := strings.Cut(origin, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", fmt.Errorf("invalid repository %q: must be owner/repo", origin)
	}
	return "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(name), nil
}
