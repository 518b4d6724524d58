package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

const maxRobotsBody = 1 << 20

// Robots answers robots.txt checks, caching the parsed rules per host.
// Hosts whose robots.txt cannot be fetched are treated as allowing everything.
type Robots struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger

	mu    sync.Mutex
	rules map[string]*robotstxt.RobotsData
}

// NewRobots builds a robots checker. The client should carry the crawl
// User-Agent's transport so site-specific rules apply.
func NewRobots(client *http.Client, userAgent string, logger *zap.Logger) *Robots {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Robots{
		client:    client,
		userAgent: userAgent,
		logger:    logger,
		rules:     make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether rawURL may be crawled.
func (r *Robots) Allowed(ctx context.Context, rawURL string) bool {
	if r == nil {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	data := r.load(ctx, u)
	if data == nil {
		return true
	}
	return data.TestAgent(PathFromURL(rawURL), r.userAgent)
}

func (r *Robots) load(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	host := strings.ToLower(u.Host)
	r.mu.Lock()
	data, ok := r.rules[host]
	r.mu.Unlock()
	if ok {
		return data
	}

	data, err := r.fetch(ctx, u)
	if err != nil {
		r.logger.Warn("robots.txt unavailable, allowing host", zap.String("host", host), zap.Error(err))
		data = nil
	}
	r.mu.Lock()
	r.rules[host] = data
	r.mu.Unlock()
	return data
}

// fetch downloads and parses robots.txt. Fetching /robots.txt itself is
// always allowed.
func (r *Robots) fetch(ctx context.Context, base *url.URL) (*robotstxt.RobotsData, error) {
	u := *base
	u.Path = "/robots.txt"
	u.RawQuery = ""
	u.Fragment = ""
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", r.userAgent)
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBody))
	if err != nil {
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}
	return robotstxt.FromStatusAndBytes(resp.StatusCode, body)
}

// PathFromURL returns the path component of rawURL, "/" when it has none.
func PathFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}
