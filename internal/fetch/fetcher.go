// Package fetch downloads catalog pages, falling back across site mirrors.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/MMMarcy/voxlume/internal/crawler"
	"github.com/MMMarcy/voxlume/internal/metrics"
)

// DefaultUserAgent identifies the crawler to the catalog site.
const DefaultUserAgent = "voxlume/1.0 (+https://github.com/MMMarcy/voxlume)"

var (
	// ErrAllMirrorsFailed is returned when every mirror errored or answered 5xx.
	ErrAllMirrorsFailed = errors.New("all mirrors failed")
	// ErrDisallowed is returned for URLs robots.txt forbids.
	ErrDisallowed = errors.New("disallowed by robots.txt")
)

// StatusError is a final non-2xx answer.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
}

// Config controls the HTTP side of fetching.
type Config struct {
	// DomainKeyword marks hosts that belong to the site, e.g. "audiobookbay".
	DomainKeyword string
	// Extensions are the mirror TLDs tried in order, e.g. ["lu", "fi"].
	Extensions     []string
	UserAgent      string
	RequestTimeout time.Duration
	MaxBodySize    int
	RespectRobots  bool
	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
}

// Fetcher implements crawler.Fetcher with a colly collector.
type Fetcher struct {
	cfg    Config
	base   *colly.Collector
	robots *Robots
	logger *zap.Logger
}

// New builds a Fetcher.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	transport := cfg.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
			MaxIdleConns:          32,
			IdleConnTimeout:       30 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: cfg.RequestTimeout,
			ForceAttemptHTTP2:     true,
		}
	}

	base := colly.NewCollector(colly.UserAgent(cfg.UserAgent))
	// Listing pages are fetched again on every latest-mode round.
	base.AllowURLRevisit = true
	base.ParseHTTPErrorResponse = true
	base.IgnoreRobotsTxt = true
	base.MaxBodySize = cfg.MaxBodySize
	base.WithTransport(transport)
	base.SetRequestTimeout(cfg.RequestTimeout)

	f := &Fetcher{cfg: cfg, base: base, logger: logger}
	if cfg.RespectRobots {
		client := &http.Client{Transport: transport, Timeout: 10 * time.Second}
		f.robots = NewRobots(client, cfg.UserAgent, logger)
	}
	return f
}

// Fetch downloads rawURL. Site URLs are tried on each mirror in turn: a 2xx
// or 4xx answer is final, 5xx and transport errors move on to the next one.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (crawler.Page, error) {
	candidates, err := f.candidates(rawURL)
	if err != nil {
		return crawler.Page{}, err
	}

	var errs []error
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return crawler.Page{}, err
		}
		if f.robots != nil && !f.robots.Allowed(ctx, candidate) {
			metrics.ObserveFetch("disallowed", 0)
			return crawler.Page{}, fmt.Errorf("%s: %w", candidate, ErrDisallowed)
		}

		start := time.Now()
		page, err := f.fetchOnce(ctx, candidate)
		page.URL = rawURL
		switch {
		case err != nil:
			metrics.ObserveFetch("error", time.Since(start))
			f.logger.Warn("mirror fetch failed", zap.String("url", candidate), zap.Error(err))
			errs = append(errs, err)
		case page.StatusCode >= 500:
			metrics.ObserveFetch("server_error", time.Since(start))
			f.logger.Warn("mirror answered server error", zap.String("url", candidate), zap.Int("status", page.StatusCode))
			errs = append(errs, &StatusError{URL: candidate, StatusCode: page.StatusCode})
		case page.StatusCode >= 400:
			metrics.ObserveFetch("client_error", time.Since(start))
			return page, &StatusError{URL: candidate, StatusCode: page.StatusCode}
		default:
			metrics.ObserveFetch("ok", time.Since(start))
			return page, nil
		}
	}
	if len(candidates) == 1 {
		return crawler.Page{}, errs[0]
	}
	return crawler.Page{}, fmt.Errorf("%s: %w: %w", rawURL, ErrAllMirrorsFailed, errors.Join(errs...))
}

// candidates lists the URLs to try for rawURL, one per mirror for site URLs.
func (f *Fetcher) candidates(rawURL string) ([]string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("url %q has no host", rawURL)
	}
	keyword := f.cfg.DomainKeyword
	if keyword == "" || len(f.cfg.Extensions) == 0 || !strings.Contains(u.Hostname(), keyword) {
		return []string{rawURL}, nil
	}
	out := make([]string, 0, len(f.cfg.Extensions))
	for _, ext := range f.cfg.Extensions {
		mirror := *u
		mirror.Host = keyword + "." + strings.TrimPrefix(ext, ".")
		if port := u.Port(); port != "" {
			mirror.Host += ":" + port
		}
		out = append(out, mirror.String())
	}
	return out, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, target string) (crawler.Page, error) {
	collector := f.base.Clone()
	// Bound the in-flight request to ctx, not only the request timeout.
	collector.Context = ctx

	var (
		once sync.Once
		page crawler.Page
		ferr error
		got  bool
	)
	collector.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		once.Do(func() {
			got = true
			page = crawler.Page{
				URL:        target,
				FinalURL:   r.Request.URL.String(),
				StatusCode: r.StatusCode,
				Body:       append([]byte(nil), r.Body...),
			}
		})
	})
	collector.OnError(func(r *colly.Response, err error) {
		once.Do(func() {
			got = true
			if err == nil {
				err = errors.New("unknown colly error")
			}
			ferr = err
		})
	})

	if err := collector.Visit(target); err != nil {
		if ctx.Err() != nil {
			return crawler.Page{}, ctx.Err()
		}
		return crawler.Page{}, err
	}
	collector.Wait()
	if err := ctx.Err(); err != nil {
		return crawler.Page{}, err
	}
	if !got {
		return crawler.Page{}, errors.New("colly fetch produced no result")
	}
	return page, ferr
}
