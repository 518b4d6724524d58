package fetch

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mirrorServer answers every host on one listener, recording the hosts hit.
type mirrorServer struct {
	*httptest.Server
	mu    sync.Mutex
	hosts []string
}

func newMirrorServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *mirrorServer {
	t.Helper()
	m := &mirrorServer{}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			m.mu.Lock()
			m.hosts = append(m.hosts, hostOnly(r.Host))
			m.mu.Unlock()
		}
		handler(w, r)
	}))
	t.Cleanup(m.Close)
	return m
}

func (m *mirrorServer) transport() http.RoundTripper {
	addr := m.Listener.Addr().String()
	return &http.Transport{
		DialContext: func(ctx context.Context, network, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, addr)
		},
	}
}

func (m *mirrorServer) hits() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.hosts...)
}

func hostOnly(h string) string {
	if host, _, err := net.SplitHostPort(h); err == nil {
		return host
	}
	return h
}

func newTestFetcher(m *mirrorServer, robots bool) *Fetcher {
	return New(Config{
		DomainKeyword:  "audiobookbay",
		Extensions:     []string{"lu", "fi", "is"},
		RequestTimeout: 5 * time.Second,
		RespectRobots:  robots,
		Transport:      m.transport(),
	}, nil)
}

func TestFetchFirstMirrorSucceeds(t *testing.T) {
	m := newMirrorServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>ok</html>"))
	})
	f := newTestFetcher(m, false)

	page, err := f.Fetch(context.Background(), "http://audiobookbay.lu/page/2/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Equal(t, "<html>ok</html>", string(page.Body))
	assert.Equal(t, "http://audiobookbay.lu/page/2/", page.URL)
	assert.Equal(t, []string{"audiobookbay.lu"}, m.hits())
}

func TestFetchFallsBackOnServerError(t *testing.T) {
	m := newMirrorServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(hostOnly(r.Host), ".lu") {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("mirror"))
	})
	f := newTestFetcher(m, false)

	page, err := f.Fetch(context.Background(), "http://audiobookbay.lu/abss/x/")
	require.NoError(t, err)
	assert.Equal(t, "mirror", string(page.Body))
	assert.Equal(t, "http://audiobookbay.fi/abss/x/", page.FinalURL)
	assert.Equal(t, []string{"audiobookbay.lu", "audiobookbay.fi"}, m.hits())
}

func TestFetchClientErrorIsFinal(t *testing.T) {
	m := newMirrorServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	f := newTestFetcher(m, false)

	page, err := f.Fetch(context.Background(), "http://audiobookbay.lu/abss/missing/")
	require.Error(t, err)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, http.StatusNotFound, page.StatusCode)
	assert.Equal(t, []string{"audiobookbay.lu"}, m.hits())
}

func TestFetchAllMirrorsFail(t *testing.T) {
	m := newMirrorServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	f := newTestFetcher(m, false)

	_, err := f.Fetch(context.Background(), "http://audiobookbay.lu/page/1/")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllMirrorsFailed)
	assert.Len(t, m.hits(), 3)
}

func TestFetchOffSiteHostDirect(t *testing.T) {
	m := newMirrorServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	f := newTestFetcher(m, false)

	_, err := f.Fetch(context.Background(), "http://covers.example/img.jpg")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAllMirrorsFailed)
	assert.Equal(t, []string{"covers.example"}, m.hits())
}

func TestFetchRespectsRobots(t *testing.T) {
	m := newMirrorServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private\n"))
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	f := newTestFetcher(m, true)

	_, err := f.Fetch(context.Background(), "http://audiobookbay.lu/private/x")
	assert.ErrorIs(t, err, ErrDisallowed)

	page, err := f.Fetch(context.Background(), "http://audiobookbay.lu/page/1/")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(page.Body))
}

func TestFetchCancelled(t *testing.T) {
	m := newMirrorServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	f := newTestFetcher(m, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Fetch(ctx, "http://audiobookbay.lu/page/1/")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, m.hits())
}

func TestFetchCancelledInFlight(t *testing.T) {
	started := make(chan struct{}, 1)
	m := newMirrorServer(t, func(w http.ResponseWriter, r *http.Request) {
		started <- struct{}{}
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
			_, _ = w.Write([]byte("late"))
		}
	})
	f := New(Config{
		DomainKeyword:  "audiobookbay",
		Extensions:     []string{"lu"},
		RequestTimeout: time.Minute,
		Transport:      m.transport(),
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	begin := time.Now()
	_, err := f.Fetch(ctx, "http://audiobookbay.lu/page/1/")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(begin), 3*time.Second)
}

func TestCandidates(t *testing.T) {
	f := New(Config{DomainKeyword: "audiobookbay", Extensions: []string{"lu", ".fi"}}, nil)

	got, err := f.candidates("https://www.audiobookbay.is/abss/x/?a=1")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://audiobookbay.lu/abss/x/?a=1",
		"https://audiobookbay.fi/abss/x/?a=1",
	}, got)

	_, err = f.candidates("/relative/only")
	assert.Error(t, err)
}
