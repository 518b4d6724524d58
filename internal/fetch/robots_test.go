package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestRobotsAllowed(t *testing.T) {
	var robotsHits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&robotsHits, 1)
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /search\nDisallow: /member\n"))
	}))
	defer srv.Close()

	r := NewRobots(srv.Client(), DefaultUserAgent, nil)
	ctx := context.Background()

	for _, path := range []string{"/page/1/", "/abss/some-book/"} {
		if !r.Allowed(ctx, srv.URL+path) {
			t.Errorf("expected path %q to be allowed", path)
		}
	}
	for _, path := range []string{"/search", "/search/x", "/member/login"} {
		if r.Allowed(ctx, srv.URL+path) {
			t.Errorf("expected path %q to be disallowed", path)
		}
	}
	if got := atomic.LoadInt32(&robotsHits); got != 1 {
		t.Errorf("robots.txt fetched %d times, want 1", got)
	}
}

func TestRobotsMissingAllowsAll(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	r := NewRobots(srv.Client(), DefaultUserAgent, nil)
	if !r.Allowed(context.Background(), srv.URL+"/anything") {
		t.Error("missing robots.txt should allow all")
	}
}

func TestRobotsNilAllowsAll(t *testing.T) {
	var r *Robots
	if !r.Allowed(context.Background(), "http://x/anything") {
		t.Error("nil robots should allow all")
	}
}

func TestPathFromURL(t *testing.T) {
	if got := PathFromURL("https://audiobookbay.lu/abss/x/?q=1"); got != "/abss/x/" {
		t.Errorf("PathFromURL = %q", got)
	}
	if got := PathFromURL("https://audiobookbay.lu"); got != "/" {
		t.Errorf("PathFromURL bare host = %q", got)
	}
}
