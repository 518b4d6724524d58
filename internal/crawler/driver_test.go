package crawler_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MMMarcy/voxlume/internal/crawler"
	"github.com/MMMarcy/voxlume/internal/dedupe"
	"github.com/MMMarcy/voxlume/internal/graph"
	"github.com/MMMarcy/voxlume/internal/graph/graphtest"
	"github.com/MMMarcy/voxlume/internal/models"
	"github.com/MMMarcy/voxlume/internal/queue/memory"
	"github.com/MMMarcy/voxlume/mocks"
)

func listingURL(page int) string {
	return fmt.Sprintf("%s/page/%d/", testBase, page)
}

// site serves canned pages keyed by URL. The body doubles as the region text.
type site struct {
	mu       sync.Mutex
	listings map[string]models.SubmissionList
	details  map[string]models.AudiobookMetadata
	fetched  []string
}

func (s *site) Fetch(_ context.Context, url string) (crawler.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetched = append(s.fetched, url)
	return crawler.Page{URL: url, StatusCode: 200, Body: []byte(url)}, nil
}

func (s *site) Extract(body []byte, _ models.Region) (string, bool) {
	return string(body), true
}

func (s *site) ExtractSubmissions(_ context.Context, text string) (models.SubmissionList, bool, error) {
	list, ok := s.listings[text]
	return list, ok, nil
}

func (s *site) ExtractAudiobook(_ context.Context, text string) (models.AudiobookMetadata, bool, error) {
	meta, ok := s.details[text]
	return meta, ok, nil
}

func (s *site) fetches() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.fetched...)
}

type pipeline struct {
	driver *crawler.Driver
	queue  *memory.Queue
	graph  *graphtest.Graph
	site   *site
}

func newPipeline(t *testing.T, s *site, dcfg crawler.DispatcherConfig, cfg crawler.DriverConfig, notifier crawler.Notifier, status crawler.StatusReporter) pipeline {
	t.Helper()
	g := graphtest.New()
	store := graph.NewStore(g.Driver(), "", nil)
	q := memory.New()

	if dcfg.BaseURL == "" {
		dcfg.BaseURL = testBase
	}
	if dcfg.DomainKeyword == "" {
		dcfg.DomainKeyword = "audiobookbay"
	}
	dispatcher := crawler.NewDispatcher(dcfg, crawler.Dependencies{
		Fetcher:   s,
		Regions:   s,
		Extractor: s,
		Guard:     dedupe.NewGuard(store, nil, nil),
		Persister: store,
		Queue:     q,
	}, nil)

	if cfg.ListingURL == nil {
		cfg.ListingURL = listingURL
	}
	return pipeline{
		driver: crawler.NewDriver(cfg, q, dispatcher, notifier, status, nil),
		queue:  q,
		graph:  g,
		site:   s,
	}
}

func TestBackfillEndToEnd(t *testing.T) {
	s := &site{
		listings: map[string]models.SubmissionList{
			listingURL(1): {Submissions: []models.Submission{{URL: "/b1"}}},
		},
		details: map[string]models.AudiobookMetadata{
			testBase + "/b1": {
				Authors:        []string{"A"},
				ReadBy:         []string{"R"},
				Categories:     []string{"C"},
				Keywords:       []string{},
				IsPartOfSeries: false,
			},
		},
	}
	p := newPipeline(t, s, crawler.DispatcherConfig{}, crawler.DriverConfig{}, nil, nil)

	require.NoError(t, p.driver.Backfill(context.Background(), 1, 2))

	g := p.graph
	assert.Equal(t, 1, g.NodeCount(models.LabelAudiobook))
	_, ok := g.Node(models.LabelAudiobook, "/b1")
	assert.True(t, ok)
	assert.Equal(t, 1, g.EdgeCount(models.RelWrittenBy))
	assert.True(t, g.HasEdge("/b1", models.RelWrittenBy, "A"))
	assert.Equal(t, 1, g.EdgeCount(models.RelReadBy))
	assert.True(t, g.HasEdge("/b1", models.RelReadBy, "R"))
	assert.Equal(t, 1, g.EdgeCount(models.RelCategorizedAs))
	assert.True(t, g.HasEdge("/b1", models.RelCategorizedAs, "C"))
	assert.Equal(t, 0, g.NodeCount(models.LabelSeries))

	assert.Zero(t, p.queue.Len())
	counters := p.driver.Counters()
	assert.Equal(t, 2, counters.Dispatched)
	assert.Equal(t, 1, counters.Persisted)
}

func TestBackfillSecondRunSkipsExisting(t *testing.T) {
	s := &site{
		listings: map[string]models.SubmissionList{
			listingURL(1): {Submissions: []models.Submission{{URL: "/b1"}}},
		},
		details: map[string]models.AudiobookMetadata{
			testBase + "/b1": {Authors: []string{"A"}},
		},
	}
	p := newPipeline(t, s, crawler.DispatcherConfig{}, crawler.DriverConfig{}, nil, nil)
	ctx := context.Background()

	require.NoError(t, p.driver.Backfill(ctx, 1, 2))
	require.NoError(t, p.driver.Backfill(ctx, 1, 2))

	// The second run fetches the listing again but not the detail page.
	assert.Equal(t, []string{listingURL(1), testBase + "/b1", listingURL(1)}, s.fetches())
	assert.Equal(t, 1, p.graph.NodeCount(models.LabelAudiobook))
	assert.Equal(t, 1, p.driver.Counters().Skipped)
}

func TestFatalListingHaltsDequeues(t *testing.T) {
	s := &site{
		listings: map[string]models.SubmissionList{},
		details:  map[string]models.AudiobookMetadata{},
	}
	p := newPipeline(t, s, crawler.DispatcherConfig{}, crawler.DriverConfig{}, nil, nil)

	err := p.driver.Backfill(context.Background(), 1, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, crawler.ErrListingExtraction)

	// Page 3 failed first; pages 2 and 1 stay queued untouched.
	assert.Equal(t, []string{listingURL(3)}, s.fetches())
	items := p.queue.Items()
	require.Len(t, items, 2)
	assert.Equal(t, listingURL(2), items[0].URL)
	assert.Equal(t, listingURL(1), items[1].URL)
}

func TestSeedListingsDescending(t *testing.T) {
	q := memory.New()
	n, err := crawler.SeedListings(context.Background(), q, listingURL, "run-s", 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var got []string
	for _, item := range q.Items() {
		assert.Equal(t, models.PageKindListing, item.Kind)
		assert.Equal(t, "run-s", item.RunID)
		got = append(got, item.URL)
	}
	assert.Equal(t, []string{listingURL(4), listingURL(3), listingURL(2)}, got)
}

func TestSeedListingsInvalidRange(t *testing.T) {
	q := memory.New()
	for _, r := range [][2]int{{0, 2}, {3, 3}, {5, 2}} {
		_, err := crawler.SeedListings(context.Background(), q, listingURL, "", r[0], r[1])
		assert.Error(t, err, "range %v", r)
	}
	assert.Zero(t, q.Len())
}

func TestDrainStopsOnExisting(t *testing.T) {
	s := &site{
		listings: map[string]models.SubmissionList{
			listingURL(1): {Submissions: []models.Submission{{URL: "/new"}, {URL: "/old"}}},
		},
		details: map[string]models.AudiobookMetadata{
			testBase + "/new": {Authors: []string{"A"}},
		},
	}
	p := newPipeline(t, s, crawler.DispatcherConfig{StopOnExisting: true}, crawler.DriverConfig{}, nil, nil)
	p.graph.SeedAudiobook("/old", map[string]any{"title": "old"})

	require.NoError(t, p.driver.Backfill(context.Background(), 1, 2))

	// "/old" is enqueued first (oldest first) and ends the drain.
	items := p.queue.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "/new", items[0].Path)
	_, ok := p.graph.Node(models.LabelAudiobook, "/new")
	assert.False(t, ok)
}

func TestDrainPublishesDroppedItems(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	notifier := mocks.NewMockNotifier(ctrl)

	s := &site{
		listings: map[string]models.SubmissionList{
			listingURL(1): {Submissions: []models.Submission{{URL: "/broken"}}},
		},
		details: map[string]models.AudiobookMetadata{},
	}
	p := newPipeline(t, s, crawler.DispatcherConfig{RunID: "run-9"}, crawler.DriverConfig{RunID: "run-9"}, notifier, nil)

	notifier.EXPECT().PublishFailure(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, f models.CrawlFailure) error {
			assert.Equal(t, "run-9", f.RunID)
			assert.Equal(t, "/broken", f.Path)
			assert.Equal(t, "extract", f.Stage)
			assert.Contains(t, f.Error, "no result")
			return nil
		})

	require.NoError(t, p.driver.Backfill(context.Background(), 1, 2))
	assert.Equal(t, 1, p.driver.Counters().Failed)
}

func TestDrainWithDetailWorkers(t *testing.T) {
	subs := make([]models.Submission, 0, 12)
	details := make(map[string]models.AudiobookMetadata)
	for i := 0; i < 12; i++ {
		path := fmt.Sprintf("/b%d", i)
		subs = append(subs, models.Submission{URL: path})
		details[testBase+path] = models.AudiobookMetadata{
			Authors:    []string{"Shared Author"},
			Categories: []string{"Fantasy"},
		}
	}
	s := &site{
		listings: map[string]models.SubmissionList{listingURL(1): {Submissions: subs}},
		details:  details,
	}
	p := newPipeline(t, s, crawler.DispatcherConfig{}, crawler.DriverConfig{DetailWorkers: 4}, nil, nil)

	require.NoError(t, p.driver.Backfill(context.Background(), 1, 2))

	assert.Equal(t, 12, p.graph.NodeCount(models.LabelAudiobook))
	assert.Equal(t, 1, p.graph.NodeCount(models.LabelAuthor))
	assert.Equal(t, 12, p.graph.EdgeCount(models.RelWrittenBy))
	assert.Equal(t, 12, p.driver.Counters().Persisted)
}

func TestBackfillReportsStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	status := mocks.NewMockStatusReporter(ctrl)

	s := &site{
		listings: map[string]models.SubmissionList{
			listingURL(1): {Submissions: []models.Submission{{URL: "/b1"}}},
		},
		details: map[string]models.AudiobookMetadata{testBase + "/b1": {Authors: []string{"A"}}},
	}
	p := newPipeline(t, s, crawler.DispatcherConfig{}, crawler.DriverConfig{RunID: "run-1"}, nil, status)

	var seen []models.CrawlStatus
	status.EXPECT().SetStatus(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, st models.CrawlStatus) error {
			seen = append(seen, st)
			return nil
		}).Times(2)

	require.NoError(t, p.driver.Backfill(context.Background(), 1, 2))
	require.Len(t, seen, 2)
	assert.Equal(t, models.RunRunning, seen[0].Status)
	assert.Equal(t, models.RunCompleted, seen[1].Status)
	assert.Equal(t, 1, seen[1].Counters.Persisted)
	assert.Equal(t, "backfill", seen[1].Mode)
}

func TestDrainReportsStatusForQueuedRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	status := mocks.NewMockStatusReporter(ctrl)

	s := &site{
		listings: map[string]models.SubmissionList{
			listingURL(1): {Submissions: []models.Submission{{URL: "/b1"}}},
		},
		details: map[string]models.AudiobookMetadata{testBase + "/b1": {Authors: []string{"A"}}},
	}
	p := newPipeline(t, s, crawler.DispatcherConfig{}, crawler.DriverConfig{RunID: "api-run", Mode: "drain"}, nil, status)

	// Seeded elsewhere, as the api does.
	_, err := crawler.SeedListings(context.Background(), p.queue, listingURL, "api-run", 1, 2)
	require.NoError(t, err)

	var seen []models.CrawlStatus
	status.EXPECT().SetStatus(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, st models.CrawlStatus) error {
			seen = append(seen, st)
			return nil
		}).Times(2)

	require.NoError(t, p.driver.Drain(context.Background()))

	require.Len(t, seen, 2)
	assert.Equal(t, "api-run", seen[0].RunID)
	assert.Equal(t, models.RunRunning, seen[0].Status)
	assert.Equal(t, models.RunCompleted, seen[1].Status)
	assert.Equal(t, "drain", seen[1].Mode)
	assert.Equal(t, 1, seen[1].Counters.Persisted)
	assert.Zero(t, seen[1].PageEnd)
}

func TestDrainWithoutRunIDReportsNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	status := mocks.NewMockStatusReporter(ctrl)

	s := &site{listings: map[string]models.SubmissionList{}, details: map[string]models.AudiobookMetadata{}}
	p := newPipeline(t, s, crawler.DispatcherConfig{}, crawler.DriverConfig{}, nil, status)

	require.NoError(t, p.driver.Drain(context.Background()))
}

func TestDrainHonoursCancellation(t *testing.T) {
	s := &site{listings: map[string]models.SubmissionList{}, details: map[string]models.AudiobookMetadata{}}
	p := newPipeline(t, s, crawler.DispatcherConfig{}, crawler.DriverConfig{}, nil, nil)
	require.NoError(t, p.queue.Enqueue(context.Background(), models.NewListingItem(listingURL(1))))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.driver.Drain(ctx)
	require.Error(t, err)
	assert.False(t, crawler.IsFatal(err))
	assert.Equal(t, 1, p.queue.Len())
	assert.Empty(t, s.fetches())
}

func TestSameSiteMirrorAccepted(t *testing.T) {
	s := &site{
		listings: map[string]models.SubmissionList{},
		details: map[string]models.AudiobookMetadata{
			"https://audiobookbay.fi/abss/m/": {Authors: []string{"A"}},
		},
	}
	p := newPipeline(t, s, crawler.DispatcherConfig{}, crawler.DriverConfig{}, nil, nil)
	item := models.NewDetailItem("https://audiobookbay.fi/abss/m/", "/abss/m/", "")
	require.NoError(t, p.queue.Enqueue(context.Background(), item))

	require.NoError(t, p.driver.Drain(context.Background()))
	_, ok := p.graph.Node(models.LabelAudiobook, "/abss/m/")
	assert.True(t, ok)
	assert.True(t, strings.HasPrefix(s.fetches()[0], "https://audiobookbay.fi"))
}
