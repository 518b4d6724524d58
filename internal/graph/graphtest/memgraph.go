// Package graphtest provides an in-memory stand-in for the Neo4j driver that
// understands the statements issued by graph.Store.
package graphtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/MMMarcy/voxlume/internal/graph"
	"github.com/MMMarcy/voxlume/internal/models"
)

type edgeKey struct {
	fromLabel models.NodeLabel
	from      string
	rel       models.Relation
	toLabel   models.NodeLabel
	to        string
}

type state struct {
	nodes map[models.NodeLabel]map[string]map[string]any
	edges map[edgeKey]struct{}
}

func newState() *state {
	return &state{
		nodes: make(map[models.NodeLabel]map[string]map[string]any),
		edges: make(map[edgeKey]struct{}),
	}
}

func (s *state) clone() *state {
	out := newState()
	for label, byKey := range s.nodes {
		copied := make(map[string]map[string]any, len(byKey))
		for key, props := range byKey {
			p := make(map[string]any, len(props))
			for k, v := range props {
				p[k] = v
			}
			copied[key] = p
		}
		out.nodes[label] = copied
	}
	for k := range s.edges {
		out.edges[k] = struct{}{}
	}
	return out
}

func (s *state) mergeNode(label models.NodeLabel, key string) map[string]any {
	byKey, ok := s.nodes[label]
	if !ok {
		byKey = make(map[string]map[string]any)
		s.nodes[label] = byKey
	}
	props, ok := byKey[key]
	if !ok {
		props = map[string]any{label.KeyProperty(): key}
		byKey[key] = props
	}
	return props
}

func (s *state) node(label models.NodeLabel, key string) (map[string]any, bool) {
	props, ok := s.nodes[label][key]
	return props, ok
}

// Graph is a transactional in-memory property graph. Write transactions work
// on a copy that is swapped in only when the transaction function succeeds.
type Graph struct {
	mu          sync.Mutex
	committed   *state
	clock       int64
	failures    map[string]error
	constraints map[string]struct{}

	Sessions     int
	WriteTxCalls int
	ReadTxCalls  int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		committed:   newState(),
		failures:    make(map[string]error),
		constraints: make(map[string]struct{}),
	}
}

// Driver exposes the graph through the driver abstraction used by graph.Store.
func (g *Graph) Driver() graph.DriverSessioner {
	return &driver{g: g}
}

// FailOn makes every Run of query fail with err.
func (g *Graph) FailOn(query string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures[query] = err
}

// SeedAudiobook stores an audiobook node directly.
func (g *Graph) SeedAudiobook(path string, props map[string]any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	node := g.committed.mergeNode(models.LabelAudiobook, path)
	for k, v := range props {
		node[k] = v
	}
}

// NodeCount returns the number of nodes with label.
func (g *Graph) NodeCount(label models.NodeLabel) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.committed.nodes[label])
}

// Node returns a copy of the properties of the node keyed by key.
func (g *Graph) Node(label models.NodeLabel, key string) (map[string]any, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	props, ok := g.committed.node(label, key)
	if !ok {
		return nil, false
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out, true
}

// EdgeCount returns the number of relationships of type rel.
func (g *Graph) EdgeCount(rel models.Relation) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for k := range g.committed.edges {
		if k.rel == rel {
			n++
		}
	}
	return n
}

// HasEdge reports whether from -[rel]-> to exists, matching nodes by key value.
func (g *Graph) HasEdge(from string, rel models.Relation, to string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for k := range g.committed.edges {
		if k.from == from && k.rel == rel && k.to == to {
			return true
		}
	}
	return false
}

// Constraints returns the number of distinct constraint statements applied.
func (g *Graph) Constraints() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.constraints)
}

type driver struct {
	g *Graph
}

func (d *driver) NewSession(_ context.Context, _ neo4j.SessionConfig) graph.SessionRunner {
	d.g.mu.Lock()
	d.g.Sessions++
	d.g.mu.Unlock()
	return &session{g: d.g}
}

func (d *driver) VerifyConnectivity(context.Context) error { return nil }

func (d *driver) Close(context.Context) error { return nil }

type session struct {
	g *Graph
}

func (s *session) ExecuteRead(ctx context.Context, work neo4j.ManagedTransactionWork, _ ...func(*neo4j.TransactionConfig)) (any, error) {
	s.g.mu.Lock()
	s.g.ReadTxCalls++
	snapshot := s.g.committed.clone()
	s.g.mu.Unlock()

	return work(&tx{g: s.g, st: snapshot})
}

func (s *session) ExecuteWrite(ctx context.Context, work neo4j.ManagedTransactionWork, _ ...func(*neo4j.TransactionConfig)) (any, error) {
	// Writers are serialised, mirroring the write lock the database takes on merged nodes.
	s.g.mu.Lock()
	defer s.g.mu.Unlock()
	s.g.WriteTxCalls++

	working := s.g.committed.clone()
	out, err := work(&tx{g: s.g, st: working, locked: true})
	if err != nil {
		return nil, err
	}
	s.g.committed = working
	return out, nil
}

func (s *session) Close(context.Context) error { return nil }

type tx struct {
	neo4j.ManagedTransaction
	g      *Graph
	st     *state
	locked bool
}

func (t *tx) Run(_ context.Context, cypher string, params map[string]any) (neo4j.ResultWithContext, error) {
	if !t.locked {
		t.g.mu.Lock()
		defer t.g.mu.Unlock()
	}
	if err, ok := t.g.failures[cypher]; ok {
		return nil, err
	}

	path, _ := params["path"].(string)
	switch cypher {
	case graph.QueryAudiobookExists:
		_, ok := t.st.node(models.LabelAudiobook, path)
		return &result{keys: []string{"pathExists"}, values: []any{ok}}, nil

	case graph.QueryUpsertAudiobook:
		t.g.clock++
		if node, ok := t.st.node(models.LabelAudiobook, path); ok {
			node["last_upload"] = t.g.clock
			return &result{}, nil
		}
		props, _ := params["props"].(map[string]any)
		node := t.st.mergeNode(models.LabelAudiobook, path)
		for k, v := range props {
			if v != nil {
				node[k] = v
			}
		}
		node["last_upload"] = t.g.clock
		return &result{}, nil

	case graph.QuerySetSeriesVolume:
		if node, ok := t.st.node(models.LabelAudiobook, path); ok {
			if v := params["series_volume"]; v != nil {
				node["series_volume"] = v
			} else {
				delete(node, "series_volume")
			}
		}
		return &result{}, nil

	case graph.QueryAttachReaders:
		t.attach(path, params["names"], models.LabelReader, models.RelReadBy)
		return &result{}, nil
	case graph.QueryAttachCategories:
		t.attach(path, params["values"], models.LabelCategory, models.RelCategorizedAs)
		return &result{}, nil
	case graph.QueryAttachKeywords:
		t.attach(path, params["values"], models.LabelKeyword, models.RelHasKeyword)
		return &result{}, nil
	case graph.QueryAttachAuthors:
		t.attach(path, params["names"], models.LabelAuthor, models.RelWrittenBy)
		return &result{}, nil

	case graph.QueryAttachSeries:
		if _, ok := t.st.node(models.LabelAudiobook, path); !ok {
			return &result{}, nil
		}
		title, _ := params["title"].(string)
		t.st.mergeNode(models.LabelSeries, title)
		t.st.edges[edgeKey{models.LabelAudiobook, path, models.RelPartOfSeries, models.LabelSeries, title}] = struct{}{}
		for _, name := range stringList(params["authors"]) {
			if _, ok := t.st.node(models.LabelAuthor, name); ok {
				t.st.edges[edgeKey{models.LabelSeries, title, models.RelWrittenBySeries, models.LabelAuthor, name}] = struct{}{}
			}
		}
		return &result{}, nil
	}

	if strings.HasPrefix(cypher, "CREATE CONSTRAINT") {
		t.g.constraints[cypher] = struct{}{}
		return &result{}, nil
	}
	return nil, fmt.Errorf("graphtest: unsupported statement %q", cypher)
}

func (t *tx) attach(path string, raw any, label models.NodeLabel, rel models.Relation) {
	if _, ok := t.st.node(models.LabelAudiobook, path); !ok {
		return
	}
	for _, value := range stringList(raw) {
		t.st.mergeNode(label, value)
		t.st.edges[edgeKey{models.LabelAudiobook, path, rel, label, value}] = struct{}{}
	}
}

func stringList(raw any) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

type result struct {
	neo4j.ResultWithContext
	keys   []string
	values []any
}

func (r *result) Single(context.Context) (*neo4j.Record, error) {
	if r.keys == nil {
		return nil, fmt.Errorf("graphtest: statement returns no record")
	}
	return &neo4j.Record{Keys: r.keys, Values: r.values}, nil
}

func (r *result) Consume(context.Context) (neo4j.ResultSummary, error) {
	return nil, nil
}
