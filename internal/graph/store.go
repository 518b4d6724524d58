// Package graph persists audiobooks and their relationships into Neo4j.
package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/MMMarcy/voxlume/internal/models"
)

// Store writes audiobook graphs and answers existence checks.
type Store struct {
	driver   DriverSessioner
	database string
	logger   *zap.Logger
}

// NewStore builds a Store on top of a driver. An empty database selects the
// server default.
func NewStore(driver DriverSessioner, database string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{driver: driver, database: database, logger: logger}
}

// Exists reports whether an Audiobook with the given path is already stored.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer s.closeSession(ctx, session)

	value, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, QueryAudiobookExists, map[string]any{"path": path})
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		exists, ok := record.Get("pathExists")
		if !ok {
			return nil, errors.New("pathExists missing from result")
		}
		return exists, nil
	})
	if err != nil {
		return false, fmt.Errorf("check audiobook %q: %w", path, err)
	}
	exists, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("check audiobook %q: unexpected result %T", path, value)
	}
	return exists, nil
}

// Persist upserts the audiobook keyed by path together with its readers,
// categories, keywords, authors and series in one write transaction. Running
// it again for the same path only refreshes last_upload and adds missing
// relationships. Failures are returned as *PersistError.
func (s *Store) Persist(ctx context.Context, meta models.AudiobookMetadata, path string) error {
	if path == "" {
		return &PersistError{Path: path, Err: errors.New("empty path")}
	}
	meta = meta.Normalized()
	if err := meta.Validate(); err != nil {
		return &PersistError{Path: path, Err: err}
	}
	plan := buildPersistPlan(meta, path)

	session := s.session(ctx, neo4j.AccessModeWrite)
	defer s.closeSession(ctx, session)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, stmt := range plan {
			result, err := tx.Run(ctx, stmt.query, stmt.params)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", stmt.step, err)
			}
			if _, err := result.Consume(ctx); err != nil {
				return nil, fmt.Errorf("%s: %w", stmt.step, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return &PersistError{Path: path, Err: err}
	}

	s.logger.Debug("audiobook persisted",
		zap.String("path", path),
		zap.Int("statements", len(plan)),
		zap.Strings("authors", meta.Authors),
	)
	return nil
}

// EnsureSchema creates the uniqueness constraints MERGE relies on under
// concurrent writers.
func (s *Store) EnsureSchema(ctx context.Context) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer s.closeSession(ctx, session)

	for _, label := range models.NodeLabels() {
		query := constraintQuery(label)
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			result, err := tx.Run(ctx, query, nil)
			if err != nil {
				return nil, err
			}
			return result.Consume(ctx)
		})
		if err != nil {
			return fmt.Errorf("create constraint for %s: %w", label, err)
		}
	}
	return nil
}

func (s *Store) session(ctx context.Context, mode neo4j.AccessMode) SessionRunner {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: s.database})
}

func (s *Store) closeSession(ctx context.Context, session SessionRunner) {
	if err := session.Close(ctx); err != nil {
		s.logger.Warn("neo4j session close error", zap.Error(err))
	}
}
