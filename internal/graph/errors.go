package graph

import (
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// PersistError reports a failed persist transaction. Nothing from the
// transaction was committed.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist audiobook %q: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the driver classifies the cause as transient.
func (e *PersistError) Retryable() bool {
	return neo4j.IsRetryable(e.Err)
}
