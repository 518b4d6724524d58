package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// SessionRunner abstracts neo4j.SessionWithContext.
type SessionRunner interface {
	ExecuteRead(ctx context.Context, work neo4j.ManagedTransactionWork, configurers ...func(*neo4j.TransactionConfig)) (any, error)
	ExecuteWrite(ctx context.Context, work neo4j.ManagedTransactionWork, configurers ...func(*neo4j.TransactionConfig)) (any, error)
	Close(ctx context.Context) error
}

// DriverSessioner abstracts neo4j.DriverWithContext.
type DriverSessioner interface {
	NewSession(ctx context.Context, config neo4j.SessionConfig) SessionRunner
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Neo4jConfig holds connection settings for the graph store.
type Neo4jConfig struct {
	URI      string
	User     string
	Password string
	Database string
}

type neo4jDriver struct {
	driver neo4j.DriverWithContext
}

// NewDriver connects to Neo4j and adapts the driver to DriverSessioner.
func NewDriver(cfg Neo4jConfig) (DriverSessioner, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, err
	}
	return &neo4jDriver{driver: driver}, nil
}

func (d *neo4jDriver) NewSession(ctx context.Context, config neo4j.SessionConfig) SessionRunner {
	return d.driver.NewSession(ctx, config)
}

func (d *neo4jDriver) VerifyConnectivity(ctx context.Context) error {
	return d.driver.VerifyConnectivity(ctx)
}

func (d *neo4jDriver) Close(ctx context.Context) error {
	return d.driver.Close(ctx)
}
