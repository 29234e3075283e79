package driver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/canfieldjuan/graphgate/internal/config"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jDriver talks bolt to Neo4j or Memgraph.
type Neo4jDriver struct {
	Driver   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

func NewNeo4jDriver(ctx context.Context, cfg config.Neo4jConfig, logger *slog.Logger) (*Neo4jDriver, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.URI, err)
	}

	logger.Debug("connected to graph database", "uri", cfg.URI)
	return &Neo4jDriver{Driver: driver, database: cfg.Database, logger: logger}, nil
}

func (d *Neo4jDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *Neo4jDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	var opts []neo4j.ExecuteQueryConfigurationOption
	if d.database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(d.database))
	}

	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer, opts...)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

// BuildIndices creates the lookup indices the client relies on. Failures are
// logged and skipped since most of them mean the index already exists.
func (d *Neo4jDriver) BuildIndices(ctx context.Context) error {
	for _, q := range IndexQueries {
		if _, err := d.ExecuteQuery(ctx, q, nil); err != nil {
			d.logger.Warn("failed to create index", "query", q, "error", err)
		}
	}
	return nil
}
