package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	pkgerrors "data-catalog/backend/pkg/errors"
	"data-catalog/backend/pkg/logger"
)

const (
	maxReadAttempts = 3
	readBackoffBase = 1 * time.Second
	readBackoffMax  = 10 * time.Second
)

// Repository handles all Neo4j operations for the catalog. A single
// Repository shares one driver (and its connection pool) process-wide.
type Repository struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
}

// NewRepository creates a new catalog repository over an open driver.
func NewRepository(driver neo4j.DriverWithContext, database string) *Repository {
	return &Repository{
		driver:   driver,
		database: database,
		logger:   logger.Get(),
	}
}

// Close closes the Neo4j driver connection
func (r *Repository) Close() error {
	return r.driver.Close(context.Background())
}

func (r *Repository) readSession(ctx context.Context) neo4j.SessionWithContext {
	return r.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: r.database,
	})
}

func (r *Repository) writeSession(ctx context.Context) neo4j.SessionWithContext {
	return r.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: r.database,
	})
}

// withReadRetry retries a read-only operation with bounded exponential
// backoff. Only reads and MERGE-based (idempotent) writes go through here.
func (r *Repository) withReadRetry(ctx context.Context, operation string, fn func() error) error {
	var err error
	for attempt := 0; attempt < maxReadAttempts; attempt++ {
		if attempt > 0 {
			backoff := readBackoffBase << (attempt - 1)
			if backoff > readBackoffMax {
				backoff = readBackoffMax
			}
			r.logger.Warn("Retrying graph query",
				zap.String("operation", operation),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return pkgerrors.NewRepositoryQueryFailed(operation, ctx.Err())
			}
		}

		if err = fn(); err == nil {
			return nil
		}
	}
	return pkgerrors.NewRepositoryQueryFailed(operation, err)
}

// InitSchema creates the uniqueness constraints and indexes the catalog
// relies on. Safe to run repeatedly (IF NOT EXISTS).
func (r *Repository) InitSchema(ctx context.Context) error {
	statements := []string{
		`CREATE CONSTRAINT unique_business_object IF NOT EXISTS
		 FOR (o:BusinessObject) REQUIRE o.id IS UNIQUE`,
		`CREATE CONSTRAINT unique_data_element IF NOT EXISTS
		 FOR (e:DataElement) REQUIRE e.id IS UNIQUE`,
		`CREATE CONSTRAINT unique_domain IF NOT EXISTS
		 FOR (d:Domain) REQUIRE d.id IS UNIQUE`,
		`CREATE CONSTRAINT unique_rule IF NOT EXISTS
		 FOR (ru:Rule) REQUIRE ru.id IS UNIQUE`,
		`CREATE INDEX business_object_name IF NOT EXISTS
		 FOR (o:BusinessObject) ON (o.name)`,
		`CREATE INDEX data_element_name IF NOT EXISTS
		 FOR (e:DataElement) ON (e.name)`,
		`CREATE INDEX domain_name IF NOT EXISTS
		 FOR (d:Domain) ON (d.name)`,
		`CREATE INDEX rule_name IF NOT EXISTS
		 FOR (ru:Rule) ON (ru.name)`,
	}

	session := r.writeSession(ctx)
	defer session.Close(ctx)

	for _, stmt := range statements {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return pkgerrors.NewRepositoryQueryFailed("init schema", err)
		}
	}

	r.logger.Info("Graph schema initialized")
	return nil
}

// Record and property helpers

func nodeFromRecord(record *neo4j.Record, key string) (neo4j.Node, bool) {
	val, ok := record.Get(key)
	if !ok {
		return neo4j.Node{}, false
	}
	node, ok := val.(neo4j.Node)
	return node, ok
}

func propString(props map[string]interface{}, key string) string {
	if val, ok := props[key].(string); ok {
		return val
	}
	return ""
}

func propInt(props map[string]interface{}, key string) int {
	switch val := props[key].(type) {
	case int64:
		return int(val)
	case float64:
		return int(val)
	}
	return 0
}

func propTime(props map[string]interface{}, key string) time.Time {
	// Neo4j datetime values come back as time.Time
	if val, ok := props[key].(time.Time); ok {
		return val
	}
	return time.Time{}
}

func propStringSlice(props map[string]interface{}, key string) []string {
	raw, ok := props[key].([]interface{})
	if !ok {
		return nil
	}
	result := make([]string, 0, len(raw))
	for _, v := range raw {
		if str, ok := v.(string); ok {
			result = append(result, str)
		}
	}
	return result
}

func propFloat64Slice(props map[string]interface{}, key string) []float64 {
	raw, ok := props[key].([]interface{})
	if !ok {
		return nil
	}
	result := make([]float64, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(float64); ok {
			result = append(result, f)
		}
	}
	return result
}

// propVector reads an embedding stored as a float array property.
func propVector(props map[string]interface{}, key string) []float32 {
	raw, ok := props[key].([]interface{})
	if !ok {
		return nil
	}
	result := make([]float32, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(float64); ok {
			result = append(result, float32(f))
		}
	}
	return result
}

// vectorParam converts an embedding to the float64 slice the driver stores
// as a native array property.
func vectorParam(vector []float32) []float64 {
	result := make([]float64, len(vector))
	for i, v := range vector {
		result[i] = float64(v)
	}
	return result
}

func stringSliceParam(values []string) []interface{} {
	result := make([]interface{}, len(values))
	for i, v := range values {
		result[i] = v
	}
	return result
}

func float64SliceParam(values []float64) []interface{} {
	result := make([]interface{}, len(values))
	for i, v := range values {
		result[i] = v
	}
	return result
}
