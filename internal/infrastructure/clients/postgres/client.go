package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/zatekoja/trainingportal/internal/infrastructure/observability"
	"github.com/zatekoja/trainingportal/pkg/config"
	"github.com/zatekoja/trainingportal/pkg/retry"
)

// Client represents a PostgreSQL database client
type Client struct {
	db      *sql.DB
	dbx     *sqlx.DB
	metrics *observability.Metrics
}

// NewClient creates a new PostgreSQL client with exponential backoff retry
func NewClient(cfg *config.DatabaseConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	logger := observability.GetLogger()
	err = retry.DoWithLog(
		context.Background(),
		retry.DefaultConfig(),
		"PostgreSQL",
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return db.PingContext(ctx)
		},
		func(attempt int, err error, nextDelay time.Duration) {
			logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", nextDelay).Msg("PostgreSQL connection attempt failed")
		},
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL after retries: %w", err)
	}

	logger.Info().Str("host", cfg.Host).Str("database", cfg.Database).Msg("Connected to PostgreSQL")
	return NewFromDB(db), nil
}

// NewFromDB wraps an already opened connection pool.
func NewFromDB(db *sql.DB) *Client {
	return &Client{db: db, dbx: sqlx.NewDb(db, "postgres")}
}

// DB returns the underlying database connection
func (c *Client) DB() *sql.DB {
	return c.db
}

// DBX returns the connection wrapped for struct scanning
func (c *Client) DBX() *sqlx.DB {
	return c.dbx
}

// SetMetrics enables query duration recording
func (c *Client) SetMetrics(metrics *observability.Metrics) {
	c.metrics = metrics
}

// Observe records the duration of a query that started at start. Use it as
// defer client.Observe(ctx, "op", time.Now()).
func (c *Client) Observe(ctx context.Context, operation string, start time.Time) {
	observability.RecordDBMetric(ctx, c.metrics, operation, time.Since(start))
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}
