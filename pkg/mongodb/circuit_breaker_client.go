package mongodb

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/labops-platform/routine-service/pkg/logging"
	"github.com/labops-platform/routine-service/pkg/metrics"
	"github.com/labops-platform/routine-service/pkg/resilience"
)

// CircuitBreakerClient wraps Client with circuit breaker protection on the
// paths that matter for request handling: health checks and transactions.
type CircuitBreakerClient struct {
	client         *Client
	circuitBreaker *resilience.CircuitBreaker
	logger         *logging.Logger
}

// NewCircuitBreakerClient creates a new circuit breaker protected MongoDB client.
// State transitions are reported to the metrics registry when one is provided.
func NewCircuitBreakerClient(client *Client, m *metrics.Metrics, logger *logging.Logger) *CircuitBreakerClient {
	config := resilience.DefaultCircuitBreakerConfig("mongodb")
	if m != nil {
		config.OnStateChange = func(name string, from, to int) {
			m.SetCircuitBreakerState(name, to)
			if to == resilience.StateOpen {
				m.RecordCircuitBreakerTrip(name)
			}
		}
	}

	var slogLogger *slog.Logger
	if logger != nil && logger.Logger != nil {
		slogLogger = logger.Logger
	} else {
		slogLogger = slog.Default()
	}

	cb := resilience.NewCircuitBreaker(config, slogLogger)

	return &CircuitBreakerClient{
		client:         client,
		circuitBreaker: cb,
		logger:         logger,
	}
}

// Database returns the underlying database handle
func (c *CircuitBreakerClient) Database() *mongo.Database {
	return c.client.Database()
}

// Collection returns a handle to the named collection
func (c *CircuitBreakerClient) Collection(name string) *mongo.Collection {
	return c.client.Collection(name)
}

// Client returns the underlying MongoDB client
func (c *CircuitBreakerClient) Client() *mongo.Client {
	return c.client.Client()
}

// Close disconnects the client
func (c *CircuitBreakerClient) Close(ctx context.Context) error {
	return c.client.Close(ctx)
}

// HealthCheck performs a health check with circuit breaker protection
func (c *CircuitBreakerClient) HealthCheck(ctx context.Context) error {
	_, err := c.circuitBreaker.Execute(ctx, func() (interface{}, error) {
		return nil, c.client.HealthCheck(ctx)
	})
	return err
}

// WithTransaction executes a function within a transaction with circuit breaker protection
func (c *CircuitBreakerClient) WithTransaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) error) error {
	_, err := c.circuitBreaker.Execute(ctx, func() (interface{}, error) {
		return nil, c.client.WithTransaction(ctx, fn)
	})
	return err
}

// State returns the current circuit breaker state as an int for metrics
func (c *CircuitBreakerClient) State() int {
	return int(c.circuitBreaker.State())
}
