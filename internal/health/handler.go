package health

import (
	"context"
	"sort"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"

	healthy   = "healthy"
	unhealthy = "unhealthy"
)

// Checker defines the interface for checking service health.
type Checker interface {
	Ping(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Ping(ctx context.Context) error { return f(ctx) }

// RedisChecker adapts redis.Client to Checker interface.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// Ping checks Redis connectivity.
func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// NewPostgresChecker checks PostgreSQL connectivity through the pool.
func NewPostgresChecker(pool *pgxpool.Pool) Checker {
	return CheckerFunc(pool.Ping)
}

// Handler handles health check operations.
type Handler struct {
	backend string
	checks  map[string]Checker
	timeout time.Duration
}

// NewHandler creates a health handler reporting on the named dependencies of
// the active backend.
func NewHandler(backend string, checks map[string]Checker) *Handler {
	return &Handler{backend: backend, checks: checks, timeout: 2 * time.Second}
}

// Response is the response for health check endpoint.
type Response struct {
	Body struct {
		Status       string            `json:"status"`
		Backend      string            `json:"backend"`
		Dependencies map[string]string `json:"dependencies"`
	}
}

// Check performs a health check of the application and its dependencies.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	resp := &Response{}
	resp.Body.Status = StatusOK
	resp.Body.Backend = h.backend
	resp.Body.Dependencies = make(map[string]string, len(h.checks))

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		if err := h.checks[name].Ping(ctx); err != nil {
			resp.Body.Dependencies[name] = unhealthy
			resp.Body.Status = StatusDegraded
		} else {
			resp.Body.Dependencies[name] = healthy
		}
	}

	return resp, nil
}

// RegisterRoutes registers health check routes.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      "GET",
		Path:        "/health",
		Summary:     "Report backend health",
		Tags:        []string{"Health"},
	}, h.Check)
}
