package httpserver

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/0823nobuo-png/System-Validator/internal/server/httpserver/handler"
	"github.com/0823nobuo-png/System-Validator/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Reloader supplies the snapshots the panel reports on.
	Reloader handler.Reloader

	// Metrics records request metrics and serves /metrics. Nil disables both.
	Metrics *metric.Registry

	// Logger for request logging.
	Logger *slog.Logger

	// TracerProvider starts request spans. Nil uses the global provider.
	TracerProvider trace.TracerProvider

	// RateLimit is the per-IP rate limit in requests per second.
	// Zero disables rate limiting.
	RateLimit rate.Limit

	// Burst is the per-IP burst size.
	Burst int

	// EnableAudit enables access logging for all requests.
	EnableAudit bool
}

// NewRouter creates the status panel handler with its middleware chain.
//
// Order: RequestID -> Tracing -> Recover -> Metrics -> Audit -> RateLimit -> Handler.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	var metricsHandler http.Handler
	if cfg.Metrics != nil {
		metricsHandler = cfg.Metrics.Handler()
	}
	h := handler.New(cfg.Reloader, metricsHandler, log)

	middlewares := []Middleware{RequestID(), Tracing(cfg.TracerProvider), Recover(log)}
	if cfg.Metrics != nil {
		middlewares = append(middlewares, Metrics(cfg.Metrics))
	}
	if cfg.EnableAudit {
		middlewares = append(middlewares, Audit(log))
	}
	if cfg.RateLimit > 0 {
		middlewares = append(middlewares, RateLimit(cfg.RateLimit, cfg.Burst))
	}

	return Chain(h, middlewares...)
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		RateLimit:   20, // per IP
		Burst:       40,
		EnableAudit: true,
	}
}
