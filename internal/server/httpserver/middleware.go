package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/0823nobuo-png/System-Validator/internal/server/httpserver/handler"
	"github.com/0823nobuo-png/System-Validator/internal/telemetry/logger"
	"github.com/0823nobuo-png/System-Validator/internal/telemetry/metric"
)

// Context keys for request-scoped values.
type contextKey string

// ContextKeyStartTime is the context key for request start time.
const ContextKeyStartTime contextKey = "start_time"

// Middleware wraps an http.Handler with additional functionality.
type Middleware func(http.Handler) http.Handler

// Chain chains multiple middlewares together. The first middleware is
// the outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// RequestID adds a unique request ID to each request. An inbound
// X-Request-ID header is kept.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = ulid.Make().String()
			}

			w.Header().Set("X-Request-ID", requestID)

			ctx := logger.WithRequestID(r.Context(), requestID)
			ctx = context.WithValue(ctx, ContextKeyStartTime, time.Now())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// rateLimiter keeps one token bucket per client IP.
type rateLimiter struct {
	limit   rate.Limit
	burst   int
	cleanup time.Duration

	mu          sync.Mutex
	perIP       map[string]*rate.Limiter
	lastCleanup time.Time
}

func newRateLimiter(limit rate.Limit, burst int, cleanup time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:       limit,
		burst:       burst,
		cleanup:     cleanup,
		perIP:       make(map[string]*rate.Limiter),
		lastCleanup: time.Now(),
	}
}

// allow reports whether ip may make a request now.
func (l *rateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.lastCleanup) >= l.cleanup {
		l.dropFull()
		l.lastCleanup = time.Now()
	}

	limiter, ok := l.perIP[ip]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.perIP[ip] = limiter
	}
	return limiter.Allow()
}

// dropFull forgets buckets that have refilled completely. A new bucket
// starts full, so only drained buckets need to be kept.
func (l *rateLimiter) dropFull() {
	for ip, limiter := range l.perIP {
		if limiter.Tokens() >= float64(l.burst) {
			delete(l.perIP, ip)
		}
	}
}

// RateLimit applies per-IP rate limiting. Rejected requests get 429
// with a Retry-After header.
func RateLimit(limit rate.Limit, burst int) Middleware {
	if burst < 1 {
		burst = 1
	}
	limiter := newRateLimiter(limit, burst, 5*time.Minute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.allow(getClientIP(r)) {
				w.Header().Set("Retry-After", "1")
				writeError(w, r, http.StatusTooManyRequests, handler.CodeTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Audit logs every completed request.
func Audit(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			attrs := []any{
				"request_id", logger.RequestIDFromContext(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration_ms", requestDuration(r).Milliseconds(),
				"client_ip", getClientIP(r),
			}

			switch {
			case wrapped.statusCode >= 500:
				log.Error("request completed with error", attrs...)
			case wrapped.statusCode >= 400:
				log.Warn("request completed with client error", attrs...)
			default:
				log.Info("request completed", attrs...)
			}
		})
	}
}

// Metrics records request counts and latencies in reg.
func Metrics(reg *metric.Registry) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			route := routeLabel(r.URL.Path)
			reg.RecordRequest(r.Method, route, strconv.Itoa(wrapped.statusCode))
			reg.ObserveRequestDuration(r.Method, route, requestDuration(r).Seconds())
		})
	}
}

// Recover recovers from panics and returns 500 error.
func Recover(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					log.Error("panic recovered",
						"request_id", logger.RequestIDFromContext(r.Context()),
						"error", err,
						"path", r.URL.Path,
					)
					writeError(w, r, http.StatusInternalServerError, handler.CodeInternal, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// routes are the label values for request metrics. Anything else is
// "other" so scanners cannot grow the label set.
var routes = map[string]struct{}{
	"/health":  {},
	"/ready":   {},
	"/status":  {},
	"/reload":  {},
	"/metrics": {},
}

func routeLabel(path string) string {
	if _, ok := routes[path]; ok {
		return path
	}
	return "other"
}

// requestDuration returns the time since RequestID saw the request.
func requestDuration(r *http.Request) time.Duration {
	start, ok := r.Context().Value(ContextKeyStartTime).(time.Time)
	if !ok {
		return 0
	}
	return time.Since(start)
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (w *responseWriter) WriteHeader(code int) {
	if !w.written {
		w.statusCode = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.written = true
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// writeError writes an error envelope outside the handler package.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	requestID := logger.RequestIDFromContext(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(handler.NewErrorResponse(requestID, code, message, nil))
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// SplitHostPort handles IPv6 addresses like [::1]:8080.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
