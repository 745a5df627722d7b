package observability

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const traceHeader = "X-Trace-ID"

// apiRoutes is the service's fixed route surface. Metric labels collapse
// onto it so path scans cannot inflate label cardinality.
var apiRoutes = map[string]struct{}{
	"/v1/health":    {},
	"/v1/ready":     {},
	"/v1/metrics":   {},
	"/v1/chat":      {},
	"/v1/tools":     {},
	"/v1/tools/run": {},
}

func routeLabel(path string) string {
	if _, ok := apiRoutes[path]; ok {
		return path
	}
	return "unmatched"
}

// Instrument wraps a handler with the service's request telemetry in one
// pass: a trace ID propagated via context and the X-Trace-ID header,
// per-route prometheus counters and latency, and one structured log line
// per request. Server errors log at error level so tool and LLM outages
// stand out without a metrics query. A nil logger disables logging only.
func Instrument(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := strings.TrimSpace(r.Header.Get(traceHeader))
			if traceID == "" {
				traceID = newTraceID()
			}
			w.Header().Set(traceHeader, traceID)
			r = r.WithContext(ContextWithTraceID(r.Context(), traceID))

			start := time.Now()
			recorder := &responseRecorder{ResponseWriter: w}
			next.ServeHTTP(recorder, r)
			elapsed := time.Since(start)

			route := routeLabel(r.URL.Path)
			status := recorder.statusCode()
			httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
			httpRequestDurationSeconds.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())

			if logger == nil {
				return
			}
			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(r.Context(), level, "request served",
				slog.String("trace_id", traceID),
				slog.String("method", r.Method),
				slog.String("route", route),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Duration("elapsed", elapsed),
				slog.Int("response_bytes", recorder.written),
			)
		})
	}
}

// responseRecorder captures the status and body size actually sent. A
// handler that never calls WriteHeader reports 200.
type responseRecorder struct {
	http.ResponseWriter
	status  int
	written int
}

func (r *responseRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(body []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(body)
	r.written += n
	return n, err
}

func (r *responseRecorder) statusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

func newTraceID() string {
	var buf [12]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(buf[:])
}
