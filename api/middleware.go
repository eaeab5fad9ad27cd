package api

import (
	"fmt"
	"github.com/VictoriaMetrics/metrics"
	"net/http"
	"time"
)

// responseWriter is a custom ResponseWriter that captures status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing it
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func wrap(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// loggerMiddleware logs every request at debug level
func loggerMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := wrap(w)

		next.ServeHTTP(rw, r)

		Logger.Debugf("%s %s => %d took %s", r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	}
}

// instrument counts requests per route and status code and records the request duration
func instrument(route string, next http.Handler) http.Handler {
	duration := metrics.GetOrCreateHistogram(fmt.Sprintf(`dtodo_http_request_duration_seconds{route=%q}`, route))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := wrap(w)

		next.ServeHTTP(rw, r)

		duration.UpdateDuration(start)
		metrics.GetOrCreateCounter(fmt.Sprintf(`dtodo_http_requests_total{route=%q,code="%d"}`,
			route, rw.statusCode)).Inc()
	})
}

// handleMetrics writes all metrics in the Prometheus text format.
// Store gauges are read at scrape time, dtodo_store_up is 0 if the store did not answer.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	metrics.WritePrometheus(w, true)

	set := metrics.NewSet()
	info, err := s.todos.StoreInfo()
	up := 1.0
	if err != nil {
		Logger.Warningf("metrics: %v", err)
		up = 0
	} else {
		set.NewGauge("dtodo_store_keys", func() float64 { return float64(info.KeyCount) })
		set.NewGauge("dtodo_store_size_bytes", func() float64 { return float64(info.SizeBytes) })
	}
	set.NewGauge("dtodo_store_up", func() float64 { return up })
	set.WritePrometheus(w)
}
