package api

import (
	"net/http"
	"strings"
	"time"
)

// accessLogWriter wraps http.ResponseWriter to capture the status code
type accessLogWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (rw *accessLogWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *accessLogWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// accessLogger logs every request and records it in the HTTP metrics.
func (s *Server) accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.clock.Now()
		rw := &accessLogWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		duration := s.clock.Since(start)

		s.metrics.RecordHTTP(routeLabel(r.URL.Path), rw.status, duration)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"status", rw.status,
			"size", rw.size,
			"duration", duration.Round(time.Microsecond),
		)
	})
}

// routeLabel keeps the metrics label set bounded.
func routeLabel(path string) string {
	switch {
	case path == "/":
		return "/"
	case path == "/admin/login", path == "/admin/logout", path == "/healthz", path == "/metrics":
		return path
	case strings.HasPrefix(path, "/admin"):
		return "/admin/"
	}
	return "other"
}
