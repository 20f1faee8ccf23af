package credserver

import (
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/majorcontext/assumer/internal/log"
)

// Server runs a Handler on an already bound listener.
type Server struct {
	server *http.Server
}

// NewServer wraps h with access logging.
func NewServer(h http.Handler) *Server {
	return &Server{
		server: &http.Server{
			Handler:           accessLog(h),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Serve accepts connections on ln until the accept loop fails or Close is
// called. It always returns a non-nil error.
func (s *Server) Serve(ln net.Listener) error {
	return s.server.Serve(ln)
}

// Close immediately closes the listener and all connections. In-flight
// requests are abandoned.
func (s *Server) Close() error {
	return s.server.Close()
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(p)
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.NewString()
		w.Header().Set("X-Request-Id", reqID)
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		log.Debug("http request",
			"request_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start))
	})
}
