package http

import (
	"fmt"
	"github.com/ValentinKolb/dTodo/rpc/common"
	"github.com/ValentinKolb/dTodo/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"io"
	"net/http"
	"strconv"
	"time"
)

var Logger = logger.GetLogger("transport/rpc")

// maxRequestBytes bounds a single serialized request
const maxRequestBytes = 16 << 20

func NewHttpServerTransport() transport.IRPCServerTransport {
	return &httpServerTransport{}
}

type httpServerTransport struct {
	handle transport.ServerHandleFunc
	debug  bool
}

func (t *httpServerTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handle = handler
}

func (t *httpServerTransport) Listen(config common.ServerConfig) error {
	t.debug = config.LogLevel == "debug"

	srv := &http.Server{
		Addr:              config.Endpoint,
		Handler:           t.handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	Logger.Infof("store RPC listening on %s", config.Endpoint)
	return srv.ListenAndServe()
}

func (t *httpServerTransport) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /{shardId}", t.serveShard)
	if !t.debug {
		return mux
	}
	return logRequests(mux)
}

func (t *httpServerTransport) serveShard(w http.ResponseWriter, r *http.Request) {
	shardId, err := strconv.ParseUint(r.PathValue("shardId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid shard id", http.StatusBadRequest)
		return
	}
	if t.handle == nil {
		http.Error(w, "no handler registered", http.StatusServiceUnavailable)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	metrics.GetOrCreateCounter(fmt.Sprintf(`dtodo_rpc_requests_total{shard="%d"}`, shardId)).Inc()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := w.Write(t.handle(shardId, body)); err != nil {
		Logger.Warningf("failed to write response for shard %d: %v", shardId, err)
	}
}

// statusRecorder remembers the status code written by the wrapped handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		Logger.Debugf("%s %s => %d (%s)", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
