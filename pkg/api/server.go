// Package api provides the JSON-RPC server the carousel GUI shells
// talk to. Generation and calibration are exposed as plain-data
// methods over HTTP POST /jsonrpc and a WebSocket at /websocket.
package api

import (
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"carousel-go-migration/pkg/log"
	"carousel-go-migration/pkg/metrics"
)

// Version is reported by server.info.
const Version = "2.1.0"

var logger = log.GetLogger("api")

// JSON-RPC 2.0 error codes used by the server.
const (
	codeParseError    = -32700
	codeMethodUnknown = -32601
	codeInvalidParams = -32602
	codeAppError      = -32000
)

// Server is the carousel API server.
type Server struct {
	addr    string
	metrics *metrics.RunMetrics

	httpServer *http.Server
	wsUpgrader websocket.Upgrader
	wsClients  map[int64]*wsClient
	wsClientMu sync.RWMutex
	nextWSID   int64

	running   atomic.Bool
	startTime time.Time
}

// Config holds server configuration.
type Config struct {
	// Addr is the HTTP listen address (e.g. ":7125")
	Addr string

	// Metrics receives per-request and per-run observations; nil
	// falls back to the process-wide set
	Metrics *metrics.RunMetrics
}

// New creates a server.
func New(cfg Config) *Server {
	m := cfg.Metrics
	if m == nil {
		m = metrics.Global()
	}
	s := &Server{
		addr:      cfg.Addr,
		metrics:   m,
		wsClients: make(map[int64]*wsClient),
		startTime: time.Now(),
	}
	s.wsUpgrader = websocket.Upgrader{
		// GUI shells connect from file:// or a dev server
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	return s
}

// Start serves until Stop; it blocks.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/jsonrpc", s.handleJSONRPC)
	mux.HandleFunc("/websocket", s.handleWebSocket)

	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.corsMiddleware(mux),
	}

	s.running.Store(true)
	logger.Info("API server starting on %s", s.addr)
	return s.httpServer.ListenAndServe()
}

// Stop closes the server and every client connection.
func (s *Server) Stop() error {
	s.running.Store(false)

	s.wsClientMu.Lock()
	for _, client := range s.wsClients {
		client.close()
	}
	s.wsClients = make(map[int64]*wsClient)
	s.wsClientMu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
}

type rpcResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
	ID      any       `json:"id,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string { return e.Message }

func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeResponse(w, rpcResponse{JSONRPC: "2.0", Error: &rpcError{Code: codeParseError, Message: "Parse error"}})
		return
	}

	result, rerr := s.dispatch(req.Method, req.Params)
	if rerr != nil {
		s.writeResponse(w, rpcResponse{JSONRPC: "2.0", Error: rerr, ID: req.ID})
		return
	}
	s.writeResponse(w, rpcResponse{JSONRPC: "2.0", Result: result, ID: req.ID})
}

// dispatch routes a method call and records request metrics.
func (s *Server) dispatch(method string, params json.RawMessage) (any, *rpcError) {
	labels := metrics.Labels{"method": method}
	s.metrics.Requests.Inc(labels)
	done := s.metrics.RequestDuration.Timer(labels)
	defer done()

	result, rerr := s.call(method, params)
	if rerr != nil {
		s.metrics.RequestErrors.Inc(labels)
		logger.WithFields(log.Fields{"method": method, "code": rerr.Code}).Warn(rerr.Message)
	}
	return result, rerr
}

func (s *Server) call(method string, params json.RawMessage) (any, *rpcError) {
	switch method {
	case "server.info":
		return s.methodServerInfo()
	case "carousel.passes":
		return s.methodPasses(params)
	case "carousel.generate":
		return s.methodGenerate(params)
	case "calibrate.two_point":
		return s.methodTwoPoint(params)
	case "calibrate.fit_circle":
		return s.methodFitCircle(params)
	case "gcode.adjust":
		return s.methodAdjust(params)
	default:
		return nil, &rpcError{Code: codeMethodUnknown, Message: "method not found: " + method}
	}
}

func (s *Server) methodServerInfo() (any, *rpcError) {
	hostname, _ := os.Hostname()

	s.wsClientMu.RLock()
	wsCount := len(s.wsClients)
	s.wsClientMu.RUnlock()

	return map[string]any{
		"app":             "carousel-api",
		"version":         Version,
		"hostname":        hostname,
		"uptime":          time.Since(s.startTime).Seconds(),
		"websocket_count": wsCount,
		"methods": []string{
			"server.info",
			"carousel.passes",
			"carousel.generate",
			"calibrate.two_point",
			"calibrate.fit_circle",
			"gcode.adjust",
		},
	}, nil
}

// corsMiddleware allows the GUI shells to call from any origin.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeResponse(w http.ResponseWriter, resp rpcResponse) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
