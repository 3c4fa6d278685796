package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Ashenafi-pixel/house-edge-sim/config"
	"github.com/Ashenafi-pixel/house-edge-sim/gamemath"
	"github.com/Ashenafi-pixel/house-edge-sim/run"
)

type Server struct {
	cfg     *config.Config
	log     *zap.Logger
	runs    run.Store
	presets *gamemath.Store
	// source returns the randomness for one request; nil seed means crypto/rand.
	source func(seed *uint64) gamemath.Source
}

func New(cfg *config.Config, log *zap.Logger, runs run.Store) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cfg:     cfg,
		log:     log,
		runs:    runs,
		presets: gamemath.NewStore(cfg.DataDir),
		source: func(seed *uint64) gamemath.Source {
			if seed != nil {
				return gamemath.NewSeeded(*seed)
			}
			return gamemath.NewSecure()
		},
	}
}

// Handler returns the routed API with CORS and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("POST /sim/run", s.handleRun)
	mux.HandleFunc("POST /sim/sweep", s.handleSweep)
	mux.HandleFunc("GET /sim/runs", s.handleListRuns)
	mux.HandleFunc("GET /sim/runs/{id}", s.handleGetRun)
	mux.HandleFunc("GET /sim/presets", s.handleListPresets)
	mux.HandleFunc("POST /sim/presets", s.handleRegisterPreset)
	return cors(s.requestLogger(mux))
}

func (s *Server) Run() error {
	addr := ":" + strconv.Itoa(s.cfg.Port)
	s.log.Info("edgesim listening", zap.String("addr", addr), zap.String("data_dir", s.cfg.DataDir))
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func cors(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// requestLogger logs method, path and latency for each request (no body).
func (s *Server) requestLogger(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h.ServeHTTP(w, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)),
		)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "edgesim"})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
