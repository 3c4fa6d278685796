package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ashenafi-pixel/house-edge-sim/gamemath"
	"github.com/Ashenafi-pixel/house-edge-sim/run"
	"github.com/Ashenafi-pixel/house-edge-sim/sim"
)

// defaultSplitEdge is used when a split run names no edge.
const defaultSplitEdge = 0.2

// Trials is a pointer so an explicit 0 is kept; a missing field takes the
// configured default.
type runRequest struct {
	Model         string      `json:"model"`
	Preset        string      `json:"preset"`
	Trials        *int        `json:"trials"`
	Edge          *float64    `json:"edge"`
	HouseP        *float64    `json:"houseP"`
	Seed          *uint64     `json:"seed"`
	CollectDeltas bool        `json:"collectDeltas"`
	Ranges        *sim.Ranges `json:"ranges"`
	Bankroll      *float64    `json:"bankroll"`
	ReserveRatio  *float64    `json:"reserveRatio"`
}

type sweepRequest struct {
	Model        string      `json:"model"`
	Trials       *int        `json:"trials"`
	EdgeFrom     *float64    `json:"edgeFrom"`
	EdgeTo       *float64    `json:"edgeTo"`
	EdgeStep     *float64    `json:"edgeStep"`
	HouseP       *float64    `json:"houseP"`
	Seed         *uint64     `json:"seed"`
	Ranges       *sim.Ranges `json:"ranges"`
	Bankroll     *float64    `json:"bankroll"`
	ReserveRatio *float64    `json:"reserveRatio"`
}

type sweepResponse struct {
	SweepID string        `json:"sweepId"`
	Runs    []*run.Record `json:"runs"`
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// trials resolves the requested trial count against config defaults and the cap.
func (s *Server) trials(requested *int, kind string) (int, error) {
	n := s.cfg.Sim.TrialsFor(kind)
	if requested != nil {
		n = *requested
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: got %d", sim.ErrInvalidTrials, n)
	}
	if limit := s.cfg.Sim.MaxTrials; limit > 0 && n > limit {
		return 0, fmt.Errorf("%w: %d exceeds limit %d", sim.ErrInvalidTrials, n, limit)
	}
	return n, nil
}

// sweepLimit caps the trials of a whole sweep, falling back to the per-run cap.
func (s *Server) sweepLimit() int {
	if s.cfg.Sim.MaxSweepTrials > 0 {
		return s.cfg.Sim.MaxSweepTrials
	}
	return s.cfg.Sim.MaxTrials
}

// model builds the model for a run request, from a preset when one is named.
func (s *Server) model(req runRequest) (gamemath.Model, error) {
	if req.Preset != "" {
		p, ok := s.presets.Get(req.Preset)
		if !ok {
			return nil, fmt.Errorf("%w: preset %q", gamemath.ErrUnknownModel, req.Preset)
		}
		return p.Model()
	}
	kind := strings.ToLower(strings.TrimSpace(req.Model))
	if kind == "" {
		kind = s.cfg.Sim.Model
	}
	edge := orDefault(req.Edge, defaultSplitEdge)
	if kind == gamemath.KindSimple {
		edge = orDefault(req.Edge, s.cfg.Sim.SimpleEdge)
	}
	return gamemath.New(kind, edge, orDefault(req.HouseP, s.cfg.Sim.HouseP))
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body", "INVALID_BODY")
		return
	}
	m, err := s.model(req)
	if err != nil {
		writeSimError(w, err)
		return
	}
	n, err := s.trials(req.Trials, m.Kind())
	if err != nil {
		writeSimError(w, err)
		return
	}
	opts := sim.Options{
		Trials:        n,
		CollectDeltas: req.CollectDeltas,
		Bankroll:      orDefault(req.Bankroll, s.cfg.Sim.Bankroll),
		ReserveRatio:  orDefault(req.ReserveRatio, s.cfg.Sim.ReserveRatio),
		Logger:        s.log,
	}
	if req.Ranges != nil {
		opts.Ranges = *req.Ranges
	}
	res, err := sim.Run(r.Context(), m, s.source(req.Seed), opts)
	if err != nil {
		writeSimError(w, err)
		return
	}
	rec := run.NewRecord(res, "", req.Seed)
	if err := s.runs.Append(r.Context(), rec); err != nil {
		s.log.Warn("store run", zap.String("run_id", rec.RunID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to store run", "STORE_FAILED")
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	var req sweepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body", "INVALID_BODY")
		return
	}
	kind := strings.ToLower(strings.TrimSpace(req.Model))
	if kind == "" {
		kind = s.cfg.Sim.Model
	}
	n, err := s.trials(req.Trials, kind)
	if err != nil {
		writeSimError(w, err)
		return
	}
	opts := sim.SweepOptions{
		Trials:         n,
		EdgeFrom:       orDefault(req.EdgeFrom, s.cfg.Sim.EdgeFrom),
		EdgeTo:         orDefault(req.EdgeTo, s.cfg.Sim.EdgeTo),
		EdgeStep:       orDefault(req.EdgeStep, s.cfg.Sim.EdgeStep),
		HouseP:         orDefault(req.HouseP, s.cfg.Sim.HouseP),
		Bankroll:       orDefault(req.Bankroll, s.cfg.Sim.Bankroll),
		ReserveRatio:   orDefault(req.ReserveRatio, s.cfg.Sim.ReserveRatio),
		MaxTotalTrials: s.sweepLimit(),
		Logger:         s.log,
	}
	if req.Ranges != nil {
		opts.Ranges = *req.Ranges
	}
	results, err := sim.Sweep(r.Context(), kind, opts, s.source(req.Seed))
	if err != nil {
		writeSimError(w, err)
		return
	}

	resp := sweepResponse{SweepID: uuid.NewString()}
	for _, res := range results {
		rec := run.NewRecord(res, resp.SweepID, req.Seed)
		if err := s.runs.Append(r.Context(), rec); err != nil {
			s.log.Warn("store sweep run", zap.String("sweep_id", resp.SweepID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to store run", "STORE_FAILED")
			return
		}
		resp.Runs = append(resp.Runs, rec)
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, err := s.runs.Get(r.Context(), id)
	if errors.Is(err, run.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found", "NOT_FOUND")
		return
	}
	if err != nil {
		writeSimError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer", "INVALID_LIMIT")
			return
		}
		limit = n
	}
	list, err := s.runs.List(r.Context(), limit)
	if err != nil {
		writeSimError(w, err)
		return
	}
	if list == nil {
		list = []*run.Record{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.presets.List())
}

func (s *Server) handleRegisterPreset(w http.ResponseWriter, r *http.Request) {
	var p gamemath.Preset
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body", "INVALID_BODY")
		return
	}
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required", "INVALID_PRESET")
		return
	}
	if err := s.presets.Register(p); err != nil {
		writeSimError(w, err)
		return
	}
	stored, _ := s.presets.Get(p.ID)
	writeJSON(w, http.StatusCreated, stored)
}
