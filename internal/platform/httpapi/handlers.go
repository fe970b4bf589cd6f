package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vovakirdan/towerdefense/internal/config"
	apperrors "github.com/vovakirdan/towerdefense/internal/errors"
	"github.com/vovakirdan/towerdefense/internal/game"
	"github.com/vovakirdan/towerdefense/internal/match"
	"github.com/vovakirdan/towerdefense/internal/mediator"
	"github.com/vovakirdan/towerdefense/internal/simulation"
	"github.com/vovakirdan/towerdefense/internal/state"
	"github.com/vovakirdan/towerdefense/internal/storage"
)

// maxTicksPerRequest bounds POST /matches/{id}/tick.
const maxTicksPerRequest = 10000

func writeResult[T any](w http.ResponseWriter, res mediator.Result[T]) {
	status := http.StatusOK
	if !res.Success {
		status = res.Code.HTTPStatus()
	}
	writeJSON(w, status, res)
}

// decode reads a JSON body into v. An empty body leaves v unchanged.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeError(w, http.StatusBadRequest, "bad_json")
	return false
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session, bool) {
	sess, err := s.matches.get(chi.URLParam(r, "matchID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "match_not_found")
		return nil, false
	}
	return sess, true
}

// scenarioFor applies a difficulty preset to a copy of the hosted scenario.
func (s *Server) scenarioFor(difficulty string) (config.Scenario, bool) {
	preset, ok := config.ParsePreset(difficulty)
	if !ok {
		return config.Scenario{}, false
	}
	sc := s.scenario
	config.ApplyPreset(&sc, preset)
	return sc, true
}

// ------------------------------ matches ------------------------------------

type createMatchReq struct {
	Seed       *int64 `json:"seed"`
	Difficulty string `json:"difficulty"`
	Autoplay   bool   `json:"autoplay"`
}

type createMatchRes struct {
	ID    string         `json:"id"`
	State state.Snapshot `json:"state"`
}

func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req createMatchReq
	if !decode(w, r, &req) {
		return
	}
	sc, ok := s.scenarioFor(req.Difficulty)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown_difficulty")
		return
	}
	opts := game.Options{Seed: req.Seed, Logger: s.logger}
	if req.Autoplay {
		plan := s.plan
		opts.Plan = &plan
	}
	g, err := game.New(sc, opts)
	if err != nil {
		s.logger.Error("create match", "err", err)
		writeError(w, http.StatusInternalServerError, "create_failed")
		return
	}
	sess, err := s.matches.add(g)
	if errors.Is(err, ErrTooManyMatches) {
		writeError(w, http.StatusServiceUnavailable, "too_many_matches")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "create_failed")
		return
	}
	s.logger.Info("match created", "id", sess.id, "seed", g.Runtime.Seed, "autoplay", req.Autoplay)
	writeJSON(w, http.StatusCreated, createMatchRes{
		ID:    sess.id,
		State: g.Match.GameState(r.Context()).Data,
	})
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"ids": s.matches.IDs()})
}

func (s *Server) handleDeleteMatch(w http.ResponseWriter, r *http.Request) {
	if !s.matches.remove(chi.URLParam(r, "matchID")) {
		writeError(w, http.StatusNotFound, "match_not_found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeResult(w, sess.game.Match.GameState(r.Context()))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.game.Reset(r.Context()); err != nil {
		writeResult(w, mediator.FromError[state.Snapshot](err))
		return
	}
	writeResult(w, sess.game.Match.GameState(r.Context()))
}

type tickReq struct {
	Ticks int `json:"ticks"`
}

type tickRes struct {
	Ticks int            `json:"ticks"`
	State state.Snapshot `json:"state"`
}

// handleTick steps the match clock, the strategy when autoplaying, and
// the combat model. It stops early once the match ends.
func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	req := tickReq{Ticks: 1}
	if !decode(w, r, &req) {
		return
	}
	if req.Ticks < 1 || req.Ticks > maxTicksPerRequest {
		writeError(w, http.StatusBadRequest, "ticks_out_of_range")
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	ctx := r.Context()
	snap := sess.game.Match.GameState(ctx).Data
	done := 0
	for done < req.Ticks && !snap.Phase.IsTerminal() {
		if ctx.Err() != nil {
			break
		}
		snap = sess.harness.Step(ctx)
		done++
	}
	writeJSON(w, http.StatusOK, tickRes{Ticks: done, State: snap})
}

// ----------------------------- buildings -----------------------------------

func (s *Server) handleBuildings(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeResult(w, sess.game.Match.Buildings(r.Context()))
}

func (s *Server) handlePlaceBuilding(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var cmd match.PlaceBuildingCommand
	if !decode(w, r, &cmd) {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	writeResult(w, sess.game.Match.PlaceBuilding(r.Context(), cmd))
}

func (s *Server) handleRemoveBuilding(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "buildingID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_building_id")
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	writeResult(w, sess.game.Match.RemoveBuilding(r.Context(), match.RemoveBuildingCommand{BuildingID: id}))
}

// ------------------------------ progression --------------------------------

func (s *Server) handleStartRound(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var cmd match.StartRoundCommand
	if !decode(w, r, &cmd) {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	writeResult(w, sess.game.Match.StartRound(r.Context(), cmd))
}

func (s *Server) handleStartWave(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var cmd match.StartWaveCommand
	if !decode(w, r, &cmd) {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	writeResult(w, sess.game.Match.StartWave(r.Context(), cmd))
}

func (s *Server) handleWaveInfo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeResult(w, sess.game.Match.WaveInfo(r.Context()))
}

// ------------------------------- economy -----------------------------------

func (s *Server) handleSpend(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var cmd match.SpendMoneyCommand
	if !decode(w, r, &cmd) {
		return
	}
	writeResult(w, sess.game.Match.SpendMoney(r.Context(), cmd))
}

func (s *Server) handleEarn(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var cmd match.EarnMoneyCommand
	if !decode(w, r, &cmd) {
		return
	}
	writeResult(w, sess.game.Match.EarnMoney(r.Context(), cmd))
}

// ------------------------------ simulations --------------------------------

type simulateReq struct {
	Seed       *int64 `json:"seed"`
	Difficulty string `json:"difficulty"`
	MaxTicks   int    `json:"max_ticks"`
	Save       bool   `json:"save"`
}

type simulateRes struct {
	RunID  string            `json:"run_id,omitempty"`
	Seed   int64             `json:"seed"`
	Result simulation.Result `json:"result"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateReq
	if !decode(w, r, &req) {
		return
	}
	if req.MaxTicks < 0 {
		writeError(w, http.StatusBadRequest, "max_ticks_negative")
		return
	}
	sc, ok := s.scenarioFor(req.Difficulty)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown_difficulty")
		return
	}
	seed := sc.Runtime().Seed
	if req.Seed != nil {
		seed = *req.Seed
	}

	plan := s.plan
	res, err := game.Simulate(r.Context(), sc, game.Options{Seed: &seed, Plan: &plan, Logger: s.logger},
		func(o *simulation.Options) {
			if req.MaxTicks > 0 {
				o.MaxTicks = req.MaxTicks
			}
		})
	if err != nil {
		status := http.StatusInternalServerError
		if apperrors.IsCode(err, apperrors.CodeSimulationAborted) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err.Error())
		return
	}

	out := simulateRes{Seed: seed, Result: res}
	if req.Save && s.runs != nil {
		id, err := s.runs.SaveRun(storage.RunFromResult(sc.Name, "default", seed, res))
		if err != nil {
			s.logger.Warn("save run", "err", err)
		} else {
			out.RunID = id
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusNotFound, "history_disabled")
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_limit")
			return
		}
		limit = n
	}
	runs, err := s.runs.RecentRuns(limit)
	if err != nil {
		s.logger.Error("list runs", "err", err)
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if runs == nil {
		runs = []storage.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// -------------------------------- catalog ----------------------------------

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"scenario":         s.scenario.Name,
		"default_building": s.scenario.DefaultBuilding,
		"buildings":        s.scenario.Buildings,
		"enemies":          s.scenario.Enemies,
		"rounds":           s.scenario.Rounds,
	})
}
