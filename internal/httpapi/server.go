// Package httpapi exposes the progress engine over HTTP and WebSocket.
package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/p-n-ai/pai-progress/internal/curriculum"
	"github.com/p-n-ai/pai-progress/internal/exercise"
	"github.com/p-n-ai/pai-progress/internal/progress"
	"github.com/p-n-ai/pai-progress/internal/report"
)

const (
	healthCheckTimeout = 2 * time.Second
	maxBodyBytes       = 1 << 16
)

// HealthChecker is a dependency reported by /readyz.
type HealthChecker interface {
	Name() string
	HealthCheck(ctx context.Context) error
}

// Config holds the handler's collaborators. Engine, Runner and Curriculum are
// required; a nil Gatherer leaves /metrics unregistered.
type Config struct {
	Engine     *progress.Engine
	Runner     *exercise.Runner
	Curriculum curriculum.Definition
	Checks     []HealthChecker
	Gatherer   prometheus.Gatherer
}

type server struct {
	engine *progress.Engine
	runner *exercise.Runner
	def    curriculum.Definition
	checks []HealthChecker
}

// NewHandler creates the HTTP router.
func NewHandler(cfg Config) http.Handler {
	s := &server{
		engine: cfg.Engine,
		runner: cfg.Runner,
		def:    cfg.Curriculum,
		checks: cfg.Checks,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.HandleFunc("GET /v1/progress", s.handleSnapshot)
	mux.HandleFunc("GET /v1/progress/report.xlsx", s.handleReport)
	mux.HandleFunc("GET /v1/progress/stream", s.handleStream)
	mux.HandleFunc("POST /v1/concepts/{id}/progress", s.handleApplyDelta)
	mux.HandleFunc("GET /v1/concepts/{id}/guide", s.handleGuide)
	mux.HandleFunc("POST /v1/concepts/{id}/exercises", s.handleStartExercise)
	mux.HandleFunc("GET /v1/exercises/{session}", s.handleGetExercise)
	mux.HandleFunc("POST /v1/exercises/{session}/answers", s.handleAnswer)
	mux.HandleFunc("POST /v1/modules/{id}/toggle", s.handleToggle)
	if cfg.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	return logRequests(mux)
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	for _, c := range s.checks {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := c.HealthCheck(ctx)
		cancel()
		if err != nil {
			slog.Warn("readiness check failed", "dependency", c.Name(), "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

type deltaRequest struct {
	Amount *int `json:"amount"`
}

func (s *server) handleApplyDelta(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req deltaRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Amount == nil {
		writeError(w, http.StatusBadRequest, "body must be {\"amount\": int}")
		return
	}

	writeJSON(w, http.StatusOK, s.engine.ApplyProgressDelta(progress.ConceptID(id), *req.Amount))
}

func (s *server) handleToggle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.engine.ToggleModuleExpansion(progress.ModuleID(id)))
}

func (s *server) handleGuide(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	guide, found := s.def.Guide(curriculum.ConceptID(id))
	if !found {
		writeError(w, http.StatusNotFound, "no guide available")
		return
	}
	resp := map[string]any{"concept_id": id, "guide": guide}
	if m, ok := s.engine.Snapshot().ModuleOfConcept(progress.ConceptID(id)); ok {
		resp["module_id"] = m.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

type sessionResponse struct {
	SessionID    string               `json:"session_id"`
	ConceptID    curriculum.ConceptID `json:"concept_id"`
	Problem      string               `json:"problem"`
	Exercises    int                  `json:"exercises"`
	Current      int                  `json:"current"`
	AttemptsLeft int                  `json:"attempts_left"`
	ScoreAdded   int                  `json:"score_added"`
	Finished     bool                 `json:"finished"`
}

func newSessionResponse(sess exercise.Session) sessionResponse {
	return sessionResponse{
		SessionID:    sess.ID,
		ConceptID:    sess.ConceptID,
		Problem:      sess.Problem(),
		Exercises:    len(sess.Exercises),
		Current:      sess.Current,
		AttemptsLeft: sess.AttemptsLeft,
		ScoreAdded:   sess.ScoreAdded,
		Finished:     sess.Finished,
	}
}

func (s *server) handleStartExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	sess, err := s.runner.Start(curriculum.ConceptID(id))
	switch {
	case errors.Is(err, exercise.ErrNoExercises):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, exercise.ErrConceptLocked):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		slog.Error("failed to start exercise session", "concept_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, newSessionResponse(sess))
}

func (s *server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	sess, err := s.runner.Get(r.PathValue("session"))
	switch {
	case errors.Is(err, exercise.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		slog.Error("failed to load exercise session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

type answerRequest struct {
	Answer json.Number `json:"answer"`
}

func (s *server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "body must be {\"answer\": int}")
		return
	}

	res, err := s.runner.Answer(r.PathValue("session"), req.Answer.String())
	switch {
	case errors.Is(err, exercise.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, exercise.ErrSessionFinished):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, exercise.ErrInvalidAnswer):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("failed to record answer", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *server) handleReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="progress.xlsx"`)
	if err := report.WriteXLSX(w, s.engine.Snapshot()); err != nil {
		slog.Error("failed to write progress report", "error", err)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be an integer")
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack hands the connection to the WebSocket upgrade.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return http.NewResponseController(r.ResponseWriter).Hijack()
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
