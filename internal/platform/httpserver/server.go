package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	lifecycleservice "symposium/contexts/event-core/lifecycle-service"
	lifecycleerrors "symposium/contexts/event-core/lifecycle-service/domain/errors"
	lifecyclehttp "symposium/contexts/event-core/lifecycle-service/transport/http"
	criteriaservice "symposium/contexts/evaluation/criteria-service"
	criteriaerrors "symposium/contexts/evaluation/criteria-service/domain/errors"
	criteriahttp "symposium/contexts/evaluation/criteria-service/transport/http"
	scoringengine "symposium/contexts/evaluation/scoring-engine"
	scoringerrors "symposium/contexts/evaluation/scoring-engine/domain/errors"
	scoringhttp "symposium/contexts/evaluation/scoring-engine/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "symposium/internal/platform/httpserver/docs"
)

type Server struct {
	mux       *http.ServeMux
	logger    *slog.Logger
	addr      string
	lifecycle lifecycleservice.Module
	criteria  criteriaservice.Module
	scoring   scoringengine.Module
}

func New(
	lifecycle lifecycleservice.Module,
	criteria criteriaservice.Module,
	scoring scoringengine.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		lifecycle: lifecycle,
		criteria:  criteria,
		scoring:   scoring,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/events/v1/events", s.handleCreateEvent)
	s.mux.HandleFunc("GET /api/events/v1/events", s.handleListEvents)
	s.mux.HandleFunc("GET /api/events/v1/events/{event_id}", s.handleGetEvent)
	s.mux.HandleFunc("POST /api/events/v1/events/{event_id}/transition", s.handleChangeState)
	s.mux.HandleFunc("GET /api/events/v1/events/{event_id}/history", s.handleStateHistory)

	s.mux.HandleFunc("POST /api/criteria/v1/criteria", s.handleAddCriterion)
	s.mux.HandleFunc("PUT /api/criteria/v1/criteria/{criterion_id}", s.handleEditCriterion)
	s.mux.HandleFunc("DELETE /api/criteria/v1/criteria/{criterion_id}", s.handleRemoveCriterion)
	s.mux.HandleFunc("GET /api/criteria/v1/events/{event_id}/criteria", s.handleListCriteria)
	s.mux.HandleFunc("GET /api/criteria/v1/events/{event_id}/weight-summary", s.handleWeightSummary)

	s.mux.HandleFunc("POST /api/scores/v1/ratings", s.handleRecordRating)
	s.mux.HandleFunc("POST /api/scores/v1/events/{event_id}/participants/{participant_id}/recompute", s.handleRecomputeScore)
	s.mux.HandleFunc("GET /api/scores/v1/events/{event_id}/leaderboard", s.handleLeaderboard)
	s.mux.HandleFunc("GET /api/scores/v1/events/{event_id}/participants/{participant_id}", s.handleParticipantScore)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req lifecyclehttp.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.lifecycle.Handler.CreateEventHandler(r.Context(), req)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	resp, err := s.lifecycle.Handler.ListEventsHandler(r.Context(), r.URL.Query().Get("state"))
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	resp, err := s.lifecycle.Handler.GetEventHandler(r.Context(), r.PathValue("event_id"))
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChangeState(w http.ResponseWriter, r *http.Request) {
	var req lifecyclehttp.ChangeStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.lifecycle.Handler.ChangeStateHandler(r.Context(), r.PathValue("event_id"), req)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStateHistory(w http.ResponseWriter, r *http.Request) {
	resp, err := s.lifecycle.Handler.StateHistoryHandler(r.Context(), r.PathValue("event_id"))
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddCriterion(w http.ResponseWriter, r *http.Request) {
	var req criteriahttp.AddCriterionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCriteriaError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.criteria.Handler.AddCriterionHandler(r.Context(), req)
	if err != nil {
		writeCriteriaDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleEditCriterion(w http.ResponseWriter, r *http.Request) {
	var req criteriahttp.EditCriterionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCriteriaError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.criteria.Handler.EditCriterionHandler(r.Context(), r.PathValue("criterion_id"), req)
	if err != nil {
		writeCriteriaDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRemoveCriterion(w http.ResponseWriter, r *http.Request) {
	if err := s.criteria.Handler.RemoveCriterionHandler(r.Context(), r.PathValue("criterion_id")); err != nil {
		writeCriteriaDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCriteria(w http.ResponseWriter, r *http.Request) {
	resp, err := s.criteria.Handler.ListCriteriaHandler(r.Context(), r.PathValue("event_id"))
	if err != nil {
		writeCriteriaDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWeightSummary(w http.ResponseWriter, r *http.Request) {
	resp, err := s.criteria.Handler.WeightSummaryHandler(r.Context(), r.PathValue("event_id"))
	if err != nil {
		writeCriteriaDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecordRating(w http.ResponseWriter, r *http.Request) {
	var req scoringhttp.RecordRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeScoringError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.scoring.Handler.RecordRatingHandler(r.Context(), req)
	if err != nil {
		writeScoringDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecomputeScore(w http.ResponseWriter, r *http.Request) {
	resp, err := s.scoring.Handler.RecomputeScoreHandler(
		r.Context(),
		r.PathValue("participant_id"),
		r.PathValue("event_id"),
	)
	if err != nil {
		writeScoringDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	resp, err := s.scoring.Handler.LeaderboardHandler(r.Context(), r.PathValue("event_id"))
	if err != nil {
		writeScoringDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleParticipantScore(w http.ResponseWriter, r *http.Request) {
	resp, err := s.scoring.Handler.ParticipantScoreHandler(
		r.Context(),
		r.PathValue("participant_id"),
		r.PathValue("event_id"),
	)
	if err != nil {
		writeScoringDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeLifecycleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lifecycleerrors.ErrInvalidEventInput):
		writeLifecycleError(w, http.StatusBadRequest, "invalid_event_input", err.Error())
	case errors.Is(err, lifecycleerrors.ErrEventNotFound):
		writeLifecycleError(w, http.StatusNotFound, "event_not_found", err.Error())
	case errors.Is(err, lifecycleerrors.ErrProfileNotFound):
		writeLifecycleError(w, http.StatusNotFound, "profile_not_found", err.Error())
	case errors.Is(err, lifecycleerrors.ErrInvalidStateTransition):
		writeLifecycleError(w, http.StatusConflict, "invalid_state_transition", err.Error())
	case errors.Is(err, lifecycleerrors.ErrOrphanRoleReference):
		writeLifecycleError(w, http.StatusConflict, "orphan_role_reference", err.Error())
	case errors.Is(err, lifecycleerrors.ErrTeardownFailed):
		writeLifecycleError(w, http.StatusConflict, "teardown_failed", err.Error())
	default:
		writeLifecycleError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeCriteriaDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, criteriaerrors.ErrInvalidCriterionInput):
		writeCriteriaError(w, http.StatusBadRequest, "invalid_criterion_input", err.Error())
	case errors.Is(err, criteriaerrors.ErrWeightCeilingExceeded):
		writeCriteriaError(w, http.StatusUnprocessableEntity, "weight_ceiling_exceeded", err.Error())
	case errors.Is(err, criteriaerrors.ErrCriterionNotFound):
		writeCriteriaError(w, http.StatusNotFound, "criterion_not_found", err.Error())
	case errors.Is(err, criteriaerrors.ErrEventNotFound):
		writeCriteriaError(w, http.StatusNotFound, "event_not_found", err.Error())
	case errors.Is(err, criteriaerrors.ErrEventNotEditable):
		writeCriteriaError(w, http.StatusConflict, "event_not_editable", err.Error())
	default:
		writeCriteriaError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeScoringDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scoringerrors.ErrInvalidRatingInput):
		writeScoringError(w, http.StatusBadRequest, "invalid_rating_input", err.Error())
	case errors.Is(err, scoringerrors.ErrRatingOutOfRange):
		writeScoringError(w, http.StatusUnprocessableEntity, "rating_out_of_range", err.Error())
	case errors.Is(err, scoringerrors.ErrRatingNotFound):
		writeScoringError(w, http.StatusNotFound, "rating_not_found", err.Error())
	case errors.Is(err, scoringerrors.ErrCriterionNotFound):
		writeScoringError(w, http.StatusNotFound, "criterion_not_found", err.Error())
	case errors.Is(err, scoringerrors.ErrCriterionEventMismatch):
		writeScoringError(w, http.StatusConflict, "criterion_event_mismatch", err.Error())
	case errors.Is(err, scoringerrors.ErrParticipationNotFound):
		writeScoringError(w, http.StatusNotFound, "participation_not_found", err.Error())
	case errors.Is(err, scoringerrors.ErrEventNotFound):
		writeScoringError(w, http.StatusNotFound, "event_not_found", err.Error())
	case errors.Is(err, scoringerrors.ErrScorePropagationFailure):
		writeScoringError(w, http.StatusConflict, "score_propagation_failure", err.Error())
	default:
		writeScoringError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeLifecycleError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, lifecyclehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeCriteriaError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, criteriahttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeScoringError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, scoringhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
