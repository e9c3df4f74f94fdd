// internal/server/handlers.go
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	commonerrors "talent-pipeline/internal/common/errors"
	"talent-pipeline/internal/models"
	"talent-pipeline/internal/pipeline"
	"talent-pipeline/internal/repository"
)

type applyRequest struct {
	CandidateID string `json:"candidateId"`
	JobID       string `json:"jobId"`
	CoverLetter string `json:"coverLetter,omitempty"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type stageOutcomeRequest struct {
	Stage  int  `json:"stage"`
	Passed bool `json:"passed"`
}

type stageRequest struct {
	Stage int `json:"stage"`
}

type notesRequest struct {
	Feedback      *string `json:"feedback"`
	InternalNotes *string `json:"internalNotes"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, commonerrors.NewValidationError("unreadable request body"))
		return
	}
	if err := validateApplyRequest(body); err != nil {
		s.writeError(w, err)
		return
	}

	var req applyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, commonerrors.NewValidationError(err.Error()))
		return
	}

	app, err := s.orch.Apply(r.Context(), pipeline.ApplyInput{
		CandidateID: req.CandidateID,
		JobID:       req.JobID,
		CoverLetter: req.CoverLetter,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, app)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	app, err := s.orch.GetApplication(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, app)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	filter := repository.Filter{
		CandidateID: r.URL.Query().Get("candidateId"),
		JobID:       r.URL.Query().Get("jobId"),
	}
	if raw := r.URL.Query().Get("overallStatus"); raw != "" {
		status, err := models.ParseOverallStatus(raw)
		if err != nil {
			s.writeError(w, commonerrors.NewValidationError(err.Error()))
			return
		}
		filter.OverallStatus = status
	}

	apps, err := s.orch.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if apps == nil {
		apps = []models.Application{}
	}
	s.writeJSON(w, http.StatusOK, apps)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	app, err := s.orch.AdvanceStage(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, app)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	app, err := s.orch.Reject(r.Context(), r.PathValue("id"), req.Reason)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, app)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	app, err := s.orch.Withdraw(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, app)
}

func (s *Server) handleStageOutcome(w http.ResponseWriter, r *http.Request) {
	var req stageOutcomeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	app, err := s.orch.RecordStageOutcome(r.Context(), r.PathValue("id"), models.Stage(req.Stage), req.Passed)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, app)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req stageRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	app, err := s.orch.ScheduleStage(r.Context(), r.PathValue("id"), models.Stage(req.Stage))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, app)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req stageRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	app, err := s.orch.StartStage(r.Context(), r.PathValue("id"), models.Stage(req.Stage))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, app)
}

func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	app, err := s.orch.UpdateNotes(r.Context(), r.PathValue("id"), pipeline.NotesPatch{
		Feedback:      req.Feedback,
		InternalNotes: req.InternalNotes,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, app)
}

func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return commonerrors.NewValidationError("invalid request body: " + err.Error())
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encoding failed", map[string]interface{}{"error": err})
	}
}

// writeError maps the error taxonomy to HTTP statuses so presentation layers
// can render distinct messages per kind.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	resp := errorResponse{Code: "INTERNAL_ERROR", Message: "internal error"}

	var se *commonerrors.StandardError
	if errors.As(err, &se) {
		resp = errorResponse{Code: string(se.Code), Message: se.Message, Details: se.Details}
		switch se.Code {
		case commonerrors.ErrCodeValidationFailed:
			status = http.StatusBadRequest
		case commonerrors.ErrCodeApplicationNotFound:
			status = http.StatusNotFound
		case commonerrors.ErrCodeInvalidTransition:
			status = http.StatusUnprocessableEntity
		case commonerrors.ErrCodeDuplicateApplication, commonerrors.ErrCodeConflict:
			status = http.StatusConflict
		case commonerrors.ErrCodeRemoteUnavailable:
			status = http.StatusServiceUnavailable
		}
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{"error": err})
	}
	s.writeJSON(w, status, resp)
}
