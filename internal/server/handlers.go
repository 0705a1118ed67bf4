package server

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jonathan/smart-ats/internal/db"
	"github.com/jonathan/smart-ats/internal/evaluation"
	"github.com/jonathan/smart-ats/internal/fetch"
	"github.com/jonathan/smart-ats/internal/rendering"
	"github.com/jonathan/smart-ats/internal/resume"
)

// Evaluation stages reported over SSE
const (
	StageExtracting = "extracting"
	StageFetching   = "fetching"
	StageAnalyzing  = "analyzing"
)

// EvaluationListResponse is the body of GET /api/evaluations
type EvaluationListResponse struct {
	Evaluations []db.EvaluationRecord `json:"evaluations"`
	Count       int                   `json:"count"`
}

// progressFunc receives stage updates during an evaluation
type progressFunc func(stage, message string)

func noProgress(string, string) {}

// evaluate extracts the résumé, resolves the job description and runs the model once.
// A pasted job description wins over jd_url.
func (s *Server) evaluate(ctx context.Context, form *evaluationForm, progress progressFunc) (*evaluation.Result, error) {
	progress(StageExtracting, "Extracting resume text...")
	resumeText, err := resume.ExtractText(form.resumeData)
	if err != nil {
		return nil, err
	}

	jobDescription := form.JobDescription
	if jobDescription == "" && form.JobURL != "" {
		progress(StageFetching, "Fetching job description...")
		jobDescription, err = fetch.JobDescription(ctx, form.JobURL, s.fetchOptions)
		if err != nil {
			return nil, err
		}
	}

	progress(StageAnalyzing, evaluation.MessageAnalyzing)
	if s.evalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.evalTimeout)
		defer cancel()
	}

	result, err := s.evaluator.Evaluate(ctx, evaluation.Request{
		ResumeText:     resumeText,
		JobDescription: jobDescription,
		ResumeName:     form.ResumeName,
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil && result.MatchFraction != nil {
		s.metrics.ObserveMatch(*result.MatchFraction)
	}
	s.saveHistory(ctx, result, jobDescription)
	return result, nil
}

// saveHistory records a result when a store is configured. Failures are logged only.
func (s *Server) saveHistory(ctx context.Context, result *evaluation.Result, jobDescription string) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveEvaluation(context.WithoutCancel(ctx), db.NewEvaluationRecord(result, jobDescription)); err != nil {
		s.logger.Error("failed to save evaluation",
			slog.String("id", result.ID.String()),
			slog.String("error", err.Error()))
	}
}

// handleIndex serves the empty form
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.renderPage(w, http.StatusOK, rendering.PageData{})
}

// handleEvaluatePage handles the form post and re-renders the page with results
func (s *Server) handleEvaluatePage(w http.ResponseWriter, r *http.Request) {
	data := rendering.PageData{}

	form, err := s.parseEvaluationForm(w, r)
	if err == nil {
		data.JobDescription = form.JobDescription
		data.JobURL = form.JobURL
		var result *evaluation.Result
		result, err = s.evaluate(r.Context(), form, noProgress)
		if err == nil {
			data.Result = rendering.NewResultView(result)
			s.renderPage(w, http.StatusOK, data)
			return
		}
	} else {
		data.JobDescription = submittedValue(r, "job_description")
		data.JobURL = submittedValue(r, "jd_url")
	}

	s.logFailure(r, err)
	data.Error = evaluation.UserMessage(err)
	s.renderPage(w, HTTPStatus(err), data)
}

// handleCreateEvaluation evaluates a multipart upload and returns the Result as JSON
func (s *Server) handleCreateEvaluation(w http.ResponseWriter, r *http.Request) {
	form, err := s.parseEvaluationForm(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), publicMessage(err))
		return
	}

	result, err := s.evaluate(r.Context(), form, noProgress)
	if err != nil {
		s.logFailure(r, err)
		s.errorResponse(w, HTTPStatus(err), publicMessage(err))
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleEvaluationStream evaluates an upload and reports progress via SSE
func (s *Server) handleEvaluationStream(w http.ResponseWriter, r *http.Request) {
	form, err := s.parseEvaluationForm(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), publicMessage(err))
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	progress := func(stage, message string) {
		if err := sse.WriteStatus(stage, message); err != nil {
			s.logger.Warn("failed to write SSE event", slog.String("error", err.Error()))
		}
	}

	result, err := s.evaluate(r.Context(), form, progress)
	if err != nil {
		s.logFailure(r, err)
		sse.WriteError(evaluation.UserMessage(err), HTTPStatus(err))
		return
	}

	var fragment bytes.Buffer
	if err := s.page.RenderResult(&fragment, rendering.NewResultView(result)); err != nil {
		s.logger.Error("failed to render result fragment", slog.String("error", err.Error()))
	}
	if err := sse.WriteEvent(EventResult, ResultEvent{
		Result:  result,
		HTML:    fragment.String(),
		Message: evaluation.MessageCompleted,
	}); err != nil {
		s.logger.Warn("failed to write SSE result", slog.String("error", err.Error()))
	}
}

// handleListEvaluations returns recent evaluations, newest first
func (s *Server) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, http.StatusNotFound, ErrHistoryDisabled.Error())
		return
	}

	limit := db.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = db.ClampLimit(n)
	}

	records, err := s.store.ListEvaluations(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list evaluations", slog.String("error", err.Error()))
		s.errorResponse(w, http.StatusInternalServerError, "failed to list evaluations")
		return
	}
	if records == nil {
		records = []db.EvaluationRecord{}
	}

	s.jsonResponse(w, http.StatusOK, EvaluationListResponse{Evaluations: records, Count: len(records)})
}

// handleGetEvaluation returns one stored evaluation
func (s *Server) handleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, http.StatusNotFound, ErrHistoryDisabled.Error())
		return
	}

	idStr := r.PathValue("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid evaluation ID")
		return
	}

	record, err := s.store.GetEvaluation(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to get evaluation", slog.String("id", idStr), slog.String("error", err.Error()))
		s.errorResponse(w, http.StatusInternalServerError, "failed to get evaluation")
		return
	}
	if record == nil {
		notFound := &ErrNotFound{ID: idStr}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, record)
}

// renderPage executes the page template into a buffer so template failures become a 500
func (s *Server) renderPage(w http.ResponseWriter, status int, data rendering.PageData) {
	data.MaxUploadMB = s.maxUploadBytes >> 20

	var buf bytes.Buffer
	if err := s.page.Render(&buf, data); err != nil {
		s.logger.Error("failed to render page", slog.String("error", err.Error()))
		http.Error(w, evaluation.MessageTryAgain, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// logFailure logs a failed evaluation request without its contents
func (s *Server) logFailure(r *http.Request, err error) {
	status := HTTPStatus(err)
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.Log(r.Context(), level, "evaluation request failed",
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.String("error", err.Error()))
}
