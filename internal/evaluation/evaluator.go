package evaluation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/smart-ats/internal/llm"
)

// Outcome labels reported to a Recorder
const (
	OutcomeSuccess      = "success"
	OutcomeMissingInput = "missing_input"
	OutcomeAPIError     = "api_error"
	OutcomeParseError   = "parse_error"
)

// Recorder receives one observation per evaluation attempt
type Recorder interface {
	ObserveEvaluation(outcome string, duration time.Duration)
}

// Evaluator runs résumé evaluations against a model client
type Evaluator struct {
	client   llm.Client
	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithLogger sets the logger used for evaluation events
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(e *Evaluator) {
		e.recorder = r
	}
}

// NewEvaluator creates an Evaluator. The caller owns client and closes it.
func NewEvaluator(client llm.Client, opts ...Option) *Evaluator {
	e := &Evaluator{
		client: client,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Model returns the model name used for evaluations
func (e *Evaluator) Model() string {
	return e.client.Model()
}

// Evaluate sends one prompt to the model and parses the reply.
// The model is called exactly once; failures are not retried.
func (e *Evaluator) Evaluate(ctx context.Context, req Request) (*Result, error) {
	start := e.now()

	if strings.TrimSpace(req.ResumeText) == "" || strings.TrimSpace(req.JobDescription) == "" {
		e.observe(OutcomeMissingInput, start)
		return nil, ErrMissingInput
	}

	prompt := BuildPrompt(req.ResumeText, req.JobDescription)

	reply, err := e.client.GenerateJSON(ctx, prompt)
	if err != nil {
		e.observe(OutcomeAPIError, start)
		e.logger.Error("model call failed",
			slog.String("model", e.client.Model()),
			slog.String("error", err.Error()))
		return nil, &APICallError{Message: "failed to generate evaluation", Cause: err}
	}

	eval, err := ParseResponse(reply)
	if err != nil {
		e.observe(OutcomeParseError, start)
		e.logger.Error("model reply could not be parsed",
			slog.String("model", e.client.Model()),
			slog.Int("reply_bytes", len(reply)),
			slog.String("error", err.Error()))
		return nil, err
	}

	result := &Result{
		ID:          uuid.New(),
		Evaluation:  eval,
		Model:       e.client.Model(),
		ResumeName:  req.ResumeName,
		CreatedAt:   start.UTC(),
		RawResponse: reply,
	}
	if fraction, err := MatchFraction(eval.JDMatch); err == nil {
		result.MatchFraction = &fraction
	}
	elapsed := e.now().Sub(start)
	result.Duration = elapsed.Round(time.Millisecond).String()

	e.observe(OutcomeSuccess, start)
	e.logger.Info("evaluation completed",
		slog.String("id", result.ID.String()),
		slog.String("jd_match", eval.JDMatch),
		slog.Int("missing_keywords", len(eval.MissingKeywords)),
		slog.Duration("duration", elapsed))

	return result, nil
}

func (e *Evaluator) observe(outcome string, start time.Time) {
	if e.recorder != nil {
		e.recorder.ObserveEvaluation(outcome, e.now().Sub(start))
	}
}

// OutcomeOf classifies an error returned by Evaluate
func OutcomeOf(err error) string {
	var apiErr *APICallError
	var parseErr *ParseError
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrMissingInput):
		return OutcomeMissingInput
	case errors.As(err, &apiErr):
		return OutcomeAPIError
	case errors.As(err, &parseErr):
		return OutcomeParseError
	default:
		return OutcomeAPIError
	}
}
