package db

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jonathan/smart-ats/internal/evaluation"
)

// ExcerptLength is the number of job description characters kept with each record
const ExcerptLength = 280

// DefaultListLimit and MaxListLimit bound ListEvaluations
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// EvaluationRecord is one stored evaluation
type EvaluationRecord struct {
	ID            uuid.UUID              `json:"id"`
	ResumeName    string                 `json:"resume_name"`
	JDExcerpt     string                 `json:"jd_excerpt"`
	Model         string                 `json:"model"`
	JDMatch       string                 `json:"jd_match"`
	MatchFraction *float64               `json:"match_fraction,omitempty"`
	Evaluation    *evaluation.Evaluation `json:"evaluation"`
	DurationMS    int64                  `json:"duration_ms"`
	CreatedAt     time.Time              `json:"created_at"`
}

// NewEvaluationRecord builds a record from a completed evaluation.
// Only an excerpt of the job description is kept; the résumé text is never stored.
func NewEvaluationRecord(result *evaluation.Result, jobDescription string) *EvaluationRecord {
	rec := &EvaluationRecord{
		ID:            result.ID,
		ResumeName:    result.ResumeName,
		JDExcerpt:     Excerpt(jobDescription, ExcerptLength),
		Model:         result.Model,
		MatchFraction: result.MatchFraction,
		Evaluation:    result.Evaluation,
		CreatedAt:     result.CreatedAt,
	}
	if result.Evaluation != nil {
		rec.JDMatch = result.Evaluation.JDMatch
	}
	if d, err := time.ParseDuration(result.Duration); err == nil {
		rec.DurationMS = d.Milliseconds()
	}
	return rec
}

// Excerpt collapses whitespace and truncates to at most n runes, marking the cut with an ellipsis
func Excerpt(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:n])) + "…"
}

// ClampLimit keeps a list limit within [1, MaxListLimit]
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
