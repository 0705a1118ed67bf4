// Package evaluation builds the ATS prompt, sends it to the model and
// turns the reply into a structured Evaluation.
package evaluation

import (
	"time"

	"github.com/google/uuid"
)

// NotAvailable is the value used for text fields the model left out.
const NotAvailable = "N/A"

// GrammarCorrection pairs a sentence from the résumé with its fix
type GrammarCorrection struct {
	Incorrect string `json:"Incorrect"`
	Correct   string `json:"Correct"`
}

// Evaluation is the model's assessment of a résumé against a job description.
// JSON keys match the response shape requested in the prompt.
type Evaluation struct {
	JDMatch            string              `json:"JD Match"`
	MissingKeywords    []string            `json:"Missing Keywords"`
	ProfileSummary     string              `json:"Profile Summary"`
	GrammarCorrections []GrammarCorrection `json:"Grammar Corrections"`
	JobRecommendations []string            `json:"Job Recommendations"`
	HRInsights         string              `json:"HR Insights"`
}

// Request is a single evaluation request
type Request struct {
	ResumeText     string
	JobDescription string
	// ResumeName is the uploaded file name, kept for history only
	ResumeName string
}

// Result is a completed evaluation
type Result struct {
	ID         uuid.UUID   `json:"id"`
	Evaluation *Evaluation `json:"evaluation"`
	// MatchFraction is JD Match as a value in [0,1]; nil when JD Match is not numeric
	MatchFraction *float64  `json:"match_fraction,omitempty"`
	Model         string    `json:"model"`
	ResumeName    string    `json:"resume_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	Duration      string    `json:"duration"`
	RawResponse   string    `json:"-"`
}
