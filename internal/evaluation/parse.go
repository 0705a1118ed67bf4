package evaluation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jonathan/smart-ats/internal/llm"
	"github.com/jonathan/smart-ats/internal/schemas"
)

// rawEvaluation mirrors Evaluation with nullable fields so absent keys can be told apart
type rawEvaluation struct {
	JDMatch            json.RawMessage `json:"JD Match"`
	MissingKeywords    []string        `json:"Missing Keywords"`
	ProfileSummary     *string         `json:"Profile Summary"`
	GrammarCorrections []struct {
		Incorrect *string `json:"Incorrect"`
		Correct   *string `json:"Correct"`
	} `json:"Grammar Corrections"`
	JobRecommendations []string `json:"Job Recommendations"`
	HRInsights         *string  `json:"HR Insights"`
}

// ParseResponse turns the model's reply into an Evaluation.
// Code fences are removed, value types are checked against the evaluation
// schema, and absent keys are filled with defaults.
func ParseResponse(text string) (*Evaluation, error) {
	cleaned := strings.TrimSpace(llm.CleanJSONBlock(text))
	if cleaned == "" {
		return nil, &ParseError{Message: "empty response"}
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &object); err != nil || object == nil {
		return nil, &ParseError{Message: "response is not a JSON object", Cause: err}
	}

	if err := schemas.ValidateEvaluation(cleaned); err != nil {
		return nil, &ParseError{Message: "unexpected value types", Cause: err}
	}

	var raw rawEvaluation
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, &ParseError{Message: "failed to decode evaluation", Cause: err}
	}

	jdMatch, err := decodeJDMatch(raw.JDMatch)
	if err != nil {
		return nil, &ParseError{Message: "invalid JD Match", Cause: err}
	}

	eval := &Evaluation{
		JDMatch:            jdMatch,
		MissingKeywords:    nonNil(raw.MissingKeywords),
		ProfileSummary:     stringOrDefault(raw.ProfileSummary),
		GrammarCorrections: make([]GrammarCorrection, 0, len(raw.GrammarCorrections)),
		JobRecommendations: nonNil(raw.JobRecommendations),
		HRInsights:         stringOrDefault(raw.HRInsights),
	}
	for _, gc := range raw.GrammarCorrections {
		eval.GrammarCorrections = append(eval.GrammarCorrections, GrammarCorrection{
			Incorrect: stringOrDefault(gc.Incorrect),
			Correct:   stringOrDefault(gc.Correct),
		})
	}

	return eval, nil
}

// decodeJDMatch accepts "85%", "85" or 85 and always returns a string
func decodeJDMatch(data json.RawMessage) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return NotAvailable, nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		if strings.TrimSpace(s) == "" {
			return NotAvailable, nil
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	f, err := n.Float64()
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(f, 'f', -1, 64) + "%", nil
}

// MatchFraction converts a JD Match value such as "85%" to 0.85.
// The result is clamped to [0,1].
func MatchFraction(jdMatch string) (float64, error) {
	s := strings.TrimSpace(jdMatch)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if s == "" {
		return 0, fmt.Errorf("JD Match %q is not a percentage", jdMatch)
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("JD Match %q is not a percentage: %w", jdMatch, err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("JD Match %q is not a percentage", jdMatch)
	}

	fraction := value / 100
	switch {
	case fraction < 0:
		fraction = 0
	case fraction > 1:
		fraction = 1
	}
	return fraction, nil
}

func stringOrDefault(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return NotAvailable
	}
	return *s
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
