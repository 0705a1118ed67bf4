package evaluation

import (
	"strings"
)

// User-facing messages shown by every front end.
const (
	MessageMissingInput = "Please upload a resume and provide a job description."
	MessageTryAgain     = "Error processing the response. Please try again."
	MessageCompleted    = "Resume Evaluation Completed!"
	MessageAnalyzing    = "Analyzing your resume..."

	MessageNoKeywords        = "No significant keywords missing."
	MessageNoGrammarErrors   = "No grammar errors found."
	MessageNoRecommendations = "No specific job recommendations at the moment."
)

// MatchLabel formats JD Match for display with exactly one trailing percent sign.
// Non-numeric values are shown unchanged.
func MatchLabel(jdMatch string) string {
	if _, err := MatchFraction(jdMatch); err != nil {
		return jdMatch
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(jdMatch), "%")) + "%"
}

// KeywordsText joins missing keywords for display
func KeywordsText(keywords []string) string {
	if len(keywords) == 0 {
		return MessageNoKeywords
	}
	return strings.Join(keywords, ", ")
}

// RecommendationsText joins job recommendations for display
func RecommendationsText(roles []string) string {
	if len(roles) == 0 {
		return MessageNoRecommendations
	}
	return strings.Join(roles, ", ")
}
