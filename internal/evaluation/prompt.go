package evaluation

import "github.com/jonathan/smart-ats/internal/prompts"

// BuildPrompt fills the evaluation template with the résumé text and job description.
// Both values are inserted verbatim.
func BuildPrompt(resumeText, jdText string) string {
	return prompts.Format(prompts.MustGet("evaluation.json", "evaluate-resume"), map[string]string{
		"ResumeText":     resumeText,
		"JobDescription": jdText,
	})
}
