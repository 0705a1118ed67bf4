package rendering

import (
	"embed"
	"html/template"
	"io"
	"strconv"

	"github.com/jonathan/smart-ats/internal/evaluation"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData is everything the evaluator page shows
type PageData struct {
	JobDescription string
	JobURL         string
	MaxUploadMB    int64
	// Error is shown in place of results when set
	Error  string
	Result *ResultView
}

// ResultView is an evaluation prepared for display
type ResultView struct {
	ID                  string
	Model               string
	Banner              string
	MatchLabel          string
	MatchPercent        float64
	HasMatch            bool
	KeywordsText        string
	Bar                 *BarChartSVG
	ProfileSummary      string
	Corrections         []evaluation.GrammarCorrection
	NoCorrections       string
	RecommendationsText string
	Pie                 *PieChartSVG
	HRInsights          string
}

// NewResultView prepares an evaluation result for display
func NewResultView(r *evaluation.Result) *ResultView {
	e := r.Evaluation
	view := &ResultView{
		ID:                  r.ID.String(),
		Model:               r.Model,
		Banner:              evaluation.MessageCompleted,
		MatchLabel:          evaluation.MatchLabel(e.JDMatch),
		KeywordsText:        evaluation.KeywordsText(e.MissingKeywords),
		Bar:                 BarChart(e.MissingKeywords),
		ProfileSummary:      e.ProfileSummary,
		Corrections:         e.GrammarCorrections,
		RecommendationsText: evaluation.RecommendationsText(e.JobRecommendations),
		Pie:                 PieChart(e.JobRecommendations),
		HRInsights:          e.HRInsights,
	}
	if len(e.GrammarCorrections) == 0 {
		view.NoCorrections = evaluation.MessageNoGrammarErrors
	}
	if r.MatchFraction != nil {
		view.HasMatch = true
		view.MatchPercent = *r.MatchFraction * 100
	}
	return view
}

// Page renders the evaluator page
type Page struct {
	tmpl *template.Template
}

// NewPage parses the embedded page templates
func NewPage() (*Page, error) {
	tmpl, err := template.New("page").Funcs(template.FuncMap{
		"num": func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
		"pct": func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, &TemplateError{Message: "failed to parse page templates", Cause: err}
	}
	return &Page{tmpl: tmpl}, nil
}

// Render writes the full page
func (p *Page) Render(w io.Writer, data PageData) error {
	if err := p.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		return &TemplateError{Message: "failed to execute page template", Cause: err}
	}
	return nil
}

// RenderResult writes only the result blocks, for fragments served over SSE
func (p *Page) RenderResult(w io.Writer, view *ResultView) error {
	if err := p.tmpl.ExecuteTemplate(w, "result", view); err != nil {
		return &TemplateError{Message: "failed to execute result template", Cause: err}
	}
	return nil
}
