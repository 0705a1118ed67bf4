package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/jonathan/smart-ats/internal/evaluation"
	"github.com/jonathan/smart-ats/internal/rendering"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// keywordBarCells is the width of one keyword bar; every keyword has equal weight
	keywordBarCells = 10
	// shareBarCells is the width of a 100% recommendation share
	shareBarCells = 30
)

// Printer writes evaluation reports to a terminal
type Printer struct {
	out      io.Writer
	renderer *lipgloss.Renderer
	bar      progress.Model

	title   lipgloss.Style
	heading lipgloss.Style
	box     lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	dim     lipgloss.Style
}

// NewPrinter creates a new Printer that writes to the given writer.
// Colors are used only when out is a color-capable terminal.
func NewPrinter(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out:      out,
		renderer: r,
		bar:      progress.New(progress.WithGradient("#7e5bef", "#5b3cc4"), progress.WithWidth(boxWidth-4)),
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("#5b3cc4")).
			Padding(0, 1),
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(boxWidth),
		success: r.NewStyle().Foreground(lipgloss.Color("42")),
		failure: r.NewStyle().Foreground(lipgloss.Color("196")),
		dim:     r.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

//nolint:errcheck // writing to a terminal; errors are not recoverable
func (p *Printer) println(s string) {
	fmt.Fprintln(p.out, s)
}

// section renders a heading and body inside a rounded box
func (p *Printer) section(heading, body string) {
	p.println(p.box.Render(p.heading.Render(heading) + "\n" + body))
}

// PrintEvaluation outputs a full report for one résumé.
func (p *Printer) PrintEvaluation(source string, result *evaluation.Result) {
	if result == nil || result.Evaluation == nil {
		return
	}
	e := result.Evaluation

	p.println(p.title.Render("Smart ATS Resume Evaluator") + " " + p.dim.Render(source))
	p.println(p.success.Render(evaluation.MessageCompleted))

	match := "Job Description Match: " + evaluation.MatchLabel(e.JDMatch)
	if result.MatchFraction != nil {
		match += "\n" + p.bar.ViewAs(*result.MatchFraction)
	}
	p.section("Match", match)

	keywords := evaluation.KeywordsText(e.MissingKeywords)
	if chart := rendering.BarChart(e.MissingKeywords); chart != nil {
		keywords += "\n\n" + KeywordBars(chart)
	}
	p.section("Missing Keywords", keywords)

	p.section("Profile Summary", e.ProfileSummary)
	p.section("Grammar Corrections", p.corrections(e.GrammarCorrections))

	recs := evaluation.RecommendationsText(e.JobRecommendations)
	if chart := rendering.PieChart(e.JobRecommendations); chart != nil {
		recs += "\n\n" + ShareBars(chart)
	}
	p.section("Future Job Recommendations", recs)

	p.section("HR Insights", e.HRInsights)
	p.println(p.dim.Render(fmt.Sprintf("id %s · model %s · %s", result.ID, result.Model, result.Duration)))
}

// PrintError outputs a failed evaluation with the user-facing message and the cause.
func (p *Printer) PrintError(source string, err error) {
	p.println(p.title.Render("Smart ATS Resume Evaluator") + " " + p.dim.Render(source))
	p.println(p.failure.Render(evaluation.UserMessage(err)))
	p.println(p.dim.Render(err.Error()))
}

// PrintSummary outputs a one-line-per-résumé ranking after a batch run
func (p *Printer) PrintSummary(rows []SummaryRow) {
	if len(rows) < 2 {
		return
	}
	var sb strings.Builder
	width := 0
	for _, r := range rows {
		width = max(width, len(r.Source))
	}
	for _, r := range rows {
		status := r.Match
		if r.Err != nil {
			status = p.failure.Render("failed")
		}
		sb.WriteString(fmt.Sprintf("%-*s  %s\n", width, r.Source, status))
	}
	p.section("Summary", strings.TrimSuffix(sb.String(), "\n"))
}

// SummaryRow is one résumé in a batch summary
type SummaryRow struct {
	Source string
	Match  string
	Err    error
}

func (p *Printer) corrections(items []evaluation.GrammarCorrection) string {
	if len(items) == 0 {
		return evaluation.MessageNoGrammarErrors
	}
	var sb strings.Builder
	for i, c := range items {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("Incorrect: %s\nCorrected: %s\n", c.Incorrect, c.Correct))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// KeywordBars draws the keyword bar chart as text, one equal-length bar per keyword
func KeywordBars(chart *rendering.BarChartSVG) string {
	var sb strings.Builder
	bar := strings.Repeat("█", keywordBarCells)
	for _, b := range chart.Bars {
		sb.WriteString(fmt.Sprintf("%s %s\n", bar, b.Label))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// ShareBars draws the recommendation pie chart as text bars sized by share
func ShareBars(chart *rendering.PieChartSVG) string {
	var sb strings.Builder
	for _, s := range chart.Slices {
		cells := min(int(s.Percent/100*shareBarCells+0.5), shareBarCells)
		bar := strings.Repeat("■", cells) + strings.Repeat(" ", shareBarCells-cells)
		sb.WriteString(fmt.Sprintf("%s %5.1f%% %s\n", bar, s.Percent, s.Label))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
