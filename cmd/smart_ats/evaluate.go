package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/smart-ats/internal/config"
	"github.com/jonathan/smart-ats/internal/evaluation"
	"github.com/jonathan/smart-ats/internal/fetch"
	"github.com/jonathan/smart-ats/internal/observability"
	"github.com/jonathan/smart-ats/internal/resume"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// defaultConcurrency bounds parallel model calls for a batch
const defaultConcurrency = 2

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate one or more résumé PDFs against a job description",
	Long: `Evaluate each --resume PDF against a job description given as a file (--jd),
inline text (--jd-text) or a job posting URL (--jd-url). Each résumé is sent to the
model exactly once. Several résumés are evaluated concurrently.`,
	Args: cobra.NoArgs,
	RunE: runEvaluate,
}

// evaluateOptions holds the evaluate command flags
type evaluateOptions struct {
	Resumes     []string
	JDPath      string
	JDText      string
	JDURL       string
	JSON        bool
	Concurrency int
	ConfigPath  string
	Model       string
	Browser     string
}

var evalOpts evaluateOptions

func init() {
	evaluateCmd.Flags().StringArrayVarP(&evalOpts.Resumes, "resume", "r", nil, "Path to a résumé PDF (repeatable)")
	evaluateCmd.Flags().StringVar(&evalOpts.JDPath, "jd", "", "Path to a job description text file")
	evaluateCmd.Flags().StringVar(&evalOpts.JDText, "jd-text", "", "Job description text")
	evaluateCmd.Flags().StringVar(&evalOpts.JDURL, "jd-url", "", "URL of a job posting to fetch the description from")
	evaluateCmd.Flags().BoolVar(&evalOpts.JSON, "json", false, "Print results as JSON")
	evaluateCmd.Flags().IntVarP(&evalOpts.Concurrency, "concurrency", "c", defaultConcurrency, "Maximum parallel evaluations")
	evaluateCmd.Flags().StringVar(&evalOpts.ConfigPath, "config", "", "Path to a JSON file with evaluate defaults")
	evaluateCmd.Flags().StringVar(&evalOpts.Model, "model", "", "Gemini model (overrides GEMINI_MODEL)")
	evaluateCmd.Flags().StringVar(&evalOpts.Browser, "browser", "", "Render --jd-url in headless Chrome: off, auto or always (overrides FETCH_BROWSER)")

	evaluateCmd.MarkFlagsMutuallyExclusive("jd", "jd-text", "jd-url")

	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	opts := evalOpts
	if opts.ConfigPath != "" {
		defaults, err := config.LoadEvaluateDefaults(opts.ConfigPath)
		if err != nil {
			return err
		}
		opts.applyDefaults(defaults, cmd.Flags().Changed)
	}
	if err := opts.validate(); err != nil {
		return err
	}

	cfg, err := loadConfig(opts.Model)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	defer func() { _ = client.Close() }()

	logger := newLogger(cmd.ErrOrStderr(), cfg)
	evaluator := evaluation.NewEvaluator(client, evaluation.WithLogger(logger))

	fetchOpts, err := opts.fetchOptions(cfg)
	if err != nil {
		return err
	}

	return evaluateAll(ctx, evaluator, opts, fetchOpts, cmd.OutOrStdout())
}

// applyDefaults copies file values into options whose flags were not set
func (o *evaluateOptions) applyDefaults(d *config.EvaluateDefaults, changed func(string) bool) {
	jdChanged := changed("jd") || changed("jd-text") || changed("jd-url")
	if !jdChanged {
		o.JDPath = d.JD
		o.JDURL = d.JDURL
	}
	if d.Model != "" && !changed("model") {
		o.Model = d.Model
	}
	if d.Concurrency > 0 && !changed("concurrency") {
		o.Concurrency = d.Concurrency
	}
	if d.JSON && !changed("json") {
		o.JSON = true
	}
	if d.Browser != "" && !changed("browser") {
		o.Browser = d.Browser
	}
}

// fetchOptions builds job posting fetch options; --browser wins over FETCH_BROWSER
func (o *evaluateOptions) fetchOptions(cfg config.Config) (*fetch.Options, error) {
	mode := cfg.FetchBrowser
	if o.Browser != "" {
		mode = o.Browser
	}
	browser, err := fetch.ParseBrowserMode(mode)
	if err != nil {
		return nil, err
	}

	fetchOpts := fetch.DefaultOptions()
	fetchOpts.Timeout = cfg.FetchTimeout
	fetchOpts.Browser = browser
	return fetchOpts, nil
}

func (o *evaluateOptions) validate() error {
	if len(o.Resumes) == 0 {
		return fmt.Errorf("at least one --resume is required")
	}
	sources := 0
	for _, s := range []string{o.JDPath, o.JDText, o.JDURL} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return fmt.Errorf("exactly one of --jd, --jd-text or --jd-url is required")
	}
	if o.Concurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1")
	}
	if _, err := fetch.ParseBrowserMode(o.Browser); err != nil {
		return fmt.Errorf("--browser: %w", err)
	}
	return nil
}

// jobDescription resolves the job description from the selected source
func (o *evaluateOptions) jobDescription(ctx context.Context, fetchOpts *fetch.Options) (string, error) {
	switch {
	case o.JDText != "":
		return o.JDText, nil
	case o.JDPath != "":
		data, err := os.ReadFile(o.JDPath)
		if err != nil {
			return "", fmt.Errorf("failed to read job description: %w", err)
		}
		return string(data), nil
	default:
		return fetch.JobDescription(ctx, o.JDURL, fetchOpts)
	}
}

// evaluateOutput is one résumé's entry in --json output
type evaluateOutput struct {
	Source string             `json:"source"`
	Result *evaluation.Result `json:"result,omitempty"`
	Error  string             `json:"error,omitempty"`
	Detail string             `json:"detail,omitempty"`

	err error
}

// evaluateAll evaluates every résumé and prints the reports in argument order.
// A failed résumé does not stop the others; the command fails if any did.
func evaluateAll(ctx context.Context, evaluator *evaluation.Evaluator, opts evaluateOptions, fetchOpts *fetch.Options, out io.Writer) error {
	jobDescription, err := opts.jobDescription(ctx, fetchOpts)
	if err != nil {
		return err
	}
	if strings.TrimSpace(jobDescription) == "" {
		return evaluation.ErrMissingInput
	}

	outputs := make([]evaluateOutput, len(opts.Resumes))

	var g errgroup.Group
	g.SetLimit(opts.Concurrency)
	for i, path := range opts.Resumes {
		g.Go(func() error {
			outputs[i] = evaluateOne(ctx, evaluator, path, jobDescription)
			return nil
		})
	}
	_ = g.Wait()

	if opts.JSON {
		if err := writeJSON(out, outputs); err != nil {
			return err
		}
	} else {
		printReports(out, outputs)
	}

	failed := 0
	for _, o := range outputs {
		if o.err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d evaluations failed", failed, len(outputs))
	}
	return nil
}

func evaluateOne(ctx context.Context, evaluator *evaluation.Evaluator, path, jobDescription string) evaluateOutput {
	out := evaluateOutput{Source: path}

	text, err := resume.ReadFile(path)
	if err == nil {
		out.Result, err = evaluator.Evaluate(ctx, evaluation.Request{
			ResumeText:     text,
			JobDescription: jobDescription,
			ResumeName:     filepath.Base(path),
		})
	}
	if err != nil {
		out.err = err
		out.Error = evaluation.UserMessage(err)
		out.Detail = err.Error()
	}
	return out
}

func writeJSON(out io.Writer, outputs []evaluateOutput) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if len(outputs) == 1 {
		return enc.Encode(outputs[0])
	}
	return enc.Encode(outputs)
}

func printReports(out io.Writer, outputs []evaluateOutput) {
	printer := observability.NewPrinter(out)
	rows := make([]observability.SummaryRow, 0, len(outputs))
	for _, o := range outputs {
		row := observability.SummaryRow{Source: o.Source, Err: o.err}
		if o.err != nil {
			printer.PrintError(o.Source, o.err)
		} else {
			printer.PrintEvaluation(o.Source, o.Result)
			row.Match = evaluation.MatchLabel(o.Result.Evaluation.JDMatch)
		}
		rows = append(rows, row)
	}
	printer.PrintSummary(rows)
}
