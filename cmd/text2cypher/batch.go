package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zero-day-ai/text2cypher/cmd/text2cypher/internal"
	"github.com/zero-day-ai/text2cypher/internal/pipeline"
)

var (
	batchFile        string
	batchConcurrency int
	batchLLM         string
	batchDB          string
	batchVariant     string
)

// BatchFile is the YAML document read by the batch command.
type BatchFile struct {
	Requests []BatchRequest `yaml:"requests"`
}

// BatchRequest is one question of a batch. Empty fields fall back to the
// command's flags.
type BatchRequest struct {
	Question string         `yaml:"question"`
	LLM      string         `yaml:"llm,omitempty"`
	DB       string         `yaml:"db,omitempty"`
	Variant  string         `yaml:"variant,omitempty"`
	Context  map[string]any `yaml:"context,omitempty"`
}

// BatchResult is the printed outcome of one request.
type BatchResult struct {
	Index    int           `json:"index"`
	Question string        `json:"question"`
	Cypher   string        `json:"cypher,omitempty"`
	Answer   string        `json:"answer,omitempty"`
	Error    string        `json:"error,omitempty"`
	Kind     string        `json:"kind,omitempty"`
	Duration time.Duration `json:"duration"`
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Answer every question in a YAML file concurrently",
	Long: `Run the questions listed in a YAML file through the pipeline with bounded
concurrency. A failing question does not affect the others. Results are
printed in file order, followed by run statistics.

File format:

  requests:
    - question: Which movies did Tom Hanks act in?
      db: movies
    - question: How many diseases are there?
      db: diseases
      variant: naive`,
	Example: `  text2cypher batch --file questions.yaml --concurrency 8`,
	Args:    cobra.NoArgs,
	RunE:    runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "YAML file with the requests (required)")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", 0, "Maximum concurrent runs (default: pipeline.max_concurrency)")
	batchCmd.Flags().StringVar(&batchLLM, "llm", "", "LLM for requests that do not name one")
	batchCmd.Flags().StringVar(&batchDB, "db", "", "Database for requests that do not name one")
	batchCmd.Flags().StringVar(&batchVariant, "variant", "", "Variant for requests that do not name one")
	_ = batchCmd.MarkFlagRequired("file")
}

// readBatchFile parses a batch file. At least one request is required and
// every request needs a question.
func readBatchFile(path string) (*BatchFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, internal.WrapError(internal.ExitConfigError, "failed to read batch file", err)
	}

	var file BatchFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, internal.WrapError(internal.ExitConfigError, "failed to parse batch file", err)
	}
	if len(file.Requests) == 0 {
		return nil, internal.NewCLIError(internal.ExitConfigError, fmt.Sprintf("batch file %s has no requests", path))
	}
	for i, r := range file.Requests {
		if strings.TrimSpace(r.Question) == "" {
			return nil, internal.NewCLIError(internal.ExitConfigError, fmt.Sprintf("request %d has no question", i))
		}
	}
	return &file, nil
}

// resolve turns every entry into a pipeline request. The first entry that
// names an unknown model or database fails the whole batch.
func (a *app) resolve(ctx context.Context, file *BatchFile) ([]pipeline.Request, error) {
	reqs := make([]pipeline.Request, 0, len(file.Requests))
	for i, br := range file.Requests {
		llmName, err := defaultName(firstNonEmpty(br.LLM, batchLLM), "llm", a.cfg.LLMs)
		if err != nil {
			return nil, internal.WrapError(internal.ExitConfigError, fmt.Sprintf("request %d", i), err)
		}
		dbName, err := defaultName(firstNonEmpty(br.DB, batchDB), "database", a.cfg.Databases)
		if err != nil {
			return nil, internal.WrapError(internal.ExitConfigError, fmt.Sprintf("request %d", i), err)
		}

		var variant pipeline.Variant
		if name := firstNonEmpty(br.Variant, batchVariant); name != "" {
			if variant, err = pipeline.ParseVariant(name); err != nil {
				return nil, internal.WrapError(internal.ExitConfigError, fmt.Sprintf("request %d", i), err)
			}
		}

		req, err := a.manager.Request(ctx, pipeline.Question{Text: br.Question, Context: br.Context}, llmName, dbName, variant)
		if err != nil {
			return nil, internal.WrapError(internal.ExitCodeFor(err), fmt.Sprintf("request %d", i), err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	file, err := readBatchFile(batchFile)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	metricsCtx, stopMetrics := context.WithCancel(ctx)
	defer stopMetrics()
	a.serveMetrics(metricsCtx)

	reqs, err := a.resolve(ctx, file)
	if err != nil {
		return err
	}

	engine, err := a.engine(ctx)
	if err != nil {
		return err
	}

	// Per-run progress goes to stderr in verbose mode only; stdout carries
	// the result table.
	var progress = cmd.ErrOrStderr()
	if !a.flags.IsVerbose() {
		progress = nil
	}
	fanout, err := a.sinks(progress)
	if err != nil {
		return err
	}
	defer fanout.Close()

	opts := []pipeline.BatchOption{
		pipeline.WithBatchLogger(a.logger),
		pipeline.WithRateLimit(a.cfg.Pipeline.RateLimit, a.cfg.Pipeline.RateBurst),
	}
	if fanout.Len() > 0 {
		opts = append(opts, pipeline.WithEventHandler(func(index int, ev pipeline.ProgressEvent) {
			_ = fanout.Publish(ctx, ev)
		}))
	}

	concurrency := batchConcurrency
	if concurrency <= 0 {
		concurrency = a.cfg.Pipeline.MaxConcurrency
	}

	a.logger.Info("starting batch", "requests", len(reqs), "concurrency", concurrency)
	outcomes := pipeline.NewBatchRunner(engine, opts...).Run(ctx, reqs, concurrency)
	engine.Wait()

	results := batchResults(file, outcomes)
	if err := printBatch(cmd, a, results); err != nil {
		return err
	}

	if failed := countFailed(results); failed > 0 {
		return internal.NewCLIError(internal.ExitGenerationFailed,
			fmt.Sprintf("%d of %d requests failed", failed, len(results)))
	}
	return nil
}

func batchResults(file *BatchFile, outcomes []pipeline.Outcome) []BatchResult {
	results := make([]BatchResult, len(outcomes))
	for i, o := range outcomes {
		r := BatchResult{
			Index:    o.Index,
			Question: file.Requests[o.Index].Question,
			Kind:     string(o.Kind),
			Duration: o.Duration,
		}
		if o.Err != nil {
			r.Error = o.Err.Error()
		} else if o.Result != nil {
			r.Cypher = o.Result.Cypher
			r.Answer = o.Result.Answer
		}
		results[i] = r
	}
	return results
}

func countFailed(results []BatchResult) int {
	n := 0
	for _, r := range results {
		if r.Error != "" {
			n++
		}
	}
	return n
}

func printBatch(cmd *cobra.Command, a *app, results []BatchResult) error {
	format, err := internal.ParseOutputFormat(a.cfg.Events.Format)
	if err != nil {
		return err
	}
	formatter := internal.NewFormatter(format, cmd.OutOrStdout())
	snapshot := a.stats.Snapshot()

	if format == internal.FormatJSON {
		return formatter.PrintJSON(map[string]any{
			"results": results,
			"stats":   snapshot,
		})
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status, text := "ok", r.Answer
		if r.Error != "" {
			status, text = "failed ("+r.Kind+")", r.Error
		}
		rows = append(rows, []string{
			strconv.Itoa(r.Index),
			status,
			truncate(r.Question, 48),
			truncate(oneLine(text), 72),
			r.Duration.Round(time.Millisecond).String(),
		})
	}
	if err := formatter.PrintTable([]string{"#", "STATUS", "QUESTION", "ANSWER / ERROR", "DURATION"}, rows); err != nil {
		return err
	}

	summary := fmt.Sprintf("%d runs, %d succeeded, %d failed, %d corrections, avg %s",
		snapshot.Runs, snapshot.Succeeded, snapshot.Failed, snapshot.Corrections,
		snapshot.AverageDuration.Round(time.Millisecond))
	if snapshot.Failed > 0 {
		return formatter.PrintError(summary)
	}
	return formatter.PrintSuccess(summary)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
