package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/text2cypher/cmd/text2cypher/internal"
	"github.com/zero-day-ai/text2cypher/internal/fewshot"
)

var (
	fewshotDB       string
	fewshotLLM      string
	fewshotQuestion string
	fewshotCypher   string
	fewshotFailed   bool
)

var fewshotCmd = &cobra.Command{
	Use:   "fewshot",
	Short: "Manage stored few-shot examples",
}

var fewshotAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a question and its Cypher query as an example",
	Long: `Store a question/query pair in the configured example store so later
generations for the same database can retrieve it. The store must be
configured under fewshot.store; the keyed example file is read-only.`,
	Example: `  text2cypher fewshot add --db movies \
    --question "Who directed The Matrix?" \
    --cypher "MATCH (p:Person)-[:DIRECTED]->(m:Movie {title: 'The Matrix'}) RETURN p.name"`,
	Args: cobra.NoArgs,
	RunE: runFewshotAdd,
}

func init() {
	fewshotAddCmd.Flags().StringVar(&fewshotDB, "db", "", "Database the example belongs to")
	fewshotAddCmd.Flags().StringVar(&fewshotLLM, "llm", "", "LLM the query came from (default: manual)")
	fewshotAddCmd.Flags().StringVar(&fewshotQuestion, "question", "", "Natural-language question (required)")
	fewshotAddCmd.Flags().StringVar(&fewshotCypher, "cypher", "", "Cypher query answering the question (required)")
	fewshotAddCmd.Flags().BoolVar(&fewshotFailed, "failed", false, "Record the query as a failed attempt")
	_ = fewshotAddCmd.MarkFlagRequired("question")
	_ = fewshotAddCmd.MarkFlagRequired("cypher")

	fewshotCmd.AddCommand(fewshotAddCmd)
}

func runFewshotAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	if strings.TrimSpace(fewshotQuestion) == "" || strings.TrimSpace(fewshotCypher) == "" {
		return internal.NewCLIError(internal.ExitConfigError, "--question and --cypher cannot be empty")
	}

	dbName, err := defaultName(fewshotDB, "database", a.cfg.Databases)
	if err != nil {
		return err
	}
	if _, err := a.cfg.Database(dbName); err != nil {
		return internal.WrapError(internal.ExitConfigError, "unknown database", err)
	}

	model := "manual"
	if fewshotLLM != "" {
		pc, err := a.cfg.LLM(fewshotLLM)
		if err != nil {
			return internal.WrapError(internal.ExitConfigError, "unknown llm", err)
		}
		model = pc.Model
	}

	recorder, err := a.manager.Recorder(ctx)
	if err != nil {
		return internal.WrapError(internal.ExitCodeFor(err), "no writable example store", err)
	}

	entry := fewshot.Entry{
		Question: strings.TrimSpace(fewshotQuestion),
		Cypher:   strings.TrimSpace(fewshotCypher),
		Model:    model,
		Database: a.cfg.Alias(dbName),
		Success:  !fewshotFailed,
	}
	if err := recorder.Record(ctx, entry); err != nil {
		return internal.WrapError(internal.ExitCodeFor(err), "failed to record example", err)
	}

	format, err := internal.ParseOutputFormat(a.cfg.Events.Format)
	if err != nil {
		return err
	}
	return internal.NewFormatter(format, cmd.OutOrStdout()).PrintSuccess("recorded example for " + entry.Database)
}
