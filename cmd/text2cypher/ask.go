package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/text2cypher/cmd/text2cypher/internal"
	"github.com/zero-day-ai/text2cypher/internal/pipeline"
)

var (
	askLLM     string
	askDB      string
	askVariant string
	askContext map[string]string
)

var askCmd = &cobra.Command{
	Use:   "ask QUESTION...",
	Short: "Answer one question against a configured database",
	Long: `Generate a Cypher query for QUESTION, run it, correct it when it fails
and print a summarised answer. Progress is streamed as it happens.

--llm and --db may be omitted when exactly one model or database is
configured.`,
	Example: `  text2cypher ask --db movies "Which movies did Tom Hanks act in?"
  text2cypher ask --variant naive -o json "How many diseases are there?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askLLM, "llm", "", "Configured LLM to use")
	askCmd.Flags().StringVar(&askDB, "db", "", "Configured database to query")
	askCmd.Flags().StringVar(&askVariant, "variant", "", "Workflow variant (naive|naive_retry|retry_check)")
	askCmd.Flags().StringToStringVar(&askContext, "context", nil, "Extra question context as key=value pairs")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	llmName, err := defaultName(askLLM, "llm", a.cfg.LLMs)
	if err != nil {
		return err
	}
	dbName, err := defaultName(askDB, "database", a.cfg.Databases)
	if err != nil {
		return err
	}

	var variant pipeline.Variant
	if askVariant != "" {
		if variant, err = pipeline.ParseVariant(askVariant); err != nil {
			return internal.WrapError(internal.ExitConfigError, "invalid --variant", err)
		}
	}

	question := pipeline.Question{Text: strings.Join(args, " ")}
	if len(askContext) > 0 {
		question.Context = make(map[string]any, len(askContext))
		for k, v := range askContext {
			question.Context[k] = v
		}
	}

	req, err := a.manager.Request(ctx, question, llmName, dbName, variant)
	if err != nil {
		return internal.WrapError(internal.ExitCodeFor(err), "failed to resolve request", err)
	}

	engine, err := a.engine(ctx)
	if err != nil {
		return err
	}

	fanout, err := a.sinks(a.out)
	if err != nil {
		return err
	}
	defer fanout.Close()

	_, err = engine.Run(ctx, req, fanout.Emit(ctx))
	engine.Wait()
	if err != nil {
		return internal.WrapError(internal.ExitCodeFor(err), "question could not be answered", err)
	}
	return nil
}
