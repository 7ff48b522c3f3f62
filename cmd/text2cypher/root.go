package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/text2cypher/cmd/text2cypher/internal"
	"github.com/zero-day-ai/text2cypher/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "text2cypher",
	Short: "Answer natural-language questions over Neo4j graphs",
	Long: `text2cypher turns a question into a Cypher query with an LLM, runs it
against a Neo4j database, repairs failing queries and summarises the
result into an answer.

Models and databases are named in the config file and selected with
--llm and --db.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_, err := ParseGlobalFlags(cmd)
		return err
	},
}

// Execute runs the root command with signal handling
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := internal.ParseOutputFormat(globalFlags.OutputFormat)
		if err != nil {
			return err
		}
		if format == internal.FormatJSON {
			return internal.NewFormatter(format, cmd.OutOrStdout()).PrintJSON(version.Info())
		}
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
		return nil
	},
}

func init() {
	RegisterGlobalFlags(rootCmd)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fewshotCmd)
	rootCmd.AddCommand(variantsCmd)
}
