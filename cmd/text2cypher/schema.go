package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/text2cypher/cmd/text2cypher/internal"
	"github.com/zero-day-ai/text2cypher/internal/schema"
)

var (
	schemaDB      string
	schemaExclude []string
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the schema block prompts see for a database",
	Long: `Read the structural schema of a configured database and print it after
label exclusions, exactly as it is embedded in generation prompts.

Without --exclude the labels from pipeline.exclude_labels are removed.`,
	Example: `  text2cypher schema --db movies
  text2cypher schema --db movies --exclude Actor --exclude Director -o json`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().StringVar(&schemaDB, "db", "", "Configured database to inspect")
	schemaCmd.Flags().StringSliceVar(&schemaExclude, "exclude", nil, "Labels to leave out (default: pipeline.exclude_labels)")
}

func runSchema(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	dbName, err := defaultName(schemaDB, "database", a.cfg.Databases)
	if err != nil {
		return err
	}
	client, err := a.manager.Graph(ctx, dbName)
	if err != nil {
		return internal.WrapError(internal.ExitDatabaseError, "failed to connect to "+dbName, err)
	}

	raw, err := client.Schema(ctx)
	if err != nil {
		return internal.WrapError(internal.ExitDatabaseError, "failed to read schema", err)
	}

	exclude := schemaExclude
	if !cmd.Flags().Changed("exclude") {
		exclude = a.cfg.Pipeline.ExcludeLabels
	}
	view := schema.Project(raw, exclude...)

	format, err := internal.ParseOutputFormat(a.cfg.Events.Format)
	if err != nil {
		return err
	}
	if format == internal.FormatJSON {
		return internal.NewFormatter(format, cmd.OutOrStdout()).PrintJSON(map[string]any{
			"database":        a.cfg.Alias(dbName),
			"labels":          view.Labels,
			"node_properties": view.NodeProperties,
			"relationships":   view.Relationships,
			"prompt":          view.String(),
		})
	}

	if view.Empty() {
		cmd.PrintErrln("schema is empty after exclusions")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), view.String())
	return nil
}
