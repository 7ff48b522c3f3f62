package main

import (
	"github.com/spf13/cobra"

	"github.com/zero-day-ai/text2cypher/cmd/text2cypher/internal"
	"github.com/zero-day-ai/text2cypher/internal/pipeline"
)

var variantsCmd = &cobra.Command{
	Use:   "variants",
	Short: "List the workflow variants",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := internal.ParseOutputFormat(globalFlags.OutputFormat)
		if err != nil {
			return err
		}
		formatter := internal.NewFormatter(format, cmd.OutOrStdout())

		type entry struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			MaxRetries  int    `json:"max_retries"`
			Evaluate    bool   `json:"evaluate"`
		}
		var entries []entry
		rows := make([][]string, 0, len(pipeline.Variants()))
		for _, v := range pipeline.Variants() {
			s := v.Settings()
			entries = append(entries, entry{Name: string(v), Description: v.Description(), MaxRetries: s.MaxRetries, Evaluate: s.Evaluate})
			rows = append(rows, []string{string(v), v.Description()})
		}

		if format == internal.FormatJSON {
			return formatter.PrintJSON(entries)
		}
		return formatter.PrintTable([]string{"VARIANT", "DESCRIPTION"}, rows)
	},
}
