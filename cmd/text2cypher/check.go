package main

import (
	"github.com/spf13/cobra"

	"github.com/zero-day-ai/text2cypher/cmd/text2cypher/internal"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check every configured LLM and database",
	Long: `Initialise every configured LLM and connect to every configured database,
then report the health of each. The command fails when any resource is
not healthy.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	checks := a.manager.Check(ctx)
	overall := a.manager.Health(ctx)

	format, err := internal.ParseOutputFormat(a.cfg.Events.Format)
	if err != nil {
		return err
	}
	formatter := internal.NewFormatter(format, cmd.OutOrStdout())

	if format == internal.FormatJSON {
		if err := formatter.PrintJSON(map[string]any{
			"status": overall,
			"checks": checks,
		}); err != nil {
			return err
		}
	} else {
		rows := make([][]string, 0, len(checks))
		for _, c := range checks {
			rows = append(rows, []string{c.Kind, c.Name, string(c.Status.State), c.Status.Message})
		}
		if len(rows) > 0 {
			if err := formatter.PrintTable([]string{"KIND", "NAME", "STATE", "MESSAGE"}, rows); err != nil {
				return err
			}
		}
		if overall.IsHealthy() {
			_ = formatter.PrintSuccess(overall.Message)
		} else {
			_ = formatter.PrintError(overall.Message)
		}
	}

	if !overall.IsHealthy() {
		return internal.NewCLIError(internal.ExitError, "health check failed: "+overall.Message)
	}
	return nil
}
