package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/orchestra-go/application"
	"github.com/felixgeelhaar/orchestra-go/domain/trajectory"
)

// newQueryCmd creates the query command.
func (a *App) newQueryCmd() *cobra.Command {
	var (
		verbose    bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Answer a single question and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assembly, err := a.buildAssembly()
			if err != nil {
				return err
			}
			defer assembly.Close(cmd.Context())

			result := assembly.Engine.Run(cmd.Context(), strings.Join(args, " "))

			if jsonOutput {
				return a.printJSON(result)
			}
			a.printResult(result, verbose)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the full step trajectory")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON")
	return cmd
}

func (a *App) printJSON(result *application.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, string(data))
	return nil
}

func (a *App) printResult(result *application.Result, verbose bool) {
	if verbose && result.Trajectory != nil {
		for _, step := range result.Trajectory.Steps() {
			a.printStep(step)
		}
		fmt.Fprintln(a.stdout)
	}

	fmt.Fprintln(a.stdout, result.Answer)
	if len(result.Sources) > 0 {
		fmt.Fprintf(a.stdout, "\nSources: %s\n", strings.Join(result.Sources, ", "))
	}
	fmt.Fprintf(a.stdout, "\n(%d turns, $%.4f, %s)\n", result.Turns, result.Cost, result.Status)
}

func (a *App) printStep(step trajectory.Step) {
	label := string(step.Type)
	if step.Capability != "" {
		label += " " + step.Capability
	}
	content := step.Content
	if len(content) > 200 {
		content = content[:200] + "..."
	}
	fmt.Fprintf(a.stdout, "[%s] %s\n", label, content)
}
