package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// newChatCmd creates the interactive chat command.
func (a *App) newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive session, one loop run per question",
		RunE: func(cmd *cobra.Command, args []string) error {
			assembly, err := a.buildAssembly()
			if err != nil {
				return err
			}
			defer assembly.Close(cmd.Context())

			fmt.Fprintln(a.stdout, "orchestra chat. Type /quit to exit, /cost for session totals, /clear to reset totals.")

			var (
				sessionCost  float64
				sessionTurns int
			)

			scanner := bufio.NewScanner(a.stdin)
			for {
				fmt.Fprint(a.stdout, "> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				switch line {
				case "/quit", "/exit":
					fmt.Fprintf(a.stdout, "Session: %d turns, $%.4f\n", sessionTurns, sessionCost)
					return nil
				case "/cost":
					fmt.Fprintf(a.stdout, "Session: %d turns, $%.4f\n", sessionTurns, sessionCost)
					continue
				case "/clear":
					sessionCost = 0
					sessionTurns = 0
					fmt.Fprintln(a.stdout, "Session totals cleared.")
					continue
				}

				result := assembly.Engine.Run(cmd.Context(), line)
				sessionCost += result.Cost
				sessionTurns += result.Turns

				fmt.Fprintln(a.stdout, result.Answer)
				if len(result.Sources) > 0 {
					fmt.Fprintf(a.stdout, "Sources: %s\n", strings.Join(result.Sources, ", "))
				}
				fmt.Fprintf(a.stdout, "(%d turns, $%.4f)\n", result.Turns, result.Cost)
			}
			return scanner.Err()
		},
	}
}
