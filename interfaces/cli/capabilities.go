package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// newCapabilitiesCmd creates the capabilities listing command.
func (a *App) newCapabilitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "List registered capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			assembly, err := a.buildAssembly()
			if err != nil {
				return err
			}
			defer assembly.Close(cmd.Context())

			w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPARAMETERS\tCOST\tLOCAL\tDESCRIPTION")
			for _, d := range assembly.Registry.Descriptors() {
				desc := d.Description
				if len(desc) > 60 {
					desc = desc[:60] + "..."
				}
				fmt.Fprintf(w, "%s\t%s\t$%.4f\t%t\t%s\n",
					d.Name, d.Parameters.Signature(), d.EstimatedCost, d.Local, desc)
			}
			return w.Flush()
		},
	}
}
