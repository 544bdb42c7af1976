package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a stored journey and its generated script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		if err := s.Delete(args[0]); err != nil {
			return err
		}
		// A script generated for the entry goes with it.
		_ = os.Remove(s.ScriptPath(args[0]))
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %q\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
