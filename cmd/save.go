package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xkilldash9x/voyage-cli/internal/journey"
)

var saveCmd = &cobra.Command{
	Use:   "save <name> <trace-file>",
	Short: "Distill a raw trace log and store it as a named journey",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, path := args[0], args[1]
		j, err := distillFile(path)
		if err != nil {
			return err
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		entry, err := s.Save(name, j)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %q (%s)\n", entry.Name, journey.Summarize(j))
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <name> <trace-file>",
	Short: "Re-distill a trace log and replace the stored baseline",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, path := args[0], args[1]
		s, err := openStore()
		if err != nil {
			return err
		}
		if _, err := s.Load(name); err != nil {
			return fmt.Errorf("cannot update: %w", err)
		}
		j, err := distillFile(path)
		if err != nil {
			return err
		}
		entry, err := s.Save(name, j)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated %q (%s)\n", entry.Name, journey.Summarize(j))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(updateCmd)
}
