package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xkilldash9x/voyage-cli/internal/journey"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored journeys with their digests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		entries, err := s.List()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no journeys stored")
			return nil
		}
		for _, e := range entries {
			digest := journey.Summarize(e.Journey())
			fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s  (saved %s)\n",
				e.Name, digest, e.SavedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a stored journey's distilled JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		entry, err := s.Load(args[0])
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(entry, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary <name|trace-file>",
	Short: "Print a compact digest of a journey or raw trace log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := resolveJourney(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), journey.Summarize(j).Describe())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(summaryCmd)
}
