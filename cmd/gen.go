package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xkilldash9x/voyage-cli/internal/observability"
	"github.com/xkilldash9x/voyage-cli/internal/replay"
)

var (
	genBaseURL   string
	genOut       string
	genSave      bool
	genRecapture bool
)

var genCmd = &cobra.Command{
	Use:   "gen <name|trace-file>",
	Short: "Generate an executable Playwright script for a journey",
	Long: `Generates a Playwright test that replays the journey action by action,
with one synchronization wait per recorded asynchronous await. Targets
that cannot be located through accessible roles, names, labels or test
ids are marked with ACCESSIBILITY GAP comments rather than failing
generation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := resolveJourney(args[0])
		if err != nil {
			return err
		}
		gen := replay.NewGenerator(cfg.Replay, observability.GetLogger())
		script := gen.Generate(j, replay.Options{
			Name:      args[0],
			BaseURL:   genBaseURL,
			Recapture: genRecapture,
		})

		out := genOut
		if out == "" && genSave {
			s, err := openStore()
			if err != nil {
				return err
			}
			out = s.ScriptPath(args[0])
		}
		if out == "" {
			fmt.Fprint(cmd.OutOrStdout(), script)
			return nil
		}
		if err := os.WriteFile(out, []byte(script), 0o644); err != nil {
			return fmt.Errorf("writing script %s: %w", out, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
		return nil
	},
}

func init() {
	genCmd.Flags().StringVar(&genBaseURL, "base-url", "", "application root URL (defaults to replay.base_url)")
	genCmd.Flags().StringVarP(&genOut, "out", "o", "", "output file (default stdout)")
	genCmd.Flags().BoolVar(&genSave, "save", false, "write the script next to the stored journey (<store>/<name>.spec.ts)")
	genCmd.Flags().BoolVar(&genRecapture, "recapture", false, "emit trace re-capture scaffolding")
	rootCmd.AddCommand(genCmd)
}
