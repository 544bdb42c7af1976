package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xkilldash9x/voyage-cli/internal/compare"
	"gopkg.in/yaml.v3"
)

// errMismatch drives the exit code without extra logging: the report has
// already been printed.
var errMismatch = errors.New("journeys differ")

var (
	compareIgnore     []string
	compareIgnoreFile string
	compareJSON       bool
	compareStructural bool
)

var compareCmd = &cobra.Command{
	Use:   "compare <before> <after>",
	Short: "Compare two journeys for semantic equivalence",
	Long: `Compares two journeys (stored names or raw trace files) by their
observable effects: API calls, per-endpoint mutation counts, error
endpoints, form submissions, navigations and context-menu targets.
Timing, DOM structure and GET-call counts are not compared. Exits 0
iff the journeys match.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		before, err := resolveJourney(args[0])
		if err != nil {
			return err
		}
		after, err := resolveJourney(args[1])
		if err != nil {
			return err
		}

		ignore := append([]string{}, cfg.Compare.IgnoreAPIs...)
		ignore = append(ignore, compareIgnore...)
		if compareIgnoreFile != "" {
			fromFile, err := readIgnoreFile(compareIgnoreFile)
			if err != nil {
				return err
			}
			ignore = append(ignore, fromFile...)
		}

		var report compare.Report
		if compareStructural {
			report = compare.Structural(before, after)
		} else {
			report = compare.Semantic(before, after, compare.Options{IgnoreAPIs: ignore})
		}

		if compareJSON {
			out, err := json.MarshalIndent(&report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
		} else {
			fmt.Fprint(cmd.OutOrStdout(), report.Render())
		}

		if !report.Match {
			return errMismatch
		}
		return nil
	},
}

// ignoreFile is the YAML shape of an ignore-list file: either a bare
// sequence of endpoint fragments or a mapping with an ignore_apis key.
type ignoreFile struct {
	IgnoreAPIs []string `yaml:"ignore_apis"`
}

func readIgnoreFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ignore file %s: %w", path, err)
	}
	var bare []string
	if err := yaml.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}
	var f ignoreFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parsing ignore file %s: %w", path, err)
	}
	return f.IgnoreAPIs, nil
}

func init() {
	compareCmd.Flags().StringSliceVar(&compareIgnore, "ignore", nil, "endpoint fragments to ignore (repeatable)")
	compareCmd.Flags().StringVar(&compareIgnoreFile, "ignore-file", "", "YAML file listing endpoint fragments to ignore")
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "emit the report as JSON")
	compareCmd.Flags().BoolVar(&compareStructural, "structural", false, "compare step by step instead of semantically")
	rootCmd.AddCommand(compareCmd)
}
