// Package cmd wires the voyage CLI: distilling raw browser traces into
// named journeys, regenerating automation scripts from them, and comparing
// journeys for semantic equivalence.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xkilldash9x/voyage-cli/internal/config"
	"github.com/xkilldash9x/voyage-cli/internal/observability"
	"go.uber.org/zap"
)

var (
	cfgFile  string
	storeDir string
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "voyage",
	Short: "Distill browser-interaction traces into replayable user journeys.",
	Long: `voyage ingests raw browser-interaction trace logs, distills them into an
abstract journey model, regenerates executable Playwright scripts from that
model, and compares journeys for semantic equivalence independent of timing
or incidental UI changes.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initializeConfig(); err != nil {
			return err
		}
		var err error
		cfg, err = config.NewFromViper(viper.GetViper())
		if err != nil {
			observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "voyage-cli"})
			return err
		}
		if storeDir != "" {
			cfg.Store.Dir = storeDir
		}
		observability.InitializeLogger(cfg.Logger)
		return nil
	},
}

// Execute runs the root command under the given context.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		logger := observability.GetLogger()
		logger.Error("command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&storeDir, "store", "", "journey store directory (default is ./.voyage)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// initializeConfig reads the config file and VOYAGE_* environment variables.
func initializeConfig() error {
	v := viper.GetViper()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("VOYAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}
