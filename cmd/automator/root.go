package main

import (
	"fmt"
	"os"

	"github.com/aretw0/automator/internal/cli"
	"github.com/aretw0/automator/internal/config"
	"github.com/aretw0/automator/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "automator",
	Short: "Automator is a workflow builder for ordered action lists",
	Long: `Automator builds workflows by stacking actions from a fixed catalog
(files, rename, shell, http, ...). Edit them interactively, over HTTP or
through an MCP-capable agent. Workflows are never executed.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loader := config.NewLoader()
		v := loader.Viper()
		_ = v.BindPFlag("strict", cmd.Flags().Lookup("strict"))
		_ = v.BindPFlag("log.level", cmd.Flags().Lookup("log-level"))
		_ = v.BindPFlag("view.format", cmd.Flags().Lookup("format"))

		var err error
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			cfg, err = loader.LoadFromFile(path)
		} else {
			cfg, err = loader.Load()
		}
		if err != nil {
			return cli.NewExitError(cli.ExitConfig, err)
		}

		logger, err = logging.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return cli.NewExitError(cli.ExitConfig, err)
		}
		if used := loader.ConfigFileUsed(); used != "" {
			logger.Debug("configuration loaded", zap.String("file", used))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// The process exits with the code carried by a returned cli.ExitError.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./automator.yaml)")
	rootCmd.PersistentFlags().Bool("strict", false, "Report unknown workflow and action IDs as errors")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("format", "text", "View format: text, markdown, json, yaml")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Hide the banner and session messages")
}
