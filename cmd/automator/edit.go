package main

import (
	"os"

	"github.com/aretw0/automator"
	"github.com/aretw0/automator/internal/cli"
	"github.com/aretw0/automator/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit a workflow interactively",
	Long: `Opens a line-oriented editor on a fresh workflow. Type 'help' for the
command list. Nothing is saved when the editor exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		app, err := cli.NewApp(ctx, cfg, logger, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		renderer, format, err := newRenderer()
		if err != nil {
			return err
		}

		quiet, err := cmd.Flags().GetBool("quiet")
		if err != nil {
			return err
		}
		if !quiet && isTTY() {
			tui.PrintBanner(os.Stdout, automator.Version)
		}

		editor := cli.NewEditor(app.Sessions, os.Stdin, os.Stdout,
			cli.WithRenderer(renderer, format),
			cli.WithMarkdownRenderer(markdownRenderer()),
			cli.WithQuiet(quiet),
			cli.WithLogger(logger),
		)
		return cli.HandleExecutionError(editor.Run(ctx))
	},
}

func init() {
	rootCmd.AddCommand(editCmd)

	rootCmd.RunE = editCmd.RunE
}
