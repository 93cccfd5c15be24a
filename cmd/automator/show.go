package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/automator/pkg/builder"
	"github.com/aretw0/automator/pkg/domain"
	"github.com/aretw0/automator/pkg/view"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [type...]",
	Short: "Render a workflow built from catalog types",
	Long: `Builds a workflow from the given catalog types, in order, and renders it.
With no arguments the empty default workflow is shown.`,
	Example: "  automator show files rename compress --format markdown",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := cfg.StoreOptions()
		if err != nil {
			return err
		}
		store, err := builder.New(append(opts, builder.WithLogger(logger))...)
		if err != nil {
			return err
		}

		for _, t := range args {
			if _, err := store.AddFromCatalog(cmd.Context(), t); err != nil {
				return err
			}
		}
		if name, _ := cmd.Flags().GetString("name"); cmd.Flags().Changed("name") {
			if err := store.RenameWorkflow(cmd.Context(), name); err != nil {
				return err
			}
		}
		if hide, _ := cmd.Flags().GetBool("hide-library"); hide {
			store.ToggleLibrary(cmd.Context())
		}

		return renderView(os.Stdout, view.Project(store.Snapshot()))
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the action catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, e := range domain.Catalog() {
			fmt.Printf("%s %-22s %s\n", e.Icon, e.Name, e.Type)
		}
		return nil
	},
}

func renderView(w io.Writer, v view.View) error {
	renderer, format, err := newRenderer()
	if err != nil {
		return err
	}
	if format == view.FormatMarkdown {
		if render := markdownRenderer(); render != nil {
			out, err := render(view.Markdown(v))
			if err != nil {
				return err
			}
			_, err = io.WriteString(w, out)
			return err
		}
	}
	return renderer.Render(w, v, format)
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(catalogCmd)

	showCmd.Flags().String("name", "", "Workflow name")
	showCmd.Flags().Bool("hide-library", false, "Hide the action library panel")
}
