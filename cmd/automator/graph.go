package main

import (
	"fmt"

	"github.com/aretw0/automator/internal/presentation/graph"
	"github.com/aretw0/automator/pkg/builder"
	"github.com/aretw0/automator/pkg/domain"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [type...]",
	Short: "Export a workflow as a Mermaid diagram",
	Long:  `Builds a workflow from the given catalog types and outputs a Mermaid diagram (graph TD) of the action chain.`,
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

		w, _ := store.Current()
		positions, err := cmd.Flags().GetIntSlice("highlight")
		if err != nil {
			return err
		}
		overlay, err := highlightOverlay(w, positions)
		if err != nil {
			return err
		}
		fmt.Print(graph.GenerateMermaid(w, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("name", "", "Workflow name")
	graphCmd.Flags().IntSlice("highlight", nil, "1-based positions of actions to highlight")
}

// highlightOverlay maps 1-based action positions to an overlay.
func highlightOverlay(w domain.Workflow, positions []int) (*graph.Overlay, error) {
	if len(positions) == 0 {
		return nil, nil
	}
	overlay := &graph.Overlay{}
	for _, n := range positions {
		if n < 1 || n > len(w.Actions) {
			return nil, fmt.Errorf("highlight position %d out of range (workflow has %d actions)", n, len(w.Actions))
		}
		overlay.Highlight = append(overlay.Highlight, w.Actions[n-1].ID)
	}
	return overlay, nil
}
