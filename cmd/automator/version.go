package main

import (
	"fmt"

	"github.com/aretw0/automator"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of automator",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("automator version %s\n", automator.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
