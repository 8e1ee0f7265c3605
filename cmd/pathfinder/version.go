package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calebmb/pathfinder/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the pathfinder version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pathfinder version %s\n", version.Get())
	},
}
