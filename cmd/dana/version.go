package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags "-X main.version=...". Left at
// "dev" for local builds.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the dana runtime version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("dana " + version)
		return nil
	},
}
