package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	spanassert "github.com/aretw0/spanassert"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of spanassert",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("spanassert version %s\n", strings.TrimSpace(spanassert.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
