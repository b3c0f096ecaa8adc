package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/feedstream"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of feedstream",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "feedstream version %s\n", strings.TrimSpace(feedstream.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
