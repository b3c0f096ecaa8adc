package main

import (
	"fmt"

	"github.com/aretw0/feedstream/internal/validator"
	"github.com/aretw0/feedstream/pkg/adapters/fixture"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <fixture>",
	Short: "Check a fixture for consistency",
	Long:  `Crawls the fixture from its root through every token page and reports duplicate keys, malformed children and unreachable pages.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := fixture.Load(args[0])
		if err != nil {
			return err
		}
		if err := validator.ValidateFeed(file); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Feed is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
