package main

import (
	"github.com/aretw0/feedstream/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <fixture>",
	Short: "Render a fixture feed",
	Long: `Loads a YAML or JSON fixture, flattens it and prints the resulting list.
Continuations can be expanded, content dismissed and the session saved for a
later --restore.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		opts := cli.RunOptions{Fixture: args[0]}
		opts.SessionID, _ = cmd.Flags().GetString("session")
		opts.Restore, _ = cmd.Flags().GetBool("restore")
		opts.Expand, _ = cmd.Flags().GetInt("expand")
		opts.Dismiss, _ = cmd.Flags().GetStringSlice("dismiss")
		opts.Undo, _ = cmd.Flags().GetBool("undo")
		opts.Save, _ = cmd.Flags().GetBool("save")
		opts.Anchor, _ = cmd.Flags().GetInt("anchor")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Banner, _ = cmd.Flags().GetBool("banner")

		_, err = cli.Run(cmd.Context(), cfg, opts, cmd.OutOrStdout(), logger)
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("session", "", "Session id (generated when empty)")
	runCmd.Flags().Bool("restore", false, "Restore the session from the snapshot store")
	runCmd.Flags().Int("expand", 0, "Activate the first continuation up to N times")
	runCmd.Flags().StringSlice("dismiss", nil, "Dismiss content by key (repeatable)")
	runCmd.Flags().Bool("undo", false, "Take the undo action on dismiss snackbars")
	runCmd.Flags().Bool("save", false, "Save a snapshot of the session")
	runCmd.Flags().Int("anchor", 0, "Index of the first visible leaf recorded in the snapshot")
	runCmd.Flags().Bool("json", false, "Print the result as JSON")
	runCmd.Flags().Bool("banner", false, "Print the banner first")
	runCmd.Flags().String("store", "", "Snapshot store (memory, file, redis)")
	runCmd.Flags().Duration("latency", 0, "Simulated fetch latency for tokens")
}
