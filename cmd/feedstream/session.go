package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/feedstream/internal/cli"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage saved session snapshots",
	Long:  `List, inspect, and remove session snapshots kept in the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List saved sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}
		store, release, err := cli.OpenStore(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer release()

		sessions, err := store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing sessions: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No saved sessions found.")
			return nil
		}
		fmt.Fprintln(out, "Saved Sessions:")
		for _, s := range sessions {
			fmt.Fprintln(out, "- "+s)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print a session snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}
		store, release, err := cli.OpenStore(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer release()

		snap, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading session '%s': %w", args[0], err)
		}
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more session snapshots",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}
		store, release, err := cli.OpenStore(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer release()

		failed := 0
		out := cmd.OutOrStdout()
		for _, id := range args {
			if err := store.Delete(cmd.Context(), id); err != nil {
				fmt.Fprintf(out, "Error removing '%s': %v\n", id, err)
				failed++
				continue
			}
			fmt.Fprintf(out, "Removed session '%s'\n", id)
		}
		if failed > 0 {
			return fmt.Errorf("%d session(s) could not be removed", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
	sessionCmd.PersistentFlags().String("store", "", "Snapshot store (memory, file, redis)")
}
