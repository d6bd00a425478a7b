package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flagBlacklistReason string

func newBlacklistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blacklist",
		Short: "Manage permanently excluded events",
	}

	add := &cobra.Command{
		Use:   "add <source> <external-id>",
		Short: "Exclude one (source, external-id) pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.blacklist.AddToBlacklist(cmd.Context(), args[0], args[1], flagBlacklistReason); err != nil {
				return fmt.Errorf("adding to blacklist: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Blacklisted %s/%s\n", args[0], args[1])
			return nil
		},
	}
	add.Flags().StringVar(&flagBlacklistReason, "reason", "", "Why the event is excluded")

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Remove every blacklist entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.blacklist.ClearAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("clearing blacklist: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", n)
			return nil
		},
	}

	cmd.AddCommand(add, clear)
	return cmd
}
