package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteConfirmed bool

var deleteCmd = &cobra.Command{
	Use:   "delete <origin-id>",
	Short: "Delete a session and all its points",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		originID := args[0]

		if !deleteConfirmed {
			return fmt.Errorf("refusing to delete session %s without --yes", originID)
		}

		st, err := openStore()
		if err != nil {
			return err
		}

		// Surface a clear error if the session never existed.
		if _, err := st.GetByOriginID(originID); err != nil {
			return err
		}

		if err := st.DeleteSession(originID); err != nil {
			return fmt.Errorf("failed to delete session %s: %w", originID, err)
		}

		fmt.Printf("Deleted session %s\n", originID)
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteConfirmed, "yes", false, "confirm deletion")
}
