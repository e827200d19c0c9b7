package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"nudge/internal/reminder"
)

func dispatchCmd() *cobra.Command {
	var (
		tenant   string
		limit    int
		deadline time.Duration
		claimant string
	)

	command := &cobra.Command{
		Use:   "dispatch",
		Short: "Run one dispatch cycle for a tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine(claimant)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), deadline)
			defer cancel()

			res, err := eng.dispatcher.Dispatch(ctx, tenant, limit)
			if err != nil {
				if errors.Is(err, reminder.ErrNotInstalled) {
					fmt.Fprintln(os.Stderr, "reminders module not installed for this deployment")
					os.Exit(2)
				}
				return err
			}

			return json.NewEncoder(os.Stdout).Encode(res)
		},
	}

	command.Flags().StringVar(&tenant, "tenant", "", "Tenant identifier")
	command.Flags().IntVar(&limit, "limit", 50, "Batch size, clamped to [1,200]")
	command.Flags().DurationVar(&deadline, "deadline", 2*time.Minute, "Overall cycle deadline")
	command.Flags().StringVar(&claimant, "claimant", "", "Claimant id stamped on claimed rows")
	_ = command.MarkFlagRequired("tenant")

	return command
}
