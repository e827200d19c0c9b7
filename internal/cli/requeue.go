package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func requeueCmd() *cobra.Command {
	var (
		tenant      string
		maxAttempts int
	)

	command := &cobra.Command{
		Use:   "requeue",
		Short: "Return failed reminders to pending with backoff",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine("")
			if err != nil {
				return err
			}

			if maxAttempts <= 0 {
				maxAttempts = eng.cfg.RequeueMaxAttempts
			}

			n, err := eng.store.RequeueFailed(cmd.Context(), tenant, maxAttempts,
				eng.cfg.RequeueBaseBackoff, eng.cfg.RequeueMaxBackoff)
			if err != nil {
				return err
			}

			log.Info().Str("tenant", tenant).Int("requeued", n).Msg("failed reminders returned to pending")
			return nil
		},
	}

	command.Flags().StringVar(&tenant, "tenant", "", "Tenant identifier")
	command.Flags().IntVar(&maxAttempts, "max-attempts", 0, "Skip rows at or above this attempt count (default from env)")
	_ = command.MarkFlagRequired("tenant")

	return command
}
