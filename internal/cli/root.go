package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"nudge/internal/channel"
	"nudge/internal/config"
	"nudge/internal/db"
	"nudge/internal/metrics"
	"nudge/internal/reminder"
	"nudge/internal/schema"
)

func Run() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	command := &cobra.Command{
		Use:   "nudge",
		Short: "Multi-tenant reminder dispatch engine",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	command.AddCommand(serveCmd())
	command.AddCommand(dispatchCmd())
	command.AddCommand(requeueCmd())

	if err := command.Execute(); err != nil {
		log.Fatal().Msgf("failed to execute command, err: %v", err.Error())
	}
}

// engine wires the pieces every command needs against one database.
type engine struct {
	cfg        config.Config
	gdb        *gorm.DB
	store      *reminder.Store
	dispatcher *reminder.Dispatcher
}

func newEngine(claimantID string) (*engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	metrics.Init()

	httpClient := channel.NewHTTPClient(cfg.SendTimeout)
	store := &reminder.Store{DB: gdb, ClaimTTL: cfg.ClaimTTL}

	if claimantID == "" {
		host, _ := os.Hostname()
		claimantID = "nudge@" + host
	}

	return &engine{
		cfg:   cfg,
		gdb:   gdb,
		store: store,
		dispatcher: &reminder.Dispatcher{
			Store:           store,
			Catalog:         &schema.Catalog{DB: gdb},
			Chat:            &channel.Chat{HTTP: httpClient},
			Text:            &channel.Text{HTTP: httpClient},
			ValidateWebhook: channel.ValidateWebhook,
			NormalizePhone:  channel.NormalizePhone,
			ID:              claimantID,
			SendTimeout:     cfg.SendTimeout,
		},
	}, nil
}
