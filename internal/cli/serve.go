package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"nudge/internal/auth"
	"nudge/internal/db"
	httpx "nudge/internal/http"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP dispatch trigger",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine("")
			if err != nil {
				return err
			}
			if err := db.AutoMigrateAndIndexes(eng.gdb); err != nil {
				return err
			}

			jwtSvc := auth.NewJWT(eng.cfg.JWTSecret)
			r := httpx.NewRouter(eng.cfg, eng.gdb, jwtSvc, eng.dispatcher)

			srv := &http.Server{
				Addr:              eng.cfg.HTTPAddr,
				Handler:           r,
				ReadHeaderTimeout: 5 * time.Second,
			}

			go func() {
				log.Info().Msgf("listening on %s", eng.cfg.HTTPAddr)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("server failed")
				}
			}()

			ch := make(chan os.Signal, 1)
			signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
			<-ch

			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
