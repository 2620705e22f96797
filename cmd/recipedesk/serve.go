package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/recipedesk/internal/command"
	"github.com/hammamikhairi/recipedesk/internal/config"
	"github.com/hammamikhairi/recipedesk/internal/server"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server and the
// confirmations still in flight.
const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the listing and mutations as a JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		notifier := command.NewCLINotifier(log, func(format string, a ...interface{}) {
			log.Warn(format, a...)
		})
		d, err := wire(notifier)
		if err != nil {
			return err
		}
		n, err := d.coord.Load(ctx)
		if err != nil {
			return fmt.Errorf("load recipes: %w", err)
		}

		app := server.New(d.store, d.coord, d.pipeline, log.Named("http"), server.WithValidator(d.validate))

		errCh := make(chan error, 1)
		go func() {
			log.Info("serving %d recipes on %s", n, cfg.Server.Addr)
			errCh <- app.Listen(cfg.Server.Addr)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(sctx); err != nil {
			log.Error("http shutdown: %v", err)
		}
		d.coord.Wait()
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	if err := config.BindFlags(v, serveCmd.Flags(), map[string]string{"addr": config.KeyServerAddr}); err != nil {
		panic(err)
	}
}
