package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"netsoc/site"
)

func (a *App) serverCommand() *cli.Command {
	return &cli.Command{
		Name:  "app",
		Usage: "Run the web server",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return a.runServer(ctx)
		},
	}
}

func (a *App) runServer(ctx context.Context) error {
	s := site.New(a.Config, a.Blog, a.Library)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.Config.HTTPPort),
		Handler: s.Router(),
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("public", a.Config.ServerName()).Msg("running")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
