package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/dataminer/internal/app"
	"github.com/hyperifyio/dataminer/internal/server"
)

const shutdownGrace = 10 * time.Second

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve extraction over HTTP.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(cmd)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), a)
		},
	}
	cmd.Flags().StringVar(&c.addr, "addr", app.DefaultListenAddr, "Listen address")
	return cmd
}

// serve runs until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, a *app.App) error {
	srv := &http.Server{
		Addr:              a.Config().ListenAddr,
		Handler:           server.New(a).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
