package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubetac"
	"github.com/SeamusWaldron/cubetac/internal/httpserver"
	"github.com/SeamusWaldron/cubetac/internal/metrics"
	"github.com/SeamusWaldron/cubetac/internal/recorder"
	"github.com/SeamusWaldron/cubetac/internal/session"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve one shared game over HTTP and WebSocket",
	Long: `Run a single game and expose it to an external renderer.

Routes:
  GET  /health
  GET  /state              current render state (JSON)
  POST /mark               {"x":0,"y":1,"z":1} or with "player":"O"
  POST /rotate             {"axis":"x","layer":1,"turn":-1}
  POST /reset
  GET  /ws                 render state pushed on every change
  GET  /metrics            Prometheus metrics`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: $CUBETAC_LISTEN_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cfg.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	m := metrics.New()
	opts := []session.Option{
		session.WithFrameInterval(cfg.FrameInterval),
		session.WithObserver(m),
	}

	if cfg.Record {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		rec := recorder.New(db, "serve")
		rec.OnError(m.RecorderError)
		if _, err := rec.Start(); err != nil {
			return err
		}
		defer func() {
			if err := rec.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close game record")
			}
		}()
		opts = append(opts, session.WithRecorder(rec))
	}

	ctrl := session.New(cubetac.NewGame(gameOptions()...), opts...)
	srv := httpserver.New(ctrl, httpserver.Options{
		AllowedOrigin: cfg.AllowedOrigin,
		Metrics:       m,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	ctrlDone := make(chan error, 1)
	go func() { ctrlDone <- ctrl.Run(runCtx) }()

	err := srv.ListenAndServe(runCtx, addr)
	cancel()
	if cerr := <-ctrlDone; !errors.Is(cerr, context.Canceled) {
		log.Error().Err(cerr).Msg("session stopped unexpectedly")
	}
	if err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}
