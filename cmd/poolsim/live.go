package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/san-kum/poolsim/internal/experiment"
	"github.com/san-kum/poolsim/internal/physics"
	"github.com/san-kum/poolsim/internal/stream"
	"github.com/san-kum/poolsim/internal/viz"
	"github.com/spf13/cobra"
)

func runLive(cmd *cobra.Command, args []string) error {
	if preset == "" && configFile == "" && cmd.Flags().NFlag() == 0 {
		return viz.RunInteractive()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := experiment.Build(cfg, experiment.NewRegistry(), cfg.Seed)
	if err != nil {
		return err
	}

	m := viz.NewModel(s, cfg.Dt, runName(cfg))
	if gifPath != "" {
		m = m.RecordTo(gifPath)
	}
	return viz.Run(m)
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := experiment.Build(cfg, experiment.NewRegistry(), cfg.Seed)
	if err != nil {
		return err
	}

	ctx, stop := context.WithCancel(cmd.Context())
	defer stop()

	hub := stream.NewHub(logger)
	defer hub.Close()

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "ok clients=%d\n", hub.ClientCount())
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
		stop()
	}()

	logger.Info("streaming frames", "addr", addr, "path", "/ws", "balls", len(s.Balls), "fps", frameRate)

	runErr := stream.Run(ctx, hub, s, physics.NewStepper(len(s.Balls)), cfg.Dt, frameRate)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", "err", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if errors.Is(runErr, context.Canceled) {
		logger.Info("stopped", "time", s.Time, "dropped", hub.Dropped())
		return nil
	}
	return runErr
}
