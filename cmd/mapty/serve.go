package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lildude/mapty/internal/config"
	"github.com/lildude/mapty/internal/controller"
	"github.com/lildude/mapty/internal/handlers/workouts"
	"github.com/lildude/mapty/internal/logger"
	"github.com/lildude/mapty/internal/mapping"
	"github.com/lildude/mapty/internal/model"
	"github.com/lildude/mapty/internal/storage"
	"github.com/lildude/mapty/internal/view"
	store "github.com/lildude/mapty/internal/workouts"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the mapty server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, logger.NewLogger(cfg.LogLevel, cfg.LogFormat))
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "Port to listen on (overrides PORT)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, log logrus.FieldLogger) error {
	durable, err := storage.Open(ctx, cfg.StorageURL)
	if err != nil {
		log.WithError(err).Warn("unable to open storage, keeping workouts in memory")
		durable = storage.NewMemoryStore()
	}
	defer durable.Close()

	provider, err := newProvider(ctx, cfg, log)
	if err != nil {
		return err
	}

	page := view.NewPage()
	ctl := controller.New(store.New(durable, log, store.WithKey(cfg.StorageKey)), provider, page, log, controller.WithZoom(cfg.MapZoom))
	n := ctl.Start(ctx)
	log.WithField("count", n).Info("session started")

	go func() {
		center := model.Coordinates{Lat: cfg.MapLat, Lng: cfg.MapLng}
		if err := ctl.AttachMap(ctx, center, cfg.MapZoom); err != nil {
			log.WithError(err).Error("unable to attach map")
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           workouts.New(ctl, page, log).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("starting server")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func newProvider(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (mapping.Provider, error) {
	if cfg.MapProvider != "mqtt" {
		return mapping.NewMemory(), nil
	}
	clientID := fmt.Sprintf("mapty-%d", os.Getpid())
	return mapping.DialMQTT(ctx, cfg.MQTTBroker, clientID, cfg.MQTTTopic, log)
}
