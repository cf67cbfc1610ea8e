// Command server runs the artifact store's HTTP API. Bootstrap
// follows the teacher's cmd/ds/ds.go: a single urfave/cli App with
// Before/After hooks that open and close the Badger-backed metadata
// store around the command's Action. Graceful shutdown on SIGINT/
// SIGTERM is carried over from original_source/src/main.rs, which has
// no equivalent in the teacher repo.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/harryzcy/artifact-store/internal/blobstore"
	"github.com/harryzcy/artifact-store/internal/config"
	"github.com/harryzcy/artifact-store/internal/httpapi"
	"github.com/harryzcy/artifact-store/internal/ingest"
	"github.com/harryzcy/artifact-store/internal/logging"
	"github.com/harryzcy/artifact-store/internal/metadatastore"
	"github.com/harryzcy/artifact-store/internal/retrieve"
)

func main() {
	cfg := config.Load()
	logger := logging.New()

	// backend is a local of main, not a package-level global: the
	// Before hook opens it, Action reads it, and After closes it, all
	// as closures over this one variable rather than module-level
	// mutable state.
	var backend metadatastore.Backend

	app := &cli.App{
		Name:  "artifact-store",
		Usage: "serves build-output artifacts keyed by server/owner/repo/commit/path",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "data-path",
				Value:       cfg.DataPath,
				Usage:       "base directory for all persisted state",
				EnvVars:     []string{"DATA_PATH"},
				Destination: &cfg.DataPath,
			},
			&cli.StringFlag{
				Name:        "badger-path",
				Value:       cfg.BadgerPath,
				Usage:       "directory for the metadata engine's files",
				EnvVars:     []string{"BADGER_PATH"},
				Destination: &cfg.BadgerPath,
			},
			&cli.StringFlag{
				Name:        "artifacts-path",
				Value:       cfg.ArtifactsPath,
				Usage:       "root directory of the artifact blob tree",
				EnvVars:     []string{"ARTIFACTS_PATH"},
				Destination: &cfg.ArtifactsPath,
			},
		},
		Before: func(c *cli.Context) error {
			if err := os.MkdirAll(cfg.BadgerPath, 0o755); err != nil {
				return err
			}
			opened, err := metadatastore.OpenBadger(cfg.BadgerPath)
			if err != nil {
				return err
			}
			backend = opened
			return nil
		},
		After: func(c *cli.Context) error {
			if backend == nil {
				return nil
			}
			return backend.Close()
		},
		Action: func(c *cli.Context) error {
			return run(cfg, backend, logger)
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, backend metadatastore.Backend, logger *logging.Logger) error {
	if err := os.MkdirAll(cfg.ArtifactsPath, 0o755); err != nil {
		return err
	}

	store, err := metadatastore.New(backend)
	if err != nil {
		return err
	}
	blobs := blobstore.New(cfg.ArtifactsPath)
	in := ingest.New(store, blobs)
	re := retrieve.New(store, blobs)
	api := httpapi.New(store, in, re, logger)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: api.Handler(),
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.ListenAddr, "badgerPath", cfg.BadgerPath, "artifactsPath", cfg.ArtifactsPath)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case <-sig:
		logger.Info("starting graceful shutdown")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(ctx)
	}
}
