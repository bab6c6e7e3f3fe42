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

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/www"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard API, SSE stream and feed consumer",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := openDeps(ctx, true)
		if err != nil {
			return err
		}
		defer d.close()

		if err := d.db.Setup(ctx); err != nil {
			return err
		}
		if err := d.engine.Live().SyncRedisFromSQL(ctx); err != nil {
			logrus.Warnf("amrdash: redis sync from SQL: %v", err)
		}

		if err := d.engine.Start(); err != nil {
			return err
		}
		defer d.engine.Stop()

		handler, stopWeb := www.NewRouter(d.engine)
		addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
		srv := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logrus.Infof("amrdash: web server listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		logrus.Infof("amrdash: ready (version %s)", Version)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigCh:
		case err := <-errCh:
			stopWeb()
			return fmt.Errorf("web server: %w", err)
		}

		logrus.Infof("amrdash: shutting down...")
		stopWeb()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)

		logrus.Infof("amrdash: stopped")
		return nil
	},
}
