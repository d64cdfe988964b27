package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgr/internal/api"
	"github.com/cleared-dev/ledgr/internal/book"
	"github.com/cleared-dev/ledgr/internal/buildinfo"
	"github.com/cleared-dev/ledgr/internal/edits"
)

const defaultAddr = "127.0.0.1:8080"

func newServeCommand(e *env) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the journal over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			ws, err := openWorkspace(ctx, e.dir, "http", e.logLevel, cmd.ErrOrStderr(),
				book.WithMetrics(edits.NewMetrics(reg)))
			if err != nil {
				return err
			}
			defer ws.close()

			if addr == "" {
				addr = ws.cfg.Server.Addr
			}
			if addr == "" {
				addr = defaultAddr
			}

			opts := []api.Option{
				api.WithLogger(ws.logger),
				api.WithPersist(func(ctx context.Context, _ *book.Book) error { return ws.save(ctx) }),
			}
			if ws.cfg.Server.Metrics {
				opts = append(opts, api.WithMetrics(reg))
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           api.NewServer(ws.book, opts...).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
				IdleTimeout:       60 * time.Second,
				MaxHeaderBytes:    1 << 16,
			}
			return serve(ctx, srv, ws)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from ledgr.yaml, then "+defaultAddr+")")
	return cmd
}

func serve(ctx context.Context, srv *http.Server, ws *workspace) error {
	errc := make(chan error, 1)
	go func() {
		ws.logger.Info("serving journal", "addr", srv.Addr, "journal", ws.book.Journal().Name(), "version", buildinfo.String())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	ws.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
