package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/emilythestrangee/reddit-companion/backend/internal/handlers"
	"github.com/emilythestrangee/reddit-companion/backend/internal/server"
)

const shutdownTimeout = 10 * time.Second

type ServeOptions struct {
	*RootOptions
	NoPoll bool
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the inbox poller",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.NoPoll, "no-poll", false, "serve the API without the background poller")
	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.cfg.RequireServer(); err != nil {
		return err
	}

	h := handlers.NewHandler(handlers.Deps{
		Store:     a.store,
		Reddit:    a.reddit,
		Tokens:    a.tokens,
		Resolver:  a.resolver,
		Poller:    a.poller,
		JWTSecret: []byte(a.cfg.JWTSecret),
		CacheTTL:  a.cfg.Reddit.CacheTTL,
		Log:       a.log,
	})
	httpServer := server.New(a.db, h, []byte(a.cfg.JWTSecret), a.log).HTTPServer(a.cfg.Port)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if !opts.NoPoll {
		g.Go(func() error { return a.poller.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("🛑 Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
