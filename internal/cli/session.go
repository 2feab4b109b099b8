package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/todoist-to-sqlite/internal/config"
	"github.com/roach88/todoist-to-sqlite/internal/credential"
	"github.com/roach88/todoist-to-sqlite/internal/store"
	"github.com/roach88/todoist-to-sqlite/internal/todoist"
	"github.com/roach88/todoist-to-sqlite/internal/transport"
)

// session bundles what a sync command needs: resolved config, an
// authenticated Todoist client and an open store.
type session struct {
	cfg    *config.Config
	client *todoist.Client
	store  *store.Store
	schema todoist.Schema
	logger *slog.Logger
}

// openSession loads config and credential before touching the database, so a
// missing token never creates an empty file.
func openSession(opts *RootOptions, dbPath string, logger *slog.Logger) (*session, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, err
	}

	token, err := credential.Load(opts.Auth)
	if err != nil {
		return nil, err
	}

	tc := transport.New(token,
		transport.WithTimeout(cfg.Timeout),
		transport.WithLogger(logger),
	)
	client := todoist.New(tc,
		todoist.WithRESTURL(cfg.RESTURL),
		todoist.WithSyncURL(cfg.SyncURL),
		todoist.WithPagination(cfg.Pagination),
	)

	logger.Debug("opening database", "path", dbPath)
	st, err := store.Open(dbPath, store.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:    cfg,
		client: client,
		store:  st,
		schema: todoist.NewSchema(cfg.Tables),
		logger: logger,
	}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

// signalContext derives a context cancelled on SIGINT or SIGTERM.
// An in-flight request is aborted; pages already written stay committed.
func signalContext(cmd *cobra.Command, logger *slog.Logger) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
