package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgr/internal/accounts"
	"github.com/cleared-dev/ledgr/internal/auditlog"
	"github.com/cleared-dev/ledgr/internal/book"
	"github.com/cleared-dev/ledgr/internal/config"
	"github.com/cleared-dev/ledgr/internal/document"
	"github.com/cleared-dev/ledgr/internal/store"
)

// workspace is an opened journal directory: its config, storage and book.
type workspace struct {
	root    string
	cfg     *config.Config
	backend store.Backend
	book    *book.Book
	logger  *slog.Logger
}

// openWorkspace loads the journal at root. Extra book options are applied
// after the configured ones.
func openWorkspace(ctx context.Context, root, source, level string, stderr io.Writer, opts ...book.Option) (*workspace, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.Load(filepath.Join(absRoot, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("%w (run `ledgr init` first)", err)
	}
	if level == "" {
		level = cfg.Log.Level
	}
	logger := newLogger(stderr, level)

	defs := cfg.Accounts
	if len(defs) == 0 {
		defs = accounts.Definitions(accounts.DefaultAccounts())
	}
	accts, err := accounts.FromConfig(defs)
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}

	backend, err := store.Open(absRoot, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	doc, err := backend.Load(ctx)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("loading journal: %w", err)
	}
	j, err := doc.Journal(nil)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("loading journal: %w", err)
	}

	bookOpts := []book.Option{
		book.WithHistoryLimit(cfg.History.Limit),
		book.WithCurrency(cfg.Journal.Currency),
		book.WithLogger(logger),
	}
	if cfg.Audit.Enabled {
		bookOpts = append(bookOpts, book.WithAuditor(auditlog.New(absRoot, source, j.Name)))
	}
	b, err := book.New(j, accts, append(bookOpts, opts...)...)
	if err != nil {
		backend.Close()
		return nil, err
	}

	logger.Debug("workspace opened", "root", absRoot, "backend", cfg.Storage.Backend, "entries", j.Len())
	return &workspace{root: absRoot, cfg: cfg, backend: backend, book: b, logger: logger}, nil
}

// save writes the journal back to storage.
func (w *workspace) save(ctx context.Context) error {
	if err := w.backend.Save(ctx, document.FromJournal(w.book.Journal())); err != nil {
		return fmt.Errorf("saving journal: %w", err)
	}
	return nil
}

func (w *workspace) close() {
	w.book.Close()
	if err := w.backend.Close(); err != nil {
		w.logger.Warn("closing storage", "error", err)
	}
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}

// env carries what commands need to reach a workspace. In the shell, ws is
// already open and shared by every command.
type env struct {
	dir      string
	logLevel string
	source   string
	ws       *workspace
}

// run opens the workspace (unless shared), runs fn and saves when mutate is set.
func (e *env) run(cmd *cobra.Command, mutate bool, fn func(ws *workspace) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ws := e.ws
	if ws == nil {
		var err error
		ws, err = openWorkspace(ctx, e.dir, e.source, e.logLevel, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer ws.close()
	}

	if err := fn(ws); err != nil {
		return err
	}
	if mutate {
		return ws.save(ctx)
	}
	return nil
}
