package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgr/internal/accounts"
	"github.com/cleared-dev/ledgr/internal/config"
	"github.com/cleared-dev/ledgr/internal/document"
	"github.com/cleared-dev/ledgr/internal/importer"
	"github.com/cleared-dev/ledgr/internal/journal"
	"github.com/cleared-dev/ledgr/internal/store"
)

func newInitCommand() *cobra.Command {
	var name, currency, backend string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new journal workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runInit(cmd.Context(), cmd.OutOrStdout(), absDir, name, currency, backend)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "journal name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&currency, "currency", "EUR", "default currency")
	cmd.Flags().StringVar(&backend, "backend", config.BackendYAML, "storage backend: yaml or sqlite")

	return cmd
}

func runInit(ctx context.Context, out io.Writer, dir, name, currency, backend string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	for _, d := range []string{"import", filepath.Join("import", "processed"), "logs"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(name, currency)
	cfg.Accounts = accounts.Definitions(accounts.DefaultAccounts())
	if backend == config.BackendSQLite {
		cfg.Storage = config.StorageConfig{Backend: config.BackendSQLite, Path: "ledgr.db"}
	} else {
		cfg.Storage.Backend = backend
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := importer.SaveRules(filepath.Join(dir, importer.RulesFile), []importer.Rule{}); err != nil {
		return err
	}

	j := journal.New(nil)
	j.SetName(name)
	st, err := store.Open(dir, cfg.Storage)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer st.Close()
	if err := st.Save(ctx, document.FromJournal(j)); err != nil {
		return fmt.Errorf("writing journal: %w", err)
	}

	fmt.Fprintf(out, "Initialized ledgr journal %q at %s\n", name, dir)
	return nil
}
