package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgr/internal/importer"
)

func newImportCommand(e *env) *cobra.Command {
	var format, account, fallback string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a bank export, or every CSV waiting in import/",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := importer.DefaultRegistry().Get(format)
			if parser == nil {
				return fmt.Errorf("unknown format %q (known: %v)", format, importer.DefaultRegistry().Formats())
			}

			return e.run(cmd, !dryRun, func(ws *workspace) error {
				rules, err := importer.LoadRules(filepath.Join(ws.root, importer.RulesFile))
				if err != nil {
					return err
				}
				opts := importer.Options{
					AccountID: account,
					Currency:  ws.book.Currency(),
					Fallback:  fallback,
					Rules:     rules,
				}

				var files []importer.FileInfo
				scanned := len(args) == 0
				if scanned {
					if files, err = importer.Scan(ws.root); err != nil {
						return err
					}
					if len(files) == 0 {
						fmt.Fprintln(cmd.OutOrStdout(), "Nothing to import.")
						return nil
					}
				} else {
					files = []importer.FileInfo{{Name: filepath.Base(args[0]), Path: args[0]}}
				}

				for _, fi := range files {
					f, err := os.Open(fi.Path)
					if err != nil {
						return fmt.Errorf("opening %s: %w", fi.Name, err)
					}
					txns, err := parser.Parse(f)
					f.Close()
					if err != nil {
						return fmt.Errorf("importing %s: %w", fi.Name, err)
					}

					entries, err := importer.Convert(ws.book.Categories(), txns, opts)
					if err != nil {
						return fmt.Errorf("importing %s: %w", fi.Name, err)
					}
					fresh := importer.SkipKnown(ws.book.Entries(), entries)

					if dryRun {
						fmt.Fprintf(cmd.OutOrStdout(), "%s: would import %d entries (%d already present)\n", fi.Name, len(fresh), len(entries)-len(fresh))
						if err := printEntries(cmd.OutOrStdout(), fresh); err != nil {
							return err
						}
						continue
					}

					if len(fresh) > 0 {
						warnings, err := ws.book.AddEntries(fresh...)
						if err != nil {
							return fmt.Errorf("importing %s: %w", fi.Name, err)
						}
						printWarnings(cmd.ErrOrStderr(), warnings)
						// Persist before the file leaves import/.
						if err := ws.save(cmd.Context()); err != nil {
							return err
						}
					}
					if scanned {
						if err := importer.MarkProcessed(ws.root, fi.Name); err != nil {
							return err
						}
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: imported %d entries (%d already present)\n", fi.Name, len(fresh), len(entries)-len(fresh))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "chase", "export format")
	cmd.Flags().StringVar(&account, "account", "bank", "account the entries are booked on")
	cmd.Flags().StringVar(&fallback, "fallback", "Uncategorized", "category when no rule matches")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be imported")
	return cmd
}
