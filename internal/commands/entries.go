package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgr/internal/category"
	"github.com/cleared-dev/ledgr/internal/journal"
	"github.com/cleared-dev/ledgr/internal/model"
)

func newAddCommand(e *env) *cobra.Command {
	var (
		p     model.EntryParams
		value string
		date  string
		cat   string
		info  map[string]string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := decimal.NewFromString(value)
			if err != nil {
				return fmt.Errorf("parsing value %q: %w", value, err)
			}
			d, err := parseDate(date)
			if err != nil {
				return err
			}
			p.Value, p.Date, p.AccountInfo = v, d, info

			return e.run(cmd, true, func(ws *workspace) error {
				entry, err := ws.book.NewEntry(p, cat)
				if err != nil {
					return err
				}
				warnings, err := ws.book.AddEntries(entry)
				if err != nil {
					return err
				}
				printWarnings(cmd.ErrOrStderr(), warnings)
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s %q %s\n", shortID(entry.ID()), entry.Name(), formatAmount(entry.Value(), entry.Currency()))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&p.Name, "name", "", "entry name (required)")
	cmd.Flags().StringVar(&value, "value", "", "signed amount, e.g. -12.50 (required)")
	cmd.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&cat, "category", "", "category, e.g. Income:Dues (required)")
	cmd.Flags().StringVar(&p.AccountID, "account", "cash", "account id")
	cmd.Flags().StringVar(&p.Currency, "currency", "", "currency (default from config)")
	cmd.Flags().StringToStringVar(&info, "field", nil, "account field as id=value (repeatable)")
	cmd.Flags().StringVar(&p.AdditionalInfo, "note", "", "free-form note")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("value")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func newRemoveCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>...",
		Short: "Remove entries by id or unique id prefix",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, true, func(ws *workspace) error {
				var entries []*model.Entry
				for _, id := range args {
					entry, err := ws.book.Entry(id)
					if err != nil {
						return err
					}
					entries = append(entries, entry)
				}
				if err := ws.book.RemoveEntries(entries...); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", len(entries))
				return nil
			})
		},
	}
}

func newListCommand(e *env) *cobra.Command {
	var account, cat string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, false, func(ws *workspace) error {
				var within *category.Category
				if cat != "" {
					c, ok := ws.book.Categories().Lookup(splitCategory(cat)...)
					if !ok {
						return fmt.Errorf("unknown category %q", cat)
					}
					within = c
				}
				var shown []*model.Entry
				for _, entry := range ws.book.Entries() {
					if account != "" && entry.AccountID() != account {
						continue
					}
					if within != nil && !within.Contains(entry.Category()) {
						continue
					}
					shown = append(shown, entry)
				}
				return printEntries(cmd.OutOrStdout(), shown)
			})
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "only entries of this account")
	cmd.Flags().StringVar(&cat, "category", "", "only entries in this category or below")
	return cmd
}

func printEntries(w io.Writer, entries []*model.Entry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tNAME\tCATEGORY\tACCOUNT\tVALUE")
	for _, e := range entries {
		cat := ""
		if e.Category() != nil {
			cat = e.Category().String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(e.ID()), e.Date().Format(time.DateOnly), e.Name(), cat, e.AccountID(), formatAmount(e.Value(), e.Currency()))
	}
	return tw.Flush()
}

func printWarnings(w io.Writer, warnings []journal.ValidationError) {
	for _, v := range warnings {
		fmt.Fprintf(w, "warning: %v\n", v.Err)
	}
}
