package commands

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgr/internal/balance"
	"github.com/cleared-dev/ledgr/internal/category"
)

func newBalanceCommand(e *env) *cobra.Command {
	var periods bool

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show sums per account and category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, false, func(ws *workspace) error {
				out := cmd.OutOrStdout()
				if err := printBalance(out, ws.book.Balance(), ws.book.Currency()); err != nil {
					return err
				}
				if !periods {
					return nil
				}
				return printPeriods(out, ws.book.Periods(), ws.book.Currency())
			})
		},
	}

	cmd.Flags().BoolVar(&periods, "periods", false, "also show sums at each active reading point")
	return cmd
}

func printBalance(w io.Writer, info *balance.Info, currency string) error {
	fmt.Fprintf(w, "Overall: %s\n\n", formatAmount(info.OverallSum(), currency))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ACCOUNT\tSUM")
	sums := info.AccountSums()
	for _, id := range sortedKeys(sums) {
		fmt.Fprintf(tw, "%s\t%s\n", id, formatAmount(sums[id], currency))
	}
	fmt.Fprintln(tw)

	catSums := info.CategorySums()
	cats := make([]*category.Category, 0, len(catSums))
	for c := range catSums {
		if !c.IsRoot() {
			cats = append(cats, c)
		}
	}
	slices.SortFunc(cats, category.Compare)
	fmt.Fprintln(tw, "CATEGORY\tSUM")
	for _, c := range cats {
		label := strings.Repeat("  ", c.Depth()-1) + c.Name()
		fmt.Fprintf(tw, "%s\t%s\n", label, formatAmount(catSums[c], currency))
	}
	return tw.Flush()
}

func printPeriods(w io.Writer, periods []balance.Period, currency string) error {
	if len(periods) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "READING POINT\tDATE\tOVERALL")
	for _, p := range periods {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Point.Name(), p.Point.Date().Format(time.DateOnly), formatAmount(p.Info.OverallSum(), currency))
	}
	return tw.Flush()
}

func newCategoriesCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the categories in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, false, func(ws *workspace) error {
				for _, c := range ws.book.Categories().Existing() {
					if !c.IsRoot() {
						fmt.Fprintln(cmd.OutOrStdout(), c.String())
					}
				}
				return nil
			})
		},
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
