package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgr/internal/model"
)

func newPointCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "point",
		Short: "Manage reading points",
	}
	cmd.AddCommand(newPointAddCommand(e), newPointRemoveCommand(e), newPointListCommand(e))
	return cmd
}

func newPointAddCommand(e *env) *cobra.Command {
	var date string
	var hidden, active bool

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a reading point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDate(date)
			if err != nil {
				return err
			}
			p := model.NewReadingPoint(model.ReadingPointParams{
				Name:    args[0],
				Date:    d,
				Visible: !hidden,
				Active:  active,
			})
			return e.run(cmd, true, func(ws *workspace) error {
				if err := ws.book.AddReadingPoint(p); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added reading point %q on %s\n", p.Name(), p.Date().Format(time.DateOnly))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&hidden, "hidden", false, "hide the point in listings")
	cmd.Flags().BoolVar(&active, "active", false, "report balances at this point")
	return cmd
}

func newPointRemoveCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name|id>",
		Short: "Remove a reading point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, true, func(ws *workspace) error {
				p, err := ws.book.ReadingPoint(args[0])
				if err != nil {
					return err
				}
				if err := ws.book.RemoveReadingPoint(p); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed reading point %q\n", p.Name())
				return nil
			})
		},
	}
}

func newPointListCommand(e *env) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reading points",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, false, func(ws *workspace) error {
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tDATE\tACTIVE")
				for _, p := range ws.book.ReadingPoints() {
					if !p.Visible() && !all {
						continue
					}
					fmt.Fprintf(tw, "%s\t%s\t%t\n", p.Name(), p.Date().Format(time.DateOnly), p.Active())
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include hidden reading points")
	return cmd
}
