package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newStartValueCommand(e *env) *cobra.Command {
	var unset bool

	cmd := &cobra.Command{
		Use:   "start-value <account> [value]",
		Short: "Set or clear an account's opening balance",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value *decimal.Decimal
			switch {
			case unset && len(args) == 2:
				return fmt.Errorf("--clear takes no value")
			case !unset && len(args) == 1:
				return fmt.Errorf("missing value (or use --clear)")
			case !unset:
				v, err := decimal.NewFromString(args[1])
				if err != nil {
					return fmt.Errorf("parsing value %q: %w", args[1], err)
				}
				value = &v
			}
			return e.run(cmd, true, func(ws *workspace) error {
				if err := ws.book.SetStartValue(args[0], value); err != nil {
					return err
				}
				if value == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Cleared start value of %s\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Start value of %s set to %s\n", args[0], formatAmount(*value, ws.book.Currency()))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&unset, "clear", false, "remove the start value")
	return cmd
}

func newRenameCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name>",
		Short: "Rename the journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, true, func(ws *workspace) error {
				if err := ws.book.Rename(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Journal renamed to %q\n", args[0])
				return nil
			})
		},
	}
}

func newDescribeCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <text>",
		Short: "Set the journal description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, true, func(ws *workspace) error {
				if err := ws.book.Describe(args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Journal description updated")
				return nil
			})
		},
	}
}
