package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgr/internal/edits"
)

func newShellCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session with undo and redo",
		Long: "Runs journal commands one per line against a single open journal.\n" +
			"The session keeps an undo history; every change is saved immediately.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd.Context(), e.dir, "shell", e.logLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer ws.close()
			return runShell(cmd, &env{dir: e.dir, source: "shell", ws: ws})
		},
	}
}

var errExit = errors.New("exit")

func runShell(cmd *cobra.Command, e *env) error {
	in := bufio.NewScanner(cmd.InOrStdin())
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	for {
		fmt.Fprintf(out, "%s> ", e.ws.book.Journal().Name())
		if !in.Scan() {
			fmt.Fprintln(out)
			return in.Err()
		}
		args, err := splitArgs(in.Text())
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		sub := newShellRoot(e)
		sub.SetArgs(args)
		sub.SetIn(cmd.InOrStdin())
		sub.SetOut(out)
		sub.SetErr(errOut)
		if err := sub.ExecuteContext(cmd.Context()); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
	}
}

// newShellRoot builds the command tree for one shell line.
func newShellRoot(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "ledgr",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	addJournalCommands(root, e)
	root.AddCommand(
		&cobra.Command{
			Use:   "undo",
			Short: "Undo the last change",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.run(cmd, true, func(ws *workspace) error {
					desc, err := ws.book.Undo()
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), desc)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "redo",
			Short: "Redo the last undone change",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.run(cmd, true, func(ws *workspace) error {
					desc, err := ws.book.Redo()
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), desc)
					return nil
				})
			},
		},
		newHistoryCommand(e),
		&cobra.Command{
			Use:     "exit",
			Aliases: []string{"quit"},
			Short:   "Leave the shell",
			RunE:    func(cmd *cobra.Command, args []string) error { return errExit },
		},
	)
	return root
}

func newHistoryCommand(e *env) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the undo history of this session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, false, func(ws *workspace) error {
				h := ws.book.History()
				if cmd.Flags().Changed("limit") {
					h.SetLimit(limit)
				}
				return printHistory(cmd.OutOrStdout(), h.History(), h.Limit())
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "change the history limit (0 = unlimited)")
	return cmd
}

func printHistory(w io.Writer, items []edits.HistoryItem, limit int) error {
	if len(items) == 0 {
		fmt.Fprintln(w, "No changes in this session.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, it := range items {
		state := "done"
		if !it.Done {
			state = "undone"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, state, it.Description)
	}
	if limit > 0 {
		fmt.Fprintf(tw, "\t(limit %d)\t\n", limit)
	}
	return tw.Flush()
}

// splitArgs splits a shell line into words with POSIX-style quoting.
// Redirections, pipes and command separators are not supported.
func splitArgs(line string) ([]string, error) {
	p := shellwords.NewParser()
	args, err := p.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("parsing line: %w", err)
	}
	if p.Position >= 0 {
		return nil, errors.New("parsing line: pipes, redirections and ; are not supported")
	}
	return args, nil
}
