package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgr/internal/auditlog"
	"github.com/cleared-dev/ledgr/internal/book"
	"github.com/cleared-dev/ledgr/internal/document"
	"github.com/cleared-dev/ledgr/internal/importer"
)

func runLedgr(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func initWorkspace(t *testing.T, extra ...string) string {
	t.Helper()
	dir := t.TempDir()
	_, _, err := runLedgr(t, "", append([]string{"init", dir, "--name", "Chess club"}, extra...)...)
	require.NoError(t, err)
	return dir
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	out, _, err := runLedgr(t, "", "init", dir, "--name", "Chess club")
	require.NoError(t, err)
	assert.Contains(t, out, `Initialized ledgr journal "Chess club"`)

	for _, d := range []string{"import", filepath.Join("import", "processed"), "logs"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir())
	}
	for _, f := range []string{"ledgr.yaml", importer.RulesFile, "journal.yaml"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "file %s should exist", f)
	}

	doc, err := document.Load(filepath.Join(dir, "journal.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Chess club", doc.Name)
	assert.Empty(t, doc.Entries)
}

func TestInit_Errors(t *testing.T) {
	dir := initWorkspace(t)
	_, _, err := runLedgr(t, "", "init", dir, "--name", "Again")
	assert.ErrorContains(t, err, "already exists")

	_, _, err = runLedgr(t, "", "init", t.TempDir())
	assert.Error(t, err)

	_, _, err = runLedgr(t, "", "init", t.TempDir(), "--name", "x", "--backend", "csv")
	assert.Error(t, err)
}

func TestCommands_NeedWorkspace(t *testing.T) {
	_, _, err := runLedgr(t, "", "-C", t.TempDir(), "list")
	assert.ErrorContains(t, err, "ledgr init")
}

func TestAddListBalance(t *testing.T) {
	dir := initWorkspace(t)

	out, _, err := runLedgr(t, "", "-C", dir, "add",
		"--name", "Dues", "--value", "100", "--date", "2025-01-10", "--category", "Income:Dues")
	require.NoError(t, err)
	assert.Contains(t, out, `"Dues" 100.00 EUR`)

	_, _, err = runLedgr(t, "", "-C", dir, "add",
		"--name", "Boards", "--value", "-45.5", "--date", "2025-02-03", "--category", "Expenses:Equipment",
		"--account", "bank", "--field", "statement=2025-02")
	require.NoError(t, err)

	out, _, err = runLedgr(t, "", "-C", dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Income:Dues")
	assert.Contains(t, out, "Expenses:Equipment")
	assert.Contains(t, out, "-45.50 EUR")

	out, _, err = runLedgr(t, "", "-C", dir, "list", "--account", "bank")
	require.NoError(t, err)
	assert.NotContains(t, out, "Dues")
	assert.Contains(t, out, "Boards")

	out, _, err = runLedgr(t, "", "-C", dir, "list", "--category", "Income")
	require.NoError(t, err)
	assert.Contains(t, out, "Dues")
	assert.NotContains(t, out, "Boards")

	_, _, err = runLedgr(t, "", "-C", dir, "list", "--category", "Nope")
	assert.ErrorContains(t, err, "unknown category")

	out, _, err = runLedgr(t, "", "-C", dir, "balance")
	require.NoError(t, err)
	assert.Contains(t, out, "Overall: 54.50 EUR")
	assert.Contains(t, out, "Income")

	out, _, err = runLedgr(t, "", "-C", dir, "categories")
	require.NoError(t, err)
	assert.Equal(t, []string{"Expenses", "Expenses:Equipment", "Income", "Income:Dues"}, strings.Fields(out))
}

func TestAdd_Validation(t *testing.T) {
	dir := initWorkspace(t)

	_, _, err := runLedgr(t, "", "-C", dir, "add",
		"--name", "Stamps", "--value", "-3", "--category", "Expenses", "--account", "petty",
		"--field", "receipt=r1", "--field", "invoice=i1")
	assert.ErrorIs(t, err, book.ErrRejected)

	_, _, err = runLedgr(t, "", "-C", dir, "add", "--name", "X", "--value", "abc", "--category", "x")
	assert.ErrorContains(t, err, "parsing value")

	_, _, err = runLedgr(t, "", "-C", dir, "add", "--name", "X", "--value", "1", "--category", "x", "--date", "10.01.2025")
	assert.ErrorContains(t, err, "YYYY-MM-DD")

	_, _, err = runLedgr(t, "", "-C", dir, "add", "--name", "X", "--value", "1")
	assert.Error(t, err)

	out, _, err := runLedgr(t, "", "-C", dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No entries.")

	_, errOut, err := runLedgr(t, "", "-C", dir, "add",
		"--name", "Fee", "--value", "-2", "--category", "Bank", "--account", "bank", "--field", "memo=x")
	require.NoError(t, err)
	assert.Contains(t, errOut, "warning:")
}

func TestRemove(t *testing.T) {
	dir := initWorkspace(t)
	out, _, err := runLedgr(t, "", "-C", dir, "add", "--name", "Dues", "--value", "10", "--category", "Income")
	require.NoError(t, err)
	id := strings.Fields(out)[1]

	out, _, err = runLedgr(t, "", "-C", dir, "remove", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 entries")

	_, _, err = runLedgr(t, "", "-C", dir, "remove", id)
	assert.ErrorIs(t, err, book.ErrEntryNotFound)
}

func TestPointsAndStartValues(t *testing.T) {
	dir := initWorkspace(t)

	out, _, err := runLedgr(t, "", "-C", dir, "point", "add", "Q1", "--date", "2025-03-31", "--active")
	require.NoError(t, err)
	assert.Contains(t, out, `Added reading point "Q1" on 2025-03-31`)
	_, _, err = runLedgr(t, "", "-C", dir, "point", "add", "Draft", "--date", "2025-04-01", "--hidden")
	require.NoError(t, err)

	out, _, err = runLedgr(t, "", "-C", dir, "point", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Q1")
	assert.NotContains(t, out, "Draft")

	out, _, err = runLedgr(t, "", "-C", dir, "point", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Draft")

	_, _, err = runLedgr(t, "", "-C", dir, "add", "--name", "Dues", "--value", "10", "--date", "2025-01-10", "--category", "Income")
	require.NoError(t, err)
	out, _, err = runLedgr(t, "", "-C", dir, "balance", "--periods")
	require.NoError(t, err)
	assert.Contains(t, out, "READING POINT")
	assert.Contains(t, out, "2025-03-31")

	_, _, err = runLedgr(t, "", "-C", dir, "point", "remove", "Draft")
	require.NoError(t, err)
	_, _, err = runLedgr(t, "", "-C", dir, "point", "remove", "Draft")
	assert.ErrorIs(t, err, book.ErrPointNotFound)

	out, _, err = runLedgr(t, "", "-C", dir, "start-value", "cash", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "Start value of cash set to 50.00 EUR")

	_, _, err = runLedgr(t, "", "-C", dir, "start-value", "vault", "5")
	assert.ErrorIs(t, err, book.ErrUnknownAccount)
	_, _, err = runLedgr(t, "", "-C", dir, "start-value", "cash")
	assert.Error(t, err)
	_, _, err = runLedgr(t, "", "-C", dir, "start-value", "cash", "5", "--clear")
	assert.Error(t, err)

	doc, err := document.Load(filepath.Join(dir, "journal.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "50", doc.StartValues["cash"])
	require.Len(t, doc.ReadingPoints, 1)
	assert.Equal(t, "Q1", doc.ReadingPoints[0].Name)

	out, _, err = runLedgr(t, "", "-C", dir, "start-value", "cash", "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared start value of cash")
}

func TestRenameDescribe(t *testing.T) {
	dir := initWorkspace(t)
	_, _, err := runLedgr(t, "", "-C", dir, "rename", "Go club")
	require.NoError(t, err)
	_, _, err = runLedgr(t, "", "-C", dir, "describe", "Season 2025")
	require.NoError(t, err)

	doc, err := document.Load(filepath.Join(dir, "journal.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Go club", doc.Name)
	assert.Equal(t, "Season 2025", doc.Description)

	records, err := auditlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "cli", records[0].Source)
	assert.Equal(t, "do", records[0].Action)
	assert.Equal(t, `rename journal to "Go club"`, records[0].Description)
}

func copyFixture(t *testing.T, dst string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "importer", "testdata", "chase_checking.csv"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dst, data, 0o644))
}

func TestImport(t *testing.T) {
	dir := initWorkspace(t)
	require.NoError(t, importer.SaveRules(filepath.Join(dir, importer.RulesFile), []importer.Rule{
		{Match: "github", Category: "Expenses:Software"},
		{Match: "invoice", Category: "Income:Consulting"},
	}))
	copyFixture(t, filepath.Join(dir, "import", "chase_checking.csv"))

	out, _, err := runLedgr(t, "", "-C", dir, "import", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "would import 6 entries")
	_, err = os.Stat(filepath.Join(dir, "import", "chase_checking.csv"))
	require.NoError(t, err, "dry run leaves the file in place")

	out, _, err = runLedgr(t, "", "-C", dir, "import")
	require.NoError(t, err)
	assert.Contains(t, out, "chase_checking.csv: imported 6 entries (0 already present)")

	processed := filepath.Join(dir, "import", "processed", "chase_checking.csv")
	_, err = os.Stat(processed)
	require.NoError(t, err)

	out, _, err = runLedgr(t, "", "-C", dir, "import")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to import.")

	out, _, err = runLedgr(t, "", "-C", dir, "import", processed)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 0 entries (6 already present)")

	out, _, err = runLedgr(t, "", "-C", dir, "list", "--category", "Expenses:Software")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "GITHUB"))

	out, _, err = runLedgr(t, "", "-C", dir, "list", "--category", "Uncategorized")
	require.NoError(t, err)
	assert.Contains(t, out, "AWS EMEA")

	_, _, err = runLedgr(t, "", "-C", dir, "import", "--format", "ofx")
	assert.ErrorContains(t, err, "unknown format")
}

func TestShell(t *testing.T) {
	dir := initWorkspace(t)
	script := strings.Join([]string{
		`add --name "Club dues" --value 10 --category Income --date 2025-01-01`,
		`rename 'Go club'`,
		`history`,
		`undo`,
		`undo`,
		`redo`,
		`bogus`,
		`add --name "unterminated`,
		``,
		`exit`,
		`rename Never`,
	}, "\n")

	out, errOut, err := runLedgr(t, script, "-C", dir, "shell")
	require.NoError(t, err)
	assert.Contains(t, out, `Added`)
	assert.Contains(t, out, `Journal renamed to "Go club"`)
	assert.Contains(t, out, `rename journal to "Go club"`)
	assert.Contains(t, out, `Undo rename journal to "Go club"`)
	assert.Contains(t, out, `Undo add entry "Club dues"`)
	assert.Contains(t, out, `Redo add entry "Club dues"`)
	assert.Contains(t, errOut, `unknown command "bogus"`)
	assert.Contains(t, errOut, "parsing line")

	doc, err := document.Load(filepath.Join(dir, "journal.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Chess club", doc.Name)
	require.Len(t, doc.Entries, 1)
	assert.Equal(t, "Club dues", doc.Entries[0].Name)

	records, err := auditlog.Read(dir)
	require.NoError(t, err)
	var actions []string
	for _, r := range records {
		assert.Equal(t, "shell", r.Source)
		actions = append(actions, r.Action)
	}
	assert.Equal(t, []string{"do", "do", "undo", "undo", "redo"}, actions)
}

func TestShell_EndOfInput(t *testing.T) {
	dir := initWorkspace(t)
	_, _, err := runLedgr(t, "rename Chess\n", "-C", dir, "shell")
	require.NoError(t, err)

	doc, err := document.Load(filepath.Join(dir, "journal.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Chess", doc.Name)
}

func TestSQLiteBackend(t *testing.T) {
	dir := initWorkspace(t, "--backend", "sqlite")
	_, err := os.Stat(filepath.Join(dir, "ledgr.db"))
	require.NoError(t, err)

	_, _, err = runLedgr(t, "", "-C", dir, "add", "--name", "Dues", "--value", "12.5", "--category", "Income")
	require.NoError(t, err)

	out, _, err := runLedgr(t, "", "-C", dir, "balance")
	require.NoError(t, err)
	assert.Contains(t, out, "Overall: 12.50 EUR")
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line    string
		want    []string
		wantErr bool
	}{
		{line: "", want: nil},
		{line: "  list  ", want: []string{"list"}},
		{line: `add --name "Club dues" --value 10`, want: []string{"add", "--name", "Club dues", "--value", "10"}},
		{line: `rename 'it''s'`, want: []string{"rename", "its"}},
		{line: `describe "say \"hi\""`, want: []string{"describe", `say "hi"`}},
		{line: `a\ b c`, want: []string{"a b", "c"}},
		{line: `'a\b'`, want: []string{`a\b`}},
		{line: `"open`, wantErr: true},
		{line: `trailing\`, wantErr: true},
		{line: `list | head`, wantErr: true},
		{line: `rename a;b`, wantErr: true},
		{line: `describe "a;b"`, want: []string{"describe", "a;b"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := splitArgs(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
