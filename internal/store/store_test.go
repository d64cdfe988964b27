package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgr/internal/config"
	"github.com/cleared-dev/ledgr/internal/document"
)

func sampleDoc() *document.Document {
	return &document.Document{
		Version:     document.Version,
		Name:        "Chess club",
		Description: "Season 2025",
		StartValues: map[string]string{"cash": "120.5", "bank": "-3"},
		ReadingPoints: []document.ReadingPoint{
			{ID: "rp-1", Name: "Q1", Date: "2025-03-31", Visible: true, Active: true},
			{ID: "rp-2", Name: "Q2", Date: "2025-06-30", Visible: false, Active: false},
		},
		Entries: []document.Entry{
			{
				ID: "e-1", Name: "Dues", Value: "100", Currency: "EUR", Date: "2025-01-10",
				Category: []string{"Income", "Dues"}, Account: "bank",
				AccountInfo: map[string]string{"statement": "2025-01"},
			},
			{
				ID: "e-2", Name: "Boards", Value: "-45.99", Currency: "EUR", Date: "2025-02-03T14:30:00Z",
				Category: []string{"Expenses", "Equipment"}, Account: "cash", AdditionalInfo: "two sets",
			},
		},
	}
}

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	dir := t.TempDir()
	db, err := OpenSQLite(filepath.Join(dir, "ledgr.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return map[string]Backend{
		"yaml":   NewFile(filepath.Join(dir, "data", "journal.yaml")),
		"sqlite": db,
	}
}

func TestBackend_SaveLoad(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			want := sampleDoc()
			require.NoError(t, b.Save(ctx, want))

			got, err := b.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestBackend_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.Save(ctx, sampleDoc()))

			smaller := sampleDoc()
			smaller.Entries = smaller.Entries[:1]
			smaller.ReadingPoints = nil
			smaller.StartValues = nil
			require.NoError(t, b.Save(ctx, smaller))

			got, err := b.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, smaller, got)
		})
	}
}

func TestBackend_LoadEmpty(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := b.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, document.Version, got.Version)
			assert.Empty(t, got.Entries)

			j, err := got.Journal(nil)
			require.NoError(t, err)
			assert.Equal(t, 0, j.Len())
		})
	}
}

func TestOpenSQLite_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledgr.db")

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.Save(ctx, sampleDoc()))
	require.NoError(t, db.Close())

	db, err = OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()
	got, err := db.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Entries, 2)
	assert.Equal(t, "Chess club", got.Name)
}

func TestOpen(t *testing.T) {
	root := t.TempDir()

	b, err := Open(root, config.StorageConfig{Backend: config.BackendYAML, Path: "journal.yaml"})
	require.NoError(t, err)
	require.IsType(t, &File{}, b)
	assert.Equal(t, filepath.Join(root, "journal.yaml"), b.(*File).Path())

	b, err = Open(root, config.StorageConfig{Backend: config.BackendSQLite, Path: "db/ledgr.db"})
	require.NoError(t, err)
	defer b.Close()
	require.IsType(t, &SQLite{}, b)
	_, err = os.Stat(filepath.Join(root, "db", "ledgr.db"))
	assert.NoError(t, err)

	_, err = Open(root, config.StorageConfig{Backend: "csv", Path: "x"})
	assert.Error(t, err)
}
