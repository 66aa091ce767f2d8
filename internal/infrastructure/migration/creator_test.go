package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"create financial documents", "create_financial_documents"},
		{"Create-Document-Lines", "create_document_lines"},
		{"CREATE_EVENT_OUTBOX", "create_event_outbox"},
		{"add  vat  column", "add_vat_column"},
		{"Add Payment Records 2026", "add_payment_records_2026"},
		{"   indexes   ", "indexes"},
		{"drop!@#$temp", "droptemp"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, slugify(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "create financial documents", "Quotes and invoices with computed totals")
	require.NoError(t, err)
	require.NotNil(t, mf)

	// Version is the 14-digit timestamp prefix
	assert.Len(t, mf.Version, len(versionLayout))

	assert.True(t, strings.HasSuffix(mf.UpPath, "_create_financial_documents.up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, "_create_financial_documents.down.sql"))

	upBase := strings.TrimSuffix(filepath.Base(mf.UpPath), ".up.sql")
	downBase := strings.TrimSuffix(filepath.Base(mf.DownPath), ".down.sql")
	assert.Equal(t, upBase, downBase)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: create financial documents")
	assert.Contains(t, string(up), "Quotes and invoices with computed totals")
	assert.Contains(t, string(up), "Write your UP migration SQL here")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(Rollback)")
	assert.Contains(t, string(down), "Write your DOWN migration SQL here")
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "db", "migrations")

	mf, err := CreateMigration(nested, "create document sequences", "Per-company numbering")
	require.NoError(t, err)
	require.NotNil(t, mf)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()

	pairs := []string{
		"20260110090000_create_financial_documents",
		"20260110090100_create_document_lines",
		"20260110090200_create_document_sequences",
	}
	for _, base := range pairs {
		for _, suffix := range []string{".up.sql", ".down.sql"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, base+suffix), []byte("-- sql"), 0o644))
		}
	}

	got, err := ListMigrations(dir)
	require.NoError(t, err)
	// One entry per pair, in version order
	assert.Equal(t, pairs, got)
}

func TestListMigrations_EmptyDirectory(t *testing.T) {
	got, err := ListMigrations(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	got, err := ListMigrations(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListMigrations_SkipsUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()

	files := []string{
		"20260110090300_create_event_outbox.up.sql",
		"20260110090300_create_event_outbox.down.sql",
		"README.md",
		"schema.dump",
		".gitkeep",
	}
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644))
	}
	// A directory whose name looks like a migration must be ignored too
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.up.sql"), 0o755))

	got, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"20260110090300_create_event_outbox"}, got)
}
