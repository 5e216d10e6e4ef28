package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/qms/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add supplier ratings", "add_supplier_ratings"},
		{"Add-Inspection-Photos", "add_inspection_photos"},
		{"ADD__FINDING__CODES", "add_finding_codes"},
		{"index 2 columns", "index_2_columns"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "special_chars"},
		{"_leading and trailing_", "leading_and_trailing"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_NumbersSequentially(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migrations")

	first, err := CreateMigration(dir, "create suppliers", "Supplier master data")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_create_suppliers.up.sql"), first.UpPath)
	assert.Equal(t, filepath.Join(dir, "000001_create_suppliers.down.sql"), first.DownPath)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- create_suppliers")
	assert.Contains(t, string(up), "-- Supplier master data")

	down, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback of create_suppliers")

	second, err := CreateMigration(dir, "add tags", "")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)

	up, err = os.ReadFile(second.UpPath)
	require.NoError(t, err)
	assert.NotContains(t, string(up), "-- \n")
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_add_findings.up.sql":       {Data: []byte("--")},
		"000001_create_suppliers.up.sql":   {Data: []byte("--")},
		"000001_create_suppliers.down.sql": {Data: []byte("--")},
		"README.md":                        {Data: []byte("docs")},
		"000003_Bad-Name.up.sql":           {Data: []byte("--")},
		"nested/000004_x.up.sql":           {Data: []byte("--")},
	}

	entries, err := ListMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Version: 1, Name: "create_suppliers", HasDown: true},
		{Version: 2, Name: "add_findings"},
	}, entries)
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	entries, err := ListMigrations(os.DirFS(filepath.Join(t.TempDir(), "absent")))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for i, e := range entries {
		assert.Equal(t, uint(i+1), e.Version, "versions are contiguous")
		assert.True(t, e.HasDown, "migration %d has a down file", e.Version)
	}
}
