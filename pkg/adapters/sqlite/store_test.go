package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/aretw0/netspec/internal/testutils"
	"github.com/aretw0/netspec/pkg/codec"
	"github.com/aretw0/netspec/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "specs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestSQLiteStore_Contract(t *testing.T) {
	ports.RunSpecStoreContract(t, openTempStore(t))
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "specs.db")
	ctx := context.Background()
	ms := testutils.TaggerParserSpec()

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, "en", ms))
	require.NoError(t, first.Close())

	// migrations must be a no-op the second time
	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()

	loaded, err := second.Load(ctx, "en")
	require.NoError(t, err)
	assert.Equal(t, ms, loaded)
}

func TestSQLiteStore_ReadsJSONRows(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	ms := testutils.TaggerParserSpec()

	payload, err := codec.Marshal(codec.JSON, ms)
	require.NoError(t, err)
	_, err = store.sqlDB.ExecContext(ctx,
		`INSERT INTO specs (name, format, payload, updated_at) VALUES (?, ?, ?, 0)`,
		"imported", "json", payload)
	require.NoError(t, err)

	loaded, err := store.Load(ctx, "imported")
	require.NoError(t, err)
	assert.Equal(t, ms, loaded)
}

func TestSQLiteStore_UnknownRowFormat(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	_, err := store.sqlDB.ExecContext(ctx,
		`INSERT INTO specs (name, format, payload, updated_at) VALUES (?, ?, ?, 0)`,
		"odd", "toml", []byte("x"))
	require.NoError(t, err)

	_, err = store.Load(ctx, "odd")
	assert.ErrorIs(t, err, codec.ErrUnknownFormat)
}

func TestSQLiteStore_CanceledContext(t *testing.T) {
	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Save(ctx, "en", testutils.TaggerParserSpec()), context.Canceled)
}

func TestUpSection(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (x);\n-- +migrate Down\nDROP TABLE a;\n"
	assert.Equal(t, "\nCREATE TABLE a (x);\n", upSection(content))
	assert.Equal(t, "CREATE TABLE b (y);", upSection("CREATE TABLE b (y);"))
}

func TestApplyMigrations_OrderAndOnce(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"0002_seed.sql":  {Data: []byte("INSERT INTO extra (v) VALUES ('seeded');")},
		"0001_extra.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE extra (v TEXT);\n-- +migrate Down\nDROP TABLE extra;")},
		"README.md":      {Data: []byte("ignored")},
	}

	require.NoError(t, ApplyMigrations(ctx, store.sqlDB, fsys, "."))
	require.NoError(t, ApplyMigrations(ctx, store.sqlDB, fsys, "."))

	var count int
	require.NoError(t, store.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM extra`).Scan(&count))
	assert.Equal(t, 1, count, "seed migration must run once")
}

func TestApplyMigrations_NilDB(t *testing.T) {
	assert.Error(t, ApplyMigrations(context.Background(), nil, fstest.MapFS{}, "."))
}
