package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/netspec/internal/config"
	"github.com/aretw0/netspec/internal/testutils"
	"github.com/aretw0/netspec/internal/validator"
	"github.com/aretw0/netspec/pkg/observability"
	"github.com/aretw0/netspec/pkg/ports"
	"github.com/aretw0/netspec/pkg/spec"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, uri string, opts StoreOptions) ports.SpecStore {
	t.Helper()
	store, closeFn, err := OpenStore(uri, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })
	return store
}

func TestOpenStore_Schemes(t *testing.T) {
	mr := miniredis.RunT(t)
	dir := t.TempDir()

	uris := map[string]string{
		"mem":       "mem://",
		"file":      "file://" + filepath.Join(dir, "files"),
		"file-json": "file://" + filepath.Join(dir, "json") + "?format=json",
		"bare path": filepath.Join(dir, "bare"),
		"redis":     "redis://" + mr.Addr() + "/0",
		"sqlite":    "sqlite://" + filepath.Join(dir, "specs.db"),
	}
	for name, uri := range uris {
		t.Run(name, func(t *testing.T) {
			store := openStore(t, uri, StoreOptions{Redis: config.Redis{Prefix: "test:"}})
			ports.RunSpecStoreContract(t, store)
		})
	}
}

func TestOpenStore_FileFormatOption(t *testing.T) {
	dir := t.TempDir()
	store := openStore(t, "file://"+dir+"?format=json", StoreOptions{})
	require.NoError(t, store.Save(context.Background(), "en", testutils.TaggerParserSpec()))

	_, err := os.Stat(filepath.Join(dir, "en.json"))
	assert.NoError(t, err)
}

func TestOpenStore_Errors(t *testing.T) {
	for _, uri := range []string{"ftp://host/x", "file://dir?colour=red", "file://dir?format=toml"} {
		_, _, err := OpenStore(uri, StoreOptions{})
		assert.Error(t, err, uri)
	}
}

func TestOpenStore_ValidateGate(t *testing.T) {
	store := openStore(t, "mem://", StoreOptions{Validate: true})
	err := store.Save(context.Background(), "empty", &spec.MasterSpec{})
	assert.ErrorIs(t, err, validator.ErrInvalid)
}

func TestOpenStore_Loam(t *testing.T) {
	dir := t.TempDir()
	doc := "---\ncomponent:\n  - name: tagger\n---\nA tagger.\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tagger.md"), []byte(doc), 0644))

	store := openStore(t, "loam://"+dir, StoreOptions{Validate: true})
	ctx := context.Background()

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"tagger"}, names)

	assert.ErrorIs(t, store.Save(ctx, "x", testutils.TaggerParserSpec()), ports.ErrReadOnly)
}

func TestOpenStore_Metrics(t *testing.T) {
	m := observability.NewMetrics(nil)
	store := openStore(t, "mem://", StoreOptions{Metrics: m})
	_, _ = store.List(context.Background())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOps.WithLabelValues("list", "ok")))
}
