package ports_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/netspec/pkg/adapters/memory"
	"github.com/aretw0/netspec/pkg/ports"
	"github.com/aretw0/netspec/pkg/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	valid := []string{"en", "en_v2", "parser-1.0", "A"}
	for _, name := range valid {
		assert.NoError(t, ports.ValidateName(name), name)
	}

	invalid := []string{"", ".hidden", "-flag", "a/b", "../escape", "with space", strings.Repeat("x", 129)}
	for _, name := range invalid {
		assert.ErrorIs(t, ports.ValidateName(name), ports.ErrInvalidName, name)
	}
}

func TestReadOnly(t *testing.T) {
	ctx := context.Background()
	ms := &spec.MasterSpec{DebugTracing: spec.Ptr(true)}
	store := ports.ReadOnly(memory.NewStore(map[string]*spec.MasterSpec{"en": ms}))

	loaded, err := store.Load(ctx, "en")
	require.NoError(t, err)
	assert.Equal(t, ms, loaded)

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"en"}, names)

	assert.ErrorIs(t, store.Save(ctx, "en", ms), ports.ErrReadOnly)
	assert.ErrorIs(t, store.Delete(ctx, "en"), ports.ErrReadOnly)
}

func TestDescribe_NoDescriber(t *testing.T) {
	_, ok, err := ports.Describe(context.Background(), memory.NewStore(), "en")
	require.NoError(t, err)
	assert.False(t, ok)
}
