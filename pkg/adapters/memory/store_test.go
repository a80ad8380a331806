package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/netspec/internal/testutils"
	"github.com/aretw0/netspec/pkg/adapters/memory"
	"github.com/aretw0/netspec/pkg/ports"
	"github.com/aretw0/netspec/pkg/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSpecStoreContract(t, store)
}

func TestMemoryStore_Seed(t *testing.T) {
	seed := testutils.TaggerParserSpec()
	store := memory.NewStore(map[string]*spec.MasterSpec{"en": seed})

	seed.Component = nil
	loaded, err := store.Load(context.Background(), "en")
	require.NoError(t, err)
	assert.Len(t, loaded.Component, 2)
}
