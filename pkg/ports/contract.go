package ports

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/aretw0/netspec/pkg/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractSpec() *spec.MasterSpec {
	return &spec.MasterSpec{
		DebugTracing: spec.Ptr(false),
		Component: []*spec.ComponentSpec{
			{
				Name:             spec.Ptr("tagger"),
				TransitionSystem: &spec.RegisteredModuleSpec{RegisteredName: spec.Ptr("tagger")},
				FixedFeature: []*spec.FixedFeatureChannel{{
					Name:           spec.Ptr("words"),
					Fml:            spec.Ptr("input.word"),
					EmbeddingDim:   spec.Ptr(int32(32)),
					VocabularySize: spec.Ptr(int32(100)),
					Size:           spec.Ptr(int32(1)),
				}},
				NetworkUnit: &spec.RegisteredModuleSpec{
					RegisteredName: spec.Ptr("FeedForwardNetwork"),
					Parameters:     map[string]string{"hidden_layer_sizes": "16"},
				},
				NumActions: spec.Ptr(int32(0)),
			},
		},
	}
}

// RunSpecStoreContract runs a suite of tests to verify that a SpecStore
// implementation adheres to the interface contract.
func RunSpecStoreContract(t *testing.T, store SpecStore) {
	t.Helper()
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		name := prefix + "-save"
		ms := contractSpec()

		require.NoError(t, store.Save(ctx, name, ms), "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, ms, loaded, "explicitly set defaults must survive storage")
	})

	t.Run("Save copies", func(t *testing.T) {
		name := prefix + "-copy"
		ms := contractSpec()
		require.NoError(t, store.Save(ctx, name, ms))

		ms.Component[0].Name = spec.Ptr("mutated")
		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, "tagger", loaded.Component[0].GetName())

		loaded.Component[0].NetworkUnit.Parameters["hidden_layer_sizes"] = "1"
		again, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, "16", again.Component[0].GetNetworkUnit().GetParameters()["hidden_layer_sizes"])
	})

	t.Run("Overwrite", func(t *testing.T) {
		name := prefix + "-overwrite"
		require.NoError(t, store.Save(ctx, name, contractSpec()))

		next := contractSpec()
		next.Component[0].NumActions = spec.Ptr(int32(7))
		require.NoError(t, store.Save(ctx, name, next))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, int32(7), loaded.Component[0].GetNumActions())
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, prefix+"-missing")
		assert.ErrorIs(t, err, ErrSpecNotFound)
	})

	t.Run("Invalid Name", func(t *testing.T) {
		assert.ErrorIs(t, store.Save(ctx, "../escape", contractSpec()), ErrInvalidName)
		_, err := store.Load(ctx, "")
		assert.Error(t, err)
	})

	t.Run("Delete", func(t *testing.T) {
		name := prefix + "-delete"
		require.NoError(t, store.Save(ctx, name, contractSpec()))

		require.NoError(t, store.Delete(ctx, name), "Delete should not return error")

		_, err := store.Load(ctx, name)
		assert.ErrorIs(t, err, ErrSpecNotFound, "Load after Delete should return ErrSpecNotFound")

		assert.NoError(t, store.Delete(ctx, name), "Delete is idempotent")
	})

	t.Run("List", func(t *testing.T) {
		names := []string{prefix + "-list-b", prefix + "-list-a"}
		for _, n := range names {
			require.NoError(t, store.Save(ctx, n, contractSpec()))
		}
		defer func() {
			for _, n := range names {
				_ = store.Delete(ctx, n)
			}
		}()

		listed, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, listed, names[0])
		assert.Contains(t, listed, names[1])
		assert.True(t, sort.StringsAreSorted(listed), "List must be sorted: %v", listed)
	})

	t.Run("Concurrent Save", func(t *testing.T) {
		done := make(chan error, 4)
		for i := 0; i < 4; i++ {
			go func(i int) {
				ms := contractSpec()
				ms.Component[0].NumActions = spec.Ptr(int32(i))
				done <- store.Save(ctx, fmt.Sprintf("%s-concurrent-%d", prefix, i), ms)
			}(i)
		}
		for i := 0; i < 4; i++ {
			require.NoError(t, <-done)
		}
	})
}
