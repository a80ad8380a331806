package registry_test

import (
	"sync"
	"testing"

	"github.com/aretw0/netspec/pkg/registry"
	"github.com/aretw0/netspec/pkg/schema"
	"github.com/aretw0/netspec/pkg/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func module(name string, params map[string]string) *spec.RegisteredModuleSpec {
	return &spec.RegisteredModuleSpec{RegisteredName: spec.Ptr(name), Parameters: params}
}

func TestDefault_StockNames(t *testing.T) {
	r := registry.Default()

	assert.Equal(t,
		[]string{"arc-standard", "heads", "labels", "morpher", "shift-only", "tagger"},
		r.Names(registry.KindTransitionSystem))
	assert.Equal(t,
		[]string{"BiaffineDigraphNetwork", "BiaffineLabelNetwork", "ConvNetwork", "FeedForwardNetwork", "IdentityNetwork", "LSTMNetwork"},
		r.Names(registry.KindNetworkUnit))
	assert.Equal(t, []string{"StatelessComponent", "SyntaxNetComponent"}, r.Names(registry.KindBackend))
	assert.Len(t, r.Names(registry.KindComponentBuilder), 4)
}

func TestCheck(t *testing.T) {
	r := registry.Default()

	t.Run("known module with valid params", func(t *testing.T) {
		err := r.Check(registry.KindNetworkUnit, module("FeedForwardNetwork", map[string]string{
			"hidden_layer_sizes": "256,256",
			"layer_norm_hidden":  "true",
			"nonlinearity":       "elu",
		}))
		assert.NoError(t, err)
	})

	t.Run("nil selector", func(t *testing.T) {
		assert.NoError(t, r.Check(registry.KindComponentBuilder, nil))
	})

	t.Run("unknown name", func(t *testing.T) {
		err := r.Check(registry.KindNetworkUnit, module("TransformerNetwork", nil))
		assert.ErrorIs(t, err, registry.ErrUnknownModule)
	})

	t.Run("name registered under another kind", func(t *testing.T) {
		err := r.Check(registry.KindBackend, module("tagger", nil))
		assert.ErrorIs(t, err, registry.ErrUnknownModule)
	})

	t.Run("bad param value", func(t *testing.T) {
		err := r.Check(registry.KindNetworkUnit, module("FeedForwardNetwork", map[string]string{
			"hidden_layer_sizes": "wide",
		}))
		require.Error(t, err)
		errs := schema.ValidationErrors(err)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Error(), "hidden_layer_sizes")
	})

	t.Run("strict rejects undeclared params", func(t *testing.T) {
		err := r.Check(registry.KindNetworkUnit, module("IdentityNetwork", map[string]string{"size": "3"}))
		assert.Error(t, err)
	})

	t.Run("lenient accepts undeclared params", func(t *testing.T) {
		err := r.Check(registry.KindTransitionSystem, module("arc-standard", map[string]string{"language": "en"}))
		assert.NoError(t, err)
	})

	t.Run("required param", func(t *testing.T) {
		err := r.Check(registry.KindNetworkUnit, module("BiaffineLabelNetwork", nil))
		assert.Error(t, err)
	})

	t.Run("unknown kind", func(t *testing.T) {
		err := r.Check(registry.Kind("optimizer"), module("adam", nil))
		assert.ErrorIs(t, err, registry.ErrUnknownKind)
	})
}

func TestRegister(t *testing.T) {
	r := registry.New()

	require.NoError(t, r.Register(registry.KindBackend, "Custom", registry.Entry{Description: "test"}))
	e, ok := r.Lookup(registry.KindBackend, "Custom")
	require.True(t, ok)
	assert.Equal(t, "test", e.Description)

	assert.ErrorIs(t, r.Register(registry.Kind("nope"), "x", registry.Entry{}), registry.ErrUnknownKind)
	assert.Error(t, r.Register(registry.KindBackend, "", registry.Entry{}))
}

func TestSnapshot_IsACopy(t *testing.T) {
	r := registry.Default()
	snap := r.Snapshot()
	delete(snap[registry.KindBackend], "SyntaxNetComponent")

	_, ok := r.Lookup(registry.KindBackend, "SyntaxNetComponent")
	assert.True(t, ok)
}

func TestLoadYAML(t *testing.T) {
	r := registry.Default()
	err := r.LoadYAML([]byte(`
network_unit:
  GatedNetwork:
    description: gated feed-forward
    strict: true
    params:
      hidden_layer_sizes: "[int]"
      gate: "one_of(sigmoid|hard)?"
`))
	require.NoError(t, err)

	assert.NoError(t, r.Check(registry.KindNetworkUnit, module("GatedNetwork", map[string]string{"hidden_layer_sizes": "8"})))
	assert.Error(t, r.Check(registry.KindNetworkUnit, module("GatedNetwork", map[string]string{"hidden_layer_sizes": "8", "gate": "soft"})))

	assert.Error(t, r.LoadYAML([]byte("optimizer:\n  adam: {}\n")))
	assert.Error(t, r.LoadYAML([]byte("network_unit:\n  Bad:\n    params:\n      x: \"complex\"\n")))
}

func TestConcurrentAccess(t *testing.T) {
	r := registry.Default()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = r.Register(registry.KindBackend, "Concurrent", registry.Entry{})
		}()
		go func() {
			defer wg.Done()
			_ = r.Check(registry.KindNetworkUnit, module("IdentityNetwork", nil))
		}()
	}
	wg.Wait()
	_, ok := r.Lookup(registry.KindBackend, "Concurrent")
	assert.True(t, ok)
}
