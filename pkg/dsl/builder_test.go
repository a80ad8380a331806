package dsl

import (
	"testing"

	"github.com/aretw0/netspec/internal/testutils"
	"github.com/aretw0/netspec/internal/validator"
	"github.com/aretw0/netspec/pkg/registry"
	"github.com/aretw0/netspec/pkg/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taggerParser() *Builder {
	b := New()
	b.Add("tagger").
		TransitionSystem("tagger").
		Resource("tag-map", Part("/data/en/tag-map", "text", "")).
		Resource("word-embeddings", Part("/data/en/embeddings.sstable", "sstable", "dist_belief.TokenEmbedding")).
		Fixed("words", "input.word input(1).word input(-1).word", 64, 20000, 3, Pretrained("word-embeddings")).
		Fixed("suffix", "input.suffix(length=3)", 16, 5000, 1).
		Network("FeedForwardNetwork", Params{"hidden_layer_sizes": "64"}).
		Backend("SyntaxNetComponent").
		Actions(45).
		Builder("DynamicComponentBuilder")

	b.Add("parser").
		TransitionSystem("arc-standard").
		Fixed("stack-words", "stack.word stack(1).word", 32, 20000, 2).
		Fixed("labels", "stack.child(1).label", spec.NotEmbedded, 40, 1).
		Linked("tagger", "input.focus stack.focus", 32, 2, "identity", "layer_0").
		Network("FeedForwardNetwork", Params{"hidden_layer_sizes": "256,256"}, Params{"layer_norm_hidden": "true"}).
		Backend("SyntaxNetComponent").
		Actions(93)
	return b
}

func TestBuilder_TaggerParser(t *testing.T) {
	ms, err := taggerParser().Build(WithRegistry(registry.Default()))
	require.NoError(t, err)

	want := testutils.TaggerParserSpec()
	// the fixture sets the flag explicitly
	want.Component[0].FixedFeature[1].IsConstant = nil
	assert.Equal(t, want, ms)
}

func TestBuilder_KeepsInsertionOrder(t *testing.T) {
	b := New()
	for _, name := range []string{"c", "a", "b"} {
		b.Add(name).TransitionSystem("shift-only").Network("IdentityNetwork")
	}
	assert.Equal(t, []string{"c", "a", "b"}, b.Spec().Names())
}

func TestBuilder_AddResumesExisting(t *testing.T) {
	b := taggerParser()
	b.Add("tagger").Attention("parser")
	b.Add("tagger").Actions(12)

	ms := b.Spec()
	require.Len(t, ms.Component, 2)
	assert.Equal(t, int32(12), ms.Component[0].GetNumActions())
	assert.Equal(t, "parser", ms.Component[0].GetAttentionComponent())
}

func TestBuilder_BuildValidates(t *testing.T) {
	b := taggerParser()
	b.Add("morpher").
		TransitionSystem("morpher").
		Linked("morpher", "input.focus", 8, 1, "history", "lstm_h").
		Network("LSTMNetwork")

	_, err := b.Build()
	require.ErrorIs(t, err, validator.ErrInvalid)
	assert.Len(t, validator.Issues(err), 1)

	ms, err := b.Build(AllowSelfLinks())
	require.NoError(t, err)
	assert.Len(t, ms.Component, 3)

	assert.Panics(t, func() { b.MustBuild() })
}

func TestBuilder_ResultIsDetached(t *testing.T) {
	b := taggerParser()
	ms := b.MustBuild()
	ms.Component[0].NetworkUnit.Parameters["hidden_layer_sizes"] = "1"

	again := b.MustBuild()
	assert.Equal(t, "64", again.Component[0].GetNetworkUnit().GetParameters()["hidden_layer_sizes"])
}

func TestBuilder_FixedOptions(t *testing.T) {
	ms := New().
		Add("tagger").
		TransitionSystem("tagger").
		Resource("vocab", Part("/data/vocab", "text", "")).
		Fixed("words", "input.word", 8, 100, 1, Vocab("vocab"), Constant(), PredicateMap("hashed")).
		Network("IdentityNetwork").
		Builder("BulkFeatureExtractorComponentBuilder").
		builder.DebugTracing().
		MustBuild()

	f := ms.Component[0].FixedFeature[0]
	assert.Equal(t, "vocab", f.GetVocab().GetName())
	assert.True(t, f.GetIsConstant())
	assert.Equal(t, "hashed", f.GetPredicateMap())
	assert.True(t, ms.GetDebugTracing())
}
