package validator

import (
	"math"
	"testing"

	"github.com/aretw0/netspec/internal/testutils"
	"github.com/aretw0/netspec/pkg/registry"
	"github.com/aretw0/netspec/pkg/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paths(err error) []string {
	var out []string
	for _, is := range Issues(err) {
		out = append(out, is.Path)
	}
	return out
}

func TestMasterSpec_Valid(t *testing.T) {
	ms := testutils.TaggerParserSpec()
	assert.NoError(t, MasterSpec(ms))
	assert.NoError(t, MasterSpec(ms, WithRegistry(registry.Default())))
}

func TestMasterSpec_DoesNotMutate(t *testing.T) {
	ms := testutils.TaggerParserSpec()
	ms.Component[1].LinkedFeature[0].SourceComponent = spec.Ptr("ghost")
	before := ms.Clone()

	require.Error(t, MasterSpec(ms))
	assert.Equal(t, before, ms)
}

func TestMasterSpec_Empty(t *testing.T) {
	err := MasterSpec(&spec.MasterSpec{})
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, []string{"component"}, paths(err))
}

func TestMasterSpec_Names(t *testing.T) {
	ms := testutils.TaggerParserSpec()
	ms.Component[1].Name = spec.Ptr("tagger")
	ms.Component[1].LinkedFeature = nil
	ms.Component = append(ms.Component, &spec.ComponentSpec{
		TransitionSystem: &spec.RegisteredModuleSpec{RegisteredName: spec.Ptr("shift-only")},
		NetworkUnit:      &spec.RegisteredModuleSpec{RegisteredName: spec.Ptr("IdentityNetwork")},
	})

	err := MasterSpec(ms)
	assert.Equal(t, []string{"component[1].name", "component[2].name"}, paths(err))
	assert.Contains(t, err.Error(), "first at component[0]")
}

func TestMasterSpec_LinkedSourceOrder(t *testing.T) {
	t.Run("later component is representable but flagged", func(t *testing.T) {
		ms := testutils.TaggerParserSpec()
		ms.Component[0].LinkedFeature = []*spec.LinkedFeatureChannel{{
			Name:             spec.Ptr("parser"),
			EmbeddingDim:     spec.Ptr(int32(8)),
			Size:             spec.Ptr(int32(1)),
			SourceComponent:  spec.Ptr("parser"),
			SourceTranslator: spec.Ptr("identity"),
			SourceLayer:      spec.Ptr("layer_0"),
		}}
		err := MasterSpec(ms)
		assert.Equal(t, []string{"component[0].linked_feature[0].source_component"}, paths(err))
	})

	t.Run("unknown component", func(t *testing.T) {
		ms := testutils.TaggerParserSpec()
		ms.Component[1].LinkedFeature[0].SourceComponent = spec.Ptr("morpher")
		err := MasterSpec(ms)
		assert.Equal(t, []string{"component[1].linked_feature[0].source_component"}, paths(err))
	})

	t.Run("self link rejected by default", func(t *testing.T) {
		ms := testutils.TaggerParserSpec()
		ms.Component[1].LinkedFeature[0].SourceComponent = spec.Ptr("parser")
		err := MasterSpec(ms)
		assert.Equal(t, []string{"component[1].linked_feature[0].source_component"}, paths(err))
		assert.Contains(t, err.Error(), "own component")

		assert.NoError(t, MasterSpec(ms, AllowSelfLinks()))
	})
}

func TestMasterSpec_ChannelBounds(t *testing.T) {
	ms := testutils.TaggerParserSpec()
	words := ms.Component[0].FixedFeature[0]
	words.VocabularySize = spec.Ptr(int32(0))
	words.Size = spec.Ptr(int32(-2))
	words.EmbeddingDim = spec.Ptr(int32(0))

	link := ms.Component[1].LinkedFeature[0]
	link.EmbeddingDim = spec.Ptr(int32(-5))
	link.SourceTranslator = nil
	link.SourceLayer = spec.Ptr("")
	link.Size = nil

	err := MasterSpec(ms)
	assert.ElementsMatch(t, []string{
		"component[0].fixed_feature[0].vocabulary_size",
		"component[0].fixed_feature[0].size",
		"component[0].fixed_feature[0].embedding_dim",
		"component[1].linked_feature[0].size",
		"component[1].linked_feature[0].embedding_dim",
		"component[1].linked_feature[0].source_translator",
		"component[1].linked_feature[0].source_layer",
	}, paths(err))
}

func TestMasterSpec_NotEmbeddedIsAllowed(t *testing.T) {
	ms := testutils.TaggerParserSpec()
	ms.Component[1].LinkedFeature[0].EmbeddingDim = spec.Ptr(spec.NotEmbedded)
	assert.NoError(t, MasterSpec(ms))
}

func TestMasterSpec_Resources(t *testing.T) {
	ms := testutils.TaggerParserSpec()
	tagger := ms.Component[0]
	tagger.Resource = append(tagger.Resource,
		&spec.Resource{Name: spec.Ptr("tag-map"), Part: []*spec.Part{{FilePattern: spec.Ptr("/x")}}},
		&spec.Resource{Name: spec.Ptr("empty")},
	)
	tagger.FixedFeature[1].Vocab = &spec.Resource{Name: spec.Ptr("suffix-table")}

	err := MasterSpec(ms)
	assert.Equal(t, []string{
		"component[0].resource[2].name",
		"component[0].resource[3].part",
		"component[0].fixed_feature[1].vocab.name",
	}, paths(err))
}

func TestMasterSpec_Selectors(t *testing.T) {
	ms := testutils.TaggerParserSpec()
	ms.Component[0].TransitionSystem = nil
	ms.Component[1].NumActions = spec.Ptr(int32(-1))

	err := MasterSpec(ms)
	assert.Equal(t, []string{
		"component[0].transition_system.registered_name",
		"component[1].num_actions",
	}, paths(err))
}

func TestMasterSpec_Registry(t *testing.T) {
	ms := testutils.TaggerParserSpec()
	ms.Component[0].Backend.RegisteredName = spec.Ptr("RemoteComponent")
	ms.Component[1].NetworkUnit.Parameters["hidden_layer_sizes"] = "wide"

	assert.NoError(t, MasterSpec(ms), "selectors are not resolved without a registry")

	err := MasterSpec(ms, WithRegistry(registry.Default()))
	assert.Equal(t, []string{"component[0].backend", "component[1].network_unit"}, paths(err))
}

func TestMasterSpec_AttentionComponent(t *testing.T) {
	ms := testutils.TaggerParserSpec()
	ms.Component[1].AttentionComponent = spec.Ptr("tagger")
	assert.NoError(t, MasterSpec(ms))

	ms.Component[0].AttentionComponent = spec.Ptr("parser")
	assert.Equal(t, []string{"component[0].attention_component"}, paths(MasterSpec(ms)))
}

func TestGridPoint(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, GridPoint(&spec.GridPoint{}))
		assert.NoError(t, GridPoint(spec.DefaultGridPoint()))
	})

	t.Run("deep composite is valid", func(t *testing.T) {
		assert.NoError(t, GridPoint(testutils.CompositeGridPoint(6)))
	})

	t.Run("ranges", func(t *testing.T) {
		gp := &spec.GridPoint{
			LearningMethod:              spec.Ptr("sgd"),
			DropoutRate:                 spec.Ptr(0.0),
			RecurrentDropoutRate:        spec.Ptr(1.5),
			DecaySteps:                  spec.Ptr(int32(0)),
			AdamBeta1:                   spec.Ptr(1.0),
			AdamBeta2:                   spec.Ptr(-0.1),
			L2RegularizationCoefficient: spec.Ptr(-1e-4),
			GradientClipNorm:            spec.Ptr(-1.0),
		}
		assert.ElementsMatch(t, []string{
			"learning_method",
			"dropout_rate",
			"recurrent_dropout_rate",
			"decay_steps",
			"adam_beta1",
			"adam_beta2",
			"l2_regularization_coefficient",
			"gradient_clip_norm",
		}, paths(GridPoint(gp)))
	})

	t.Run("non-finite doubles", func(t *testing.T) {
		gp := &spec.GridPoint{
			LearningRate:                spec.Ptr(math.NaN()),
			DropoutRate:                 spec.Ptr(math.NaN()),
			RecurrentDropoutRate:        spec.Ptr(math.NaN()),
			AdamBeta1:                   spec.Ptr(math.NaN()),
			AdamBeta2:                   spec.Ptr(math.NaN()),
			L2RegularizationCoefficient: spec.Ptr(math.Inf(1)),
			GradientClipNorm:            spec.Ptr(math.Inf(1)),
			Momentum:                    spec.Ptr(math.Inf(-1)),
		}
		err := GridPoint(gp)
		assert.ElementsMatch(t, []string{
			"learning_rate",
			"dropout_rate",
			"recurrent_dropout_rate",
			"adam_beta1",
			"adam_beta2",
			"l2_regularization_coefficient",
			"gradient_clip_norm",
			"momentum",
		}, paths(err))
		for _, is := range Issues(err) {
			assert.Contains(t, is.Message, "must be a finite number")
		}
	})

	t.Run("nan inside a composite", func(t *testing.T) {
		gp := testutils.CompositeGridPoint(1)
		gp.CompositeOptimizerSpec.Method1.AdamEps = spec.Ptr(math.NaN())
		assert.Equal(t, []string{"composite_optimizer_spec.method1.adam_eps"}, paths(GridPoint(gp)))
	})

	t.Run("composite needs both methods", func(t *testing.T) {
		gp := &spec.GridPoint{
			LearningMethod:         spec.Ptr(spec.LearningMethodComposite),
			CompositeOptimizerSpec: &spec.CompositeOptimizerSpec{Method1: &spec.GridPoint{}},
		}
		assert.Equal(t, []string{"composite_optimizer_spec.method2"}, paths(GridPoint(gp)))

		gp.CompositeOptimizerSpec = nil
		assert.Equal(t, []string{"composite_optimizer_spec"}, paths(GridPoint(gp)))
	})

	t.Run("nested issues carry the nested path", func(t *testing.T) {
		gp := testutils.CompositeGridPoint(2)
		gp.CompositeOptimizerSpec.Method2.CompositeOptimizerSpec.Method1.AdamBeta2 = spec.Ptr(1.0)
		assert.Equal(t,
			[]string{"composite_optimizer_spec.method2.composite_optimizer_spec.method1.adam_beta2"},
			paths(GridPoint(gp)))
	})

	t.Run("composite spec on a plain method", func(t *testing.T) {
		gp := &spec.GridPoint{CompositeOptimizerSpec: &spec.CompositeOptimizerSpec{}}
		assert.Equal(t, []string{"composite_optimizer_spec"}, paths(GridPoint(gp)))
	})
}

func TestTrainTarget(t *testing.T) {
	ms := testutils.TaggerParserSpec()

	assert.NoError(t, TrainTarget(testutils.JointTarget(), ms))
	assert.NoError(t, TrainTarget(&spec.TrainTarget{Name: spec.Ptr("all")}, ms))

	bad := &spec.TrainTarget{
		Name:              spec.Ptr("bad"),
		ComponentWeights:  []float64{1},
		UnrollUsingOracle: []bool{true, true, true},
		MaxIndex:          spec.Ptr(int32(3)),
	}
	err := TrainTarget(bad, ms)
	assert.Equal(t, []string{"component_weights", "unroll_using_oracle", "max_index"}, paths(err))
	assert.Contains(t, err.Error(), `TrainTarget "bad"`)

	assert.NoError(t, TrainTarget(bad, nil), "lengths need a component count")
	assert.Error(t, TrainTarget(&spec.TrainTarget{MaxIndex: spec.Ptr(int32(-2))}, nil))

	weights := &spec.TrainTarget{ComponentWeights: []float64{math.NaN(), math.Inf(1)}}
	assert.Equal(t, []string{"component_weights[0]", "component_weights[1]"}, paths(TrainTarget(weights, ms)))
}

func TestTrainingGrid(t *testing.T) {
	ms := testutils.TaggerParserSpec()
	g := &spec.TrainingGridSpec{
		Base:   testutils.CompositeGridPoint(1),
		Target: []*spec.TrainTarget{testutils.JointTarget(), testutils.JointTarget()},
	}
	g.Target[1].ComponentWeights = []float64{1}

	err := TrainingGrid(g, ms)
	assert.Equal(t, []string{"target[1].name", "target[1].component_weights"}, paths(err))
}

func TestMessage_Dispatch(t *testing.T) {
	assert.Error(t, Message(&spec.MasterSpec{}))
	assert.Error(t, Message(&spec.GridPoint{LearningMethod: spec.Ptr("sgd")}))
	assert.NoError(t, Message(&spec.Resource{}))
}
