package testutils

import "github.com/aretw0/netspec/pkg/spec"

// TaggerParserSpec returns a two-stage pipeline: a tagger whose hidden layer
// feeds an arc-standard parser through a linked feature.
func TaggerParserSpec() *spec.MasterSpec {
	return &spec.MasterSpec{
		Component: []*spec.ComponentSpec{
			{
				Name: spec.Ptr("tagger"),
				TransitionSystem: &spec.RegisteredModuleSpec{
					RegisteredName: spec.Ptr("tagger"),
				},
				Resource: []*spec.Resource{
					{
						Name: spec.Ptr("tag-map"),
						Part: []*spec.Part{{
							FilePattern:  spec.Ptr("/data/en/tag-map"),
							FileFormat:   spec.Ptr("text"),
							RecordFormat: spec.Ptr(""),
						}},
					},
					{
						Name: spec.Ptr("word-embeddings"),
						Part: []*spec.Part{{
							FilePattern:  spec.Ptr("/data/en/embeddings.sstable"),
							FileFormat:   spec.Ptr("sstable"),
							RecordFormat: spec.Ptr("dist_belief.TokenEmbedding"),
						}},
					},
				},
				FixedFeature: []*spec.FixedFeatureChannel{
					{
						Name:           spec.Ptr("words"),
						Fml:            spec.Ptr("input.word input(1).word input(-1).word"),
						EmbeddingDim:   spec.Ptr(int32(64)),
						VocabularySize: spec.Ptr(int32(20000)),
						Size:           spec.Ptr(int32(3)),
						PretrainedEmbeddingMatrix: &spec.Resource{
							Name: spec.Ptr("word-embeddings"),
						},
					},
					{
						Name:           spec.Ptr("suffix"),
						Fml:            spec.Ptr("input.suffix(length=3)"),
						EmbeddingDim:   spec.Ptr(int32(16)),
						VocabularySize: spec.Ptr(int32(5000)),
						Size:           spec.Ptr(int32(1)),
						IsConstant:     spec.Ptr(false),
					},
				},
				NetworkUnit: &spec.RegisteredModuleSpec{
					RegisteredName: spec.Ptr("FeedForwardNetwork"),
					Parameters:     map[string]string{"hidden_layer_sizes": "64"},
				},
				Backend: &spec.RegisteredModuleSpec{
					RegisteredName: spec.Ptr("SyntaxNetComponent"),
				},
				NumActions: spec.Ptr(int32(45)),
				ComponentBuilder: &spec.RegisteredModuleSpec{
					RegisteredName: spec.Ptr("DynamicComponentBuilder"),
				},
			},
			{
				Name: spec.Ptr("parser"),
				TransitionSystem: &spec.RegisteredModuleSpec{
					RegisteredName: spec.Ptr("arc-standard"),
				},
				FixedFeature: []*spec.FixedFeatureChannel{
					{
						Name:           spec.Ptr("stack-words"),
						Fml:            spec.Ptr("stack.word stack(1).word"),
						EmbeddingDim:   spec.Ptr(int32(32)),
						VocabularySize: spec.Ptr(int32(20000)),
						Size:           spec.Ptr(int32(2)),
					},
					{
						Name:           spec.Ptr("labels"),
						Fml:            spec.Ptr("stack.child(1).label"),
						EmbeddingDim:   spec.Ptr(spec.NotEmbedded),
						VocabularySize: spec.Ptr(int32(40)),
						Size:           spec.Ptr(int32(1)),
					},
				},
				LinkedFeature: []*spec.LinkedFeatureChannel{
					{
						Name:             spec.Ptr("tagger"),
						Fml:              spec.Ptr("input.focus stack.focus"),
						EmbeddingDim:     spec.Ptr(int32(32)),
						Size:             spec.Ptr(int32(2)),
						SourceComponent:  spec.Ptr("tagger"),
						SourceTranslator: spec.Ptr("identity"),
						SourceLayer:      spec.Ptr("layer_0"),
					},
				},
				NetworkUnit: &spec.RegisteredModuleSpec{
					RegisteredName: spec.Ptr("FeedForwardNetwork"),
					Parameters: map[string]string{
						"hidden_layer_sizes": "256,256",
						"layer_norm_hidden":  "true",
					},
				},
				Backend: &spec.RegisteredModuleSpec{
					RegisteredName: spec.Ptr("SyntaxNetComponent"),
				},
				NumActions: spec.Ptr(int32(93)),
			},
		},
	}
}

// CompositeGridPoint returns a GridPoint whose composite optimizer nests
// depth levels deep. Depth 0 yields a plain momentum point.
func CompositeGridPoint(depth int) *spec.GridPoint {
	if depth <= 0 {
		return &spec.GridPoint{
			LearningRate:   spec.Ptr(0.08),
			LearningMethod: spec.Ptr(spec.LearningMethodMomentum),
			DecayStaircase: spec.Ptr(false),
		}
	}
	return &spec.GridPoint{
		LearningMethod: spec.Ptr(spec.LearningMethodComposite),
		Seed:           spec.Ptr(int32(depth)),
		CompositeOptimizerSpec: &spec.CompositeOptimizerSpec{
			Method1: &spec.GridPoint{
				LearningMethod: spec.Ptr(spec.LearningMethodAdam),
				AdamBeta1:      spec.Ptr(0.9),
				AdamBeta2:      spec.Ptr(0.999),
				AdamEps:        spec.Ptr(1e-6),
			},
			Method2:           CompositeGridPoint(depth - 1),
			SwitchAfterSteps:  spec.Ptr(int32(500 * depth)),
			ResetLearningRate: spec.Ptr(depth%2 == 0),
		},
	}
}

// JointTarget weights both stages of TaggerParserSpec and unrolls only the tagger with the oracle.
func JointTarget() *spec.TrainTarget {
	return &spec.TrainTarget{
		Name:              spec.Ptr("joint"),
		ComponentWeights:  []float64{0.5, 1.0},
		UnrollUsingOracle: []bool{true, false},
		MaxIndex:          spec.Ptr(int32(2)),
	}
}
