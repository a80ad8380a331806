package registry

import "github.com/aretw0/netspec/pkg/schema"

var (
	nonlinearity = schema.Opt(schema.OneOf("relu", "elu", "tanh", "sigmoid", "identity"))
	keepProb     = schema.Opt(schema.Float())
	optBool      = schema.Opt(schema.Bool())
	optInt       = schema.Opt(schema.Int())
	optInts      = schema.Opt(schema.Slice(schema.Int()))
)

// Default returns a registry holding the stock modules of the trainer.
func Default() *Registry {
	r := New()
	for _, m := range defaultModules() {
		// kinds below are all valid
		_ = r.Register(m.kind, m.name, m.entry)
	}
	return r
}

type module struct {
	kind  Kind
	name  string
	entry Entry
}

func defaultModules() []module {
	return []module{
		{KindTransitionSystem, "arc-standard", Entry{Description: "arc-standard dependency parsing"}},
		{KindTransitionSystem, "shift-only", Entry{
			Description: "one decision per token, left to right unless told otherwise",
			Params:      schema.Schema{"left_to_right": optBool},
		}},
		{KindTransitionSystem, "tagger", Entry{Description: "part-of-speech tagging"}},
		{KindTransitionSystem, "morpher", Entry{Description: "morphological attribute tagging"}},
		{KindTransitionSystem, "heads", Entry{Description: "head selection"}},
		{KindTransitionSystem, "labels", Entry{Description: "arc labelling"}},

		{KindNetworkUnit, "FeedForwardNetwork", Entry{
			Description: "stack of fully connected layers",
			Strict:      true,
			Params: schema.Schema{
				"hidden_layer_sizes":   optInts,
				"layer_norm_input":     optBool,
				"layer_norm_hidden":    optBool,
				"nonlinearity":         nonlinearity,
				"dropout_keep_prob":    keepProb,
				"dropout_per_sequence": optBool,
				"dropout_all_layers":   optBool,
				"omit_logits":          optBool,
			},
		}},
		{KindNetworkUnit, "LSTMNetwork", Entry{
			Description: "single or stacked LSTM",
			Strict:      true,
			Params: schema.Schema{
				"hidden_layer_sizes":   optInts,
				"omit_logits":          optBool,
				"dropout_keep_prob":    keepProb,
				"dropout_per_sequence": optBool,
				"dropout_all_layers":   optBool,
				"lstm_use_skip":        optBool,
			},
		}},
		{KindNetworkUnit, "IdentityNetwork", Entry{
			Description: "concatenated inputs passed through unchanged",
			Strict:      true,
		}},
		{KindNetworkUnit, "ConvNetwork", Entry{
			Description: "1-D convolutions over the token sequence",
			Strict:      true,
			Params: schema.Schema{
				"depths":               schema.Slice(schema.Int()),
				"widths":               schema.Slice(schema.Int()),
				"output_embedding_dim": optInt,
				"nonlinearity":         nonlinearity,
				"dropout_keep_prob":    keepProb,
			},
		}},
		{KindNetworkUnit, "BiaffineDigraphNetwork", Entry{
			Description: "biaffine arc scores over source and target tokens",
			Strict:      true,
		}},
		{KindNetworkUnit, "BiaffineLabelNetwork", Entry{
			Description: "biaffine label scores over selected arcs",
			Strict:      true,
			Params:      schema.Schema{"num_labels": schema.Int()},
		}},

		{KindBackend, "SyntaxNetComponent", Entry{Description: "transition state held by the native component library"}},
		{KindBackend, "StatelessComponent", Entry{Description: "no transition state; one step per input"}},

		{KindComponentBuilder, "DynamicComponentBuilder", Entry{Description: "unrolls one transition at a time"}},
		{KindComponentBuilder, "BulkFeatureExtractorComponentBuilder", Entry{Description: "extracts all fixed features up front"}},
		{KindComponentBuilder, "BulkDynamicComponentBuilder", Entry{Description: "bulk features with a dynamic network"}},
		{KindComponentBuilder, "BulkAnnotatorComponentBuilder", Entry{Description: "annotates every token in one pass"}},
	}
}
