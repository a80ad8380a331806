/*
Package dsl provides a fluent builder for constructing pipeline specs in Go
instead of writing them as YAML or JSON.

Example usage:

	ms, err := dsl.New().
		Add("tagger").
		TransitionSystem("tagger").
		Resource("word-embeddings", dsl.Part("/data/embeddings.sstable", "sstable", "dist_belief.TokenEmbedding")).
		Fixed("words", "input.word", 64, 20000, 3, dsl.Pretrained("word-embeddings")).
		Network("FeedForwardNetwork", dsl.Params{"hidden_layer_sizes": "64"}).
		Backend("SyntaxNetComponent").
		Actions(45).
		Add("parser").
		TransitionSystem("arc-standard").
		Fixed("stack-words", "stack.word", 32, 20000, 2).
		Linked("tagger", "input.focus", 32, 1, "identity", "layer_0").
		Network("FeedForwardNetwork", dsl.Params{"hidden_layer_sizes": "256,256"}).
		Actions(93).
		Build(dsl.WithRegistry(registry.Default()))

Build runs the same validation as the validate command, so a spec that builds
is one the trainer can load.
*/
package dsl
