package spec

// FixedFeatureChannel is a feature extractor with a statically bounded vocabulary.
type FixedFeatureChannel struct {
	Name *string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Fml  *string `json:"fml,omitempty" yaml:"fml,omitempty" mapstructure:"fml"`
	// EmbeddingDim is the embedding width, or NotEmbedded.
	EmbeddingDim   *int32 `json:"embedding_dim,omitempty" yaml:"embedding_dim,omitempty" mapstructure:"embedding_dim"`
	VocabularySize *int32 `json:"vocabulary_size,omitempty" yaml:"vocabulary_size,omitempty" mapstructure:"vocabulary_size"`
	// Size is the maximum number of ids emitted per extraction.
	Size         *int32  `json:"size,omitempty" yaml:"size,omitempty" mapstructure:"size"`
	PredicateMap *string `json:"predicate_map,omitempty" yaml:"predicate_map,omitempty" mapstructure:"predicate_map"`

	PretrainedEmbeddingMatrix *Resource `json:"pretrained_embedding_matrix,omitempty" yaml:"pretrained_embedding_matrix,omitempty" mapstructure:"pretrained_embedding_matrix"`
	Vocab                     *Resource `json:"vocab,omitempty" yaml:"vocab,omitempty" mapstructure:"vocab"`

	IsConstant *bool `json:"is_constant,omitempty" yaml:"is_constant,omitempty" mapstructure:"is_constant"`
}

func (*FixedFeatureChannel) MessageName() string { return "FixedFeatureChannel" }

func (f *FixedFeatureChannel) GetName() string {
	if f == nil {
		return ""
	}
	return deref(f.Name, "")
}

func (f *FixedFeatureChannel) GetFml() string {
	if f == nil {
		return ""
	}
	return deref(f.Fml, "")
}

func (f *FixedFeatureChannel) GetEmbeddingDim() int32 {
	if f == nil {
		return 0
	}
	return deref(f.EmbeddingDim, 0)
}

func (f *FixedFeatureChannel) GetVocabularySize() int32 {
	if f == nil {
		return 0
	}
	return deref(f.VocabularySize, 0)
}

func (f *FixedFeatureChannel) GetSize() int32 {
	if f == nil {
		return 0
	}
	return deref(f.Size, 0)
}

func (f *FixedFeatureChannel) GetPredicateMap() string {
	if f == nil {
		return ""
	}
	return deref(f.PredicateMap, "")
}

func (f *FixedFeatureChannel) GetPretrainedEmbeddingMatrix() *Resource {
	if f == nil {
		return nil
	}
	return f.PretrainedEmbeddingMatrix
}

func (f *FixedFeatureChannel) GetVocab() *Resource {
	if f == nil {
		return nil
	}
	return f.Vocab
}

func (f *FixedFeatureChannel) GetIsConstant() bool {
	if f == nil {
		return false
	}
	return deref(f.IsConstant, false)
}

// IsEmbedded reports whether ids from this channel go through an embedding lookup.
func (f *FixedFeatureChannel) IsEmbedded() bool {
	return f.GetEmbeddingDim() != NotEmbedded
}

func (f *FixedFeatureChannel) Clone() *FixedFeatureChannel {
	if f == nil {
		return nil
	}
	return &FixedFeatureChannel{
		Name:                      clonePtr(f.Name),
		Fml:                       clonePtr(f.Fml),
		EmbeddingDim:              clonePtr(f.EmbeddingDim),
		VocabularySize:            clonePtr(f.VocabularySize),
		Size:                      clonePtr(f.Size),
		PredicateMap:              clonePtr(f.PredicateMap),
		PretrainedEmbeddingMatrix: f.PretrainedEmbeddingMatrix.Clone(),
		Vocab:                     f.Vocab.Clone(),
		IsConstant:                clonePtr(f.IsConstant),
	}
}

// LinkedFeatureChannel reads activations produced by another component.
// SourceComponent must name a component earlier in the MasterSpec.
type LinkedFeatureChannel struct {
	Name             *string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Fml              *string `json:"fml,omitempty" yaml:"fml,omitempty" mapstructure:"fml"`
	EmbeddingDim     *int32  `json:"embedding_dim,omitempty" yaml:"embedding_dim,omitempty" mapstructure:"embedding_dim"`
	Size             *int32  `json:"size,omitempty" yaml:"size,omitempty" mapstructure:"size"`
	SourceComponent  *string `json:"source_component,omitempty" yaml:"source_component,omitempty" mapstructure:"source_component"`
	SourceTranslator *string `json:"source_translator,omitempty" yaml:"source_translator,omitempty" mapstructure:"source_translator"`
	SourceLayer      *string `json:"source_layer,omitempty" yaml:"source_layer,omitempty" mapstructure:"source_layer"`
}

func (*LinkedFeatureChannel) MessageName() string { return "LinkedFeatureChannel" }

func (l *LinkedFeatureChannel) GetName() string {
	if l == nil {
		return ""
	}
	return deref(l.Name, "")
}

func (l *LinkedFeatureChannel) GetFml() string {
	if l == nil {
		return ""
	}
	return deref(l.Fml, "")
}

func (l *LinkedFeatureChannel) GetEmbeddingDim() int32 {
	if l == nil {
		return 0
	}
	return deref(l.EmbeddingDim, 0)
}

func (l *LinkedFeatureChannel) GetSize() int32 {
	if l == nil {
		return 0
	}
	return deref(l.Size, 0)
}

func (l *LinkedFeatureChannel) GetSourceComponent() string {
	if l == nil {
		return ""
	}
	return deref(l.SourceComponent, "")
}

func (l *LinkedFeatureChannel) GetSourceTranslator() string {
	if l == nil {
		return ""
	}
	return deref(l.SourceTranslator, "")
}

func (l *LinkedFeatureChannel) GetSourceLayer() string {
	if l == nil {
		return ""
	}
	return deref(l.SourceLayer, "")
}

// IsEmbedded reports whether linked activations are projected before use.
func (l *LinkedFeatureChannel) IsEmbedded() bool {
	return l.GetEmbeddingDim() != NotEmbedded
}

func (l *LinkedFeatureChannel) Clone() *LinkedFeatureChannel {
	if l == nil {
		return nil
	}
	return &LinkedFeatureChannel{
		Name:             clonePtr(l.Name),
		Fml:              clonePtr(l.Fml),
		EmbeddingDim:     clonePtr(l.EmbeddingDim),
		Size:             clonePtr(l.Size),
		SourceComponent:  clonePtr(l.SourceComponent),
		SourceTranslator: clonePtr(l.SourceTranslator),
		SourceLayer:      clonePtr(l.SourceLayer),
	}
}
