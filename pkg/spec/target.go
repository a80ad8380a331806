package spec

import (
	"fmt"
	"slices"
)

// TrainTarget names a training objective over the pipeline.
//
// ComponentWeights and UnrollUsingOracle are either empty or hold one entry per
// component. MaxIndex bounds how far down the pipeline the target trains;
// DefaultMaxIndex means every component.
type TrainTarget struct {
	Name              *string   `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	ComponentWeights  []float64 `json:"component_weights,omitempty" yaml:"component_weights,omitempty" mapstructure:"component_weights"`
	UnrollUsingOracle []bool    `json:"unroll_using_oracle,omitempty" yaml:"unroll_using_oracle,omitempty" mapstructure:"unroll_using_oracle"`
	MaxIndex          *int32    `json:"max_index,omitempty" yaml:"max_index,omitempty" mapstructure:"max_index"`
}

func (*TrainTarget) MessageName() string { return "TrainTarget" }

func (t *TrainTarget) GetName() string {
	if t == nil {
		return ""
	}
	return deref(t.Name, "")
}

func (t *TrainTarget) GetComponentWeights() []float64 {
	if t == nil {
		return nil
	}
	return t.ComponentWeights
}

func (t *TrainTarget) GetUnrollUsingOracle() []bool {
	if t == nil {
		return nil
	}
	return t.UnrollUsingOracle
}

func (t *TrainTarget) GetMaxIndex() int32 {
	if t == nil {
		return DefaultMaxIndex
	}
	return deref(t.MaxIndex, DefaultMaxIndex)
}

func (t *TrainTarget) Clone() *TrainTarget {
	if t == nil {
		return nil
	}
	return &TrainTarget{
		Name:              clonePtr(t.Name),
		ComponentWeights:  slices.Clone(t.ComponentWeights),
		UnrollUsingOracle: slices.Clone(t.UnrollUsingOracle),
		MaxIndex:          clonePtr(t.MaxIndex),
	}
}

// ResolvedTarget is a TrainTarget expanded against a concrete component count.
type ResolvedTarget struct {
	Name              string
	ComponentWeights  []float64
	UnrollUsingOracle []bool
	// MaxIndex is the exclusive upper bound of trained components.
	MaxIndex int
}

// Resolve fills the conventional values for unset sequences: every component
// weighted 1.0, every component unrolled with the oracle, and all components
// trained when MaxIndex is DefaultMaxIndex.
func (t *TrainTarget) Resolve(numComponents int) (*ResolvedTarget, error) {
	if numComponents < 0 {
		return nil, fmt.Errorf("target %q: negative component count %d", t.GetName(), numComponents)
	}
	weights := t.GetComponentWeights()
	switch len(weights) {
	case 0:
		weights = make([]float64, numComponents)
		for i := range weights {
			weights[i] = 1.0
		}
	case numComponents:
		weights = slices.Clone(weights)
	default:
		return nil, fmt.Errorf("target %q: %d component weights for %d components: %w",
			t.GetName(), len(weights), numComponents, ErrLengthMismatch)
	}

	oracle := t.GetUnrollUsingOracle()
	switch len(oracle) {
	case 0:
		oracle = make([]bool, numComponents)
		for i := range oracle {
			oracle[i] = true
		}
	case numComponents:
		oracle = slices.Clone(oracle)
	default:
		return nil, fmt.Errorf("target %q: %d oracle flags for %d components: %w",
			t.GetName(), len(oracle), numComponents, ErrLengthMismatch)
	}

	maxIndex := int(t.GetMaxIndex())
	switch {
	case maxIndex == int(DefaultMaxIndex):
		maxIndex = numComponents
	case maxIndex < 0:
		return nil, fmt.Errorf("target %q: max_index must be %d or >= 0, got %d", t.GetName(), DefaultMaxIndex, maxIndex)
	}
	if maxIndex > numComponents {
		return nil, fmt.Errorf("target %q: max_index %d exceeds %d components", t.GetName(), maxIndex, numComponents)
	}

	return &ResolvedTarget{
		Name:              t.GetName(),
		ComponentWeights:  weights,
		UnrollUsingOracle: oracle,
		MaxIndex:          maxIndex,
	}, nil
}
