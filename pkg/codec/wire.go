package codec

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"

	"github.com/aretw0/netspec/pkg/spec"
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the binary encoding. They are part of the wire contract
// with the trainer and must never be renumbered.
const (
	masterComponent    protowire.Number = 1
	masterDebugTracing protowire.Number = 4

	componentName               protowire.Number = 1
	componentTransitionSystem   protowire.Number = 2
	componentResource           protowire.Number = 3
	componentFixedFeature       protowire.Number = 4
	componentLinkedFeature      protowire.Number = 5
	componentNetworkUnit        protowire.Number = 6
	componentBackend            protowire.Number = 7
	componentNumActions         protowire.Number = 8
	componentAttentionComponent protowire.Number = 9
	componentBuilder            protowire.Number = 10

	moduleRegisteredName protowire.Number = 1
	moduleParameters     protowire.Number = 2
	mapEntryKey          protowire.Number = 1
	mapEntryValue        protowire.Number = 2

	resourceName protowire.Number = 1
	resourcePart protowire.Number = 2

	partFilePattern  protowire.Number = 1
	partFileFormat   protowire.Number = 2
	partRecordFormat protowire.Number = 3

	fixedName                      protowire.Number = 1
	fixedFml                       protowire.Number = 2
	fixedEmbeddingDim              protowire.Number = 3
	fixedVocabularySize            protowire.Number = 4
	fixedSize                      protowire.Number = 5
	fixedPredicateMap              protowire.Number = 6
	fixedPretrainedEmbeddingMatrix protowire.Number = 7
	fixedVocab                     protowire.Number = 8
	fixedIsConstant                protowire.Number = 9

	linkedName             protowire.Number = 1
	linkedFml              protowire.Number = 2
	linkedEmbeddingDim     protowire.Number = 3
	linkedSize             protowire.Number = 4
	linkedSourceComponent  protowire.Number = 5
	linkedSourceTranslator protowire.Number = 6
	linkedSourceLayer      protowire.Number = 7

	gridLearningRate                protowire.Number = 1
	gridMomentum                    protowire.Number = 2
	gridDecaySteps                  protowire.Number = 3
	gridSeed                        protowire.Number = 4
	gridLearningMethod              protowire.Number = 7
	gridUseMovingAverage            protowire.Number = 8
	gridAverageWeight               protowire.Number = 9
	gridDropoutRate                 protowire.Number = 10
	gridGradientClipNorm            protowire.Number = 11
	gridAdamBeta1                   protowire.Number = 12
	gridAdamBeta2                   protowire.Number = 13
	gridAdamEps                     protowire.Number = 14
	gridL2RegularizationCoefficient protowire.Number = 15
	gridDecayBase                   protowire.Number = 16
	gridDecayStaircase              protowire.Number = 17
	gridSelfNormAlpha               protowire.Number = 18
	gridCompositeOptimizerSpec      protowire.Number = 19
	gridRecurrentDropoutRate        protowire.Number = 20
	gridSelfNormComponentsFilter    protowire.Number = 21

	compositeMethod1           protowire.Number = 1
	compositeMethod2           protowire.Number = 2
	compositeSwitchAfterSteps  protowire.Number = 3
	compositeResetLearningRate protowire.Number = 4

	targetName              protowire.Number = 1
	targetComponentWeights  protowire.Number = 2
	targetUnrollUsingOracle protowire.Number = 3
	targetMaxIndex          protowire.Number = 4

	gridSpecBase   protowire.Number = 1
	gridSpecTarget protowire.Number = 2
)

// ErrNilElement is returned when a repeated message field holds a nil entry,
// which the wire format cannot represent.
var ErrNilElement = errors.New("nil element in repeated field")

func marshalBinary(m spec.Message) ([]byte, error) {
	if path, ok := findNilElement(reflect.ValueOf(m), ""); ok {
		return nil, fmt.Errorf("marshal %s as binpb: %w: %s", m.MessageName(), ErrNilElement, path)
	}
	switch v := m.(type) {
	case *spec.MasterSpec:
		return appendMasterSpec(nil, v), nil
	case *spec.ComponentSpec:
		return appendComponentSpec(nil, v), nil
	case *spec.RegisteredModuleSpec:
		return appendModuleSpec(nil, v), nil
	case *spec.Resource:
		return appendResource(nil, v), nil
	case *spec.FixedFeatureChannel:
		return appendFixedFeature(nil, v), nil
	case *spec.LinkedFeatureChannel:
		return appendLinkedFeature(nil, v), nil
	case *spec.GridPoint:
		return appendGridPoint(nil, v), nil
	case *spec.TrainTarget:
		return appendTrainTarget(nil, v), nil
	case *spec.TrainingGridSpec:
		return appendTrainingGridSpec(nil, v), nil
	default:
		return nil, errUnsupported(m)
	}
}

// findNilElement returns the path of the first nil pointer inside a slice.
func findNilElement(v reflect.Value, path string) (string, bool) {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return "", false
		}
		return findNilElement(v.Elem(), path)
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			name, _, ok := jsonName(t.Field(i))
			if !ok {
				continue
			}
			field := name
			if path != "" {
				field = path + "." + name
			}
			if p, found := findNilElement(v.Field(i), field); found {
				return p, true
			}
		}
	case reflect.Slice:
		if v.Type().Elem().Kind() != reflect.Pointer {
			return "", false
		}
		for i := 0; i < v.Len(); i++ {
			elem := fmt.Sprintf("%s[%d]", path, i)
			if v.Index(i).IsNil() {
				return elem, true
			}
			if p, found := findNilElement(v.Index(i), elem); found {
				return p, true
			}
		}
	}
	return "", false
}

// --- scalar helpers ---

func appendString(b []byte, num protowire.Number, v *string) []byte {
	if v == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, *v)
}

// appendInt32 sign-extends negative values to ten bytes, like the protobuf int32 type.
func appendInt32(b []byte, num protowire.Number, v *int32) []byte {
	if v == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(*v)))
}

func appendBool(b []byte, num protowire.Number, v *bool) []byte {
	if v == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(*v))
}

func appendDouble(b []byte, num protowire.Number, v *float64) []byte {
	if v == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(*v))
}

func appendMessage[T any](b []byte, num protowire.Number, m *T, enc func([]byte, *T) []byte) []byte {
	if m == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, enc(nil, m))
}

// --- messages ---

func appendMasterSpec(b []byte, m *spec.MasterSpec) []byte {
	for _, c := range m.Component {
		b = appendMessage(b, masterComponent, c, appendComponentSpec)
	}
	return appendBool(b, masterDebugTracing, m.DebugTracing)
}

func appendComponentSpec(b []byte, c *spec.ComponentSpec) []byte {
	b = appendString(b, componentName, c.Name)
	b = appendMessage(b, componentTransitionSystem, c.TransitionSystem, appendModuleSpec)
	for _, r := range c.Resource {
		b = appendMessage(b, componentResource, r, appendResource)
	}
	for _, f := range c.FixedFeature {
		b = appendMessage(b, componentFixedFeature, f, appendFixedFeature)
	}
	for _, l := range c.LinkedFeature {
		b = appendMessage(b, componentLinkedFeature, l, appendLinkedFeature)
	}
	b = appendMessage(b, componentNetworkUnit, c.NetworkUnit, appendModuleSpec)
	b = appendMessage(b, componentBackend, c.Backend, appendModuleSpec)
	b = appendInt32(b, componentNumActions, c.NumActions)
	b = appendString(b, componentAttentionComponent, c.AttentionComponent)
	return appendMessage(b, componentBuilder, c.ComponentBuilder, appendModuleSpec)
}

// appendModuleSpec writes parameters in key order so equal specs encode to equal bytes.
func appendModuleSpec(b []byte, r *spec.RegisteredModuleSpec) []byte {
	b = appendString(b, moduleRegisteredName, r.RegisteredName)
	keys := make([]string, 0, len(r.Parameters))
	for k := range r.Parameters {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		v := r.Parameters[k]
		var entry []byte
		entry = appendString(entry, mapEntryKey, &k)
		entry = appendString(entry, mapEntryValue, &v)
		b = protowire.AppendTag(b, moduleParameters, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	return b
}

func appendResource(b []byte, r *spec.Resource) []byte {
	b = appendString(b, resourceName, r.Name)
	for _, p := range r.Part {
		b = appendMessage(b, resourcePart, p, appendPart)
	}
	return b
}

func appendPart(b []byte, p *spec.Part) []byte {
	b = appendString(b, partFilePattern, p.FilePattern)
	b = appendString(b, partFileFormat, p.FileFormat)
	return appendString(b, partRecordFormat, p.RecordFormat)
}

func appendFixedFeature(b []byte, f *spec.FixedFeatureChannel) []byte {
	b = appendString(b, fixedName, f.Name)
	b = appendString(b, fixedFml, f.Fml)
	b = appendInt32(b, fixedEmbeddingDim, f.EmbeddingDim)
	b = appendInt32(b, fixedVocabularySize, f.VocabularySize)
	b = appendInt32(b, fixedSize, f.Size)
	b = appendString(b, fixedPredicateMap, f.PredicateMap)
	b = appendMessage(b, fixedPretrainedEmbeddingMatrix, f.PretrainedEmbeddingMatrix, appendResource)
	b = appendMessage(b, fixedVocab, f.Vocab, appendResource)
	return appendBool(b, fixedIsConstant, f.IsConstant)
}

func appendLinkedFeature(b []byte, l *spec.LinkedFeatureChannel) []byte {
	b = appendString(b, linkedName, l.Name)
	b = appendString(b, linkedFml, l.Fml)
	b = appendInt32(b, linkedEmbeddingDim, l.EmbeddingDim)
	b = appendInt32(b, linkedSize, l.Size)
	b = appendString(b, linkedSourceComponent, l.SourceComponent)
	b = appendString(b, linkedSourceTranslator, l.SourceTranslator)
	return appendString(b, linkedSourceLayer, l.SourceLayer)
}

func appendGridPoint(b []byte, g *spec.GridPoint) []byte {
	b = appendDouble(b, gridLearningRate, g.LearningRate)
	b = appendDouble(b, gridMomentum, g.Momentum)
	b = appendInt32(b, gridDecaySteps, g.DecaySteps)
	b = appendInt32(b, gridSeed, g.Seed)
	b = appendString(b, gridLearningMethod, g.LearningMethod)
	b = appendBool(b, gridUseMovingAverage, g.UseMovingAverage)
	b = appendDouble(b, gridAverageWeight, g.AverageWeight)
	b = appendDouble(b, gridDropoutRate, g.DropoutRate)
	b = appendDouble(b, gridGradientClipNorm, g.GradientClipNorm)
	b = appendDouble(b, gridAdamBeta1, g.AdamBeta1)
	b = appendDouble(b, gridAdamBeta2, g.AdamBeta2)
	b = appendDouble(b, gridAdamEps, g.AdamEps)
	b = appendDouble(b, gridL2RegularizationCoefficient, g.L2RegularizationCoefficient)
	b = appendDouble(b, gridDecayBase, g.DecayBase)
	b = appendBool(b, gridDecayStaircase, g.DecayStaircase)
	b = appendDouble(b, gridSelfNormAlpha, g.SelfNormAlpha)
	b = appendMessage(b, gridCompositeOptimizerSpec, g.CompositeOptimizerSpec, appendCompositeSpec)
	b = appendDouble(b, gridRecurrentDropoutRate, g.RecurrentDropoutRate)
	return appendString(b, gridSelfNormComponentsFilter, g.SelfNormComponentsFilter)
}

func appendCompositeSpec(b []byte, c *spec.CompositeOptimizerSpec) []byte {
	b = appendMessage(b, compositeMethod1, c.Method1, appendGridPoint)
	b = appendMessage(b, compositeMethod2, c.Method2, appendGridPoint)
	b = appendInt32(b, compositeSwitchAfterSteps, c.SwitchAfterSteps)
	return appendBool(b, compositeResetLearningRate, c.ResetLearningRate)
}

// appendTrainTarget writes repeated scalars unpacked, the proto2 default.
func appendTrainTarget(b []byte, t *spec.TrainTarget) []byte {
	b = appendString(b, targetName, t.Name)
	for _, w := range t.ComponentWeights {
		b = appendDouble(b, targetComponentWeights, &w)
	}
	for _, o := range t.UnrollUsingOracle {
		b = appendBool(b, targetUnrollUsingOracle, &o)
	}
	return appendInt32(b, targetMaxIndex, t.MaxIndex)
}

func appendTrainingGridSpec(b []byte, g *spec.TrainingGridSpec) []byte {
	b = appendMessage(b, gridSpecBase, g.Base, appendGridPoint)
	for _, t := range g.Target {
		b = appendMessage(b, gridSpecTarget, t, appendTrainTarget)
	}
	return b
}
