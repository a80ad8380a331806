package codec

import (
	"fmt"
	"math"

	"github.com/aretw0/netspec/pkg/spec"
	"google.golang.org/protobuf/encoding/protowire"
)

func errUnsupported(m spec.Message) error {
	return fmt.Errorf("%w: %T", ErrUnsupportedMessage, m)
}

func unmarshalBinary(data []byte, m spec.Message) error {
	var err error
	switch v := m.(type) {
	case *spec.MasterSpec:
		err = decodeMasterSpec(data, v)
	case *spec.ComponentSpec:
		err = decodeComponentSpec(data, v)
	case *spec.RegisteredModuleSpec:
		err = decodeModuleSpec(data, v)
	case *spec.Resource:
		err = decodeResource(data, v)
	case *spec.FixedFeatureChannel:
		err = decodeFixedFeature(data, v)
	case *spec.LinkedFeatureChannel:
		err = decodeLinkedFeature(data, v)
	case *spec.GridPoint:
		err = decodeGridPoint(data, v)
	case *spec.TrainTarget:
		err = decodeTrainTarget(data, v)
	case *spec.TrainingGridSpec:
		err = decodeTrainingGridSpec(data, v)
	default:
		return errUnsupported(m)
	}
	if err != nil {
		return fmt.Errorf("unmarshal %s from binary: %w", m.MessageName(), err)
	}
	return nil
}

// field is one tag/value pair; val holds the raw value bytes without the tag.
type field struct {
	num protowire.Number
	typ protowire.Type
	val []byte
}

// walk visits every field of an encoded message in order. Handlers ignore
// numbers they do not know, which skips unknown fields.
func walk(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		m := protowire.ConsumeFieldValue(num, typ, b)
		if m < 0 {
			return fmt.Errorf("field %d: %w", num, protowire.ParseError(m))
		}
		if err := fn(field{num: num, typ: typ, val: b[:m]}); err != nil {
			return err
		}
		b = b[m:]
	}
	return nil
}

func (f field) expect(typ protowire.Type) error {
	if f.typ != typ {
		return fmt.Errorf("field %d: wire type %d, want %d", f.num, f.typ, typ)
	}
	return nil
}

func (f field) bytes() ([]byte, error) {
	if err := f.expect(protowire.BytesType); err != nil {
		return nil, err
	}
	v, n := protowire.ConsumeBytes(f.val)
	if n < 0 {
		return nil, protowire.ParseError(n)
	}
	return v, nil
}

func (f field) string() (*string, error) {
	v, err := f.bytes()
	if err != nil {
		return nil, err
	}
	return spec.Ptr(string(v)), nil
}

func (f field) varint() (uint64, error) {
	if err := f.expect(protowire.VarintType); err != nil {
		return 0, err
	}
	v, n := protowire.ConsumeVarint(f.val)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	return v, nil
}

func (f field) int32() (*int32, error) {
	v, err := f.varint()
	if err != nil {
		return nil, err
	}
	return spec.Ptr(int32(v)), nil
}

func (f field) bool() (*bool, error) {
	v, err := f.varint()
	if err != nil {
		return nil, err
	}
	return spec.Ptr(protowire.DecodeBool(v)), nil
}

func (f field) double() (*float64, error) {
	if err := f.expect(protowire.Fixed64Type); err != nil {
		return nil, err
	}
	v, n := protowire.ConsumeFixed64(f.val)
	if n < 0 {
		return nil, protowire.ParseError(n)
	}
	return spec.Ptr(math.Float64frombits(v)), nil
}

// doubles accepts both a single unpacked element and a packed run.
func (f field) doubles() ([]float64, error) {
	if f.typ == protowire.Fixed64Type {
		v, err := f.double()
		if err != nil {
			return nil, err
		}
		return []float64{*v}, nil
	}
	packed, err := f.bytes()
	if err != nil {
		return nil, err
	}
	var out []float64
	for len(packed) > 0 {
		v, n := protowire.ConsumeFixed64(packed)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		out = append(out, math.Float64frombits(v))
		packed = packed[n:]
	}
	return out, nil
}

// bools accepts both a single unpacked element and a packed run.
func (f field) bools() ([]bool, error) {
	if f.typ == protowire.VarintType {
		v, err := f.bool()
		if err != nil {
			return nil, err
		}
		return []bool{*v}, nil
	}
	packed, err := f.bytes()
	if err != nil {
		return nil, err
	}
	var out []bool
	for len(packed) > 0 {
		v, n := protowire.ConsumeVarint(packed)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		out = append(out, protowire.DecodeBool(v))
		packed = packed[n:]
	}
	return out, nil
}

func decodeNested[T any](f field, dec func([]byte, *T) error) (*T, error) {
	body, err := f.bytes()
	if err != nil {
		return nil, err
	}
	out := new(T)
	if err := dec(body, out); err != nil {
		return nil, fmt.Errorf("field %d: %w", f.num, err)
	}
	return out, nil
}

func decodeMasterSpec(b []byte, m *spec.MasterSpec) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case masterComponent:
			var c *spec.ComponentSpec
			if c, err = decodeNested(f, decodeComponentSpec); err == nil {
				m.Component = append(m.Component, c)
			}
		case masterDebugTracing:
			m.DebugTracing, err = f.bool()
		}
		return err
	})
}

func decodeComponentSpec(b []byte, c *spec.ComponentSpec) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case componentName:
			c.Name, err = f.string()
		case componentTransitionSystem:
			c.TransitionSystem, err = decodeNested(f, decodeModuleSpec)
		case componentResource:
			var r *spec.Resource
			if r, err = decodeNested(f, decodeResource); err == nil {
				c.Resource = append(c.Resource, r)
			}
		case componentFixedFeature:
			var ff *spec.FixedFeatureChannel
			if ff, err = decodeNested(f, decodeFixedFeature); err == nil {
				c.FixedFeature = append(c.FixedFeature, ff)
			}
		case componentLinkedFeature:
			var lf *spec.LinkedFeatureChannel
			if lf, err = decodeNested(f, decodeLinkedFeature); err == nil {
				c.LinkedFeature = append(c.LinkedFeature, lf)
			}
		case componentNetworkUnit:
			c.NetworkUnit, err = decodeNested(f, decodeModuleSpec)
		case componentBackend:
			c.Backend, err = decodeNested(f, decodeModuleSpec)
		case componentNumActions:
			c.NumActions, err = f.int32()
		case componentAttentionComponent:
			c.AttentionComponent, err = f.string()
		case componentBuilder:
			c.ComponentBuilder, err = decodeNested(f, decodeModuleSpec)
		}
		return err
	})
}

func decodeModuleSpec(b []byte, r *spec.RegisteredModuleSpec) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case moduleRegisteredName:
			r.RegisteredName, err = f.string()
		case moduleParameters:
			var entry []byte
			if entry, err = f.bytes(); err != nil {
				return err
			}
			var key, value string
			err = walk(entry, func(ef field) error {
				switch ef.num {
				case mapEntryKey:
					k, err := ef.string()
					if err != nil {
						return err
					}
					key = *k
				case mapEntryValue:
					v, err := ef.string()
					if err != nil {
						return err
					}
					value = *v
				}
				return nil
			})
			if err == nil {
				if r.Parameters == nil {
					r.Parameters = make(map[string]string)
				}
				r.Parameters[key] = value
			}
		}
		return err
	})
}

func decodeResource(b []byte, r *spec.Resource) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case resourceName:
			r.Name, err = f.string()
		case resourcePart:
			var p *spec.Part
			if p, err = decodeNested(f, decodePart); err == nil {
				r.Part = append(r.Part, p)
			}
		}
		return err
	})
}

func decodePart(b []byte, p *spec.Part) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case partFilePattern:
			p.FilePattern, err = f.string()
		case partFileFormat:
			p.FileFormat, err = f.string()
		case partRecordFormat:
			p.RecordFormat, err = f.string()
		}
		return err
	})
}

func decodeFixedFeature(b []byte, c *spec.FixedFeatureChannel) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case fixedName:
			c.Name, err = f.string()
		case fixedFml:
			c.Fml, err = f.string()
		case fixedEmbeddingDim:
			c.EmbeddingDim, err = f.int32()
		case fixedVocabularySize:
			c.VocabularySize, err = f.int32()
		case fixedSize:
			c.Size, err = f.int32()
		case fixedPredicateMap:
			c.PredicateMap, err = f.string()
		case fixedPretrainedEmbeddingMatrix:
			c.PretrainedEmbeddingMatrix, err = decodeNested(f, decodeResource)
		case fixedVocab:
			c.Vocab, err = decodeNested(f, decodeResource)
		case fixedIsConstant:
			c.IsConstant, err = f.bool()
		}
		return err
	})
}

func decodeLinkedFeature(b []byte, c *spec.LinkedFeatureChannel) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case linkedName:
			c.Name, err = f.string()
		case linkedFml:
			c.Fml, err = f.string()
		case linkedEmbeddingDim:
			c.EmbeddingDim, err = f.int32()
		case linkedSize:
			c.Size, err = f.int32()
		case linkedSourceComponent:
			c.SourceComponent, err = f.string()
		case linkedSourceTranslator:
			c.SourceTranslator, err = f.string()
		case linkedSourceLayer:
			c.SourceLayer, err = f.string()
		}
		return err
	})
}

func decodeGridPoint(b []byte, g *spec.GridPoint) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case gridLearningRate:
			g.LearningRate, err = f.double()
		case gridMomentum:
			g.Momentum, err = f.double()
		case gridDecaySteps:
			g.DecaySteps, err = f.int32()
		case gridSeed:
			g.Seed, err = f.int32()
		case gridLearningMethod:
			g.LearningMethod, err = f.string()
		case gridUseMovingAverage:
			g.UseMovingAverage, err = f.bool()
		case gridAverageWeight:
			g.AverageWeight, err = f.double()
		case gridDropoutRate:
			g.DropoutRate, err = f.double()
		case gridGradientClipNorm:
			g.GradientClipNorm, err = f.double()
		case gridAdamBeta1:
			g.AdamBeta1, err = f.double()
		case gridAdamBeta2:
			g.AdamBeta2, err = f.double()
		case gridAdamEps:
			g.AdamEps, err = f.double()
		case gridL2RegularizationCoefficient:
			g.L2RegularizationCoefficient, err = f.double()
		case gridDecayBase:
			g.DecayBase, err = f.double()
		case gridDecayStaircase:
			g.DecayStaircase, err = f.bool()
		case gridSelfNormAlpha:
			g.SelfNormAlpha, err = f.double()
		case gridCompositeOptimizerSpec:
			g.CompositeOptimizerSpec, err = decodeNested(f, decodeCompositeSpec)
		case gridRecurrentDropoutRate:
			g.RecurrentDropoutRate, err = f.double()
		case gridSelfNormComponentsFilter:
			g.SelfNormComponentsFilter, err = f.string()
		}
		return err
	})
}

func decodeCompositeSpec(b []byte, c *spec.CompositeOptimizerSpec) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case compositeMethod1:
			c.Method1, err = decodeNested(f, decodeGridPoint)
		case compositeMethod2:
			c.Method2, err = decodeNested(f, decodeGridPoint)
		case compositeSwitchAfterSteps:
			c.SwitchAfterSteps, err = f.int32()
		case compositeResetLearningRate:
			c.ResetLearningRate, err = f.bool()
		}
		return err
	})
}

func decodeTrainTarget(b []byte, t *spec.TrainTarget) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case targetName:
			t.Name, err = f.string()
		case targetComponentWeights:
			var ws []float64
			if ws, err = f.doubles(); err == nil {
				t.ComponentWeights = append(t.ComponentWeights, ws...)
			}
		case targetUnrollUsingOracle:
			var os []bool
			if os, err = f.bools(); err == nil {
				t.UnrollUsingOracle = append(t.UnrollUsingOracle, os...)
			}
		case targetMaxIndex:
			t.MaxIndex, err = f.int32()
		}
		return err
	})
}

func decodeTrainingGridSpec(b []byte, g *spec.TrainingGridSpec) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case gridSpecBase:
			g.Base, err = decodeNested(f, decodeGridPoint)
		case gridSpecTarget:
			var t *spec.TrainTarget
			if t, err = decodeNested(f, decodeTrainTarget); err == nil {
				g.Target = append(g.Target, t)
			}
		}
		return err
	})
}
