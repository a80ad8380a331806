package spec

// GridPoint is one hyperparameter configuration of a training run.
//
// Dropout rates are keep probabilities: 1.0 disables dropout.
type GridPoint struct {
	LearningRate                *float64                `json:"learning_rate,omitempty" yaml:"learning_rate,omitempty" mapstructure:"learning_rate"`
	Momentum                    *float64                `json:"momentum,omitempty" yaml:"momentum,omitempty" mapstructure:"momentum"`
	DecayBase                   *float64                `json:"decay_base,omitempty" yaml:"decay_base,omitempty" mapstructure:"decay_base"`
	DecaySteps                  *int32                  `json:"decay_steps,omitempty" yaml:"decay_steps,omitempty" mapstructure:"decay_steps"`
	DecayStaircase              *bool                   `json:"decay_staircase,omitempty" yaml:"decay_staircase,omitempty" mapstructure:"decay_staircase"`
	Seed                        *int32                  `json:"seed,omitempty" yaml:"seed,omitempty" mapstructure:"seed"`
	LearningMethod              *string                 `json:"learning_method,omitempty" yaml:"learning_method,omitempty" mapstructure:"learning_method"`
	UseMovingAverage            *bool                   `json:"use_moving_average,omitempty" yaml:"use_moving_average,omitempty" mapstructure:"use_moving_average"`
	AverageWeight               *float64                `json:"average_weight,omitempty" yaml:"average_weight,omitempty" mapstructure:"average_weight"`
	DropoutRate                 *float64                `json:"dropout_rate,omitempty" yaml:"dropout_rate,omitempty" mapstructure:"dropout_rate"`
	RecurrentDropoutRate        *float64                `json:"recurrent_dropout_rate,omitempty" yaml:"recurrent_dropout_rate,omitempty" mapstructure:"recurrent_dropout_rate"`
	GradientClipNorm            *float64                `json:"gradient_clip_norm,omitempty" yaml:"gradient_clip_norm,omitempty" mapstructure:"gradient_clip_norm"`
	AdamBeta1                   *float64                `json:"adam_beta1,omitempty" yaml:"adam_beta1,omitempty" mapstructure:"adam_beta1"`
	AdamBeta2                   *float64                `json:"adam_beta2,omitempty" yaml:"adam_beta2,omitempty" mapstructure:"adam_beta2"`
	AdamEps                     *float64                `json:"adam_eps,omitempty" yaml:"adam_eps,omitempty" mapstructure:"adam_eps"`
	L2RegularizationCoefficient *float64                `json:"l2_regularization_coefficient,omitempty" yaml:"l2_regularization_coefficient,omitempty" mapstructure:"l2_regularization_coefficient"`
	SelfNormAlpha               *float64                `json:"self_norm_alpha,omitempty" yaml:"self_norm_alpha,omitempty" mapstructure:"self_norm_alpha"`
	SelfNormComponentsFilter    *string                 `json:"self_norm_components_filter,omitempty" yaml:"self_norm_components_filter,omitempty" mapstructure:"self_norm_components_filter"`
	CompositeOptimizerSpec      *CompositeOptimizerSpec `json:"composite_optimizer_spec,omitempty" yaml:"composite_optimizer_spec,omitempty" mapstructure:"composite_optimizer_spec"`
}

func (*GridPoint) MessageName() string { return "GridPoint" }

// DefaultGridPoint returns a GridPoint with every scalar field explicitly set to its default.
func DefaultGridPoint() *GridPoint {
	return &GridPoint{
		LearningRate:                Ptr(DefaultLearningRate),
		Momentum:                    Ptr(DefaultMomentum),
		DecayBase:                   Ptr(DefaultDecayBase),
		DecaySteps:                  Ptr(DefaultDecaySteps),
		DecayStaircase:              Ptr(DefaultDecayStaircase),
		Seed:                        Ptr(DefaultSeed),
		LearningMethod:              Ptr(DefaultLearningMethod),
		UseMovingAverage:            Ptr(DefaultUseMovingAverage),
		AverageWeight:               Ptr(DefaultAverageWeight),
		DropoutRate:                 Ptr(DefaultDropoutRate),
		RecurrentDropoutRate:        Ptr(DefaultRecurrentDropoutRate),
		GradientClipNorm:            Ptr(DefaultGradientClipNorm),
		AdamBeta1:                   Ptr(DefaultAdamBeta1),
		AdamBeta2:                   Ptr(DefaultAdamBeta2),
		AdamEps:                     Ptr(DefaultAdamEps),
		L2RegularizationCoefficient: Ptr(DefaultL2RegularizationCoefficient),
		SelfNormAlpha:               Ptr(DefaultSelfNormAlpha),
		SelfNormComponentsFilter:    Ptr(""),
	}
}

func (g *GridPoint) GetLearningRate() float64 {
	if g == nil {
		return DefaultLearningRate
	}
	return deref(g.LearningRate, DefaultLearningRate)
}

func (g *GridPoint) GetMomentum() float64 {
	if g == nil {
		return DefaultMomentum
	}
	return deref(g.Momentum, DefaultMomentum)
}

func (g *GridPoint) GetDecayBase() float64 {
	if g == nil {
		return DefaultDecayBase
	}
	return deref(g.DecayBase, DefaultDecayBase)
}

func (g *GridPoint) GetDecaySteps() int32 {
	if g == nil {
		return DefaultDecaySteps
	}
	return deref(g.DecaySteps, DefaultDecaySteps)
}

func (g *GridPoint) GetDecayStaircase() bool {
	if g == nil {
		return DefaultDecayStaircase
	}
	return deref(g.DecayStaircase, DefaultDecayStaircase)
}

func (g *GridPoint) GetSeed() int32 {
	if g == nil {
		return DefaultSeed
	}
	return deref(g.Seed, DefaultSeed)
}

func (g *GridPoint) GetLearningMethod() string {
	if g == nil {
		return DefaultLearningMethod
	}
	return deref(g.LearningMethod, DefaultLearningMethod)
}

func (g *GridPoint) GetUseMovingAverage() bool {
	if g == nil {
		return DefaultUseMovingAverage
	}
	return deref(g.UseMovingAverage, DefaultUseMovingAverage)
}

func (g *GridPoint) GetAverageWeight() float64 {
	if g == nil {
		return DefaultAverageWeight
	}
	return deref(g.AverageWeight, DefaultAverageWeight)
}

func (g *GridPoint) GetDropoutRate() float64 {
	if g == nil {
		return DefaultDropoutRate
	}
	return deref(g.DropoutRate, DefaultDropoutRate)
}

func (g *GridPoint) GetRecurrentDropoutRate() float64 {
	if g == nil {
		return DefaultRecurrentDropoutRate
	}
	return deref(g.RecurrentDropoutRate, DefaultRecurrentDropoutRate)
}

func (g *GridPoint) GetGradientClipNorm() float64 {
	if g == nil {
		return DefaultGradientClipNorm
	}
	return deref(g.GradientClipNorm, DefaultGradientClipNorm)
}

func (g *GridPoint) GetAdamBeta1() float64 {
	if g == nil {
		return DefaultAdamBeta1
	}
	return deref(g.AdamBeta1, DefaultAdamBeta1)
}

func (g *GridPoint) GetAdamBeta2() float64 {
	if g == nil {
		return DefaultAdamBeta2
	}
	return deref(g.AdamBeta2, DefaultAdamBeta2)
}

func (g *GridPoint) GetAdamEps() float64 {
	if g == nil {
		return DefaultAdamEps
	}
	return deref(g.AdamEps, DefaultAdamEps)
}

func (g *GridPoint) GetL2RegularizationCoefficient() float64 {
	if g == nil {
		return DefaultL2RegularizationCoefficient
	}
	return deref(g.L2RegularizationCoefficient, DefaultL2RegularizationCoefficient)
}

func (g *GridPoint) GetSelfNormAlpha() float64 {
	if g == nil {
		return DefaultSelfNormAlpha
	}
	return deref(g.SelfNormAlpha, DefaultSelfNormAlpha)
}

func (g *GridPoint) GetSelfNormComponentsFilter() string {
	if g == nil {
		return ""
	}
	return deref(g.SelfNormComponentsFilter, "")
}

func (g *GridPoint) GetCompositeOptimizerSpec() *CompositeOptimizerSpec {
	if g == nil {
		return nil
	}
	return g.CompositeOptimizerSpec
}

// IsComposite reports whether the point switches between two nested optimizers.
func (g *GridPoint) IsComposite() bool {
	return g.GetLearningMethod() == LearningMethodComposite
}

// Depth returns how many composite levels are nested below g. A plain point has depth 0.
func (g *GridPoint) Depth() int {
	c := g.GetCompositeOptimizerSpec()
	if c == nil {
		return 0
	}
	return 1 + max(c.GetMethod1().Depth(), c.GetMethod2().Depth())
}

// Clone returns a deep copy, including nested composite points.
func (g *GridPoint) Clone() *GridPoint {
	if g == nil {
		return nil
	}
	return &GridPoint{
		LearningRate:                clonePtr(g.LearningRate),
		Momentum:                    clonePtr(g.Momentum),
		DecayBase:                   clonePtr(g.DecayBase),
		DecaySteps:                  clonePtr(g.DecaySteps),
		DecayStaircase:              clonePtr(g.DecayStaircase),
		Seed:                        clonePtr(g.Seed),
		LearningMethod:              clonePtr(g.LearningMethod),
		UseMovingAverage:            clonePtr(g.UseMovingAverage),
		AverageWeight:               clonePtr(g.AverageWeight),
		DropoutRate:                 clonePtr(g.DropoutRate),
		RecurrentDropoutRate:        clonePtr(g.RecurrentDropoutRate),
		GradientClipNorm:            clonePtr(g.GradientClipNorm),
		AdamBeta1:                   clonePtr(g.AdamBeta1),
		AdamBeta2:                   clonePtr(g.AdamBeta2),
		AdamEps:                     clonePtr(g.AdamEps),
		L2RegularizationCoefficient: clonePtr(g.L2RegularizationCoefficient),
		SelfNormAlpha:               clonePtr(g.SelfNormAlpha),
		SelfNormComponentsFilter:    clonePtr(g.SelfNormComponentsFilter),
		CompositeOptimizerSpec:      g.CompositeOptimizerSpec.Clone(),
	}
}

// CompositeOptimizerSpec switches from Method1 to Method2 once SwitchAfterSteps
// training steps have run.
type CompositeOptimizerSpec struct {
	Method1           *GridPoint `json:"method1,omitempty" yaml:"method1,omitempty" mapstructure:"method1"`
	Method2           *GridPoint `json:"method2,omitempty" yaml:"method2,omitempty" mapstructure:"method2"`
	SwitchAfterSteps  *int32     `json:"switch_after_steps,omitempty" yaml:"switch_after_steps,omitempty" mapstructure:"switch_after_steps"`
	ResetLearningRate *bool      `json:"reset_learning_rate,omitempty" yaml:"reset_learning_rate,omitempty" mapstructure:"reset_learning_rate"`
}

func (c *CompositeOptimizerSpec) GetMethod1() *GridPoint {
	if c == nil {
		return nil
	}
	return c.Method1
}

func (c *CompositeOptimizerSpec) GetMethod2() *GridPoint {
	if c == nil {
		return nil
	}
	return c.Method2
}

func (c *CompositeOptimizerSpec) GetSwitchAfterSteps() int32 {
	if c == nil {
		return 0
	}
	return deref(c.SwitchAfterSteps, 0)
}

func (c *CompositeOptimizerSpec) GetResetLearningRate() bool {
	if c == nil {
		return false
	}
	return deref(c.ResetLearningRate, false)
}

// Active returns the point in effect at the given global step.
func (c *CompositeOptimizerSpec) Active(step int64) *GridPoint {
	if step < int64(c.GetSwitchAfterSteps()) {
		return c.GetMethod1()
	}
	return c.GetMethod2()
}

func (c *CompositeOptimizerSpec) Clone() *CompositeOptimizerSpec {
	if c == nil {
		return nil
	}
	return &CompositeOptimizerSpec{
		Method1:           c.Method1.Clone(),
		Method2:           c.Method2.Clone(),
		SwitchAfterSteps:  clonePtr(c.SwitchAfterSteps),
		ResetLearningRate: clonePtr(c.ResetLearningRate),
	}
}

// TrainingGridSpec pairs a base GridPoint with the targets trained under it.
type TrainingGridSpec struct {
	Base   *GridPoint     `json:"base,omitempty" yaml:"base,omitempty" mapstructure:"base"`
	Target []*TrainTarget `json:"target,omitempty" yaml:"target,omitempty" mapstructure:"target"`
}

func (*TrainingGridSpec) MessageName() string { return "TrainingGridSpec" }

func (t *TrainingGridSpec) GetBase() *GridPoint {
	if t == nil {
		return nil
	}
	return t.Base
}

func (t *TrainingGridSpec) GetTarget() []*TrainTarget {
	if t == nil {
		return nil
	}
	return t.Target
}

func (t *TrainingGridSpec) Clone() *TrainingGridSpec {
	if t == nil {
		return nil
	}
	out := &TrainingGridSpec{Base: t.Base.Clone()}
	if t.Target != nil {
		out.Target = make([]*TrainTarget, len(t.Target))
		for i, tt := range t.Target {
			out.Target[i] = tt.Clone()
		}
	}
	return out
}
