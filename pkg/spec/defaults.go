package spec

// GridPoint defaults. Consumers rely on these exact values.
const (
	DefaultLearningRate                = 0.1
	DefaultMomentum                    = 0.9
	DefaultDecayBase                   = 0.96
	DefaultDecaySteps            int32 = 1000
	DefaultDecayStaircase              = true
	DefaultSeed                  int32 = 0
	DefaultLearningMethod              = "momentum"
	DefaultUseMovingAverage            = false
	DefaultAverageWeight               = 0.0001
	DefaultDropoutRate                 = 1.0
	DefaultRecurrentDropoutRate        = 1.0
	DefaultGradientClipNorm            = 0.0
	DefaultAdamBeta1                   = 0.01
	DefaultAdamBeta2                   = 0.9999
	DefaultAdamEps                     = 1e-8
	DefaultL2RegularizationCoefficient = 1e-4
	DefaultSelfNormAlpha               = 0.0
)

// DefaultMaxIndex means "train every component".
const DefaultMaxIndex int32 = -1

// NotEmbedded is the embedding_dim sentinel for channels whose ids are fed to
// the network without an embedding lookup.
const NotEmbedded int32 = -1

// Learning methods understood by the stock optimizers.
const (
	LearningMethodMomentum  = "momentum"
	LearningMethodAdam      = "adam"
	LearningMethodLazyAdam  = "lazyadam"
	LearningMethodComposite = "composite"
)

// Ptr returns a pointer to v. It is the usual way to set optional fields.
func Ptr[T any](v T) *T {
	return &v
}

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
