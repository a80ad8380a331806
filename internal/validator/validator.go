// Package validator checks the referential rules a spec must satisfy before a
// trainer can build it. Validation never modifies its input; every problem
// found is reported, each with the path of the offending field.
package validator

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/aretw0/netspec/pkg/registry"
	"github.com/aretw0/netspec/pkg/spec"
)

// ErrInvalid is matched by every *Error.
var ErrInvalid = errors.New("invalid spec")

// Issue is a single rule violation.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Error carries every issue found in one record.
type Error struct {
	Subject string
	Issues  []Issue
}

func (e *Error) Error() string {
	lines := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		lines[i] = is.String()
	}
	if len(lines) == 1 {
		return fmt.Sprintf("%s: %s", e.Subject, lines[0])
	}
	return fmt.Sprintf("%s: found %d errors:\n- %s", e.Subject, len(lines), strings.Join(lines, "\n- "))
}

func (e *Error) Is(target error) bool { return target == ErrInvalid }

// Issues extracts the issues from a validation error, or nil.
func Issues(err error) []Issue {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Issues
	}
	return nil
}

type options struct {
	allowSelfLinks bool
	registry       *registry.Registry
}

// Option tunes validation.
type Option func(*options)

// AllowSelfLinks accepts linked features whose source is the declaring
// component, i.e. recurrent links to the component's own earlier steps.
func AllowSelfLinks() Option {
	return func(o *options) { o.allowSelfLinks = true }
}

// WithRegistry resolves module selectors and checks their parameters.
func WithRegistry(r *registry.Registry) Option {
	return func(o *options) { o.registry = r }
}

type collector struct {
	issues []Issue
}

func (c *collector) add(path, format string, args ...any) {
	c.issues = append(c.issues, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (c *collector) err(subject string) error {
	if len(c.issues) == 0 {
		return nil
	}
	return &Error{Subject: subject, Issues: c.issues}
}

// Message validates any record kind that has rules. TrainTarget is checked on
// its own, without a component count; use TrainTarget for the full check.
func Message(m spec.Message, opts ...Option) error {
	switch v := m.(type) {
	case *spec.MasterSpec:
		return MasterSpec(v, opts...)
	case *spec.GridPoint:
		return GridPoint(v)
	case *spec.TrainTarget:
		return TrainTarget(v, nil)
	case *spec.TrainingGridSpec:
		return TrainingGrid(v, nil)
	default:
		return nil
	}
}

// MasterSpec checks component names, ordering of linked sources, channel
// bounds, resource references and, with a registry, module selectors.
func MasterSpec(ms *spec.MasterSpec, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &collector{}
	if len(ms.GetComponent()) == 0 {
		c.add("component", "no components")
	}

	// position of the first component with each name
	seen := make(map[string]int)
	for i, comp := range ms.GetComponent() {
		path := fmt.Sprintf("component[%d]", i)
		if comp == nil {
			c.add(path, "component is null")
			continue
		}
		name := comp.GetName()
		switch prev, dup := seen[name]; {
		case name == "":
			c.add(path+".name", "must be set")
		case dup:
			c.add(path+".name", "duplicate component %q (first at component[%d])", name, prev)
		default:
			seen[name] = i
		}
		checkComponent(c, path, i, comp, seen, &o)
	}
	return c.err("MasterSpec")
}

func checkComponent(c *collector, path string, index int, comp *spec.ComponentSpec, seen map[string]int, o *options) {
	if comp.GetTransitionSystem().GetRegisteredName() == "" {
		c.add(path+".transition_system.registered_name", "must be set")
	}
	if comp.GetNetworkUnit().GetRegisteredName() == "" {
		c.add(path+".network_unit.registered_name", "must be set")
	}
	if comp.GetNumActions() < 0 {
		c.add(path+".num_actions", "must be >= 0, got %d", comp.GetNumActions())
	}
	if a := comp.GetAttentionComponent(); a != "" {
		if at, ok := seen[a]; !ok || at >= index {
			c.add(path+".attention_component", "%q is not an earlier component", a)
		}
	}

	resources := make(map[string]bool)
	for j, r := range comp.GetResource() {
		rpath := fmt.Sprintf("%s.resource[%d]", path, j)
		switch {
		case r.GetName() == "":
			c.add(rpath+".name", "must be set")
		case resources[r.GetName()]:
			c.add(rpath+".name", "duplicate resource %q", r.GetName())
		default:
			resources[r.GetName()] = true
		}
		checkParts(c, rpath, r)
	}

	for j, f := range comp.GetFixedFeature() {
		fpath := fmt.Sprintf("%s.fixed_feature[%d]", path, j)
		if f.GetName() == "" {
			c.add(fpath+".name", "must be set")
		}
		if f.GetVocabularySize() <= 0 {
			c.add(fpath+".vocabulary_size", "must be > 0, got %d", f.GetVocabularySize())
		}
		if f.GetSize() <= 0 {
			c.add(fpath+".size", "must be > 0, got %d", f.GetSize())
		}
		checkEmbeddingDim(c, fpath, f.GetEmbeddingDim())
		checkResourceRef(c, fpath+".pretrained_embedding_matrix", f.GetPretrainedEmbeddingMatrix(), resources)
		checkResourceRef(c, fpath+".vocab", f.GetVocab(), resources)
	}

	for j, l := range comp.GetLinkedFeature() {
		lpath := fmt.Sprintf("%s.linked_feature[%d]", path, j)
		if l.GetName() == "" {
			c.add(lpath+".name", "must be set")
		}
		if l.GetSize() <= 0 {
			c.add(lpath+".size", "must be > 0, got %d", l.GetSize())
		}
		checkEmbeddingDim(c, lpath, l.GetEmbeddingDim())
		if l.GetSourceTranslator() == "" {
			c.add(lpath+".source_translator", "must be set")
		}
		if l.GetSourceLayer() == "" {
			c.add(lpath+".source_layer", "must be set")
		}

		src := l.GetSourceComponent()
		at, known := seen[src]
		switch {
		case src == "":
			c.add(lpath+".source_component", "must be set")
		case src == comp.GetName():
			if !o.allowSelfLinks {
				c.add(lpath+".source_component", "links to its own component %q", src)
			}
		case !known:
			c.add(lpath+".source_component", "%q is not an earlier component", src)
		case at >= index:
			c.add(lpath+".source_component", "%q is not an earlier component", src)
		}
	}

	if o.registry != nil {
		selectors := []struct {
			kind registry.Kind
			m    *spec.RegisteredModuleSpec
		}{
			{registry.KindTransitionSystem, comp.GetTransitionSystem()},
			{registry.KindNetworkUnit, comp.GetNetworkUnit()},
			{registry.KindBackend, comp.GetBackend()},
			{registry.KindComponentBuilder, comp.GetComponentBuilder()},
		}
		for _, s := range selectors {
			if s.m.GetRegisteredName() == "" {
				continue
			}
			if err := o.registry.Check(s.kind, s.m); err != nil {
				c.add(path+"."+string(s.kind), "%v", err)
			}
		}
	}
}

func checkEmbeddingDim(c *collector, path string, dim int32) {
	if dim == 0 || dim < spec.NotEmbedded {
		c.add(path+".embedding_dim", "must be > 0 or %d, got %d", spec.NotEmbedded, dim)
	}
}

func checkParts(c *collector, path string, r *spec.Resource) {
	if len(r.GetPart()) == 0 {
		c.add(path+".part", "no parts")
	}
	for k, p := range r.GetPart() {
		if p.GetFilePattern() == "" {
			c.add(fmt.Sprintf("%s.part[%d].file_pattern", path, k), "must be set")
		}
	}
}

// checkResourceRef accepts either an inline resource with parts or a name
// that matches a resource declared on the component.
func checkResourceRef(c *collector, path string, r *spec.Resource, declared map[string]bool) {
	if r == nil {
		return
	}
	if len(r.GetPart()) > 0 {
		checkParts(c, path, r)
		return
	}
	if r.GetName() == "" {
		c.add(path, "needs parts or the name of a component resource")
		return
	}
	if !declared[r.GetName()] {
		c.add(path+".name", "no component resource named %q", r.GetName())
	}
}

// GridPoint checks optimizer selection and hyperparameter ranges. Composite
// points are checked recursively; nested paths read like
// composite_optimizer_spec.method2.learning_method.
func GridPoint(gp *spec.GridPoint) error {
	c := &collector{}
	checkGridPoint(c, "", gp)
	return c.err("GridPoint")
}

func join(prefix, field string) string {
	if prefix == "" {
		return field
	}
	return prefix + "." + field
}

func checkGridPoint(c *collector, prefix string, gp *spec.GridPoint) {
	method := gp.GetLearningMethod()
	switch method {
	case spec.LearningMethodMomentum, spec.LearningMethodAdam, spec.LearningMethodLazyAdam:
		if gp.GetCompositeOptimizerSpec() != nil {
			c.add(join(prefix, "composite_optimizer_spec"), "set but learning_method is %q", method)
		}
	case spec.LearningMethodComposite:
		cs := gp.GetCompositeOptimizerSpec()
		cpath := join(prefix, "composite_optimizer_spec")
		if cs == nil {
			c.add(cpath, "required when learning_method is %q", method)
			break
		}
		if cs.GetMethod1() == nil {
			c.add(cpath+".method1", "must be set")
		} else {
			checkGridPoint(c, cpath+".method1", cs.GetMethod1())
		}
		if cs.GetMethod2() == nil {
			c.add(cpath+".method2", "must be set")
		} else {
			checkGridPoint(c, cpath+".method2", cs.GetMethod2())
		}
		if cs.GetSwitchAfterSteps() < 0 {
			c.add(cpath+".switch_after_steps", "must be >= 0, got %d", cs.GetSwitchAfterSteps())
		}
	default:
		c.add(join(prefix, "learning_method"), "unknown method %q", method)
	}

	doubles := []struct {
		field string
		value float64
	}{
		{"learning_rate", gp.GetLearningRate()},
		{"momentum", gp.GetMomentum()},
		{"decay_base", gp.GetDecayBase()},
		{"average_weight", gp.GetAverageWeight()},
		{"dropout_rate", gp.GetDropoutRate()},
		{"recurrent_dropout_rate", gp.GetRecurrentDropoutRate()},
		{"gradient_clip_norm", gp.GetGradientClipNorm()},
		{"adam_beta1", gp.GetAdamBeta1()},
		{"adam_beta2", gp.GetAdamBeta2()},
		{"adam_eps", gp.GetAdamEps()},
		{"l2_regularization_coefficient", gp.GetL2RegularizationCoefficient()},
		{"self_norm_alpha", gp.GetSelfNormAlpha()},
	}
	finite := make(map[string]bool, len(doubles))
	for _, d := range doubles {
		finite[d.field] = checkFinite(c, join(prefix, d.field), d.value)
	}

	if v := gp.GetDropoutRate(); finite["dropout_rate"] && (v <= 0 || v > 1) {
		c.add(join(prefix, "dropout_rate"), "keep probability must be in (0, 1], got %g", v)
	}
	if v := gp.GetRecurrentDropoutRate(); finite["recurrent_dropout_rate"] && (v <= 0 || v > 1) {
		c.add(join(prefix, "recurrent_dropout_rate"), "keep probability must be in (0, 1], got %g", v)
	}
	if v := gp.GetDecaySteps(); v <= 0 {
		c.add(join(prefix, "decay_steps"), "must be > 0, got %d", v)
	}
	if v := gp.GetAdamBeta1(); finite["adam_beta1"] && (v < 0 || v >= 1) {
		c.add(join(prefix, "adam_beta1"), "must be in [0, 1), got %g", v)
	}
	if v := gp.GetAdamBeta2(); finite["adam_beta2"] && (v < 0 || v >= 1) {
		c.add(join(prefix, "adam_beta2"), "must be in [0, 1), got %g", v)
	}
	if v := gp.GetL2RegularizationCoefficient(); finite["l2_regularization_coefficient"] && v < 0 {
		c.add(join(prefix, "l2_regularization_coefficient"), "must be >= 0, got %g", v)
	}
	if v := gp.GetGradientClipNorm(); finite["gradient_clip_norm"] && v < 0 {
		c.add(join(prefix, "gradient_clip_norm"), "must be >= 0, got %g", v)
	}
	if v := gp.GetLearningRate(); finite["learning_rate"] && v <= 0 {
		c.add(join(prefix, "learning_rate"), "must be > 0, got %g", v)
	}
}

// checkFinite reports NaN and infinite doubles. Range checks on such a
// value are skipped since every comparison with NaN is false.
func checkFinite(c *collector, path string, v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		c.add(path, "must be a finite number, got %g", v)
		return false
	}
	return true
}

// TrainTarget checks a target against the pipeline it trains. With a nil
// MasterSpec only the checks that need no component count run.
func TrainTarget(t *spec.TrainTarget, ms *spec.MasterSpec) error {
	c := &collector{}
	checkTarget(c, "", t, ms)
	return c.err(fmt.Sprintf("TrainTarget %q", t.GetName()))
}

func checkTarget(c *collector, prefix string, t *spec.TrainTarget, ms *spec.MasterSpec) {
	maxIndex := t.GetMaxIndex()
	if maxIndex < spec.DefaultMaxIndex {
		c.add(join(prefix, "max_index"), "must be %d or >= 0, got %d", spec.DefaultMaxIndex, maxIndex)
	}
	for i, w := range t.GetComponentWeights() {
		wpath := fmt.Sprintf("%s[%d]", join(prefix, "component_weights"), i)
		if checkFinite(c, wpath, w) && w < 0 {
			c.add(wpath, "must be >= 0, got %g", w)
		}
	}
	if ms == nil {
		return
	}

	n := len(ms.GetComponent())
	if l := len(t.GetComponentWeights()); l != 0 && l != n {
		c.add(join(prefix, "component_weights"), "has %d entries for %d components", l, n)
	}
	if l := len(t.GetUnrollUsingOracle()); l != 0 && l != n {
		c.add(join(prefix, "unroll_using_oracle"), "has %d entries for %d components", l, n)
	}
	if int(maxIndex) > n {
		c.add(join(prefix, "max_index"), "%d exceeds %d components", maxIndex, n)
	}
}

// TrainingGrid checks the base grid point and every target.
func TrainingGrid(g *spec.TrainingGridSpec, ms *spec.MasterSpec) error {
	c := &collector{}
	if g.GetBase() != nil {
		checkGridPoint(c, "base", g.GetBase())
	}
	names := make(map[string]bool)
	for i, t := range g.GetTarget() {
		path := fmt.Sprintf("target[%d]", i)
		if t.GetName() != "" {
			if names[t.GetName()] {
				c.add(path+".name", "duplicate target %q", t.GetName())
			}
			names[t.GetName()] = true
		}
		checkTarget(c, path, t, ms)
	}
	return c.err("TrainingGridSpec")
}
