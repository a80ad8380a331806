// Package grid expands a base GridPoint into a hyperparameter search space.
//
// An Axis names one field by its dotted path and lists the values to try.
// Expand returns the cartesian product of all axes; the first axis varies
// slowest, so the output order is stable across runs.
package grid

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/netspec/pkg/codec"
	"github.com/aretw0/netspec/pkg/spec"
)

// MaxPoints bounds the size of an expansion.
const MaxPoints = 10000

var ErrTooManyPoints = errors.New("grid too large")

// Axis is one dimension of the search space.
type Axis struct {
	Path   string   `json:"path" yaml:"path"`
	Values []string `json:"values" yaml:"values"`
}

func (a Axis) String() string {
	return a.Path + "=" + strings.Join(a.Values, "|")
}

// ParseAxis reads "path=v1|v2|v3". Values are trimmed; duplicates are kept.
func ParseAxis(s string) (Axis, error) {
	k, v, err := codec.ParseOverride(s)
	if err != nil {
		return Axis{}, fmt.Errorf("axis: %w", err)
	}
	var values []string
	for _, part := range strings.Split(v, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			return Axis{}, fmt.Errorf("axis %q: empty value", k)
		}
		values = append(values, part)
	}
	return Axis{Path: k, Values: values}, nil
}

// ParseAxes parses each string with ParseAxis.
func ParseAxes(ss []string) ([]Axis, error) {
	axes := make([]Axis, 0, len(ss))
	for _, s := range ss {
		a, err := ParseAxis(s)
		if err != nil {
			return nil, err
		}
		axes = append(axes, a)
	}
	return axes, nil
}

// Point is one expanded configuration.
type Point struct {
	// Overrides holds the axis values that produced this point.
	Overrides map[string]string `json:"overrides"`
	GridPoint *spec.GridPoint   `json:"grid_point"`
}

// Label renders the overrides in axis order, e.g. "learning_rate=0.1,seed=2".
func (p Point) Label(axes []Axis) string {
	parts := make([]string, 0, len(axes))
	for _, a := range axes {
		parts = append(parts, a.Path+"="+p.Overrides[a.Path])
	}
	return strings.Join(parts, ",")
}

// Size returns the number of points Expand would produce.
func Size(axes []Axis) int {
	n := 1
	for _, a := range axes {
		n *= len(a.Values)
		if n > MaxPoints {
			return n
		}
	}
	return n
}

// Expand returns one point per combination of axis values. Each point is a
// clone of base with that combination applied; base itself is not modified.
// With no axes the result is a single clone of base.
func Expand(base *spec.GridPoint, axes []Axis) ([]Point, error) {
	seen := make(map[string]bool, len(axes))
	for _, a := range axes {
		if a.Path == "" {
			return nil, fmt.Errorf("axis with empty path")
		}
		if len(a.Values) == 0 {
			return nil, fmt.Errorf("axis %q has no values", a.Path)
		}
		if seen[a.Path] {
			return nil, fmt.Errorf("axis %q given twice", a.Path)
		}
		seen[a.Path] = true
	}
	if n := Size(axes); n > MaxPoints {
		return nil, fmt.Errorf("%w: more than %d points", ErrTooManyPoints, MaxPoints)
	}
	if base == nil {
		base = &spec.GridPoint{}
	}

	var points []Point
	idx := make([]int, len(axes))
	for {
		overrides := make(map[string]string, len(axes))
		for i, a := range axes {
			overrides[a.Path] = a.Values[idx[i]]
		}
		gp := base.Clone()
		if err := codec.ApplyOverrides(gp, overrides); err != nil {
			return nil, fmt.Errorf("point %d: %w", len(points), err)
		}
		points = append(points, Point{Overrides: overrides, GridPoint: gp})

		// odometer increment, last axis fastest
		i := len(axes) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(axes[i].Values) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return points, nil
		}
	}
}
