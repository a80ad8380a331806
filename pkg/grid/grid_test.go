package grid_test

import (
	"testing"

	"github.com/aretw0/netspec/internal/testutils"
	"github.com/aretw0/netspec/pkg/grid"
	"github.com/aretw0/netspec/pkg/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAxis(t *testing.T) {
	a, err := grid.ParseAxis(" learning_rate = 0.1 | 0.05|0.01 ")
	require.NoError(t, err)
	assert.Equal(t, grid.Axis{Path: "learning_rate", Values: []string{"0.1", "0.05", "0.01"}}, a)
	assert.Equal(t, "learning_rate=0.1|0.05|0.01", a.String())

	_, err = grid.ParseAxis("learning_rate")
	assert.Error(t, err)
	_, err = grid.ParseAxis("learning_rate=0.1||0.2")
	assert.Error(t, err)
	_, err = grid.ParseAxis("=0.1")
	assert.Error(t, err)
}

func TestExpand_CartesianOrder(t *testing.T) {
	axes, err := grid.ParseAxes([]string{
		"learning_rate=0.1|0.05",
		"seed=1|2|3",
	})
	require.NoError(t, err)
	assert.Equal(t, 6, grid.Size(axes))

	points, err := grid.Expand(&spec.GridPoint{Momentum: spec.Ptr(0.8)}, axes)
	require.NoError(t, err)
	require.Len(t, points, 6)

	var labels []string
	for _, p := range points {
		labels = append(labels, p.Label(axes))
		assert.Equal(t, 0.8, p.GridPoint.GetMomentum())
	}
	assert.Equal(t, []string{
		"learning_rate=0.1,seed=1",
		"learning_rate=0.1,seed=2",
		"learning_rate=0.1,seed=3",
		"learning_rate=0.05,seed=1",
		"learning_rate=0.05,seed=2",
		"learning_rate=0.05,seed=3",
	}, labels)
	assert.Equal(t, 0.05, points[4].GridPoint.GetLearningRate())
	assert.Equal(t, int32(2), points[4].GridPoint.GetSeed())
}

func TestExpand_NestedPathsAndIsolation(t *testing.T) {
	base := testutils.CompositeGridPoint(1)
	axes := []grid.Axis{{
		Path:   "composite_optimizer_spec.method1.adam_beta1",
		Values: []string{"0.8", "0.95"},
	}}

	points, err := grid.Expand(base, axes)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, 0.8, points[0].GridPoint.GetCompositeOptimizerSpec().GetMethod1().GetAdamBeta1())
	assert.Equal(t, 0.95, points[1].GridPoint.GetCompositeOptimizerSpec().GetMethod1().GetAdamBeta1())
	assert.Equal(t, 0.9, base.GetCompositeOptimizerSpec().GetMethod1().GetAdamBeta1(), "base must not change")
	assert.NotSame(t, points[0].GridPoint.CompositeOptimizerSpec, points[1].GridPoint.CompositeOptimizerSpec)
}

func TestExpand_NoAxes(t *testing.T) {
	base := &spec.GridPoint{Seed: spec.Ptr(int32(4))}
	points, err := grid.Expand(base, nil)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, base, points[0].GridPoint)
	assert.NotSame(t, base, points[0].GridPoint)

	points, err = grid.Expand(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.1, points[0].GridPoint.GetLearningRate())
}

func TestExpand_Errors(t *testing.T) {
	_, err := grid.Expand(nil, []grid.Axis{{Path: "seed"}})
	assert.Error(t, err)

	_, err = grid.Expand(nil, []grid.Axis{{Path: "seed", Values: []string{"1"}}, {Path: "seed", Values: []string{"2"}}})
	assert.Error(t, err)

	_, err = grid.Expand(nil, []grid.Axis{{Path: "warmup", Values: []string{"1"}}})
	assert.Error(t, err)

	_, err = grid.Expand(nil, []grid.Axis{{Path: "seed", Values: []string{"one"}}})
	assert.Error(t, err)

	big := make([]string, 101)
	for i := range big {
		big[i] = "1"
	}
	_, err = grid.Expand(nil, []grid.Axis{
		{Path: "seed", Values: big},
		{Path: "decay_steps", Values: big},
	})
	assert.ErrorIs(t, err, grid.ErrTooManyPoints)
}
