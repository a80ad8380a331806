/*
Package spec defines the configuration records consumed by a multi-component,
transition-based network trainer.

The records are passive data: a MasterSpec lists ComponentSpecs in dependency
order, each component selects its transition system, network unit, backend and
optional builder by registered name, and declares the fixed and linked feature
channels it reads. Hyperparameters live in GridPoint, which may nest two further
GridPoints through a CompositeOptimizerSpec. TrainTarget selects which components
a training run weights and how far down the pipeline it trains.

# Presence and defaults

Every scalar field is optional. Unset fields are nil pointers and their getters
return the documented default, so a zero GridPoint reads a learning rate of 0.1
and a staircase decay. Setting a field to its default value is distinct from
leaving it unset and survives every codec round trip.

	gp := &spec.GridPoint{LearningRate: spec.Ptr(0.05)}
	gp.GetLearningRate()   // 0.05
	gp.GetDecayStaircase() // true (default)

# Invariants

Component names are unique, linked feature channels reference earlier
components, and train-target sequences are empty or match the component count.
None of this is enforced by the types; see internal/validator.
*/
package spec
