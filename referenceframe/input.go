package referenceframe

import (
	"math"
	"slices"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
)

// Input is the value of one variable of a frame: radians for revolute variables, meters for prismatic ones.
type Input struct {
	Value float64
}

// FloatsToInputs wraps a slice of floats in Inputs.
func FloatsToInputs(values []float64) []Input {
	return lo.Map(values, func(v float64, _ int) Input { return Input{Value: v} })
}

// InputsToFloats unwraps Inputs to raw floats.
func InputsToFloats(inputs []Input) []float64 {
	return lo.Map(inputs, func(in Input, _ int) float64 { return in.Value })
}

// InputsL2Distance returns the euclidean distance between two input vectors, or +Inf when their lengths differ.
func InputsL2Distance(from, to []Input) float64 {
	if len(from) != len(to) {
		return math.Inf(1)
	}
	return floats.Distance(InputsToFloats(from), InputsToFloats(to), 2)
}

func copyInputs(inputs []Input) []Input {
	return slices.Clone(inputs)
}
