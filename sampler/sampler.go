// Package sampler describes the probabilistic model sampler whose draws feed
// the density estimators, and provides a Metropolis-Hastings implementation
// backed by gonum. The kde package does not depend on it.
package sampler

import (
	"context"
	"fmt"

	"github.com/uyouii/weighted-kde/common"
	"gonum.org/v1/gonum/mat"
)

// Sampler is a compiled model bound to its data and seed.
//
// Parameter vectors passed to LogProb, GradLogProb and ConstrainPars live in
// the unconstrained space, in the order of UnconstrainedParamNames. Vectors
// returned by ConstrainPars and accepted by UnconstrainPars are in the order
// of ConstrainedParamNames.
type Sampler interface {
	// Sample draws from the posterior. Only parameters of interest are kept.
	Sample(ctx context.Context, cfg Config) (*Draws, error)

	ParamNames() []string
	ParamDims() [][]int
	ParamNamesOI() []string
	ParamDimsOI() [][]int
	// ParamFlatNamesOI returns one name per scalar element of the parameters of interest.
	ParamFlatNamesOI() []string
	UpdateParamOI(names []string) error

	LogProb(upar []float64, jacobian bool) (float64, error)
	GradLogProb(upar []float64, jacobian bool) (float64, []float64, error)

	UnconstrainPars(par []float64) ([]float64, error)
	ConstrainPars(upar []float64) ([]float64, error)
	NumParsUnconstrained() int
	UnconstrainedParamNames() []string
	ConstrainedParamNames() []string
}

type Config struct {
	// Iter is the number of kept draws.
	Iter int
	// Warmup draws are discarded before the first kept draw.
	Warmup int
	// Thin keeps one draw every Thin steps, 0 is treated as 1.
	Thin int
	// Init is the constrained starting point, nil starts at 0 in the
	// unconstrained space.
	Init []float64
	// ProposalSD is the standard deviation of the gaussian random walk in
	// the unconstrained space, 0 is treated as 1.
	ProposalSD float64
}

// Draws holds one row per kept draw and one column per flat parameter name.
type Draws struct {
	Names  []string
	Values *mat.Dense
}

func (d *Draws) column(name string) (int, error) {
	for j, n := range d.Names {
		if n == name {
			return j, nil
		}
	}
	return 0, fmt.Errorf("no draws for %q: %w", name, common.ErrorInvalidValue)
}

// Column returns the draws of a scalar element, usable as a 1-D sample set.
func (d *Draws) Column(name string) ([]float64, error) {
	j, err := d.column(name)
	if err != nil {
		return nil, err
	}
	return mat.Col(nil, j, d.Values), nil
}

// Matrix returns the draws of the named elements as an n x len(names) sample
// matrix.
func (d *Draws) Matrix(names ...string) (*mat.Dense, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no names: %w", common.ErrorInvalidValue)
	}
	n, _ := d.Values.Dims()
	res := mat.NewDense(n, len(names), nil)
	for k, name := range names {
		j, err := d.column(name)
		if err != nil {
			return nil, err
		}
		res.SetCol(k, mat.Col(nil, j, d.Values))
	}
	return res, nil
}
