package sampler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/uyouii/weighted-kde/common"
)

// Data is the input data of a model, by variable name.
type Data map[string][]float64

type Param struct {
	Name string
	// Dims is empty for a scalar.
	Dims []int
	// Lower bounds every element when HasLower is set.
	Lower    float64
	HasLower bool
}

func (p Param) Size() int {
	size := 1
	for _, d := range p.Dims {
		size *= d
	}
	return size
}

// FlatNames names every element, first index fastest: theta[1,1], theta[2,1], ...
func (p Param) FlatNames() []string {
	if len(p.Dims) == 0 {
		return []string{p.Name}
	}
	res := make([]string, 0, p.Size())
	idx := make([]int, len(p.Dims))
	parts := make([]string, len(p.Dims))
	for n := 0; n < p.Size(); n++ {
		for i, v := range idx {
			parts[i] = strconv.Itoa(v + 1)
		}
		res = append(res, p.Name+"["+strings.Join(parts, ",")+"]")
		for i := range idx {
			idx[i]++
			if idx[i] < p.Dims[i] {
				break
			}
			idx[i] = 0
		}
	}
	return res
}

// Model is a model definition: its parameters, in declaration order, and the
// unnormalized log density over the constrained parameter vector.
type Model struct {
	Name       string
	Params     []Param
	LogDensity func(par []float64, data Data) float64
}

func (m *Model) validate() error {
	if m.LogDensity == nil {
		return fmt.Errorf("model %q has no log density: %w", m.Name, common.ErrorInvalidValue)
	}
	if len(m.Params) == 0 {
		return fmt.Errorf("model %q has no parameters: %w", m.Name, common.ErrorInvalidValue)
	}
	seen := map[string]bool{}
	for _, p := range m.Params {
		if p.Name == "" || seen[p.Name] {
			return fmt.Errorf("model %q: bad or duplicate parameter name %q: %w",
				m.Name, p.Name, common.ErrorInvalidValue)
		}
		seen[p.Name] = true
		for _, d := range p.Dims {
			if d <= 0 {
				return fmt.Errorf("parameter %q has dims %v: %w", p.Name, p.Dims, common.ErrorInvalidValue)
			}
		}
	}
	return nil
}

func (m *Model) size() int {
	n := 0
	for _, p := range m.Params {
		n += p.Size()
	}
	return n
}
