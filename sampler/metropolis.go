package sampler

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/uyouii/weighted-kde/common"
	"github.com/uyouii/weighted-kde/utils"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/samplemv"
)

// MetropolisSampler samples a Model with gonum's random walk
// Metropolis-Hastings in the unconstrained space.
// Lower bounded parameters are mapped with x = lower + exp(u).
// It is safe for concurrent use; a Sample call keeps the parameters of
// interest it started with.
type MetropolisSampler struct {
	model Model
	data  Data
	seed  uint64

	// offsets[i] is the position of Params[i] in the flat parameter vector
	offsets []int

	mu sync.RWMutex
	oi []int
}

var _ Sampler = (*MetropolisSampler)(nil)

func NewMetropolisSampler(model Model, data Data, seed uint64) (*MetropolisSampler, error) {
	if err := model.validate(); err != nil {
		return nil, err
	}
	s := &MetropolisSampler{
		model:   model,
		data:    data,
		seed:    seed,
		offsets: make([]int, len(model.Params)),
		oi:      make([]int, len(model.Params)),
	}
	off := 0
	for i, p := range model.Params {
		s.offsets[i] = off
		s.oi[i] = i
		off += p.Size()
	}
	return s, nil
}

func (s *MetropolisSampler) ParamNames() []string {
	res := make([]string, len(s.model.Params))
	for i, p := range s.model.Params {
		res[i] = p.Name
	}
	return res
}

func (s *MetropolisSampler) ParamDims() [][]int {
	res := make([][]int, len(s.model.Params))
	for i, p := range s.model.Params {
		res[i] = append([]int{}, p.Dims...)
	}
	return res
}

func (s *MetropolisSampler) ParamNamesOI() []string {
	oi := s.paramsOI()
	res := make([]string, len(oi))
	for k, i := range oi {
		res[k] = s.model.Params[i].Name
	}
	return res
}

func (s *MetropolisSampler) ParamDimsOI() [][]int {
	oi := s.paramsOI()
	res := make([][]int, len(oi))
	for k, i := range oi {
		res[k] = append([]int{}, s.model.Params[i].Dims...)
	}
	return res
}

func (s *MetropolisSampler) ParamFlatNamesOI() []string {
	return s.flatNames(s.paramsOI())
}

// paramsOI returns the current parameters of interest. UpdateParamOI replaces
// the slice instead of mutating it, so the result can be read without the lock.
func (s *MetropolisSampler) paramsOI() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.oi
}

func (s *MetropolisSampler) flatNames(oi []int) []string {
	res := []string{}
	for _, i := range oi {
		res = append(res, s.model.Params[i].FlatNames()...)
	}
	return res
}

// UpdateParamOI restricts the kept draws to names, kept in declaration order.
func (s *MetropolisSampler) UpdateParamOI(names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("empty parameters of interest: %w", common.ErrorInvalidValue)
	}
	want := map[string]bool{}
	for _, name := range names {
		want[name] = true
	}
	known := map[string]bool{}
	oi := []int{}
	for i, p := range s.model.Params {
		known[p.Name] = true
		if want[p.Name] {
			oi = append(oi, i)
		}
	}
	for _, name := range names {
		if !known[name] {
			return fmt.Errorf("unknown parameter %q: %w", name, common.ErrorInvalidValue)
		}
	}
	s.mu.Lock()
	s.oi = oi
	s.mu.Unlock()
	return nil
}

func (s *MetropolisSampler) NumParsUnconstrained() int {
	return s.model.size()
}

func (s *MetropolisSampler) ConstrainedParamNames() []string {
	res := []string{}
	for _, p := range s.model.Params {
		res = append(res, p.FlatNames()...)
	}
	return res
}

// UnconstrainedParamNames matches ConstrainedParamNames, every transform is
// elementwise.
func (s *MetropolisSampler) UnconstrainedParamNames() []string {
	return s.ConstrainedParamNames()
}

func (s *MetropolisSampler) checkLen(v []float64) error {
	if len(v) != s.model.size() {
		return fmt.Errorf("model %q has %d parameters, got %d: %w",
			s.model.Name, s.model.size(), len(v), common.ErrorDimensionMismatch)
	}
	return nil
}

func (s *MetropolisSampler) UnconstrainPars(par []float64) ([]float64, error) {
	if err := s.checkLen(par); err != nil {
		return nil, err
	}
	res := make([]float64, len(par))
	for i, p := range s.model.Params {
		for j := s.offsets[i]; j < s.offsets[i]+p.Size(); j++ {
			if !p.HasLower {
				res[j] = par[j]
				continue
			}
			if !(par[j] > p.Lower) {
				return nil, fmt.Errorf("%s element %d = %v is not above %v: %w",
					p.Name, j-s.offsets[i], par[j], p.Lower, common.ErrorInvalidValue)
			}
			res[j] = math.Log(par[j] - p.Lower)
		}
	}
	return res, nil
}

func (s *MetropolisSampler) ConstrainPars(upar []float64) ([]float64, error) {
	if err := s.checkLen(upar); err != nil {
		return nil, err
	}
	par, _ := s.constrain(upar)
	return par, nil
}

// constrain also returns the log jacobian of the transform.
func (s *MetropolisSampler) constrain(upar []float64) ([]float64, float64) {
	res := make([]float64, len(upar))
	var logJac float64
	for i, p := range s.model.Params {
		for j := s.offsets[i]; j < s.offsets[i]+p.Size(); j++ {
			if !p.HasLower {
				res[j] = upar[j]
				continue
			}
			res[j] = p.Lower + math.Exp(upar[j])
			logJac += upar[j]
		}
	}
	return res, logJac
}

func (s *MetropolisSampler) logProb(upar []float64, jacobian bool) float64 {
	par, logJac := s.constrain(upar)
	lp := s.model.LogDensity(par, s.data)
	if jacobian {
		lp += logJac
	}
	return lp
}

func (s *MetropolisSampler) LogProb(upar []float64, jacobian bool) (float64, error) {
	if err := s.checkLen(upar); err != nil {
		return 0, err
	}
	return s.logProb(upar, jacobian), nil
}

// GradLogProb returns the log density and its central finite difference gradient.
func (s *MetropolisSampler) GradLogProb(upar []float64, jacobian bool) (float64, []float64, error) {
	if err := s.checkLen(upar); err != nil {
		return 0, nil, err
	}
	f := func(u []float64) float64 {
		return s.logProb(u, jacobian)
	}
	grad := fd.Gradient(nil, f, upar, &fd.Settings{Formula: fd.Central})
	return f(upar), grad, nil
}

type logProbFunc func(x []float64) float64

var _ distmv.LogProber = logProbFunc(nil)

func (f logProbFunc) LogProb(x []float64) float64 {
	return f(x)
}

func (s *MetropolisSampler) Sample(ctx context.Context, cfg Config) (*Draws, error) {
	logger := utils.GetLogger(ctx)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Iter <= 0 || cfg.Warmup < 0 || cfg.Thin < 0 || cfg.ProposalSD < 0 {
		return nil, fmt.Errorf("sampler config %+v: %w", cfg, common.ErrorInvalidValue)
	}
	thin := cfg.Thin
	if thin == 0 {
		thin = 1
	}
	proposalSD := cfg.ProposalSD
	if proposalSD == 0 {
		proposalSD = 1
	}

	dim := s.model.size()
	initial := make([]float64, dim)
	if cfg.Init != nil {
		u, err := s.UnconstrainPars(cfg.Init)
		if err != nil {
			logger.Error("UnconstrainPars failed", zap.Error(err), zap.String("model", s.model.Name))
			return nil, err
		}
		initial = u
	}
	if lp := s.logProb(initial, true); math.IsNaN(lp) || math.IsInf(lp, 0) {
		return nil, fmt.Errorf("log density %v at the initial point: %w", lp, common.ErrorNumericDegeneracy)
	}

	src := rand.NewSource(s.seed)
	sigma := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		sigma.SetSym(i, i, proposalSD*proposalSD)
	}
	proposal, ok := samplemv.NewProposalNormal(sigma, src)
	if !ok {
		return nil, fmt.Errorf("proposal sd %v: %w", proposalSD, common.ErrorInvalidValue)
	}

	mh := samplemv.MetropolisHastingser{
		Initial: initial,
		Target: logProbFunc(func(u []float64) float64 {
			return s.logProb(u, true)
		}),
		Proposal: proposal,
		Src:      src,
		BurnIn:   cfg.Warmup,
		Rate:     thin,
	}
	batch := mat.NewDense(cfg.Iter, dim, nil)
	mh.Sample(batch)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	oi := s.paramsOI()
	names := s.flatNames(oi)
	values := mat.NewDense(cfg.Iter, len(names), nil)
	for r := 0; r < cfg.Iter; r++ {
		par, _ := s.constrain(batch.RawRowView(r))
		col := 0
		for _, i := range oi {
			p := s.model.Params[i]
			for j := s.offsets[i]; j < s.offsets[i]+p.Size(); j++ {
				values.Set(r, col, par[j])
				col++
			}
		}
	}

	logger.Info("sampling done", zap.String("model", s.model.Name), zap.Int("iter", cfg.Iter),
		zap.Int("warmup", cfg.Warmup), zap.Int("thin", thin), zap.Uint64("seed", s.seed))

	return &Draws{Names: names, Values: values}, nil
}
