package kde

const (
	ClipUpperZScore = 3.0
	ClipLowerZScore = 3.0

	KdeMinCalculatePointCnt = 5

	// the grid has at least KdeMinGridSize points
	KdeMinGridSize = 100
	// grid extends KdeDefaultCut * bw past the lowest and highest samples
	KdeDefaultCut = 3.0
	// gauss-legendre points per grid cell when integrating the cdf
	KdeQuadratureOrder = 50
)

var (
	AllCalculateQuantiles = []float64{0.01, 0.02, 0.03, 0.04, 0.05, 0.06, 0.07, 0.08, 0.09, 0.1, 0.11,
		0.12, 0.5, 0.9, 0.91, 0.92, 0.93, 0.94, 0.95, 0.96, 0.97, 0.98, 0.99}
)
