package kde

import "github.com/uyouii/weighted-kde/model"

func factorial(n int) float64 {
	result := 1.0
	for i := 2; i <= n; i++ {
		result *= float64(i)
	}
	return result
}

func linspace(start, stop float64, num int) []float64 {
	if num < 2 {
		return []float64{start}
	}
	step := (stop - start) / float64(num-1)
	grid := make([]float64, num)
	for i := 0; i < num; i++ {
		grid[i] = start + float64(i)*step
	}
	return grid
}

// Clip keeps the values inside [clip.Lower, clip.Upper].
func Clip(x []float64, clip *model.Clip) []float64 {
	if clip == nil {
		// do nothing
		return x
	}

	res := []float64{}
	for _, v := range x {
		if v >= clip.Lower && v <= clip.Upper {
			res = append(res, v)
		}
	}
	return res
}

func IntMax(a, b int) int {
	if a > b {
		return a
	}
	return b
}
