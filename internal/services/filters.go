package services

import "math"

// gaussianSmooth applies a 1-D Gaussian filter with the given sigma. The
// kernel is truncated at 4 sigma and boundaries are handled by reflection,
// so a constant input stays constant.
func gaussianSmooth(x []float64, sigma float64) []float64 {
	if len(x) == 0 || sigma <= 0 {
		out := make([]float64, len(x))
		copy(out, x)
		return out
	}

	radius := int(4*sigma + 0.5)
	if radius < 1 {
		radius = 1
	}

	kernel := make([]float64, 2*radius+1)
	var sum float64
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-0.5 * float64(i) * float64(i) / (sigma * sigma))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	n := len(x)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var acc float64
		for k := -radius; k <= radius; k++ {
			acc += kernel[k+radius] * x[reflectIndex(i+k, n)]
		}
		out[i] = acc
	}
	return out
}

// reflectIndex maps an out-of-range index back into [0,n) by mirroring at
// the edges, duplicating the edge sample.
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		}
		if i >= n {
			i = 2*n - i - 1
		}
	}
	return i
}

// findPeaks returns the indices of local maxima separated by at least
// minDistance samples and with topographic prominence of at least
// minProminence. Peaks are returned in ascending index order.
func findPeaks(x []float64, minDistance int, minProminence float64) []int {
	n := len(x)
	if n < 3 {
		return nil
	}

	var candidates []int
	for i := 1; i < n-1; i++ {
		if x[i] > x[i-1] && x[i] > x[i+1] {
			candidates = append(candidates, i)
		}
	}

	var prominent []int
	for _, p := range candidates {
		if peakProminence(x, p) >= minProminence {
			prominent = append(prominent, p)
		}
	}

	if minDistance < 1 {
		minDistance = 1
	}

	// Resolve distance conflicts in favor of the taller peak.
	order := make([]int, len(prominent))
	copy(order, prominent)
	sortByHeightDesc(x, order)

	keep := make(map[int]bool, len(order))
	for _, p := range order {
		ok := true
		for q := range keep {
			if abs(p-q) < minDistance {
				ok = false
				break
			}
		}
		if ok {
			keep[p] = true
		}
	}

	var peaks []int
	for _, p := range prominent {
		if keep[p] {
			peaks = append(peaks, p)
		}
	}
	return peaks
}

// peakProminence measures how far a peak rises above the higher of the two
// valleys separating it from taller terrain on either side.
func peakProminence(x []float64, peak int) float64 {
	height := x[peak]

	leftMin := height
	for i := peak - 1; i >= 0; i-- {
		if x[i] > height {
			break
		}
		if x[i] < leftMin {
			leftMin = x[i]
		}
	}

	rightMin := height
	for i := peak + 1; i < len(x); i++ {
		if x[i] > height {
			break
		}
		if x[i] < rightMin {
			rightMin = x[i]
		}
	}

	base := leftMin
	if rightMin > base {
		base = rightMin
	}
	return height - base
}

func sortByHeightDesc(x []float64, idx []int) {
	// Insertion sort; candidate counts are small.
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && x[idx[j]] > x[idx[j-1]]; j-- {
			idx[j], idx[j-1] = idx[j-1], idx[j]
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// diff returns successive differences, x[i+1]-x[i].
func diff(x []float64) []float64 {
	if len(x) <= 1 {
		return []float64{}
	}
	out := make([]float64, len(x)-1)
	for i := 1; i < len(x); i++ {
		out[i-1] = x[i] - x[i-1]
	}
	return out
}

// safeFloat maps NaN and infinities to 0 so every reported value is finite.
func safeFloat(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(safeFloat(v)*10) / 10
}

func round2(v float64) float64 {
	return math.Round(safeFloat(v)*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// popStd is the population standard deviation (divisor n).
func popStd(x []float64) float64 {
	return math.Sqrt(popVariance(x))
}

// popVariance is the population variance (divisor n).
func popVariance(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var mean float64
	for _, v := range x {
		mean += v
	}
	mean /= float64(len(x))

	var acc float64
	for _, v := range x {
		d := v - mean
		acc += d * d
	}
	return acc / float64(len(x))
}
