// Package testutil provides deterministic synthetic signals and chart images
// for the pipeline tests. Nothing here is random: every helper produces the
// same output for the same arguments.
package testutil

import (
	"image"
	"image/color"
	"math"
)

// SpikeTrain builds an ECG-like signal of the given duration with one
// Gaussian spike per beat at the given heart rate. Spike width is 20 ms,
// amplitude 1, on a zero baseline.
func SpikeTrain(durationSec, rate, bpm float64) []float64 {
	n := int(durationSec * rate)
	out := make([]float64, n)

	period := 60 / bpm * rate
	sigma := 0.010 * rate
	for center := period / 2; center < float64(n); center += period {
		lo := int(center - 4*sigma)
		hi := int(center + 4*sigma)
		for i := lo; i <= hi; i++ {
			if i < 0 || i >= n {
				continue
			}
			d := (float64(i) - center) / sigma
			out[i] += math.Exp(-0.5 * d * d)
		}
	}
	return out
}

// UniformRR returns n identical RR intervals in milliseconds.
func UniformRR(n int, ms float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = ms
	}
	return out
}

// AlternatingRR returns n RR intervals oscillating base±amplitude, giving a
// series with known nonzero short-term variability.
func AlternatingRR(n int, base, amplitude float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i%2 == 0 {
			out[i] = base + amplitude
		} else {
			out[i] = base - amplitude
		}
	}
	return out
}

// ChartImage draws a synthetic exported ECG chart: a white background with
// the given number of rows, each holding an orange spike train. beatsPerRow
// spikes are spaced evenly across each row. The trace is drawn thick enough
// to survive a 3x3 morphological opening.
func ChartImage(width, height, rows, beatsPerRow int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	white := color.RGBA{255, 255, 255, 255}
	orange := color.RGBA{255, 140, 0, 255}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, white)
		}
	}

	rowHeight := height / rows
	spikeHeight := rowHeight / 4
	for r := 0; r < rows; r++ {
		centerY := r*rowHeight + rowHeight/2
		spacing := width / beatsPerRow
		for x := 0; x < width; x++ {
			y := centerY
			// Triangular spike around each beat position, pointing up in
			// image coordinates (R peaks are drawn upward on real charts).
			beatX := (x/spacing)*spacing + spacing/2
			d := x - beatX
			if d < 0 {
				d = -d
			}
			if halfWidth := 6; d < halfWidth {
				y = centerY - spikeHeight*(halfWidth-d)/halfWidth
			}
			for dy := -2; dy <= 2; dy++ {
				if y+dy >= 0 && y+dy < height {
					img.Set(x, y+dy, orange)
				}
			}
		}
	}
	return img
}

// BlankImage is a plain white image with no trace pixels.
func BlankImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	white := color.RGBA{255, 255, 255, 255}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, white)
		}
	}
	return img
}
