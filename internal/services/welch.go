package services

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// welchPSD estimates the one-sided power spectral density of x via Welch's
// method: Hann-windowed segments of length nperseg with 50% overlap, mean
// removal per segment, and density scaling. It returns the frequency bins
// and the averaged periodogram; both are nil when x is too short.
func welchPSD(x []float64, fs float64, nperseg int) (freqs, psd []float64) {
	if nperseg > len(x) {
		nperseg = len(x)
	}
	if nperseg < 2 || fs <= 0 {
		return nil, nil
	}

	win := window.Hann(ones(nperseg))
	var winPower float64
	for _, w := range win {
		winPower += w * w
	}

	step := nperseg - nperseg/2
	fft := fourier.NewFFT(nperseg)
	nBins := nperseg/2 + 1

	psd = make([]float64, nBins)
	segment := make([]float64, nperseg)
	coeffs := make([]complex128, nBins)
	segments := 0

	for start := 0; start+nperseg <= len(x); start += step {
		copy(segment, x[start:start+nperseg])

		var mean float64
		for _, v := range segment {
			mean += v
		}
		mean /= float64(nperseg)
		for i := range segment {
			segment[i] = (segment[i] - mean) * win[i]
		}

		coeffs = fft.Coefficients(coeffs, segment)
		for i, c := range coeffs {
			psd[i] += cmplx.Abs(c) * cmplx.Abs(c)
		}
		segments++
	}
	if segments == 0 {
		return nil, nil
	}

	scale := 1 / (fs * winPower * float64(segments))
	for i := range psd {
		psd[i] *= scale
	}
	// One-sided spectrum: double everything except DC and, for even segment
	// lengths, the Nyquist bin.
	last := nBins - 1
	for i := 1; i < nBins; i++ {
		if i == last && nperseg%2 == 0 {
			continue
		}
		psd[i] *= 2
	}

	freqs = make([]float64, nBins)
	for i := range freqs {
		freqs[i] = fs * float64(i) / float64(nperseg)
	}
	return freqs, psd
}

// bandPower integrates the PSD over [lo, hi) with the trapezoidal rule.
// Bands covering fewer than two bins contribute zero.
func bandPower(freqs, psd []float64, lo, hi float64) float64 {
	var fs, ps []float64
	for i, f := range freqs {
		if f >= lo && f < hi {
			fs = append(fs, f)
			ps = append(ps, psd[i])
		}
	}
	if len(fs) < 2 {
		return 0
	}
	var power float64
	for i := 1; i < len(fs); i++ {
		power += 0.5 * (ps[i] + ps[i-1]) * (fs[i] - fs[i-1])
	}
	return power
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}
