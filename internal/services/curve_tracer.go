package services

import (
	"image"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/dcastanera/hrvision/internal/config"
	"github.com/dcastanera/hrvision/internal/utils"
)

// CurveTracer recovers the plotted waveform from a photographed or exported
// chart image. It isolates the trace color in HSV space, cleans the mask,
// locates the chart rows, and reads one amplitude sample per pixel column.
type CurveTracer struct {
	chart  config.ChartConfig
	trace  config.TraceConfig
	logger *logrus.Logger
}

// NewCurveTracer creates a new curve tracer for the given chart layout.
func NewCurveTracer(chart config.ChartConfig, trace config.TraceConfig, logger *logrus.Logger) *CurveTracer {
	return &CurveTracer{
		chart:  chart,
		trace:  trace,
		logger: logger,
	}
}

// rowBand is a contiguous vertical interval [Start, End) holding one sweep
// of the chart. Bands are ordered top to bottom and never overlap.
type rowBand struct {
	Start int
	End   int
}

// traceMask is a binary grid marking pixels classified as trace.
type traceMask struct {
	w, h int
	bits []bool
}

func newTraceMask(w, h int) *traceMask {
	return &traceMask{w: w, h: h, bits: make([]bool, w*h)}
}

func (m *traceMask) at(x, y int) bool {
	return m.bits[y*m.w+x]
}

func (m *traceMask) set(x, y int, v bool) {
	m.bits[y*m.w+x] = v
}

// Trace extracts one ordered sample sequence per detected chart row. It
// fails with ExtractionError when the image holds no usable trace pixels.
func (t *CurveTracer) Trace(img image.Image) ([][]float64, error) {
	mask := t.buildMask(img)
	mask = morphClose(mask)
	mask = morphOpen(mask)

	bands := t.detectRowBands(mask)

	signals := make([][]float64, 0, len(bands))
	for _, band := range bands {
		signal := extractRowSignal(mask, band)
		if len(signal) > 0 {
			signals = append(signals, signal)
		}
	}

	if len(signals) == 0 {
		return nil, utils.NewExtractionError("no trace pixels found in image")
	}

	t.logger.WithFields(logrus.Fields{
		"bands":  len(bands),
		"usable": len(signals),
		"width":  mask.w,
		"height": mask.h,
	}).Debug("Curve extraction complete")

	return signals, nil
}

// buildMask classifies pixels as trace using the union of the primary and
// fallback hue bands.
func (t *CurveTracer) buildMask(img image.Image) *traceMask {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	mask := newTraceMask(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			hue, sat, val := rgbToHSV(float64(r)/65535, float64(g)/65535, float64(b)/65535)
			if inHSVRange(hue, sat, val, t.trace.Primary) || inHSVRange(hue, sat, val, t.trace.Fallback) {
				mask.set(x, y, true)
			}
		}
	}
	return mask
}

// rgbToHSV converts unit-range RGB to hue in degrees [0,360) and unit-range
// saturation and value.
func rgbToHSV(r, g, b float64) (hue, sat, val float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	val = max

	delta := max - min
	if max > 0 {
		sat = delta / max
	}
	if delta == 0 {
		return 0, sat, val
	}

	switch max {
	case r:
		hue = 60 * math.Mod((g-b)/delta, 6)
	case g:
		hue = 60 * ((b-r)/delta + 2)
	default:
		hue = 60 * ((r-g)/delta + 4)
	}
	if hue < 0 {
		hue += 360
	}
	return hue, sat, val
}

func inHSVRange(hue, sat, val float64, r config.HSVRange) bool {
	return hue >= r.HueMin && hue <= r.HueMax && sat >= r.SatMin && val >= r.ValMin
}

// morphClose bridges small gaps in the traced line (dilate then erode, 3x3).
func morphClose(m *traceMask) *traceMask {
	return erode3x3(dilate3x3(m))
}

// morphOpen removes speckle noise (erode then dilate, 3x3).
func morphOpen(m *traceMask) *traceMask {
	return dilate3x3(erode3x3(m))
}

func dilate3x3(m *traceMask) *traceMask {
	out := newTraceMask(m.w, m.h)
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			for dy := -1; dy <= 1 && !out.at(x, y); dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx >= 0 && nx < m.w && ny >= 0 && ny < m.h && m.at(nx, ny) {
						out.set(x, y, true)
						break
					}
				}
			}
		}
	}
	return out
}

func erode3x3(m *traceMask) *traceMask {
	out := newTraceMask(m.w, m.h)
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			all := true
			for dy := -1; dy <= 1 && all; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= m.w || ny < 0 || ny >= m.h {
						continue
					}
					if !m.at(nx, ny) {
						all = false
						break
					}
				}
			}
			out.set(x, y, all)
		}
	}
	return out
}

// detectRowBands locates the chart rows from the row-wise trace pixel count.
// The projection is Gaussian-smoothed to suppress local gaps, thresholded at
// a fraction of its peak, and maximal runs above threshold become candidate
// bands. When fewer rows than the layout expects are found, the covered span
// (or the image minus header and footer margins) is split evenly instead.
func (t *CurveTracer) detectRowBands(mask *traceMask) []rowBand {
	projection := make([]float64, mask.h)
	for y := 0; y < mask.h; y++ {
		count := 0
		for x := 0; x < mask.w; x++ {
			if mask.at(x, y) {
				count++
			}
		}
		projection[y] = float64(count)
	}

	smoothed := gaussianSmooth(projection, t.chart.RowSmoothingSigma)

	peak := 0.0
	for _, v := range smoothed {
		if v > peak {
			peak = v
		}
	}
	threshold := peak * t.chart.RowThresholdFraction
	minRun := float64(mask.h) * t.chart.MinBandFraction

	var bands []rowBand
	start := -1
	for y := 0; y <= len(smoothed); y++ {
		active := y < len(smoothed) && smoothed[y] > threshold && peak > 0
		switch {
		case active && start < 0:
			start = y
		case !active && start >= 0:
			if float64(y-start) > minRun {
				bands = append(bands, rowBand{Start: start, End: y})
			}
			start = -1
		}
	}

	if len(bands) < t.chart.Rows {
		bands = t.splitEvenly(bands, mask.h)
	}
	if len(bands) > t.chart.Rows {
		bands = bands[:t.chart.Rows]
	}
	return bands
}

// splitEvenly divides the vertical span covering the candidate bands (or the
// image minus the header/footer margins when none were found) into the
// configured number of equal-height rows.
func (t *CurveTracer) splitEvenly(candidates []rowBand, height int) []rowBand {
	minY := int(float64(height) * t.chart.HeaderFraction)
	maxY := int(float64(height) * (1 - t.chart.FooterFraction))
	if len(candidates) > 0 {
		minY = candidates[0].Start
		maxY = candidates[0].End
		for _, b := range candidates[1:] {
			if b.Start < minY {
				minY = b.Start
			}
			if b.End > maxY {
				maxY = b.End
			}
		}
	}

	rows := t.chart.Rows
	rowHeight := (maxY - minY) / rows
	bands := make([]rowBand, 0, rows)
	for i := 0; i < rows; i++ {
		start := minY + i*rowHeight
		end := start + rowHeight
		if i == rows-1 {
			end = maxY
		}
		bands = append(bands, rowBand{Start: start, End: end})
	}
	return bands
}

// extractRowSignal reads one sample per pixel column: the vertical centroid
// of the active pixels in that column. Columns with no active pixels repeat
// the previous sample; leading empty columns are dropped.
func extractRowSignal(mask *traceMask, band rowBand) []float64 {
	var signal []float64
	for x := 0; x < mask.w; x++ {
		sum, count := 0.0, 0
		for y := band.Start; y < band.End && y < mask.h; y++ {
			if y >= 0 && mask.at(x, y) {
				sum += float64(y - band.Start)
				count++
			}
		}
		switch {
		case count > 0:
			signal = append(signal, sum/float64(count))
		case len(signal) > 0:
			signal = append(signal, signal[len(signal)-1])
		}
	}
	return signal
}
