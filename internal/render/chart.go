package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/dcastanera/hrvision/internal/models"
)

const (
	chartWidth  = 900
	chartHeight = 340

	histogramBins = 20
)

var (
	traceRed   = drawing.ColorFromHex("EF4444")
	traceBlue  = drawing.ColorFromHex("3B82F6")
	traceGreen = drawing.ColorFromHex("10B981")
	traceGray  = drawing.ColorFromHex("9CA3AF")
)

// ChartRenderer draws the analysis charts as PNG images.
type ChartRenderer struct {
	logger *logrus.Logger
}

// NewChartRenderer creates a renderer.
func NewChartRenderer(logger *logrus.Logger) *ChartRenderer {
	return &ChartRenderer{logger: logger}
}

// ECGPlot draws the reconstructed signal against its time axis.
func (r *ChartRenderer) ECGPlot(signal []float64, rate float64) (string, error) {
	if len(signal) < 2 || rate <= 0 {
		return "", errors.New("not enough samples to plot")
	}

	ts := make([]float64, len(signal))
	for i := range signal {
		ts[i] = float64(i) / rate
	}

	graph := chart.Chart{
		Title:  "Senal ECG Reconstruida",
		Width:  chartWidth,
		Height: chartHeight,
		XAxis:  chart.XAxis{Name: "Tiempo (s)"},
		YAxis:  chart.YAxis{Name: "Amplitud"},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: ts,
				YValues: signal,
				Style: chart.Style{
					StrokeColor: traceRed,
					StrokeWidth: 1,
				},
			},
		},
	}
	return renderPNG(&graph)
}

// PoincarePlot draws RR(n+1) against RR(n) with the identity line. The SD1
// and SD2 indices go in the title rather than as an ellipse overlay.
func (r *ChartRenderer) PoincarePlot(rr []float64, idx models.PoincareIndices) (string, error) {
	if len(rr) < 2 {
		return "", errors.New("not enough intervals to plot")
	}

	xs := make([]float64, len(rr)-1)
	ys := make([]float64, len(rr)-1)
	min, max := rr[0], rr[0]
	for i := 0; i < len(rr)-1; i++ {
		xs[i] = rr[i]
		ys[i] = rr[i+1]
	}
	for _, v := range rr {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Diagrama de Poincare (SD1=%.1f ms, SD2=%.1f ms)", idx.SD1, idx.SD2),
		Width:  chartHeight,
		Height: chartHeight,
		XAxis:  chart.XAxis{Name: "RR(n) (ms)"},
		YAxis:  chart.YAxis{Name: "RR(n+1) (ms)"},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: []float64{min, max},
				YValues: []float64{min, max},
				Style: chart.Style{
					StrokeColor:     traceGray,
					StrokeWidth:     1,
					StrokeDashArray: []float64{4, 4},
				},
			},
			chart.ContinuousSeries{
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    3,
					DotColor:    traceBlue,
				},
			},
		},
	}
	return renderPNG(&graph)
}

// RRHistogram draws the RR interval distribution over a fixed bin count.
func (r *ChartRenderer) RRHistogram(rr []float64) (string, error) {
	if len(rr) == 0 {
		return "", errors.New("no intervals to plot")
	}

	min, max := rr[0], rr[0]
	for _, v := range rr {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	width := (max - min) / histogramBins
	if width == 0 {
		width = 1
	}

	counts := make([]int, histogramBins)
	for _, v := range rr {
		bin := int((v - min) / width)
		if bin >= histogramBins {
			bin = histogramBins - 1
		}
		counts[bin]++
	}

	bars := make([]chart.Value, histogramBins)
	for i, c := range counts {
		label := ""
		// Label every fourth bin to keep the axis readable.
		if i%4 == 0 {
			label = fmt.Sprintf("%.0f", min+float64(i)*width)
		}
		bars[i] = chart.Value{
			Value: float64(c),
			Label: label,
			Style: chart.Style{FillColor: traceGreen, StrokeColor: traceGreen},
		}
	}

	graph := chart.BarChart{
		Title:    "Distribucion de Intervalos RR (ms)",
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: (chartWidth - 100) / histogramBins,
		Bars:     bars,
	}
	return renderPNG(&graph)
}

// FrequencyPlot draws the Welch PSD estimate up to the upper HRV band edge.
func (r *ChartRenderer) FrequencyPlot(spectrum models.Spectrum) (string, error) {
	if len(spectrum.Frequencies) < 2 {
		return "", errors.New("no spectrum to plot")
	}

	var fs, ps []float64
	for i, f := range spectrum.Frequencies {
		if f > 0.5 {
			break
		}
		fs = append(fs, f)
		ps = append(ps, spectrum.PSD[i])
	}
	if len(fs) < 2 {
		fs, ps = spectrum.Frequencies, spectrum.PSD
	}

	graph := chart.Chart{
		Title:  "Densidad Espectral de Potencia",
		Width:  chartWidth,
		Height: chartHeight,
		XAxis:  chart.XAxis{Name: "Frecuencia (Hz)"},
		YAxis:  chart.YAxis{Name: "PSD (ms²/Hz)"},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: fs,
				YValues: ps,
				Style: chart.Style{
					StrokeColor: traceBlue,
					StrokeWidth: 1.5,
				},
			},
		},
	}
	return renderPNG(&graph)
}

func renderPNG(graph interface {
	Render(chart.RendererProvider, io.Writer) error
}) (string, error) {
	buf := bytes.NewBuffer(nil)
	if err := graph.Render(chart.PNG, buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
