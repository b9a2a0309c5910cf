package handlers

import (
	"bytes"
	"encoding/json"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcastanera/hrvision/internal/config"
	"github.com/dcastanera/hrvision/internal/models"
	"github.com/dcastanera/hrvision/internal/services"
	"github.com/dcastanera/hrvision/internal/testutil"
)

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		Port:              8080,
		MaxUploadBytes:    16 * 1024 * 1024,
		AllowedExtensions: []string{".png", ".jpg", ".jpeg"},
	}
}

func testPipelineConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		LogLevel:    "panic",
		Server:      testServerConfig(),
		Chart: config.ChartConfig{
			Rows: 3, SecondsPerRow: 10, TargetRate: 500,
			HeaderFraction: 0.15, FooterFraction: 0.15,
			RowSmoothingSigma: 10, RowThresholdFraction: 0.1, MinBandFraction: 0.05,
		},
		Trace: config.TraceConfig{
			Primary:  config.HSVRange{HueMin: 10, HueMax: 50, SatMin: 0.39, ValMin: 0.39},
			Fallback: config.HSVRange{HueMin: 0, HueMax: 60, SatMin: 0.31, ValMin: 0.31},
		},
		Detector: config.DetectorConfig{
			MinBeats: 3, HighPassHz: 0.5, LowPassHz: 40,
			IntegrationSeconds: 0.15, MinDistanceFactor: 0.3, ProminenceFactor: 0.3,
		},
		Analysis: config.AnalysisConfig{
			SmoothingSigma: 2, MinIntervals: 2,
			RRMinMs: 300, RRMaxMs: 2000, IQRFactor: 1.5, InterpolationRate: 4,
		},
	}
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	cfg := testPipelineConfig()
	analyzer := services.NewAnalyzer(cfg, nil, logger)
	handler := NewAnalyzeHandler(analyzer, cfg.Server, logger)

	router := gin.New()
	router.POST("/upload", handler.Upload)
	return router
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func encodeChartPNG(t *testing.T) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, testutil.ChartImage(600, 300, 3, 10)))
	return buf.Bytes()
}

func TestUploadValidChart(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "chart.png", encodeChartPNG(t)))

	require.Equal(t, http.StatusOK, w.Code)

	var result models.AnalysisResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.AnalysisID)
	assert.InDelta(t, 60, result.Metrics.TimeDomain.HRMean, 6)
	assert.NotEmpty(t, result.Interpretation)
	assert.NotEmpty(t, result.Stress.Level)
}

func TestUploadMissingFile(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "archivo")
}

func TestUploadRejectedExtension(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "chart.gif", []byte("GIF89a")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Formato de archivo no soportado")
}

func TestUploadCorruptImage(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "chart.png", []byte("not a png")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "decodificar")
}

func TestUploadBlankImage(t *testing.T) {
	router := newTestRouter(t)

	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, testutil.BlankImage(400, 200)))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "blank.png", buf.Bytes()))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "senal")
}
