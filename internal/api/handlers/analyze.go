package handlers

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dcastanera/hrvision/internal/config"
	"github.com/dcastanera/hrvision/internal/services"
	"github.com/dcastanera/hrvision/internal/utils"
)

// AnalyzeHandler accepts an uploaded chart image and returns the full
// analysis result.
type AnalyzeHandler struct {
	analyzer *services.Analyzer
	cfg      config.ServerConfig
	logger   *logrus.Logger
}

// NewAnalyzeHandler creates the upload handler.
func NewAnalyzeHandler(analyzer *services.Analyzer, cfg config.ServerConfig, logger *logrus.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer: analyzer,
		cfg:      cfg,
		logger:   logger,
	}
}

// Upload handles POST /upload. Analysis failures caused by the image content
// map to 422: the request was well-formed, the chart just cannot be analyzed.
func (h *AnalyzeHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No se encontro ningun archivo en el campo 'file'"})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !h.extensionAllowed(ext) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Formato de archivo no soportado: use %s", strings.Join(h.cfg.AllowedExtensions, ", ")),
		})
		return
	}

	if fileHeader.Size > h.cfg.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "El archivo excede el tamano maximo permitido"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno al procesar el archivo"})
		return
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No se pudo decodificar la imagen"})
		return
	}

	result, err := h.analyzer.Analyze(img)
	if err != nil {
		h.respondAnalysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AnalyzeHandler) extensionAllowed(ext string) bool {
	for _, allowed := range h.cfg.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// respondAnalysisError maps pipeline errors to HTTP status codes. The known
// analysis failures are client-visible conditions of the uploaded chart;
// anything else is an internal error.
func (h *AnalyzeHandler) respondAnalysisError(c *gin.Context, err error) {
	var extractionErr *utils.ExtractionError
	var beatsErr *utils.InsufficientBeatsError
	var intervalsErr *utils.InsufficientIntervalsError

	switch {
	case errors.As(err, &extractionErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "No se pudo extraer la senal del grafico: " + extractionErr.Message,
		})
	case errors.As(err, &beatsErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "No se detectaron suficientes latidos en la senal",
			"detail": err.Error(),
		})
	case errors.As(err, &intervalsErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "No hay suficientes intervalos validos para el analisis",
			"detail": err.Error(),
		})
	default:
		h.logger.WithField("error", err.Error()).Error("Analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno durante el analisis"})
	}
}
