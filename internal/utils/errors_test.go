package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractionError(t *testing.T) {
	err := NewExtractionError("no trace pixels found")
	assert.EqualError(t, err, "no trace pixels found")

	var extractionErr *ExtractionError
	assert.True(t, errors.As(err, &extractionErr))
}

func TestExtractionErrorf(t *testing.T) {
	err := NewExtractionErrorf("row %d produced an empty signal", 2)
	assert.EqualError(t, err, "row 2 produced an empty signal")
}

func TestInsufficientBeatsError(t *testing.T) {
	err := NewInsufficientBeatsError(2, 3)
	assert.EqualError(t, err, "detected 2 R peaks, need at least 3")

	var beatsErr *InsufficientBeatsError
	assert.True(t, errors.As(err, &beatsErr))
	assert.Equal(t, 2, beatsErr.Found)
	assert.Equal(t, 3, beatsErr.Minimum)
}

func TestInsufficientIntervalsError(t *testing.T) {
	err := NewInsufficientIntervalsError(1, 2)
	assert.EqualError(t, err, "1 RR intervals after filtering, need at least 2")

	var intervalsErr *InsufficientIntervalsError
	assert.True(t, errors.As(err, &intervalsErr))
}

func TestValidationError(t *testing.T) {
	err := NewValidationErrorf("unsupported file extension %q", ".gif")
	assert.EqualError(t, err, `unsupported file extension ".gif"`)

	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
}
