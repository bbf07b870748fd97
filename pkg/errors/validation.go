package errors

import (
	"math"
	"strings"
	"unicode"
)

// Canvas bounds accepted by the CLI and the HTTP API.
const (
	MinCanvasSize = 50.0
	MaxCanvasSize = 10000.0
)

// MaxDatasetRows caps the number of rows accepted from untrusted input.
const MaxDatasetRows = 100000

// ValidateCanvas checks that the container size is finite and within bounds.
func ValidateCanvas(width, height float64) error {
	for _, v := range []float64{width, height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidInput, "canvas size must be finite")
		}
		if v < MinCanvasSize || v > MaxCanvasSize {
			return New(ErrCodeInvalidInput, "canvas size must be within [%g, %g], got %g", MinCanvasSize, MaxCanvasSize, v)
		}
	}
	return nil
}

// ValidateRowCount rejects datasets that exceed [MaxDatasetRows].
func ValidateRowCount(n int) error {
	if n > MaxDatasetRows {
		return New(ErrCodeInvalidDataset, "dataset too large: %d rows (max %d)", n, MaxDatasetRows)
	}
	return nil
}

// ValidatePath validates an output file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}
