package entity

import "errors"

var (
	// Image errors
	ErrInvalidImageFormat   = errors.New("Invalid image format.")
	ErrUnsupportedImageType = errors.New("unsupported image type. Supported: jpeg, png, gif, webp")
	ErrImageTooLarge        = errors.New("image is too large")

	// Analysis errors
	ErrEmptyAnalysis       = errors.New("analysis service returned an empty report")
	ErrAnalyzerUnavailable = errors.New("analysis service is not configured")

	// Session errors
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// DefaultAnalysisError is shown when a failure carries no message of its own.
const DefaultAnalysisError = "Failed to analyze the PCB image."
