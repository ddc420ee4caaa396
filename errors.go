package ssirewrite

import (
	"errors"

	"github.com/heasarc/go-ssirewrite/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrInputNotDir    = errors.New("input path is not a directory")
	ErrOutputIsInput  = errors.New("output directory is the input directory")
	ErrReadHTML       = errors.New("failed to read HTML file")
	ErrWriteHTML      = errors.New("failed to write HTML file")
	ErrCreateDir      = errors.New("failed to create output directory")
	ErrInvalidExclude = errors.New("invalid exclude pattern")

	// Include resolution errors.
	ErrReadFragment = pipeline.ErrReadFragment
	ErrInvalidUTF8  = pipeline.ErrInvalidUTF8

	// Rewrite target validation errors.
	ErrInvalidMissionPrefix = errors.New("invalid mission prefix")
	ErrInvalidBaseURL       = errors.New("invalid base URL")
)
