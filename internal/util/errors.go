package util

import "errors"

var (
	// ErrNotFound is returned when no row matched a lookup. Not all methods
	// use it, list-style queries return empty slices instead.
	ErrNotFound = errors.New("no matching data found")

	ErrMissingID = errors.New("required identifier is missing")

	// ErrParallelImport prevents two imports running within one project at
	// the same time.
	ErrParallelImport = errors.New("another import is already running for this project")

	ErrInvalidConfig = errors.New("invalid or mismatching config")

	// ErrEmptyAnnotations indicates that no usable annotations were collected
	// for a label during resolution.
	ErrEmptyAnnotations = errors.New("no annotations collected for label")

	ErrTypeMismatch = errors.New("item type does not match project type")

	ErrNoExtractableText = errors.New("no extractable text found in PDF")
)
