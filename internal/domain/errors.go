package domain

import "errors"

var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates invalid input data.
	ErrInvalidInput = errors.New("invalid input")

	// ErrGenerationFailed indicates the question generator produced no
	// usable output and the fallback set was substituted.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrSuperseded indicates a request was cancelled because a newer
	// request for the same session arrived.
	ErrSuperseded = errors.New("request superseded")
)
