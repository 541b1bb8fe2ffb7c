// Package errors defines the pipeline error taxonomy. Fatal kinds abort the
// whole batch before any per-file work; per-file kinds are recorded in the
// batch report and do not stop subsequent files.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline error.
type Kind string

const (
	NotFound               Kind = "not_found"
	UnsupportedFormat      Kind = "unsupported_format"
	ToolchainMissing       Kind = "toolchain_missing"
	AcceleratorUnavailable Kind = "accelerator_unavailable"
	ModelUnavailable       Kind = "model_unavailable"
	ExtractionFailed       Kind = "extraction_failed"
	InferenceFailed        Kind = "inference_failed"
	OutputWriteFailed      Kind = "output_write_failed"
)

// Fatal reports whether the kind aborts the batch rather than a single file.
func (k Kind) Fatal() bool {
	switch k {
	case ToolchainMissing, AcceleratorUnavailable, ModelUnavailable:
		return true
	}
	return false
}

// hints are remediation messages attached to fatal kinds when rendered.
var hints = map[Kind]string{
	ToolchainMissing:       "install ffmpeg and make sure it is on PATH",
	AcceleratorUnavailable: "no CUDA device detected; rerun with --device cpu or fix the GPU driver",
	ModelUnavailable:       "download the ggml model file into the model directory (see whisper.cpp/models)",
}

// Error is a classified pipeline error with an optional cause.
type Error struct {
	kind    Kind
	message string
	cause   error
}

// New creates a classified error.
func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and context to an underlying error. Returns nil if
// err is nil.
func Wrap(err error, kind Kind, message string) error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, message: message, cause: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, kind Kind, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, message: fmt.Sprintf(format, args...), cause: err}
}

func (e *Error) Error() string {
	msg := e.message
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	if hint, ok := hints[e.kind]; ok {
		return fmt.Sprintf("%s (%s)", msg, hint)
	}
	return msg
}

// Kind returns the error's classification.
func (e *Error) Kind() Kind {
	return e.kind
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches on Kind, so sentinels created with New(kind, "") compare true
// against any error of that kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.kind == t.kind
}

// KindOf extracts the Kind from err, or "" when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return ""
}

// IsFatal reports whether err should abort the whole batch.
func IsFatal(err error) bool {
	return KindOf(err).Fatal()
}
