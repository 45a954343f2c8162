package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies failures so callers can decide how to surface them.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindInsufficientData Kind = "insufficient_data"
	KindScoring          Kind = "scoring"
	KindAnalysis         Kind = "analysis"
	KindSynthesis        Kind = "synthesis"
	KindRetrieval        Kind = "retrieval"
	KindNotFound         Kind = "not_found"
	KindConfiguration    Kind = "configuration"
	KindTimeout          Kind = "timeout"
	KindInternal         Kind = "internal"
)

// Error is the structured error surfaced by the core: kind, the stage that
// failed, a message and optional details.
type Error struct {
	Kind    Kind
	Stage   string
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Stage != "" {
		msg = e.Stage + ": " + msg
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind, so errors.Is(err, &Error{Kind: KindScoring}) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Stage == "" || t.Stage == e.Stage)
}

// WithStage returns a copy of e attributed to stage.
func (e *Error) WithStage(stage string) *Error {
	cp := *e
	cp.Stage = stage
	return &cp
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func Scoring(err error, message string) *Error {
	return Wrap(KindScoring, err, message)
}

func Analysis(err error, message string) *Error {
	return Wrap(KindAnalysis, err, message)
}

func Retrieval(err error, message string) *Error {
	return Wrap(KindRetrieval, err, message)
}

func NotFound(what, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", what, id),
		Details: fmt.Sprintf("the requested %s does not exist", what),
	}
}

// InsufficientData describes a corpus that is too small for an operation.
func InsufficientData(required, provided int) *Error {
	return &Error{
		Kind:    KindInsufficientData,
		Message: fmt.Sprintf("insufficient data: need %d, got %d", required, provided),
		Details: fmt.Sprintf("operation requires at least %d items", required),
	}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// StageOf returns the stage recorded on err, if any.
func StageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return ""
}
