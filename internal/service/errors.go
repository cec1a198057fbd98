package service

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/code-quest-api/internal/models"
	"github.com/noah-isme/code-quest-api/pkg/piston"
)

// FailureKind classifies errors so callers can tell request-aborting failures from
// failures recovered inside a grading batch.
type FailureKind string

// Failure kinds.
const (
	FailureNotFound    FailureKind = "not_found"
	FailureInvalid     FailureKind = "invalid_request"
	FailureDispatch    FailureKind = FailureKind(models.FailureDispatch)
	FailureRuntime     FailureKind = FailureKind(models.FailureRuntime)
	FailurePersistence FailureKind = "persistence_failure"
	FailureUnexpected  FailureKind = "unexpected_failure"
)

// ErrQuestionNotFound indicates the requested question does not exist.
var ErrQuestionNotFound = errors.New("question not found")

// ErrNoTestCases indicates the question has nothing to grade against.
var ErrNoTestCases = errors.New("no test cases found for question")

// ErrUserNotFound indicates no user is registered for the provider id.
var ErrUserNotFound = errors.New("user not found")

// Error attaches a FailureKind to an underlying error.
type Error struct {
	Kind FailureKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func persistenceError(err error) error {
	return &Error{Kind: FailurePersistence, Err: err}
}

// KindOf reports the FailureKind of err. Unknown errors are FailureUnexpected.
func KindOf(err error) FailureKind {
	if err == nil {
		return ""
	}

	var typed *Error
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, ErrQuestionNotFound), errors.Is(err, ErrNoTestCases), errors.Is(err, ErrUserNotFound):
		return FailureNotFound
	case errors.As(err, &validationErrors):
		return FailureInvalid
	case errors.As(err, &typed):
		return typed.Kind
	case piston.IsDispatchError(err):
		return FailureDispatch
	default:
		return FailureUnexpected
	}
}
