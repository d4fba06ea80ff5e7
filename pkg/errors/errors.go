// Package errors provides structured error handling for the probreg library.
//
// The error types defined here mirror the failure taxonomy of the framework:
//
//   - Precondition violations (NotFittedError, DimensionError, ValueError,
//     ValidationError): caller misuse, fatal and immediate.
//   - CapabilityError: a prediction fidelity was requested that neither the
//     model nor any derivation chain can produce.
//   - ConsistencyError: an internal invariant was violated, e.g. a fold
//     partition that does not cover every row exactly once. These indicate
//     bugs, not bad data.
//   - NumericalInstabilityError: NaN or Inf showed up where it shouldn't.
//
// All constructors attach a stack trace via cockroachdb/errors, and every
// type implements zerolog.LogObjectMarshaler so errors can be emitted as
// structured log fields.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// NotFittedError is returned when Predict or a related method is called on a
// model that has not been fit.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("probreg: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a new NotFittedError with a stack trace.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError is returned when the size of an input does not match what
// the operation expects, e.g. a feature slice and target distribution of
// different lengths.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("probreg: %s: size mismatch. Expected %d, got %d", e.Op, e.Expected, e.Got)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Str("type", "DimensionError")
}

// NewDimensionError creates a new DimensionError with a stack trace.
func NewDimensionError(op string, expected, got int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got}
	return errors.WithStack(err)
}

// ValueError is returned when an argument has an unacceptable value, e.g. an
// empty feature slice passed to Fit.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("probreg: %s: %s", e.Op, e.Message)
}

// NewValueError creates a new ValueError with a stack trace.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ValidationError is returned when a named parameter fails validation, e.g. a
// parameter value outside the support of its prior passed to SetParam.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("probreg: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a new ValidationError with a stack trace.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// CapabilityError is returned when a prediction fidelity is requested that
// the model does not implement and that cannot be derived from any richer
// fidelity the model does implement.
type CapabilityError struct {
	ModelName string
	Requested string
	Available []string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("probreg: %s: cannot produce a %s prediction (model implements: %v)",
		e.ModelName, e.Requested, e.Available)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *CapabilityError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("requested", e.Requested).
		Strs("available", e.Available).
		Str("type", "CapabilityError")
}

// NewCapabilityError creates a new CapabilityError with a stack trace.
func NewCapabilityError(modelName, requested string, available []string) error {
	err := &CapabilityError{ModelName: modelName, Requested: requested, Available: available}
	return errors.WithStack(err)
}

// ConsistencyError indicates that an internal invariant was violated. Unlike
// the precondition errors above it signals a defect in the library or in a
// fold generator, not caller misuse.
type ConsistencyError struct {
	Op        string
	Invariant string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("probreg: %s: consistency failure: %s", e.Op, e.Invariant)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *ConsistencyError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("invariant", e.Invariant).
		Str("type", "ConsistencyError")
}

// NewConsistencyError creates a new ConsistencyError with a stack trace.
func NewConsistencyError(op, invariant string) error {
	err := &ConsistencyError{Op: op, Invariant: invariant}
	return errors.WithStack(err)
}

// NumericalInstabilityError is returned when a computation produced NaN or
// Inf outside of the tuning loop, where such values are recoverable.
type NumericalInstabilityError struct {
	Operation string
	Values    []float64
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("probreg: numerical instability detected in %s. Values: [%s]", e.Operation, valStr)
}

// NewNumericalInstabilityError creates a new NumericalInstabilityError.
func NewNumericalInstabilityError(operation string, values []float64) error {
	err := &NumericalInstabilityError{Operation: operation, Values: values}
	return errors.WithStack(err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an existing error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates an error with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

var (
	// ErrEmptyData is the sentinel for operations given no data.
	ErrEmptyData = New("empty data")

	// ErrPostFitEquality is the sentinel returned when two fit models are
	// compared. Fitting may mutate derived state invisibly to the generic
	// framework, so equality after fitting is undefined unless the concrete
	// model provides its own definition.
	ErrPostFitEquality = New("equality is undefined for fit models")

	// ErrSingularMatrix is the sentinel for factorizations of singular or
	// non-positive-definite matrices.
	ErrSingularMatrix = New("singular matrix")
)
