// Package errors defines the error types shared by every WattWise package.
//
// Errors are built on github.com/cockroachdb/errors so that they carry stack
// traces when formatted with %+v, while remaining compatible with the standard
// errors.Is / errors.As helpers:
//
//	if errors.Is(err, wwErrors.ErrInsufficientData) {
//		// not enough rows for a train/test split
//	}
//
//	var dimErr *wwErrors.DimensionError
//	if errors.As(err, &dimErr) {
//		fmt.Println(dimErr.Expected, dimErr.Got)
//	}
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors.
var (
	// ErrEmptyData is returned when an operation receives no samples.
	ErrEmptyData = errors.New("empty data")
	// ErrInsufficientData is returned when there are too few samples for an operation.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrNotFitted is matched by every NotFittedError.
	ErrNotFitted = errors.New("model not fitted")
	// ErrNotImplemented marks functionality that is intentionally unsupported.
	ErrNotImplemented = errors.New("not implemented")
	// ErrSingularMatrix is returned when a linear system cannot be solved.
	ErrSingularMatrix = errors.New("singular matrix")
	// ErrInvalidInput is matched by every ValueError.
	ErrInvalidInput = errors.New("invalid input")
)

// ModelError is a failure inside an estimator or pipeline step.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

// NewModelError creates a ModelError for operation op wrapping err.
func NewModelError(op, kind string, err error) *ModelError {
	return &ModelError{Op: op, Kind: kind, Err: err}
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("wattwise: %s: %s: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ModelError) Unwrap() error {
	return e.Err
}

// DimensionError reports a shape mismatch along Axis (0 rows, 1 columns).
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

// NewDimensionError creates a DimensionError.
func NewDimensionError(op string, expected, got, axis int) *DimensionError {
	return &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
}

func (e *DimensionError) Error() string {
	axis := "rows"
	if e.Axis == 1 {
		axis = "columns"
	}
	return fmt.Sprintf("wattwise: %s: dimension mismatch on %s: expected %d, got %d", e.Op, axis, e.Expected, e.Got)
}

// NotFittedError is returned when a model is used before Fit.
type NotFittedError struct {
	ModelName string
	Method    string
}

// NewNotFittedError creates a NotFittedError.
func NewNotFittedError(modelName, method string) *NotFittedError {
	return &NotFittedError{ModelName: modelName, Method: method}
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("wattwise: %s: this %s instance is not fitted yet", e.Method, e.ModelName)
}

// Is makes every NotFittedError match ErrNotFitted.
func (e *NotFittedError) Is(target error) bool {
	return target == ErrNotFitted
}

// ValueError reports an argument with an invalid value.
type ValueError struct {
	Op      string
	Message string
}

// NewValueError creates a ValueError.
func NewValueError(op, message string) *ValueError {
	return &ValueError{Op: op, Message: message}
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("wattwise: %s: %s", e.Op, e.Message)
}

// Is makes every ValueError match ErrInvalidInput.
func (e *ValueError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Wrap annotates err with msg and a stack trace. It returns nil if err is nil.
func Wrap(err error, msg string) error {
	return errors.Wrap(err, msg)
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// WithHint attaches a user-facing hint, retrievable with GetAllHints.
func WithHint(err error, hint string) error {
	return errors.WithHint(err, hint)
}

// GetAllHints returns every hint attached to err.
func GetAllHints(err error) []string {
	return errors.GetAllHints(err)
}

// Recover converts a panic in the calling function into an error stored in
// *errp. It must be deferred directly:
//
//	func (m *Model) Fit(X, y mat.Matrix) (err error) {
//		defer wwErrors.Recover(&err, "Model.Fit")
//		...
//	}
func Recover(errp *error, op string) {
	r := recover()
	if r == nil {
		return
	}
	var cause error
	switch v := r.(type) {
	case error:
		cause = v
	default:
		cause = errors.Newf("%v", v)
	}
	*errp = errors.WithStack(NewModelError(op, "panic recovered", cause))
}
