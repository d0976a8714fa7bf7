package common

import (
	"fmt"

	"github.com/pkg/errors"
)

// NoIndex marks an error that is not tied to a specific element of a list.
const NoIndex = -1

// FormatError reports a structural problem in the container or the scene description.
// Check names the failed validation (e.g. "container.magic"), Index the offending element.
type FormatError struct {
	Check  string
	Index  int
	Detail string
}

func (e *FormatError) Error() string {
	return describe("format error", e.Check, e.Index, e.Detail)
}

// UnsupportedFeatureError reports input that is well formed but uses a feature the importer does not handle.
type UnsupportedFeatureError struct {
	Check  string
	Index  int
	Detail string
}

func (e *UnsupportedFeatureError) Error() string {
	return describe("unsupported feature", e.Check, e.Index, e.Detail)
}

// ReferenceError reports an index into one of the description's lists that is out of range.
type ReferenceError struct {
	Check  string
	Index  int
	Target int
	Len    int
}

func (e *ReferenceError) Error() string {
	return describe("reference error", e.Check, e.Index, fmt.Sprintf("index %d out of range [0,%d)", e.Target, e.Len))
}

// ResourceCreationError reports a device-side failure while creating or writing a GPU resource.
type ResourceCreationError struct {
	Resource string
	Index    int
	Err      error
}

func (e *ResourceCreationError) Error() string {
	return describe("resource creation failed", e.Resource, e.Index, e.Err.Error())
}

// Unwrap returns the device error.
func (e *ResourceCreationError) Unwrap() error { return e.Err }

// Cause returns the device error for github.com/pkg/errors.Cause.
func (e *ResourceCreationError) Cause() error { return e.Err }

// NewFormatError returns a FormatError annotated with a stack trace.
//
// Parameters:
//   - check: the name of the failed validation
//   - index: the offending element index, or NoIndex
//   - format: printf-style detail message
//   - args: arguments for format
//
// Returns:
//   - error: the wrapped *FormatError
func NewFormatError(check string, index int, format string, args ...any) error {
	return errors.WithStack(&FormatError{Check: check, Index: index, Detail: fmt.Sprintf(format, args...)})
}

// NewUnsupportedFeatureError returns an UnsupportedFeatureError annotated with a stack trace.
//
// Parameters:
//   - check: the name of the unsupported feature
//   - index: the offending element index, or NoIndex
//   - format: printf-style detail message
//   - args: arguments for format
//
// Returns:
//   - error: the wrapped *UnsupportedFeatureError
func NewUnsupportedFeatureError(check string, index int, format string, args ...any) error {
	return errors.WithStack(&UnsupportedFeatureError{Check: check, Index: index, Detail: fmt.Sprintf(format, args...)})
}

// CheckIndex returns a ReferenceError when target is outside [0, length).
//
// Parameters:
//   - check: the name of the reference being resolved (e.g. "primitive.material")
//   - index: the element holding the reference
//   - target: the referenced index
//   - length: the length of the referenced list
//
// Returns:
//   - error: nil if target is in range, otherwise the wrapped *ReferenceError
func CheckIndex(check string, index, target, length int) error {
	if target >= 0 && target < length {
		return nil
	}
	return errors.WithStack(&ReferenceError{Check: check, Index: index, Target: target, Len: length})
}

// NewResourceCreationError wraps a device error as a ResourceCreationError.
//
// Parameters:
//   - resource: the kind of resource being created (e.g. "buffer_view")
//   - index: the element index of the resource, or NoIndex
//   - err: the device error
//
// Returns:
//   - error: the wrapped *ResourceCreationError, or nil if err is nil
func NewResourceCreationError(resource string, index int, err error) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(&ResourceCreationError{Resource: resource, Index: index, Err: err})
}

func describe(kind, check string, index int, detail string) string {
	if index == NoIndex {
		return fmt.Sprintf("%s: %s: %s", kind, check, detail)
	}
	return fmt.Sprintf("%s: %s[%d]: %s", kind, check, index, detail)
}
