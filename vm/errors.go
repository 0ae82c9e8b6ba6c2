package vm

import "errors"

// ---------------------------------------------------------------------------
// Runtime errors
// ---------------------------------------------------------------------------

// ErrorKind identifies a runtime error category.
type ErrorKind uint8

const (
	ErrorKindInvalidArrayLength ErrorKind = iota + 1
	ErrorKindInvalidArrayIndex
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindInvalidArrayLength:
		return "InvalidArrayLength"
	case ErrorKindInvalidArrayIndex:
		return "InvalidArrayIndex"
	}
	return "Unknown"
}

// RangeError is raised when a numeric argument is outside its legal range.
type RangeError struct {
	Kind    ErrorKind
	Message string
}

func (e *RangeError) Error() string {
	return "RangeError: " + e.Message
}

// Is matches any RangeError of the same kind, so freshly constructed
// errors compare equal to the sentinels below.
func (e *RangeError) Is(target error) bool {
	var re *RangeError
	if !errors.As(target, &re) {
		return false
	}
	return re.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrInvalidArrayLength = &RangeError{Kind: ErrorKindInvalidArrayLength, Message: "Invalid array length"}
	ErrInvalidArrayIndex  = &RangeError{Kind: ErrorKindInvalidArrayIndex, Message: "Invalid array index"}
)

// ErrorFactory constructs the error values raised by array creation.
type ErrorFactory interface {
	InvalidArrayLengthError() error
}

// DefaultErrorFactory builds a fresh *RangeError for every failure.
type DefaultErrorFactory struct{}

// InvalidArrayLengthError returns a new InvalidArrayLength range error.
func (DefaultErrorFactory) InvalidArrayLengthError() error {
	return &RangeError{Kind: ErrorKindInvalidArrayLength, Message: "Invalid array length"}
}
