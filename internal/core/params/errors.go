package params

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidEqualSignCount = errors.New("invalid equal sign count in parameter, expected one")
	ErrInvalidParameterValue = errors.New("invalid parameter value, cannot be empty")
	ErrInvalidParameterName  = errors.New("invalid parameter name, cannot be empty")
	ErrInvalidParameterInput = errors.New("invalid (empty) parameter input")
)

// InvalidParameterError is returned by Merge when a raw parameter names a
// parameter the stack or demo does not declare.
type InvalidParameterError struct {
	Parameter string
	Expected  string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter '%s', expected one of %s", e.Parameter, e.Expected)
}

// ParseError ties a token to the grammar violation it caused.
type ParseError struct {
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse parameter %q: %v", e.Token, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
