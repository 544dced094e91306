package errors

import "fmt"

// PathError is the structured error returned by every package in this
// module. It is compatible with errors.Is, errors.As and errors.Unwrap.
type PathError interface {
	error

	// Code returns the error code.
	Code() ErrorCode

	// Classification returns whether a retry may succeed.
	Classification() ErrorClassification

	// Message returns the message without the cause.
	Message() string

	// Context returns a copy of the attached fields, or nil.
	Context() map[string]interface{}

	// Unwrap returns the cause, or nil.
	Unwrap() error
}

type pathError struct {
	code           ErrorCode
	classification ErrorClassification
	message        string
	context        map[string]interface{}
	cause          error
}

// Error formats as "[CODE] message" or "[CODE] message: cause".
func (e *pathError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.code, e.message)
}

func (e *pathError) Code() ErrorCode                     { return e.code }
func (e *pathError) Classification() ErrorClassification { return e.classification }
func (e *pathError) Message() string                     { return e.message }
func (e *pathError) Unwrap() error                       { return e.cause }

func (e *pathError) Context() map[string]interface{} {
	if e.context == nil {
		return nil
	}
	out := make(map[string]interface{}, len(e.context))
	for k, v := range e.context {
		out[k] = v
	}
	return out
}
