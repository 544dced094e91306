package errors

import (
	stderrors "errors"
	"fmt"
)

// New creates a PathError with the default classification for code.
//
//	err := errors.New(errors.CodeInvalidInput, "no paths given")
func New(code ErrorCode, message string) PathError {
	return &pathError{
		code:           code,
		classification: classify(code),
		message:        message,
	}
}

// Newf creates a PathError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) PathError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches a code and message to err. If err already is a PathError,
// its classification and context are kept. Returns nil if err is nil.
//
//	if err := backend.Remove(ctx, name, true); err != nil {
//	    return errors.Wrap(err, errors.CodeTransferFailed, "remove failed")
//	}
func Wrap(err error, code ErrorCode, message string) PathError {
	if err == nil {
		return nil
	}

	wrapped := &pathError{
		code:           code,
		classification: classify(code),
		message:        message,
		cause:          err,
	}

	var inner PathError
	if stderrors.As(err, &inner) {
		wrapped.classification = inner.Classification()
		wrapped.context = inner.Context()
	}
	return wrapped
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) PathError {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// ProtocolMismatch reports that a and b were combined under different
// protocols.
func ProtocolMismatch(a, b string) PathError {
	return WithContextMap(
		Newf(CodeProtocolMismatch, "protocols of %s and %s do not match", a, b),
		map[string]interface{}{"a": a, "b": b},
	)
}

// InvalidPath reports a path of the wrong shape.
func InvalidPath(path, reason string) PathError {
	return WithContext(Newf(CodeInvalidPath, "%s: %s", reason, path), "path", path)
}

// NotFound reports a missing path, keeping cause in the chain.
func NotFound(path string, cause error) PathError {
	if cause == nil {
		return WithContext(Newf(CodeNotFound, "path %s does not exist", path), "path", path)
	}
	return WithContext(Wrapf(cause, CodeNotFound, "path %s does not exist", path), "path", path)
}
