package errors

import stderrors "errors"

// WithContext returns a copy of err with key set to value.
// Plain errors are converted to a CodeUnknown PathError that wraps them.
// Returns nil if err is nil.
//
//	err = errors.WithContext(err, "path", p)
func WithContext(err error, key string, value interface{}) PathError {
	return WithContextMap(err, map[string]interface{}{key: value})
}

// WithContextMap returns a copy of err with fields merged in. New fields win
// over existing ones with the same key. Returns nil if err is nil.
func WithContextMap(err error, fields map[string]interface{}) PathError {
	if err == nil {
		return nil
	}

	pe := asPathError(err)
	merged := pe.Context()
	if merged == nil {
		merged = make(map[string]interface{}, len(fields))
	}
	for k, v := range fields {
		merged[k] = v
	}

	return &pathError{
		code:           pe.Code(),
		classification: pe.Classification(),
		message:        pe.Message(),
		context:        merged,
		cause:          pe.Unwrap(),
	}
}

// WithClassification returns a copy of err with its classification replaced.
// Returns nil if err is nil.
func WithClassification(err error, classification ErrorClassification) PathError {
	if err == nil {
		return nil
	}

	pe := asPathError(err)
	return &pathError{
		code:           pe.Code(),
		classification: classification,
		message:        pe.Message(),
		context:        pe.Context(),
		cause:          pe.Unwrap(),
	}
}

func asPathError(err error) PathError {
	var pe PathError
	if stderrors.As(err, &pe) {
		return pe
	}
	return &pathError{
		code:           CodeUnknown,
		classification: ClassificationPermanent,
		message:        err.Error(),
		cause:          err,
	}
}
