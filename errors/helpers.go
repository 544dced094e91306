package errors

import stderrors "errors"

// Is wraps the standard library errors.Is.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As wraps the standard library errors.As.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// GetCode returns the code of the outermost PathError in err's chain, or
// CodeUnknown.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}
	var pe PathError
	if stderrors.As(err, &pe) {
		return pe.Code()
	}
	return CodeUnknown
}

// HasCode reports whether any PathError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var pe PathError
		if !stderrors.As(err, &pe) {
			return false
		}
		if pe.Code() == code {
			return true
		}
		err = pe.Unwrap()
	}
	return false
}

// GetClassification returns the classification of the outermost PathError
// in err's chain, or ClassificationPermanent.
func GetClassification(err error) ErrorClassification {
	if err == nil {
		return ClassificationPermanent
	}
	var pe PathError
	if stderrors.As(err, &pe) {
		return pe.Classification()
	}
	return ClassificationPermanent
}

// IsRetryable reports whether err is classified as retryable.
func IsRetryable(err error) bool {
	return GetClassification(err).IsRetryable()
}
