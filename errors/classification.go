package errors

// ErrorClassification tells a caller whether re-running the operation might
// succeed.
type ErrorClassification string

const (
	// ClassificationRetryable marks transient failures (network, timeouts).
	ClassificationRetryable ErrorClassification = "RETRYABLE"

	// ClassificationPermanent marks failures that will repeat on retry.
	ClassificationPermanent ErrorClassification = "PERMANENT"
)

// IsRetryable reports whether the classification is ClassificationRetryable.
func (c ErrorClassification) IsRetryable() bool {
	return c == ClassificationRetryable
}

var defaultClassifications = map[ErrorCode]ErrorClassification{
	CodeNetwork:        ClassificationRetryable,
	CodeTimeout:        ClassificationRetryable,
	CodeTransferFailed: ClassificationRetryable,

	CodeProtocolMismatch: ClassificationPermanent,
	CodeInvalidPath:      ClassificationPermanent,
	CodeNotADirectory:    ClassificationPermanent,
	CodeIsADirectory:     ClassificationPermanent,
	CodeNotFound:         ClassificationPermanent,
	CodeAlreadyExists:    ClassificationPermanent,
	CodeForbidden:        ClassificationPermanent,
	CodeInvalidInput:     ClassificationPermanent,
	CodeInvalidConfig:    ClassificationPermanent,
	CodeNotImplemented:   ClassificationPermanent,
	CodeInternal:         ClassificationPermanent,
	CodeUnknown:          ClassificationPermanent,
}

// classify returns the default classification for code.
// Unknown codes are permanent so nothing retries by accident.
func classify(code ErrorCode) ErrorClassification {
	if c, ok := defaultClassifications[code]; ok {
		return c
	}
	return ClassificationPermanent
}
