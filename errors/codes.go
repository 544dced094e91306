package errors

// ErrorCode identifies a class of failure.
// Codes are strings so they read well in logs and JSON.
type ErrorCode string

const (
	// Path errors.

	// CodeProtocolMismatch indicates two locators were combined or compared
	// under different protocols.
	CodeProtocolMismatch ErrorCode = "PROTOCOL_MISMATCH"

	// CodeInvalidPath indicates a path of the wrong shape, such as a glob
	// pattern where a concrete path is required or a protocol-qualified
	// path where a relative one is required.
	CodeInvalidPath ErrorCode = "INVALID_PATH"

	// CodeNotADirectory indicates an operation expected a directory.
	CodeNotADirectory ErrorCode = "NOT_A_DIRECTORY"

	// CodeIsADirectory indicates an operation expected a file.
	CodeIsADirectory ErrorCode = "IS_A_DIRECTORY"

	// Resource errors.

	// CodeNotFound indicates a required path does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeAlreadyExists indicates a path exists and may not be recreated.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// CodeForbidden indicates the backend refused access.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// Transfer errors.

	// CodeTransferFailed indicates an I/O failure during copy, download or
	// decompression.
	CodeTransferFailed ErrorCode = "TRANSFER_FAILED"

	// CodeNetwork indicates a network operation failed.
	CodeNetwork ErrorCode = "NETWORK_ERROR"

	// CodeTimeout indicates an operation exceeded its deadline.
	CodeTimeout ErrorCode = "TIMEOUT"

	// Validation errors.

	// CodeInvalidInput indicates malformed arguments.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// System errors.

	// CodeNotImplemented indicates an unsupported protocol or operation.
	CodeNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// CodeInternal indicates a bug or broken invariant.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeUnknown is used for errors that carry no code.
	CodeUnknown ErrorCode = "UNKNOWN"
)
