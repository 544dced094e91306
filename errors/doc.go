// Package errors provides the structured error type used across the path and
// cache layer.
//
// Every error surfaced by the locator algebra, the filesystem registry, the
// resource cache and the directory copier is a PathError carrying an
// ErrorCode, a retry classification and optional context fields (typically
// "path", "protocol", "src" and "dst"). PathError wraps its cause, so the
// standard library helpers keep working:
//
//	_, err := reg.Size(ctx, "s3://bucket/missing.json")
//	if errors.Is(err, fs.ErrNotExist) {
//	    // still true: the backend's *fs.PathError is in the chain
//	}
//	if errors.GetCode(err) == errors.CodeNotFound {
//	    // same condition, expressed through the code
//	}
//
// # Taxonomy
//
//   - CodeProtocolMismatch: two locators combined under different protocols
//   - CodeNotFound: a required path is missing
//   - CodeInvalidPath: a glob pattern or protocol-qualified path was supplied
//     where a concrete or relative path is mandatory
//   - CodeTransferFailed: I/O failure while copying, downloading or
//     decompressing
//   - CodeNotADirectory / CodeIsADirectory: the path has the wrong kind
//
// No retries happen inside the layer. IsRetryable only reports what a caller
// may choose to do.
package errors
