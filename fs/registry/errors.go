package registry

import (
	"context"
	stderrors "errors"
	"io/fs"
	"net"

	"github.com/amphancm/olmocr/errors"
	"github.com/amphancm/olmocr/fs/core"
)

// Wrap converts a backend error into a PathError whose code reflects the
// underlying cause. The cause stays in the chain, so errors.Is against the
// io/fs sentinels keeps working. Returns nil if err is nil.
func Wrap(err error, op, path string) error {
	if err == nil {
		return nil
	}
	var pe errors.PathError
	if stderrors.As(err, &pe) {
		return err
	}
	return errors.WithContextMap(
		errors.Wrapf(err, codeOf(err), "%s %s", op, path),
		map[string]interface{}{"op": op, "path": path},
	)
}

func codeOf(err error) errors.ErrorCode {
	var netErr net.Error
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		return errors.CodeNotFound
	case stderrors.Is(err, fs.ErrExist):
		return errors.CodeAlreadyExists
	case stderrors.Is(err, fs.ErrPermission):
		return errors.CodeForbidden
	case stderrors.Is(err, core.ErrIsDir):
		return errors.CodeIsADirectory
	case stderrors.Is(err, core.ErrUnsupported):
		return errors.CodeNotImplemented
	case stderrors.Is(err, fs.ErrInvalid):
		return errors.CodeInvalidPath
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.CodeTimeout
	case stderrors.As(err, &netErr):
		if netErr.Timeout() {
			return errors.CodeTimeout
		}
		return errors.CodeNetwork
	default:
		return errors.CodeInternal
	}
}
