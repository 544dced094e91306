// Command olmocr-paths inspects, fetches and copies locators across local
// disk, S3 and HTTP.
//
// Configuration comes from --config (yaml, toml or json) and OLMOCR_
// environment variables, for example OLMOCR_S3_ENDPOINT or
// OLMOCR_CACHE_DIR.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/amphancm/olmocr/errors"
)

// Exit codes.
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitNotFound     = 3
	ExitNetworkError = 5
	ExitTransfer     = 7
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeInvalidPath, errors.CodeProtocolMismatch, errors.CodeInvalidConfig:
		return ExitInvalidArgs
	case errors.CodeNotFound:
		return ExitNotFound
	case errors.CodeNetwork, errors.CodeTimeout:
		return ExitNetworkError
	case errors.CodeTransferFailed:
		return ExitTransfer
	default:
		return ExitGeneralError
	}
}
