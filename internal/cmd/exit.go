package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"

	"github.com/3leaps/s3up/pkg/provider"
	"github.com/3leaps/s3up/pkg/transfer"
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error

	// Logged is set when the failure was already reported to the user.
	Logged bool
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: %v (exit code %d)", e.Message, e.Err, e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitError creates an error that will cause the CLI to exit with the given code.
func exitError(code int, message string, err error) error {
	return &ExitError{Code: code, Message: message, Err: err}
}

// loggedExit is exitError for failures the command has already logged.
func loggedExit(code int, message string, err error) error {
	return &ExitError{Code: code, Message: message, Err: err, Logged: true}
}

// classify maps an action failure onto an exit code and message.
// localCode applies to local filesystem failures.
func classify(action string, err error, localCode int) error {
	var ve *transfer.ValidationError
	switch {
	case errors.As(err, &ve):
		if errors.Is(err, transfer.ErrFileNotFound) {
			return loggedExit(foundry.ExitFileNotFound, "File does not exist.", err)
		}
		return loggedExit(foundry.ExitInvalidArgument, "File rejected.", err)
	case errors.Is(err, context.Canceled):
		return exitError(foundry.ExitSignalInt, action+" cancelled", err)
	case provider.IsProviderError(err):
		return exitError(foundry.ExitExternalServiceUnavailable,
			fmt.Sprintf("%s failed: %s.", action, provider.Reason(err)), err)
	default:
		return exitError(localCode, action+" failed", err)
	}
}
