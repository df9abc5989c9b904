package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-translatable/internal/translatable"
)

const (
	codeValidation      = "COMMAND_VALIDATION_FAILED"
	codeNotTranslatable = "ATTRIBUTE_NOT_TRANSLATABLE"
	codeCanceled        = "COMMAND_CONTEXT_CANCELED"
	codeTimeout         = "COMMAND_CONTEXT_TIMEOUT"
	codeContext         = "COMMAND_CONTEXT_ERROR"
	codeExecute         = "COMMAND_EXECUTION_FAILED"
)

func wrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(codeValidation)
}

func wrapContextError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(codeCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(codeTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(codeContext)
	}
}

// wrapExecuteError tags failures. Undeclared attributes are caller errors and
// are reported as validation failures.
func wrapExecuteError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	if errors.Is(err, translatable.ErrNotTranslatableAttribute) {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "attribute is not translatable").
			WithTextCode(codeNotTranslatable)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return wrapContextError(err)
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
		WithTextCode(codeExecute)
}
