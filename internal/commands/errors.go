package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-guide/internal/page"
)

const (
	codeInvalidMessage = "GUIDE_COMMAND_INVALID"
	codeCanceled       = "GUIDE_COMMAND_CANCELED"
	codeTimedOut       = "GUIDE_COMMAND_TIMEOUT"
	codePageIO         = "GUIDE_PAGE_IO_FAILED"
	codePageParse      = "GUIDE_PAGE_PARSE_FAILED"
	codeFailed         = "GUIDE_COMMAND_FAILED"
)

// failureClass tags an execution error with a go-errors category and code.
type failureClass struct {
	category goerrors.Category
	code     string
	message  string
}

// classifyFailure picks the most specific class for err. Build errors join
// every page failure; output problems outrank malformed sources because they
// affect the whole site rather than one page.
func classifyFailure(err error) failureClass {
	var (
		ioErr    *page.IOError
		parseErr *page.ParseError
	)
	switch {
	case errors.Is(err, context.Canceled):
		return failureClass{goerrors.CategoryCommand, codeCanceled, "command cancelled"}
	case errors.Is(err, context.DeadlineExceeded):
		return failureClass{goerrors.CategoryCommand, codeTimedOut, "command deadline exceeded"}
	case errors.As(err, &ioErr):
		return failureClass{goerrors.CategoryOperation, codePageIO, "page " + ioErr.Op + " failed for " + ioErr.Path}
	case errors.As(err, &parseErr):
		return failureClass{goerrors.CategoryBadInput, codePageParse, "page source is malformed: " + parseErr.Path}
	default:
		return failureClass{goerrors.CategoryCommand, codeFailed, "command failed"}
	}
}

func wrapFailure(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	class := classifyFailure(err)
	return goerrors.Wrap(err, class.category, class.message).WithTextCode(class.code)
}

func wrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid command message").
		WithTextCode(codeInvalidMessage)
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
