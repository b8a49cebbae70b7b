package page

import (
	"errors"
	"fmt"
)

// ParseError reports malformed page input. Line is 1-based; zero means the
// position is unknown.
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	switch {
	case e.Path != "" && e.Line > 0:
		return fmt.Sprintf("parse %s:%d: %s", e.Path, e.Line, e.Msg)
	case e.Path != "":
		return fmt.Sprintf("parse %s: %s", e.Path, e.Msg)
	case e.Line > 0:
		return fmt.Sprintf("parse line %d: %s", e.Line, e.Msg)
	default:
		return "parse: " + e.Msg
	}
}

// IOError reports a failure reading a source or writing an output file.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// IsParseError reports whether err wraps a *ParseError.
func IsParseError(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}

// IsIOError reports whether err wraps an *IOError.
func IsIOError(err error) bool {
	var target *IOError
	return errors.As(err, &target)
}
