package errs

import (
	"errors"
	"fmt"
)

type Code string

const (
	Spawn        Code = "SPAWN"
	LockConflict Code = "LOCK_CONFLICT"
	Command      Code = "COMMAND"
	Parse        Code = "PARSE"
	Timestamp    Code = "TIMESTAMP"
	Label        Code = "LABEL"
	Config       Code = "CONFIG"
)

var messages = map[Code]string{
	Spawn:        "failed to run the backup tool",
	LockConflict: "repository is still locked after all retry attempts",
	Command:      "backup tool exited with an error",
	Parse:        "invalid status document",
	Timestamp:    "invalid last modified timestamp",
	Label:        "invalid repository path",
	Config:       "invalid configuration",
}

// Msg returns the human readable description of code.
func Msg(code Code) string {
	msg := messages[code]
	if msg == "" {
		msg = string(code)
	}
	return msg
}

// Error is a coded failure tied to one repository. Repository is empty for
// failures that are not repository specific (configuration).
type Error struct {
	Code       Code
	Repository string
	Err        error
}

func New(code Code, repository string, err error) *Error {
	return &Error{Code: code, Repository: repository, Err: err}
}

func Newf(code Code, repository string, format string, a ...any) *Error {
	return New(code, repository, fmt.Errorf(format, a...))
}

func (e *Error) Error() string {
	msg := Msg(e.Code)
	if e.Repository != "" {
		msg = fmt.Sprintf("%s (repository %s)", msg, e.Repository)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by code only, so errors.Is(err, &Error{Code: Parse})
// works regardless of repository or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Has reports whether err carries the given code anywhere in its chain.
func Has(err error, code Code) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	if e.Code == code {
		return true
	}
	return Has(e.Err, code)
}

// CodeOf returns the code of the outermost *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
