package errors

import (
	stderrors "errors"
	"fmt"
)

type ErrorType string

const (
	ErrorTypeUsage      ErrorType = "USAGE"
	ErrorTypeRepository ErrorType = "REPOSITORY"
	ErrorTypeFileSystem ErrorType = "FILESYSTEM"
	ErrorTypeCorrupt    ErrorType = "CORRUPT"
	ErrorTypeInternal   ErrorType = "INTERNAL"
)

// Exit codes are part of the CLI contract; scripts depend on them staying put.
const (
	ExitOK               = 0
	ExitUsage            = 1
	ExitAddArgs          = 2
	ExitStatusArgs       = 3
	ExitInitArgs         = 4
	ExitNoRepository     = 5
	ExitRepositoryExists = 6
	ExitPathAccess       = 7
	ExitInternal         = 8
	ExitUntrackArgs      = 9
	ExitExportArgs       = 10
	ExitImportArgs       = 11
	ExitWatchArgs        = 12
)

type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Path    string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Usage reports a bad verb or argument count. code selects which exit code
// the failure maps to.
func Usage(code int, message string) *Error {
	return &Error{
		Type:    ErrorTypeUsage,
		Message: message,
		Code:    code,
	}
}

func NoRepository(dir string) *Error {
	return &Error{
		Type:    ErrorTypeRepository,
		Message: fmt.Sprintf("no fim repository found at %s (use 'fim init' to create one)", dir),
		Code:    ExitNoRepository,
		Path:    dir,
	}
}

func RepositoryExists(dir string) *Error {
	return &Error{
		Type:    ErrorTypeRepository,
		Message: fmt.Sprintf("fim repository already exists at %s", dir),
		Code:    ExitRepositoryExists,
		Path:    dir,
	}
}

// FileSystem wraps a stat, open or read failure for a single path.
func FileSystem(path string, err error) *Error {
	return &Error{
		Type:    ErrorTypeFileSystem,
		Message: fmt.Sprintf("cannot access %s", path),
		Code:    ExitPathAccess,
		Path:    path,
		Err:     err,
	}
}

func CorruptRecord(key string, err error) *Error {
	return &Error{
		Type:    ErrorTypeCorrupt,
		Message: fmt.Sprintf("corrupt manifest record %s", key),
		Code:    ExitInternal,
		Path:    key,
		Err:     err,
	}
}

func Internal(err error) *Error {
	return &Error{
		Type:    ErrorTypeInternal,
		Message: "internal error",
		Code:    ExitInternal,
		Err:     err,
	}
}

// ExitCode returns the exit code carried by the first *Error in err's chain.
// Errors without one map to ExitInternal.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ExitInternal
}

// Is reports whether err carries an *Error of the given type.
func Is(err error, t ErrorType) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Type == t
}
