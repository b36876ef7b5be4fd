// Package errors defines the IPPcode22 engine's flat error taxonomy.
//
// Every failure the engine can raise maps to one of the fixed exit codes
// below. Failures with an underlying cause (a failed os.Open, a malformed
// XML token) are built with Wrap, which keeps that cause's stack trace via
// github.com/pkg/errors even though the message shown to the user stays a
// single advisory line.
package errors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Code is one of the fixed process exit codes shared by the CLI and the
// execution engine.
type Code int

const (
	BadArg              Code = 10
	InputFile           Code = 11
	OutputFile          Code = 12
	XMLInputFormat      Code = 31
	XMLBadStructure     Code = 32
	SemanticError       Code = 52
	BadOperandType      Code = 53
	VariableDontExist   Code = 54
	FrameDontExist      Code = 55
	MissingValue        Code = 56
	BadOperandValue     Code = 57
	BadStringOperation  Code = 58
	Intern              Code = 99
)

func (c Code) String() string {
	switch c {
	case BadArg:
		return "BAD_ARG"
	case InputFile:
		return "INPUT_FILE"
	case OutputFile:
		return "OUTPUT_FILE"
	case XMLInputFormat:
		return "XML_INPUT_FORMAT"
	case XMLBadStructure:
		return "XML_BAD_STRUCTURE"
	case SemanticError:
		return "SEMANTIC_ERROR"
	case BadOperandType:
		return "BAD_OPERAND_TYPE"
	case VariableDontExist:
		return "VARIABLE_DONT_EXIST"
	case FrameDontExist:
		return "FRAME_DONT_EXIST"
	case MissingValue:
		return "MISSING_VALUE"
	case BadOperandValue:
		return "BAD_OPERAND_VALUE"
	case BadStringOperation:
		return "BAD_STRING_OPERATION"
	case Intern:
		return "INTERN"
	default:
		return "UNKNOWN"
	}
}

// Error is the engine's single error type: a fixed exit code plus an
// advisory message and, for failures built with Wrap, the causal chain that
// produced it.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("[Error](%s) %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New builds an Error with the given code and a formatted advisory message.
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error carrying code, preserving cause's stack trace via
// github.com/pkg/errors so the causal chain survives past the single
// advisory line shown to the user. Internal invariant violations wrap with
// code Intern; a failed os.Open or XML decode wraps with its own code
// (InputFile, XMLInputFormat, ...) so the process still exits with the
// code the failure actually maps to.
func Wrap(code Code, cause error, format string, args ...interface{}) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{Code: code, Message: msg, cause: pkgerrors.Wrap(cause, msg)}
}

// ExitCode returns the process exit code for err: the Code of an *Error, or
// Intern for any other non-nil error.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if As(err, &e) {
		return int(e.Code)
	}
	return int(Intern)
}

// As is a tiny local alias of the standard errors.As, kept here so callers
// of this package never need to also import the stdlib "errors" package
// under an aliased name.
func As(err error, target interface{}) bool {
	return pkgerrors.As(err, target)
}
