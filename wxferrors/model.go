package wxferrors

import (
	"fmt"
	"runtime/debug"
	"strconv"

	uuid "github.com/satori/go.uuid"
	"golang.org/x/xerrors"
)

// Longest rendering of an evaluation result included in LogMessage.
const maxResultChars = 100

/*
Used to define a kind of error. Since kinds are declared as pointers, to protect
against accidental mutation by other packages, the underlying fields of this struct are
private and accessed through functions. Define new kinds using NewErrorKind().
*/
type ErrorKind struct {
	// Unique human-readable name of the error kind.
	name string

	// Unique number to identify the error kind.
	code int

	// Broader kind this kind specializes, if any.
	parent *ErrorKind
}

// Returns a new error of this kind.
func (errorKind *ErrorKind) New(message string, source error) *Error {
	return &Error{
		ErrorKind:   errorKind,
		Message:     message,
		ID:          uuid.NewV4(),
		sourceErr:   source,
		sourceStack: debug.Stack(),
		frame:       xerrors.Caller(1),
	}
}

// Wrap returns a new error of this kind whose message is source's message.
func (errorKind *ErrorKind) Wrap(source error) *Error {
	err := errorKind.New(source.Error(), source)
	err.frame = xerrors.Caller(1)
	return err
}

// Unique human-readable name of the error kind.
func (errorKind *ErrorKind) Name() string {
	return errorKind.name
}

// Unique number to identify the error kind.
func (errorKind *ErrorKind) Code() int {
	return errorKind.code
}

// Broader kind this kind specializes. Nil for top-level kinds.
func (errorKind *ErrorKind) Parent() *ErrorKind {
	return errorKind.parent
}

// Allows the kind itself to be a valid error for things like testing error equality.
func (errorKind *ErrorKind) Error() string {
	return errorKind.name + " (" + strconv.Itoa(errorKind.code) + ")"
}

// Response is the payload of request-like errors.
type Response struct {
	// Status code of the response.
	Status int
	// Body text of the response.
	Body string
}

// Used to return a specific error instance.
type Error struct {
	// The kind of error we are returning.
	*ErrorKind

	// A message detailing what caused the error.
	Message string

	// An id for the error being returned.
	ID uuid.UUID

	// Response that caused a RequestError or AuthenticationError.
	Response *Response

	// Result of the evaluation that raised an EvaluationError.
	Result interface{}

	// Messages raised by the evaluation.
	Messages []string

	// Input surrounding a ParserError.
	Context string

	// If this error was returned because of another error, the original error is stored
	// here.
	sourceErr error

	// The debug.Stack() from where this error was instantiated.
	sourceStack []byte

	// The xerrors.Frame from where this error was instantiated.
	frame xerrors.Frame
}

// WithResponse attaches the response that caused the error. An empty message is
// replaced by the response body.
func (err *Error) WithResponse(status int, body string) *Error {
	err.Response = &Response{Status: status, Body: body}
	if err.Message == "" {
		err.Message = body
	}
	return err
}

// WithEvaluation attaches the result and messages of a failed evaluation.
func (err *Error) WithEvaluation(result interface{}, messages ...string) *Error {
	err.Result = result
	err.Messages = append(err.Messages, messages...)
	return err
}

// WithContext attaches the input surrounding a parse failure.
func (err *Error) WithContext(context string) *Error {
	err.Context = context
	return err
}

// Returns true if this error is of errorKind, or of a kind specializing it.
func (err *Error) IsKind(errorKind *ErrorKind) bool {
	if errorKind == nil {
		return false
	}
	for kind := err.ErrorKind; kind != nil; kind = kind.parent {
		if kind.Error() == errorKind.Error() {
			return true
		}
	}
	return false
}

// Is lets errors.Is match an error against its kind.
func (err *Error) Is(target error) bool {
	targetKind, ok := target.(*ErrorKind)
	return ok && err.IsKind(targetKind)
}

// Error string to conform to builtin error interface.
func (err *Error) Error() string {
	if err.Response != nil {
		return err.ErrorKind.Error() + " - <" + strconv.Itoa(err.Response.Status) + ">: " +
			err.Message
	}
	return err.ErrorKind.Error() + " - " + err.Message
}

// Implements the xerrors.Wrapper interface.
func (err *Error) Unwrap() error {
	return err.sourceErr
}

// FormatError implements xerrors.Formatter so %+v prints where the error was created.
func (err *Error) FormatError(printer xerrors.Printer) error {
	printer.Print(err.Error())
	err.frame.Format(printer)
	// Messages already carry the source message; only %+v follows the chain.
	if printer.Detail() {
		return err.sourceErr
	}
	return nil
}

func (err *Error) Format(state fmt.State, verb rune) {
	xerrors.FormatError(err, state, verb)
}

// More verbose error message that includes a debug.Stack() and payload information.
// This is not part of Error() by default since it may contain sensitive information.
func (err *Error) LogMessage() string {
	loggerMessage := fmt.Sprint(
		"\nMESSAGE: ",
		err.Error(),
		"\nID: ",
		err.ID,
	)
	if err.Context != "" {
		loggerMessage += "\nCONTEXT: " + err.Context
	}
	if err.Result != nil || len(err.Messages) > 0 {
		loggerMessage += fmt.Sprintf(
			"\nRESULT: %s\nMESSAGES: %d",
			trim(fmt.Sprint(err.Result), maxResultChars),
			len(err.Messages),
		)
		for _, message := range err.Messages {
			loggerMessage += "\n  " + message
		}
	}
	loggerMessage += fmt.Sprint(
		"\nORIGINAL: ",
		err.sourceErr,
		"\nSTACK:\n",
		string(err.sourceStack),
	)
	return loggerMessage
}

func trim(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars]) + "...(" + strconv.Itoa(len(runes)-maxChars) + " more)"
}
