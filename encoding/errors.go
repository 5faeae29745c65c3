package encoding

import (
	"fmt"
	"reflect"

	"github.com/illuscio-dev/wxftools-go/wxftypes"
	"golang.org/x/xerrors"
)

// ErrChainSealed is returned by Chain.Register once the chain has started encoding.
var ErrChainSealed = xerrors.New("chain is sealed: encoders must be registered before first use")

// UnsupportedTypeError is returned when no registered encoder claims a value. It is the
// only failure a Chain produces on its own; it is never retried since type support
// does not change between calls.
type UnsupportedTypeError struct {
	// Runtime type of the value no encoder claimed. Nil for an untyped nil.
	Type reflect.Type

	frame xerrors.Frame
}

func newUnsupportedTypeError(value interface{}) *UnsupportedTypeError {
	return &UnsupportedTypeError{
		Type:  reflect.TypeOf(value),
		frame: xerrors.Caller(1),
	}
}

func (unsupported *UnsupportedTypeError) Error() string {
	typeName := "<nil>"
	if unsupported.Type != nil {
		typeName = unsupported.Type.String()
	}
	return "no encoder for type " + typeName
}

// FormatError implements xerrors.Formatter so %+v prints where the value was
// rejected.
func (unsupported *UnsupportedTypeError) FormatError(printer xerrors.Printer) error {
	printer.Print(unsupported.Error())
	unsupported.frame.Format(printer)
	return nil
}

func (unsupported *UnsupportedTypeError) Format(state fmt.State, verb rune) {
	xerrors.FormatError(unsupported, state, verb)
}

// MalformedEncoderError reports a token stream whose declared arities do not match the
// subtrees actually emitted. Chains never raise it; it is produced by Validator.
type MalformedEncoderError struct {
	// Zero-based position of the offending token in the stream. Equal to the stream
	// length when the stream ended early.
	Position int
	// Offending token. Zero when the stream ended early.
	Token wxftypes.Token
	// What was wrong.
	Reason string
}

func (malformed *MalformedEncoderError) Error() string {
	if malformed.Token.Kind == wxftypes.KindInvalid {
		return fmt.Sprintf(
			"malformed token stream at position %d: %s",
			malformed.Position,
			malformed.Reason,
		)
	}
	return fmt.Sprintf(
		"malformed token stream at position %d (%s): %s",
		malformed.Position,
		malformed.Token,
		malformed.Reason,
	)
}
