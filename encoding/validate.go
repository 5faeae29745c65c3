package encoding

import (
	"strconv"

	"github.com/illuscio-dev/wxftools-go/wxftypes"
)

// Children still owed by an open header.
type pendingFrame struct {
	remaining int
	// Association frames only accept rule markers as children.
	rules bool
}

/*
Validator checks the arity law of a token stream one token at a time, without
buffering: every Function(n) is followed by n+1 subtrees, every Association(n) by n
rule pairs, and every Rule by exactly two subtrees. Violations are reported as
*MalformedEncoderError.

Chains never validate their own output. Validator exists for encoder test suites and
for consumers that want to reject malformed streams before writing them.
*/
type Validator struct {
	stack    []pendingFrame
	position int
}

// NewValidator returns a validator expecting a single complete expression.
func NewValidator() *Validator {
	return &Validator{
		stack: []pendingFrame{{remaining: 1}},
	}
}

func (validator *Validator) fail(token wxftypes.Token, reason string) error {
	return &MalformedEncoderError{
		Position: validator.position,
		Token:    token,
		Reason:   reason,
	}
}

// Push feeds the next token of the stream.
func (validator *Validator) Push(token wxftypes.Token) error {
	defer func() { validator.position++ }()

	if token.Kind == wxftypes.KindInvalid {
		return validator.fail(token, "invalid token kind")
	}
	if len(validator.stack) == 0 {
		return validator.fail(token, "token after a complete expression")
	}
	if token.Kind.IsHeader() && token.Arity < 0 {
		return validator.fail(token, "negative arity")
	}

	top := &validator.stack[len(validator.stack)-1]
	isRule := token.Kind == wxftypes.KindRule

	if top.rules && !isRule {
		return validator.fail(token, "association entry is not a rule")
	}
	if !top.rules && isRule {
		return validator.fail(token, "rule outside of an association")
	}

	top.remaining--
	if token.Kind.IsHeader() && token.Children() > 0 {
		validator.stack = append(validator.stack, pendingFrame{
			remaining: token.Children(),
			rules:     token.Kind == wxftypes.KindAssociation,
		})
	}

	for len(validator.stack) > 0 && validator.stack[len(validator.stack)-1].remaining == 0 {
		validator.stack = validator.stack[:len(validator.stack)-1]
	}

	return nil
}

// Complete reports whether exactly one full expression has been pushed.
func (validator *Validator) Complete() bool {
	return len(validator.stack) == 0
}

// Done reports an error if the stream ended before the expression was complete.
func (validator *Validator) Done() error {
	if validator.Complete() {
		return nil
	}

	missing := 0
	for _, frame := range validator.stack {
		missing += frame.remaining
	}
	return validator.fail(
		wxftypes.Token{},
		"stream ended with "+strconv.Itoa(missing)+" subtrees missing",
	)
}

// Validate drains stream and checks it forms exactly one well-formed expression.
// Errors produced by the stream itself are returned unchanged.
func Validate(stream Stream) error {
	validator := NewValidator()
	for token, err := range stream {
		if err != nil {
			return err
		}
		if err := validator.Push(token); err != nil {
			return err
		}
	}
	return validator.Done()
}
