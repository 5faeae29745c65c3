package encoding

import (
	"iter"

	"github.com/illuscio-dev/wxftools-go/wxftypes"
)

// Stream is a lazily produced sequence of tokens. Tokens are computed only as the
// consumer pulls them. An element with a non-nil error is always the last element of
// the stream, and its token is the zero Token.
type Stream = iter.Seq2[wxftypes.Token, error]

// TokenEngine is the interface for objects that turn native values into token streams.
// It is handed to every Encoder call so encoders can delegate nested values back to
// the engine that is driving them.
type TokenEngine interface {
	ProvideTokens(value interface{}) Stream
}

// Interface for defining a value encoder.
type Encoder interface {
	// To be implemented by value encoders. An implementation that does not handle
	// value must return a stream that yields nothing; that is the only way to decline.
	// Once the stream yields its first element the encoder owns value and must finish
	// it. The engine driving the call is made available through engine, which nested
	// sub-values should be handed back to.
	Encode(engine TokenEngine, value interface{}) Stream
}

// EncoderFunc adapts an ordinary function to the Encoder interface.
type EncoderFunc func(engine TokenEngine, value interface{}) Stream

func (encoderFunc EncoderFunc) Encode(engine TokenEngine, value interface{}) Stream {
	return encoderFunc(engine, value)
}

// YieldFrom forwards every element of stream to yield. It returns false when the
// enclosing iteration must stop, either because the consumer stopped pulling or
// because stream produced an error.
func YieldFrom(stream Stream, yield func(wxftypes.Token, error) bool) bool {
	for token, err := range stream {
		if !yield(token, err) {
			return false
		}
		if err != nil {
			return false
		}
	}
	return true
}

// Serialize is the re-entrant helper for encoders: it encodes value through engine and
// forwards the tokens to yield.
//
//	yield(wxftypes.Function(1))
//	yield(wxftypes.Symbol("Point"))
//	if !encoding.Serialize(engine, []float64{point.X, point.Y}, yield) {
//		return
//	}
func Serialize(
	engine TokenEngine, value interface{}, yield func(wxftypes.Token, error) bool,
) bool {
	return YieldFrom(engine.ProvideTokens(value), yield)
}

// emptyStream is returned by encoders that decline a value.
func emptyStream(yield func(wxftypes.Token, error) bool) {}

// tokens returns a stream over fixed leaf tokens.
func tokens(leaves ...wxftypes.Token) Stream {
	return func(yield func(wxftypes.Token, error) bool) {
		for _, token := range leaves {
			if !yield(token, nil) {
				return
			}
		}
	}
}
