package encoding

import (
	"fmt"

	"github.com/illuscio-dev/wxftools-go/wxftypes"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/xerrors"
)

// Position selects where Register places an encoder in the chain.
type Position int

const (
	// Append places the encoder after every registered encoder.
	Append Position = iota
	// Prepend places the encoder ahead of every registered encoder.
	Prepend
)

// ChainOpts holds options for NewChain.
type ChainOpts struct {
	// Do not register DefaultEncoder.
	SkipDefault bool
	// Encoders consulted ahead of DefaultEncoder, in order.
	Extensions []Encoder
	// Logger for claim decisions. Defaults to a no-op logger.
	Logger *zap.Logger
}

/*
Chain is the default implementation of the TokenEngine interface: an ordered list of
encoders plus the logic deciding which one is responsible for a value.

Instantiation

Use NewChain() to create a new Chain. Unless ChainOpts.SkipDefault is set the chain
ships with DefaultEncoder as its last encoder, so encoders registered with Prepend
override the built-in behavior and encoders registered with Append only see values the
default encoder declines.

Dispatch

For each value, encoders are tried in registration order. The first encoder whose
stream yields an element owns the value: that element and the rest of its stream are
forwarded verbatim and no other encoder is consulted. An encoder whose stream yields
nothing has declined and the next one is tried. When every encoder declines, the stream
yields an *UnsupportedTypeError.

Failures

An encoder that yields an error, or panics, aborts the whole serialization. Panics are
recovered and returned as errors. The chain does not fall through to the next encoder
after a failure.

Concurrency

The first call to ProvideTokens seals the chain and further registration fails with
ErrChainSealed. A sealed chain is read-only and can be shared by any number of
concurrent encode calls.

Extension

Encoders receive the engine returned by SetPassedEngine (the chain itself by default),
so a type wrapping *Chain can hand itself to its encoders.
*/
type Chain struct {
	// Registered encoders in priority order.
	encoders []Encoder
	// Set on first use; registration is rejected afterwards.
	sealed atomic.Bool
	// Engine to pass to Encoder.Encode() methods.
	passedEngine TokenEngine

	logger *zap.Logger
}

// Change the engine passed into Encoder.Encode().
func (chain *Chain) SetPassedEngine(newEngine TokenEngine) {
	chain.passedEngine = newEngine
}

// SetLogger replaces the logger used for claim decisions.
func (chain *Chain) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	chain.logger = logger
}

// Register adds encoder at position. It fails with ErrChainSealed once the chain has
// served its first encode call.
func (chain *Chain) Register(encoder Encoder, position Position) error {
	if encoder == nil {
		return xerrors.New("cannot register nil encoder")
	}
	if chain.sealed.Load() {
		return ErrChainSealed
	}

	switch position {
	case Append:
		chain.encoders = append(chain.encoders, encoder)
	case Prepend:
		chain.encoders = append([]Encoder{encoder}, chain.encoders...)
	default:
		return xerrors.Errorf("unknown register position %d", position)
	}

	return nil
}

// Encoders returns a copy of the registered encoders in priority order.
func (chain *Chain) Encoders() []Encoder {
	registered := make([]Encoder, len(chain.encoders))
	copy(registered, chain.encoders)
	return registered
}

// Whether the chain has started encoding and no longer accepts encoders.
func (chain *Chain) Sealed() bool {
	return chain.sealed.Load()
}

// Select what engine to pass into the encoder in case we are extending the chain
// type.
func (chain *Chain) getEngine() (passEngine TokenEngine) {
	if chain.passedEngine != nil {
		passEngine = chain.passedEngine
	} else {
		passEngine = chain
	}

	return passEngine
}

// Runs encoder on value, forwarding its elements to yield while catching panics to
// return as errors. Reports whether the encoder claimed the value.
func (chain *Chain) safeEncode(
	encoder Encoder,
	engine TokenEngine,
	value interface{},
	yield func(wxftypes.Token, error) bool,
) (claimed bool) {
	// Panics raised while the consumer is handling a token are not ours to recover.
	inConsumer := false

	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}
		if inConsumer {
			panic(recovered)
		}

		var err error
		if recoveredErr, ok := recovered.(error); ok {
			err = xerrors.Errorf("panic during encode: %w", recoveredErr)
		} else {
			err = xerrors.Errorf("panic during encode: %v", recovered)
		}

		claimed = true
		yield(wxftypes.Token{}, err)
	}()

	for token, err := range encoder.Encode(engine, value) {
		if !claimed {
			claimed = true
			chain.logClaim(encoder, value)
		}

		inConsumer = true
		if !yield(token, err) {
			return true
		}
		inConsumer = false

		if err != nil {
			return true
		}
	}

	return claimed
}

func (chain *Chain) logClaim(encoder Encoder, value interface{}) {
	if checked := chain.logger.Check(zap.DebugLevel, "encoder claimed value"); checked != nil {
		checked.Write(
			zap.String("encoder", fmt.Sprintf("%T", encoder)),
			zap.String("type", fmt.Sprintf("%T", value)),
		)
	}
}

// ProvideTokens returns the token stream for value. Nothing is encoded until the
// stream is pulled.
func (chain *Chain) ProvideTokens(value interface{}) Stream {
	if !chain.sealed.Load() {
		chain.sealed.Store(true)
	}
	engine := chain.getEngine()

	return func(yield func(wxftypes.Token, error) bool) {
		for _, encoder := range chain.encoders {
			if chain.safeEncode(encoder, engine, value, yield) {
				return
			}
		}

		unsupported := newUnsupportedTypeError(value)
		if checked := chain.logger.Check(zap.DebugLevel, "no encoder claimed value"); checked != nil {
			checked.Write(zap.Error(unsupported))
		}
		yield(wxftypes.Token{}, unsupported)
	}
}

// Tokens drains the stream for value into a slice.
func (chain *Chain) Tokens(value interface{}) ([]wxftypes.Token, error) {
	return Collect(chain.ProvideTokens(value))
}

// Collect drains stream into a slice, stopping at the first error.
func Collect(stream Stream) ([]wxftypes.Token, error) {
	collected := make([]wxftypes.Token, 0)
	for token, err := range stream {
		if err != nil {
			return collected, err
		}
		collected = append(collected, token)
	}
	return collected, nil
}

// NewChain returns a chain holding opts.Extensions followed by DefaultEncoder.
func NewChain(opts ChainOpts) *Chain {
	chain := &Chain{
		encoders: make([]Encoder, 0, len(opts.Extensions)+1),
	}
	chain.SetLogger(opts.Logger)

	// Nil entries are skipped rather than failing construction.
	for _, extension := range opts.Extensions {
		if extension != nil {
			chain.encoders = append(chain.encoders, extension)
		}
	}

	// Add the default encoder last so everything above can override it.
	if !opts.SkipDefault {
		chain.encoders = append(chain.encoders, &DefaultEncoder{})
	}

	return chain
}
