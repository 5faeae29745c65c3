package encoding_test

//revive:disable:import-shadowing reason: Disabled for assert := assert.New(), which is
// the preferred method of using multiple asserts in a test.

import (
	"errors"
	"slices"
	"testing"

	"github.com/illuscio-dev/wxftools-go/encoding"
	"github.com/illuscio-dev/wxftools-go/wxftypes"
	"github.com/stretchr/testify/assert"
	"golang.org/x/xerrors"
)

func streamOf(tokens ...wxftypes.Token) encoding.Stream {
	return func(yield func(wxftypes.Token, error) bool) {
		for _, token := range tokens {
			if !yield(token, nil) {
				return
			}
		}
	}
}

func assertMalformed(
	test *testing.T, tokens []wxftypes.Token, position int, message string,
) {
	test.Helper()
	assert := assert.New(test)

	err := encoding.Validate(streamOf(tokens...))

	var malformed *encoding.MalformedEncoderError
	if assert.True(errors.As(err, &malformed), "expected malformed error, got %v", err) {
		assert.Equal(position, malformed.Position)
		assert.EqualError(err, message)
	}
}

func TestValidateWellFormed(test *testing.T) {
	streams := [][]wxftypes.Token{
		seq(integer(1)),
		seq(none),
		listOf(0),
		seq(assocOf(0)),
		seq(listOf(2), integer(1), listOf(2), integer(2), integer(3)),
		seq(assocOf(1), rule, str("k"), listOf(1), assocOf(0)),
		// Heads may be compound expressions too.
		seq(fn(1), fn(0), symbolOf("Derivative"), integer(1)),
	}

	for _, tokens := range streams {
		assert.NoError(test, encoding.Validate(streamOf(tokens...)), "%v", tokens)
	}
}

func TestValidateArityTooSmall(test *testing.T) {
	// Function(1) declares a head and one argument, but two arguments follow.
	assertMalformed(
		test,
		seq(fn(1), symbolOf("List"), integer(1), integer(2)),
		3,
		"malformed token stream at position 3 (Integer(2)): token after a complete expression",
	)
}

func TestValidateArityTooLarge(test *testing.T) {
	assertMalformed(
		test,
		seq(listOf(3), integer(1)),
		3,
		"malformed token stream at position 3: stream ended with 2 subtrees missing",
	)
}

func TestValidateEmptyStream(test *testing.T) {
	assertMalformed(
		test,
		nil,
		0,
		"malformed token stream at position 0: stream ended with 1 subtrees missing",
	)
}

func TestValidateRuleOutsideAssociation(test *testing.T) {
	assertMalformed(
		test,
		seq(listOf(1), rule, str("k"), integer(1)),
		2,
		`malformed token stream at position 2 (Rule): rule outside of an association`,
	)
}

func TestValidateAssociationEntryNotRule(test *testing.T) {
	assertMalformed(
		test,
		seq(assocOf(1), str("k"), integer(1)),
		1,
		`malformed token stream at position 1 (String("k")): association entry is not a rule`,
	)
}

func TestValidateInvalidToken(test *testing.T) {
	assertMalformed(
		test,
		seq(listOf(1), wxftypes.Token{}),
		2,
		"malformed token stream at position 2: invalid token kind",
	)
}

func TestValidateNegativeArity(test *testing.T) {
	assertMalformed(
		test,
		seq(fn(-1)),
		0,
		"malformed token stream at position 0 (Function(-1)): negative arity",
	)
}

func TestValidateLeafArityIgnored(test *testing.T) {
	// Only header tokens declare children; a stray Arity on a leaf means nothing.
	leaf := wxftypes.Integer(4)
	leaf.Arity = -2

	assert.NoError(test, encoding.Validate(streamOf(seq(listOf(1), leaf)...)))
	assert.NoError(test, encoding.Validate(streamOf(leaf)))
}

func TestValidateStreamErrorPassesThrough(test *testing.T) {
	failure := xerrors.New("encoder failed")
	stream := func(yield func(wxftypes.Token, error) bool) {
		if !yield(wxftypes.Function(1), nil) {
			return
		}
		yield(wxftypes.Token{}, failure)
	}

	assert.Same(test, failure, encoding.Validate(stream))
}

func TestValidatorIncremental(test *testing.T) {
	assert := assert.New(test)

	validator := encoding.NewValidator()
	tokens := seq(assocOf(1), rule, str("k"), integer(1))

	for index, token := range tokens {
		assert.False(validator.Complete())
		assert.NoError(validator.Push(token), "token %d", index)
	}

	assert.True(validator.Complete())
	assert.NoError(validator.Done())
	assert.Error(validator.Push(integer(2)))
}

// Every stream the default chain produces obeys the arity law.
func TestDefaultChainStreamsWellFormed(test *testing.T) {
	chain := encoding.NewChain(encoding.ChainOpts{Extensions: encoding.DefaultExtensions()})

	values := []interface{}{
		nil,
		[]interface{}{},
		map[string]interface{}{},
		[]interface{}{1, []interface{}{2, []interface{}{3, map[string]interface{}{}}}},
		map[interface{}]interface{}{1: []string{"a"}, "b": map[int]float64{1: 2}},
		slices.Repeat([]complex128{complex(1, 2)}, 3),
	}

	for _, value := range values {
		assert.NoError(test, encoding.Validate(chain.ProvideTokens(value)), "%#v", value)
	}
}
