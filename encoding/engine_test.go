package encoding_test

//revive:disable:import-shadowing reason: Disabled for assert := assert.New(), which is
// the preferred method of using multiple asserts in a test.

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/illuscio-dev/wxftools-go/encoding"
	"github.com/illuscio-dev/wxftools-go/wxftypes"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

func createChain() *encoding.Chain {
	return encoding.NewChain(encoding.ChainOpts{})
}

// Encodes every int as the string "int".
var intAsString = encoding.EncoderFunc(
	func(engine encoding.TokenEngine, value interface{}) encoding.Stream {
		if _, ok := value.(int); !ok {
			return func(yield func(wxftypes.Token, error) bool) {}
		}
		return func(yield func(wxftypes.Token, error) bool) {
			yield(wxftypes.String("int"), nil)
		}
	},
)

type PanickyEncoder struct {
	panicWith interface{}
}

func (encoder *PanickyEncoder) Encode(
	engine encoding.TokenEngine, value interface{},
) encoding.Stream {
	return func(yield func(wxftypes.Token, error) bool) {
		panic(encoder.panicWith)
	}
}

func TestCreateChainDefault(test *testing.T) {
	assert := assert.New(test)

	chain := createChain()

	encoders := chain.Encoders()
	assert.Len(encoders, 1)
	assert.IsType(&encoding.DefaultEncoder{}, encoders[0])
	assert.False(chain.Sealed())
}

func TestCreateChainExtensions(test *testing.T) {
	assert := assert.New(test)

	uuidEncoder := &encoding.UUIDEncoder{}
	chain := encoding.NewChain(encoding.ChainOpts{
		Extensions: []encoding.Encoder{uuidEncoder, nil},
	})

	encoders := chain.Encoders()
	assert.Len(encoders, 2)
	assert.Same(uuidEncoder, encoders[0])
	assert.IsType(&encoding.DefaultEncoder{}, encoders[1])
}

func TestEncodersIsCopy(test *testing.T) {
	chain := createChain()

	encoders := chain.Encoders()
	encoders[0] = intAsString

	assert.IsType(test, &encoding.DefaultEncoder{}, chain.Encoders()[0])
}

func TestNilIsNone(test *testing.T) {
	assertTokens(test, createChain(), nil, seq(none))
}

func TestEmptyList(test *testing.T) {
	assertTokens(test, createChain(), []interface{}{}, listOf(0))
}

func TestEmptyMap(test *testing.T) {
	assertTokens(test, createChain(), map[string]interface{}{}, seq(assocOf(0)))
}

func TestNestedListPreOrder(test *testing.T) {
	assertTokens(
		test,
		createChain(),
		[]interface{}{1, []interface{}{2, 3}},
		seq(listOf(2), integer(1), listOf(2), integer(2), integer(3)),
	)
}

func TestMapPreOrder(test *testing.T) {
	value := map[string]interface{}{
		"b": []int{1},
		"a": map[string]bool{"x": true},
	}

	assertTokens(test, createChain(), value, seq(
		assocOf(2),
		rule, str("a"), assocOf(1), rule, str("x"), trueSym,
		rule, str("b"), listOf(1), integer(1),
	))
}

func TestDeterministic(test *testing.T) {
	assert := assert.New(test)
	chain := createChain()

	value := map[string]interface{}{}
	for _, key := range []string{"q", "w", "e", "r", "t", "y", "u", "i", "o", "p"} {
		value[key] = map[int]string{3: key, 1: key, 2: key}
	}

	first, err := chain.Tokens(value)
	assert.NoError(err)
	for attempt := 0; attempt < 20; attempt++ {
		again, err := chain.Tokens(value)
		assert.NoError(err)
		assert.Empty(cmp.Diff(first, again))
	}
}

func TestBoolNeverInteger(test *testing.T) {
	assert := assert.New(test)
	chain := createChain()

	for _, value := range []bool{true, false} {
		encoded, err := chain.Tokens(value)
		assert.NoError(err)
		assert.Len(encoded, 1)
		assert.Equal(wxftypes.KindSymbol, encoded[0].Kind)
	}
}

func TestExtensionOverride(test *testing.T) {
	chain := encoding.NewChain(encoding.ChainOpts{
		Extensions: []encoding.Encoder{intAsString},
	})

	assertTokens(test, chain, 1, seq(str("int")))
	// Nested values go back through the chain, so the override applies at any depth.
	assertTokens(
		test,
		chain,
		[]interface{}{1, int64(2), map[string]int{"k": 3}},
		seq(listOf(3), str("int"), integer(2), assocOf(1), rule, str("k"), str("int")),
	)
}

func TestDeclinedFallsThrough(test *testing.T) {
	chain := encoding.NewChain(encoding.ChainOpts{
		Extensions: []encoding.Encoder{intAsString},
	})

	assertTokens(test, chain, "text", seq(str("text")))
}

func TestReentrantEquivalence(test *testing.T) {
	assert := assert.New(test)

	// Wraps ints in Hold[...], delegating the int itself back to the engine.
	hold := encoding.EncoderFunc(
		func(engine encoding.TokenEngine, value interface{}) encoding.Stream {
			held, ok := value.(int)
			if !ok {
				return func(yield func(wxftypes.Token, error) bool) {}
			}
			return func(yield func(wxftypes.Token, error) bool) {
				if !yield(wxftypes.Function(1), nil) {
					return
				}
				if !yield(wxftypes.Symbol("Hold"), nil) {
					return
				}
				encoding.Serialize(engine, int64(held), yield)
			}
		},
	)
	chain := encoding.NewChain(encoding.ChainOpts{Extensions: []encoding.Encoder{hold}})

	direct, err := chain.Tokens(int64(7))
	assert.NoError(err)

	assertTokens(test, chain, 7, seq(fn(1), symbolOf("Hold"), direct))
}

func TestUnsupportedType(test *testing.T) {
	assert := assert.New(test)

	encoded, err := createChain().Tokens(make(chan int))

	assert.Empty(encoded)
	var unsupported *encoding.UnsupportedTypeError
	if assert.True(errors.As(err, &unsupported)) {
		assert.Equal(reflect.TypeOf(make(chan int)), unsupported.Type)
	}
	assert.EqualError(err, "no encoder for type chan int")
}

func TestUnsupportedNestedStopsStream(test *testing.T) {
	assert := assert.New(test)

	type opaque struct{ hidden int }

	encoded, err := createChain().Tokens([]interface{}{1, opaque{}, 3})

	assert.Equal(seq(listOf(3), integer(1)), encoded)
	assert.EqualError(err, "no encoder for type encoding_test.opaque")
}

func TestUnsupportedUntypedNil(test *testing.T) {
	assert := assert.New(test)

	chain := encoding.NewChain(encoding.ChainOpts{SkipDefault: true})
	assert.Empty(chain.Encoders())

	_, err := chain.Tokens(nil)

	var unsupported *encoding.UnsupportedTypeError
	if assert.True(errors.As(err, &unsupported)) {
		assert.Nil(unsupported.Type)
	}
	assert.EqualError(err, "no encoder for type <nil>")
}

func TestRegisterPositions(test *testing.T) {
	assert := assert.New(test)

	chain := createChain()
	uuidEncoder := &encoding.UUIDEncoder{}
	structEncoder := &encoding.StructEncoder{}

	assert.NoError(chain.Register(uuidEncoder, encoding.Prepend))
	assert.NoError(chain.Register(structEncoder, encoding.Append))

	encoders := chain.Encoders()
	assert.Len(encoders, 3)
	assert.Same(uuidEncoder, encoders[0])
	assert.IsType(&encoding.DefaultEncoder{}, encoders[1])
	assert.Same(structEncoder, encoders[2])
}

func TestRegisterInvalid(test *testing.T) {
	assert := assert.New(test)
	chain := createChain()

	assert.EqualError(chain.Register(nil, encoding.Append), "cannot register nil encoder")
	assert.EqualError(
		chain.Register(intAsString, encoding.Position(7)), "unknown register position 7",
	)
	assert.Len(chain.Encoders(), 1)
}

func TestRegisterAfterSeal(test *testing.T) {
	assert := assert.New(test)

	chain := createChain()
	assert.NoError(chain.Register(intAsString, encoding.Prepend))

	// Requesting a stream seals the chain even before it is pulled.
	_ = chain.ProvideTokens(1)
	assert.True(chain.Sealed())

	err := chain.Register(&encoding.UUIDEncoder{}, encoding.Prepend)
	assert.True(errors.Is(err, encoding.ErrChainSealed))
	assert.Len(chain.Encoders(), 2)
}

func TestEncoderPanicError(test *testing.T) {
	assert := assert.New(test)

	boom := xerrors.New("boom")
	chain := encoding.NewChain(encoding.ChainOpts{
		Extensions: []encoding.Encoder{&PanickyEncoder{panicWith: boom}},
	})

	encoded, err := chain.Tokens(1)

	assert.Empty(encoded)
	assert.EqualError(err, "panic during encode: boom")
	assert.True(errors.Is(err, boom))
}

func TestEncoderPanicValue(test *testing.T) {
	chain := encoding.NewChain(encoding.ChainOpts{
		Extensions: []encoding.Encoder{&PanickyEncoder{panicWith: "bad state"}},
	})

	_, err := chain.Tokens([]int{1})

	assert.EqualError(test, err, "panic during encode: bad state")
}

func TestNestedEncoderPanic(test *testing.T) {
	assert := assert.New(test)

	// Only panics on strings, which the default encoder reaches inside a list.
	panicky := encoding.EncoderFunc(
		func(engine encoding.TokenEngine, value interface{}) encoding.Stream {
			if _, ok := value.(string); !ok {
				return func(yield func(wxftypes.Token, error) bool) {}
			}
			return func(yield func(wxftypes.Token, error) bool) {
				panic("no strings")
			}
		},
	)
	chain := encoding.NewChain(encoding.ChainOpts{Extensions: []encoding.Encoder{panicky}})

	encoded, err := chain.Tokens([]interface{}{1, "two"})

	assert.Equal(seq(listOf(2), integer(1)), encoded)
	assert.EqualError(err, "panic during encode: no strings")
}

func TestConsumerPanicPropagates(test *testing.T) {
	chain := createChain()

	assert.PanicsWithValue(test, "consumer failed", func() {
		for range chain.ProvideTokens([]int{1, 2, 3}) {
			panic("consumer failed")
		}
	})
}

func TestFailureDoesNotFallThrough(test *testing.T) {
	assert := assert.New(test)

	failing := encoding.EncoderFunc(
		func(engine encoding.TokenEngine, value interface{}) encoding.Stream {
			return func(yield func(wxftypes.Token, error) bool) {
				yield(wxftypes.Token{}, xerrors.New("cannot encode"))
			}
		},
	)
	chain := encoding.NewChain(encoding.ChainOpts{Extensions: []encoding.Encoder{failing}})

	encoded, err := chain.Tokens(1)

	assert.Empty(encoded)
	assert.EqualError(err, "cannot encode")
}

func TestLazyEarlyStop(test *testing.T) {
	assert := assert.New(test)

	calls := 0
	counting := encoding.EncoderFunc(
		func(engine encoding.TokenEngine, value interface{}) encoding.Stream {
			if _, ok := value.(int); ok {
				calls++
			}
			return func(yield func(wxftypes.Token, error) bool) {}
		},
	)
	chain := encoding.NewChain(encoding.ChainOpts{Extensions: []encoding.Encoder{counting}})

	values := make([]int, 1000)
	pulled := 0
	for range chain.ProvideTokens(values) {
		pulled++
		if pulled == 4 {
			break
		}
	}

	assert.Equal(4, pulled)
	// Header, head and the first two elements: only two ints were ever looked at.
	assert.Equal(2, calls)
}

// Intercepts strings before the wrapped chain sees them.
type shoutingEngine struct {
	*encoding.Chain
}

func (engine *shoutingEngine) ProvideTokens(value interface{}) encoding.Stream {
	if text, ok := value.(string); ok {
		return func(yield func(wxftypes.Token, error) bool) {
			yield(wxftypes.String(text+"!"), nil)
		}
	}
	return engine.Chain.ProvideTokens(value)
}

func TestSetPassedEngine(test *testing.T) {
	assert := assert.New(test)

	engine := &shoutingEngine{Chain: createChain()}
	engine.SetPassedEngine(engine)

	encoded, err := encoding.Collect(engine.ProvideTokens([]interface{}{"a", 1}))

	assert.NoError(err)
	assert.Equal(seq(listOf(2), str("a!"), integer(1)), encoded)
}

func TestConcurrentEncode(test *testing.T) {
	assert := assert.New(test)

	chain := encoding.NewChain(encoding.ChainOpts{Extensions: encoding.DefaultExtensions()})
	value := map[string]interface{}{
		"list":  []interface{}{1, 2.5, "three", nil},
		"inner": map[int]bool{2: false, 1: true},
	}
	expected, err := chain.Tokens(value)
	assert.NoError(err)

	group := errgroup.Group{}
	results := make([][]wxftypes.Token, 16)
	for index := range results {
		group.Go(func() error {
			encoded, err := chain.Tokens(value)
			results[index] = encoded
			return err
		})
	}

	assert.NoError(group.Wait())
	for _, encoded := range results {
		assert.Empty(cmp.Diff(expected, encoded))
	}
}

func TestClaimLogging(test *testing.T) {
	assert := assert.New(test)

	core, logs := observer.New(zapcore.DebugLevel)
	chain := encoding.NewChain(encoding.ChainOpts{Logger: zap.New(core)})

	_, err := chain.Tokens(make(chan int))
	assert.Error(err)
	assert.Equal(1, logs.FilterMessage("no encoder claimed value").Len())

	_, err = chain.Tokens("text")
	assert.NoError(err)

	claims := logs.FilterMessage("encoder claimed value").All()
	if assert.Len(claims, 1) {
		fields := claims[0].ContextMap()
		assert.Equal("*encoding.DefaultEncoder", fields["encoder"])
		assert.Equal("string", fields["type"])
	}
}

func TestSetLoggerNil(test *testing.T) {
	chain := createChain()
	chain.SetLogger(nil)

	assertTokens(test, chain, 1, seq(integer(1)))
}

func TestCollectStopsAtError(test *testing.T) {
	assert := assert.New(test)

	stream := func(yield func(wxftypes.Token, error) bool) {
		if !yield(wxftypes.Integer(1), nil) {
			return
		}
		yield(wxftypes.Token{}, xerrors.New("stopped"))
	}

	collected, err := encoding.Collect(stream)
	assert.Equal(seq(integer(1)), collected)
	assert.EqualError(err, "stopped")
}
