package encoding

import (
	"math/big"
	"reflect"

	"github.com/ccoveille/go-safecast"
	"github.com/illuscio-dev/wxftools-go/wxftypes"
)

/*
DefaultEncoder is the most straightforward mapping of Go values onto WXF expressions.
It is meant to cover JSON-like data and is registered last by NewChain so every other
encoder can override it.

Categories are tested in this order, earlier ones shadowing later ones:

• string kinds: a String token.

• integer kinds, big.Int and *big.Int: an Integer token, or a BigInteger token when
the value does not fit in 64 signed bits.

• slice and array kinds: Function(n), Symbol("List"), then each element.

• map kinds: Association(n), then Rule, key and value for each entry. Keys are visited
in sorted order so the same map always encodes to the same stream.

• bool kinds: Symbol("True") or Symbol("False").

• nil, nil pointers and nil interfaces: Symbol("None").

• float kinds: a Real token.

• complex kinds: Function(2), Symbol("Complex"), Real(real part), Real(imaginary part).

Non-nil pointers are dereferenced and the pointee handed back to the engine. If no
encoder supports the pointee the pointer itself is declined, so encoders registered
after DefaultEncoder still get the chance to claim it. Elements, keys, values and
pointees always go back through the engine, so encoders registered ahead of
DefaultEncoder see them too. Anything else is declined.

Cyclic values, such as a slice that contains itself or a pointer cycle, are not
supported: encoding them recurses until the goroutine stack is exhausted.
*/
type DefaultEncoder struct{}

var bigIntType = reflect.TypeOf(big.Int{})

func (encoder *DefaultEncoder) Encode(engine TokenEngine, value interface{}) Stream {
	if value == nil {
		return tokens(wxftypes.Symbol(wxftypes.SymbolNone))
	}

	switch typed := value.(type) {
	case string:
		return tokens(wxftypes.String(typed))
	case int:
		return tokens(wxftypes.Integer(int64(typed)))
	case int64:
		return tokens(wxftypes.Integer(typed))
	case *big.Int:
		if typed == nil {
			return tokens(wxftypes.Symbol(wxftypes.SymbolNone))
		}
		return tokens(bigIntToken(typed))
	case big.Int:
		return tokens(bigIntToken(&typed))
	case bool:
		return tokens(boolToken(typed))
	case float64:
		return tokens(wxftypes.Real(typed))
	}

	return encoder.encodeReflect(engine, reflect.ValueOf(value))
}

// Handles named types and containers by kind.
func (encoder *DefaultEncoder) encodeReflect(engine TokenEngine, value reflect.Value) Stream {
	switch value.Kind() {
	case reflect.String:
		return tokens(wxftypes.String(value.String()))

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return tokens(wxftypes.Integer(value.Int()))

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr:
		return tokens(uintToken(value.Uint()))

	case reflect.Slice, reflect.Array:
		return encoder.encodeList(engine, value)

	case reflect.Map:
		return encoder.encodeMap(engine, value)

	case reflect.Bool:
		return tokens(boolToken(value.Bool()))

	case reflect.Ptr:
		if value.IsNil() {
			return tokens(wxftypes.Symbol(wxftypes.SymbolNone))
		}
		return declineUnsupported(engine.ProvideTokens(value.Elem().Interface()))

	case reflect.Float32, reflect.Float64:
		return tokens(wxftypes.Real(value.Float()))

	case reflect.Complex64, reflect.Complex128:
		complexValue := value.Complex()
		return tokens(
			wxftypes.Function(2),
			wxftypes.Symbol(wxftypes.SymbolComplex),
			wxftypes.Real(real(complexValue)),
			wxftypes.Real(imag(complexValue)),
		)

	case reflect.Struct:
		// Named types over big.Int are still integers.
		if value.Type().ConvertibleTo(bigIntType) {
			converted := value.Convert(bigIntType).Interface().(big.Int)
			return tokens(bigIntToken(&converted))
		}
	}

	return emptyStream
}

// Forwards the stream of a pointee, but yields nothing when it opens with an
// *UnsupportedTypeError so the pointer itself stays unclaimed.
func declineUnsupported(stream Stream) Stream {
	return func(yield func(wxftypes.Token, error) bool) {
		first := true
		for token, err := range stream {
			if first {
				first = false
				if _, ok := err.(*UnsupportedTypeError); ok {
					return
				}
			}
			if !yield(token, err) {
				return
			}
			if err != nil {
				return
			}
		}
	}
}

func (encoder *DefaultEncoder) encodeList(engine TokenEngine, list reflect.Value) Stream {
	return func(yield func(wxftypes.Token, error) bool) {
		length := list.Len()
		if !yield(wxftypes.Function(length), nil) {
			return
		}
		if !yield(wxftypes.Symbol(wxftypes.SymbolList), nil) {
			return
		}

		for index := 0; index < length; index++ {
			if !Serialize(engine, list.Index(index).Interface(), yield) {
				return
			}
		}
	}
}

func (encoder *DefaultEncoder) encodeMap(engine TokenEngine, mapping reflect.Value) Stream {
	return func(yield func(wxftypes.Token, error) bool) {
		entries := sortedMapEntries(mapping)
		if !yield(wxftypes.Association(len(entries)), nil) {
			return
		}

		for _, entry := range entries {
			if !yield(wxftypes.Rule(), nil) {
				return
			}
			if !Serialize(engine, entry.key.Interface(), yield) {
				return
			}
			if !Serialize(engine, entry.value.Interface(), yield) {
				return
			}
		}
	}
}

func boolToken(value bool) wxftypes.Token {
	if value {
		return wxftypes.Symbol(wxftypes.SymbolTrue)
	}
	return wxftypes.Symbol(wxftypes.SymbolFalse)
}

func uintToken(value uint64) wxftypes.Token {
	signed, err := safecast.ToInt64(value)
	if err != nil {
		return wxftypes.BigInteger(new(big.Int).SetUint64(value))
	}
	return wxftypes.Integer(signed)
}

func bigIntToken(value *big.Int) wxftypes.Token {
	if value.IsInt64() {
		return wxftypes.Integer(value.Int64())
	}
	return wxftypes.BigInteger(value)
}
