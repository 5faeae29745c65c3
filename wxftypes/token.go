/*
Package wxftypes defines the primitive tokens of a WXF expression stream.

A stream is the depth-first, pre-order flattening of an expression tree. Leaf tokens
carry a scalar payload. Header tokens declare how many complete subtrees follow them:

• Function(n) is followed by a head subtree and n argument subtrees.

• Association(n) is followed by n rule pairs.

• Rule is followed by exactly two subtrees, the key and the value.

This package only fixes the shape of tokens. Their byte layout on the wire is owned by
the wxf package.
*/
package wxftypes

import (
	"fmt"
	"math/big"
	"strconv"
)

// Kind enumerates the token variants.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInteger
	KindBigInteger
	KindReal
	KindString
	KindBinary
	KindSymbol
	KindFunction
	KindAssociation
	KindRule
)

// Well-known symbol names emitted by the default encoder.
const (
	SymbolList    = "List"
	SymbolTrue    = "True"
	SymbolFalse   = "False"
	SymbolNone    = "None"
	SymbolComplex = "Complex"
)

// String returns the kind name.
func (kind Kind) String() string {
	switch kind {
	case KindInteger:
		return "Integer"
	case KindBigInteger:
		return "BigInteger"
	case KindReal:
		return "Real"
	case KindString:
		return "String"
	case KindBinary:
		return "Binary"
	case KindSymbol:
		return "Symbol"
	case KindFunction:
		return "Function"
	case KindAssociation:
		return "Association"
	case KindRule:
		return "Rule"
	default:
		return "Invalid"
	}
}

// IsHeader reports whether tokens of this kind open a composite expression.
func (kind Kind) IsHeader() bool {
	return kind == KindFunction || kind == KindAssociation || kind == KindRule
}

// Token is a single unit of the output stream. Only the fields relevant to Kind are
// set; use the constructors rather than building tokens by hand.
type Token struct {
	Kind Kind

	// Payload of KindInteger.
	Integer int64
	// Payload of KindReal.
	Real float64
	// Payload of KindString and KindSymbol, and the decimal digits of KindBigInteger.
	Text string
	// Payload of KindBinary.
	Bytes []byte
	// Declared child count of KindFunction and KindAssociation.
	Arity int
}

func Integer(value int64) Token {
	return Token{Kind: KindInteger, Integer: value}
}

// BigInteger stores the decimal representation of value.
func BigInteger(value *big.Int) Token {
	return Token{Kind: KindBigInteger, Text: value.String()}
}

func Real(value float64) Token {
	return Token{Kind: KindReal, Real: value}
}

func String(value string) Token {
	return Token{Kind: KindString, Text: value}
}

func Binary(value []byte) Token {
	return Token{Kind: KindBinary, Bytes: value}
}

func Symbol(name string) Token {
	return Token{Kind: KindSymbol, Text: name}
}

// Function opens an expression with a head and arity arguments.
func Function(arity int) Token {
	return Token{Kind: KindFunction, Arity: arity}
}

// Association opens an association of arity rule pairs.
func Association(arity int) Token {
	return Token{Kind: KindAssociation, Arity: arity}
}

// Rule marks a key/value pair inside an association.
func Rule() Token {
	return Token{Kind: KindRule}
}

// Children returns the number of complete subtrees that must follow the token.
func (token Token) Children() int {
	switch token.Kind {
	case KindFunction:
		return token.Arity + 1
	case KindAssociation:
		return token.Arity
	case KindRule:
		return 2
	default:
		return 0
	}
}

// String returns a debug representation of the token.
func (token Token) String() string {
	switch token.Kind {
	case KindInteger:
		return "Integer(" + strconv.FormatInt(token.Integer, 10) + ")"
	case KindReal:
		return "Real(" + strconv.FormatFloat(token.Real, 'g', -1, 64) + ")"
	case KindString, KindSymbol:
		return fmt.Sprintf("%s(%q)", token.Kind, token.Text)
	case KindBigInteger:
		return "BigInteger(" + token.Text + ")"
	case KindBinary:
		return fmt.Sprintf("Binary(%d bytes)", len(token.Bytes))
	case KindFunction, KindAssociation:
		return token.Kind.String() + "(" + strconv.Itoa(token.Arity) + ")"
	default:
		return token.Kind.String()
	}
}
