package wxf

import (
	"encoding/binary"
	"math"

	"github.com/illuscio-dev/wxftools-go/wxftypes"
	"golang.org/x/xerrors"
)

// Version byte every WXF payload starts with.
const Version = '8'

// Headers written ahead of the body.
var (
	Header           = []byte{Version, ':'}
	CompressedHeader = []byte{Version, 'C', ':'}
)

// Token type markers of the WXF binary layout.
const (
	MarkerFunction    byte = 'f'
	MarkerSymbol      byte = 's'
	MarkerString      byte = 'S'
	MarkerBinary      byte = 'B'
	MarkerInteger8    byte = 'C'
	MarkerInteger16   byte = 'j'
	MarkerInteger32   byte = 'i'
	MarkerInteger64   byte = 'L'
	MarkerReal64      byte = 'r'
	MarkerBigInteger  byte = 'I'
	MarkerAssociation byte = 'A'
	MarkerRule        byte = '-'
)

// AppendToken appends the binary layout of token to dst. Lengths and arities are
// unsigned LEB128 varints, fixed width numbers are little-endian.
func AppendToken(dst []byte, token wxftypes.Token) ([]byte, error) {
	switch token.Kind {
	case wxftypes.KindInteger:
		return appendInteger(dst, token.Integer), nil

	case wxftypes.KindBigInteger:
		return appendText(dst, MarkerBigInteger, token.Text), nil

	case wxftypes.KindReal:
		dst = append(dst, MarkerReal64)
		return binary.LittleEndian.AppendUint64(dst, math.Float64bits(token.Real)), nil

	case wxftypes.KindString:
		return appendText(dst, MarkerString, token.Text), nil

	case wxftypes.KindSymbol:
		return appendText(dst, MarkerSymbol, token.Text), nil

	case wxftypes.KindBinary:
		dst = append(dst, MarkerBinary)
		dst = binary.AppendUvarint(dst, uint64(len(token.Bytes)))
		return append(dst, token.Bytes...), nil

	case wxftypes.KindFunction, wxftypes.KindAssociation:
		if token.Arity < 0 {
			return dst, xerrors.Errorf("cannot write %v: negative arity", token)
		}
		marker := MarkerFunction
		if token.Kind == wxftypes.KindAssociation {
			marker = MarkerAssociation
		}
		dst = append(dst, marker)
		return binary.AppendUvarint(dst, uint64(token.Arity)), nil

	case wxftypes.KindRule:
		return append(dst, MarkerRule), nil
	}

	return dst, xerrors.Errorf("cannot write token of kind %v", token.Kind)
}

// Integers take the narrowest width that holds them.
func appendInteger(dst []byte, value int64) []byte {
	switch {
	case value >= math.MinInt8 && value <= math.MaxInt8:
		return append(dst, MarkerInteger8, byte(int8(value)))
	case value >= math.MinInt16 && value <= math.MaxInt16:
		dst = append(dst, MarkerInteger16)
		return binary.LittleEndian.AppendUint16(dst, uint16(int16(value)))
	case value >= math.MinInt32 && value <= math.MaxInt32:
		dst = append(dst, MarkerInteger32)
		return binary.LittleEndian.AppendUint32(dst, uint32(int32(value)))
	default:
		dst = append(dst, MarkerInteger64)
		return binary.LittleEndian.AppendUint64(dst, uint64(value))
	}
}

func appendText(dst []byte, marker byte, text string) []byte {
	dst = append(dst, marker)
	dst = binary.AppendUvarint(dst, uint64(len(text)))
	return append(dst, text...)
}
