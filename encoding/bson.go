package encoding

import (
	"github.com/illuscio-dev/wxftools-go/wxftypes"
	uuid "github.com/satori/go.uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/xerrors"
)

// SymbolFromUnixTime heads BSON datetimes: FromUnixTime[seconds].
const SymbolFromUnixTime = "FromUnixTime"

// BSONEncoder handles values from the official mongo driver that the default encoder
// would get wrong or not handle at all.
//
// • bson.D is an association in document order.
//
// • bson.A is a list.
//
// • bson.Raw is unmarshalled to bson.D and handed back to the engine.
//
// • primitive.Binary holding a UUID (subtypes 0x3 and 0x4) is its canonical string;
// any other subtype is a Binary token.
//
// • primitive.ObjectID is its hex string.
//
// • primitive.DateTime is FromUnixTime[seconds].
//
// • primitive.Symbol is a Symbol token.
//
// • primitive.Null and primitive.Undefined are Symbol("None").
//
// • primitive.Decimal128 is its decimal string.
//
// bson.M is a plain map and is left to the default encoder.
type BSONEncoder struct{}

func (encoder *BSONEncoder) Encode(engine TokenEngine, value interface{}) Stream {
	switch typed := value.(type) {
	case bson.D:
		return encoder.encodeDocument(engine, typed)
	case bson.A:
		return encoder.encodeArray(engine, typed)
	case bson.Raw:
		return encoder.encodeRaw(engine, typed)
	case primitive.Binary:
		return tokens(encoder.binaryToken(typed))
	case primitive.ObjectID:
		return tokens(wxftypes.String(typed.Hex()))
	case primitive.DateTime:
		return tokens(
			wxftypes.Function(1),
			wxftypes.Symbol(SymbolFromUnixTime),
			wxftypes.Real(float64(typed)/1000),
		)
	case primitive.Symbol:
		return tokens(wxftypes.Symbol(string(typed)))
	case primitive.Null, primitive.Undefined:
		return tokens(wxftypes.Symbol(wxftypes.SymbolNone))
	case primitive.Decimal128:
		return tokens(wxftypes.String(typed.String()))
	}
	return emptyStream
}

// Encodes an ordered document as an association, keeping field order.
func (encoder *BSONEncoder) encodeDocument(engine TokenEngine, document bson.D) Stream {
	return func(yield func(wxftypes.Token, error) bool) {
		if !yield(wxftypes.Association(len(document)), nil) {
			return
		}
		for _, element := range document {
			if !yield(wxftypes.Rule(), nil) {
				return
			}
			if !yield(wxftypes.String(element.Key), nil) {
				return
			}
			if !Serialize(engine, element.Value, yield) {
				return
			}
		}
	}
}

func (encoder *BSONEncoder) encodeArray(engine TokenEngine, array bson.A) Stream {
	return func(yield func(wxftypes.Token, error) bool) {
		if !yield(wxftypes.Function(len(array)), nil) {
			return
		}
		if !yield(wxftypes.Symbol(wxftypes.SymbolList), nil) {
			return
		}
		for _, element := range array {
			if !Serialize(engine, element, yield) {
				return
			}
		}
	}
}

func (encoder *BSONEncoder) encodeRaw(engine TokenEngine, raw bson.Raw) Stream {
	return func(yield func(wxftypes.Token, error) bool) {
		document := bson.D{}
		if len(raw) > 0 {
			if err := bson.Unmarshal(raw, &document); err != nil {
				yield(
					wxftypes.Token{},
					xerrors.Errorf("error while unmarshalling bson for encoding: %w", err),
				)
				return
			}
		}
		YieldFrom(encoder.encodeDocument(engine, document), yield)
	}
}

func (encoder *BSONEncoder) binaryToken(binary primitive.Binary) wxftypes.Token {
	isUUID := binary.Subtype == bsontype.BinaryUUIDOld || binary.Subtype == bsontype.BinaryUUID
	if isUUID {
		if valueUUID, err := uuid.FromBytes(binary.Data); err == nil {
			return wxftypes.String(valueUUID.String())
		}
	}
	return wxftypes.Binary(binary.Data)
}
