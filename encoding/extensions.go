package encoding

import (
	"github.com/illuscio-dev/wxftools-go/wxftypes"
	uuid "github.com/satori/go.uuid"
)

// UUIDEncoder encodes uuid.UUID values as their canonical string instead of a list of
// sixteen integers.
type UUIDEncoder struct{}

func (encoder *UUIDEncoder) Encode(engine TokenEngine, value interface{}) Stream {
	if valueUUID, ok := value.(uuid.UUID); ok {
		return tokens(wxftypes.String(valueUUID.String()))
	}
	return emptyStream
}

// BinDataEncoder encodes wxftypes.BinData as a single Binary token.
type BinDataEncoder struct{}

func (encoder *BinDataEncoder) Encode(engine TokenEngine, value interface{}) Stream {
	if binData, ok := value.(wxftypes.BinData); ok {
		return tokens(wxftypes.Binary(binData))
	}
	return emptyStream
}

// DefaultExtensions returns one of each extension encoder, in the order NewChain
// should consult them ahead of DefaultEncoder. StructEncoder comes last since it
// would otherwise claim struct types the other encoders handle.
func DefaultExtensions() []Encoder {
	return []Encoder{
		&BinDataEncoder{},
		&UUIDEncoder{},
		&BSONEncoder{},
		&YAMLEncoder{},
		&OrderedMapEncoder{},
		&CBOREncoder{},
		&StructEncoder{},
	}
}
