package encoding

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/illuscio-dev/wxftools-go/wxftypes"
	"golang.org/x/xerrors"
)

// SymbolCBORTag heads tagged CBOR items: CBORTag[number, content].
const SymbolCBORTag = "CBORTag"

// CBOREncoder handles the value types fxamacker/cbor produces when decoding into
// interface{}.
//
// • cbor.Tag is CBORTag[number, content], the content handed back to the engine.
//
// • cbor.ByteString is a Binary token.
//
// • cbor.RawMessage is decoded and handed back to the engine.
type CBOREncoder struct {
	// Decoding mode for RawMessage values. Defaults to cbor's standard mode.
	DecMode cbor.DecMode
}

func (encoder *CBOREncoder) Encode(engine TokenEngine, value interface{}) Stream {
	switch typed := value.(type) {
	case cbor.Tag:
		return encoder.encodeTag(engine, typed)
	case cbor.ByteString:
		return tokens(wxftypes.Binary([]byte(typed)))
	case cbor.RawMessage:
		return encoder.encodeRaw(engine, typed)
	}
	return emptyStream
}

func (encoder *CBOREncoder) encodeTag(engine TokenEngine, tag cbor.Tag) Stream {
	return func(yield func(wxftypes.Token, error) bool) {
		if !yield(wxftypes.Function(2), nil) {
			return
		}
		if !yield(wxftypes.Symbol(SymbolCBORTag), nil) {
			return
		}
		if !yield(uintToken(tag.Number), nil) {
			return
		}
		Serialize(engine, tag.Content, yield)
	}
}

func (encoder *CBOREncoder) encodeRaw(engine TokenEngine, raw cbor.RawMessage) Stream {
	return func(yield func(wxftypes.Token, error) bool) {
		var decoded interface{}
		var err error
		if encoder.DecMode != nil {
			err = encoder.DecMode.Unmarshal(raw, &decoded)
		} else {
			err = cbor.Unmarshal(raw, &decoded)
		}
		if err != nil {
			yield(wxftypes.Token{}, xerrors.Errorf("error decoding cbor for encoding: %w", err))
			return
		}
		Serialize(engine, decoded, yield)
	}
}
