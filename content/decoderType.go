package content

import (
	"io"

	"github.com/illuscio-dev/wxftools-go/mimetype"
)

// Interface for defining a content decoder.
type Decoder interface {
	// To be implemented by content decoders. Implementation is expected to read all of
	// reader and return the native value it holds. The content engine which is calling
	// Decode is made available through engine, allowing decoders to access engine-level
	// settings.
	Decode(engine ContentEngine, reader io.Reader) (interface{}, error)
}

// DecoderFunc adapts an ordinary function to the Decoder interface.
type DecoderFunc func(engine ContentEngine, reader io.Reader) (interface{}, error)

func (decoderFunc DecoderFunc) Decode(
	engine ContentEngine, reader io.Reader,
) (interface{}, error) {
	return decoderFunc(engine, reader)
}

/*
ContentEngine details the contract for an input decoding engine: a common way of turning
payloads of any supported mimetype into native values that an encoding.Chain can turn
into expressions.
*/
type ContentEngine interface {
	// Registers a decoder for a given mimetype.
	SetDecoder(mimeType mimetype.MimeType, decoder Decoder)

	// Returns true if the engine has a registered decoder for the mimetype.
	HandlesDecode(mimeType mimetype.MimeType) bool

	// Whether the engine will attempt to decode unknown mimetypes.
	SniffType() bool

	// Decode mimeType content from reader using the decoder for mimeType.
	Decode(mimeType mimetype.MimeType, reader io.Reader) (interface{}, error)
}
