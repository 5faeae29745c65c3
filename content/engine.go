package content

import (
	"bytes"
	"io"
	"reflect"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"github.com/illuscio-dev/wxftools-go/mimetype"
	"github.com/illuscio-dev/wxftools-go/wxferrors"
	"github.com/ugorji/go/codec"
	"go.uber.org/zap"
	"golang.org/x/xerrors"
)

// Number of input bytes quoted in the context of a ParserError.
const contextBytes = 64

/*
Engine is the default implementation of the ContentEngine interface. Implementation is
done through an Interface so that the Engine can be extended through type wrapping.

Instantiation

Use NewEngine() to create a new Engine.

Default Mimetypes

• application/json, decoded by the codec library
(https://godoc.org/github.com/ugorji/go/codec). Objects become map[string]interface{}
and whole numbers int64.

• application/jsonc, JSON with comments and trailing commas, stripped by
github.com/tidwall/jsonc before being decoded as JSON.

• application/bson, decoded to bson.D by the official driver so field order is kept.
Multiple documents separated by BsonListSepString are decoded to a bson.A.

• application/cbor, decoded by github.com/fxamacker/cbor/v2.

• application/yaml, decoded to yaml.MapSlice so key order is kept.

• text/plain, returned as a string.

Type Sniffing

If created with "allowSniff" set to true, UNKNOWN content is offered to each decoder in
registration order until one does not return an error or panic. Unlike a map, the
order is stable, so the same payload always sniffs to the same value.

Panics

If a decoder panics during execution, that panic is caught and returned as an error.
Every failure is returned as a *wxferrors.Error of kind wxferrors.ParserError.
*/
type Engine struct {
	// MimeType:Decoder mapping
	decoders map[mimetype.MimeType]Decoder
	// Mimetypes in registration order. Used for sniffing.
	decoderOrder []mimetype.MimeType
	// Whether to attempt decoding when no explicit mimetype is known.
	sniffMimeType bool

	// JSON handle for the default JSON and JSONC decoders.
	jsonHandle *codec.JsonHandle
	// Decoding mode for the default CBOR decoder.
	cborMode cbor.DecMode
	// Engine to pass to Decoder.Decode() methods.
	passedEngine ContentEngine

	logger *zap.Logger
}

// Change the engine passed into Decoder.Decode().
func (engine *Engine) SetPassedEngine(newEngine ContentEngine) {
	engine.passedEngine = newEngine
}

// SetLogger replaces the logger used for sniffing decisions.
func (engine *Engine) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	engine.logger = logger
}

// Register a decoder for a given mimeType. Replacing a decoder keeps its sniff
// position.
func (engine *Engine) SetDecoder(mimeType mimetype.MimeType, decoder Decoder) {
	if _, ok := engine.decoders[mimeType]; !ok {
		engine.decoderOrder = append(engine.decoderOrder, mimeType)
	}
	engine.decoders[mimeType] = decoder
}

// Whether Engine will attempt to decode UNKNOWN content.
func (engine *Engine) SniffType() bool {
	return engine.sniffMimeType
}

// Whether the Engine has a registered decoder for mimeType.
func (engine *Engine) HandlesDecode(mimeType mimetype.MimeType) bool {
	_, ok := engine.decoders[mimeType]
	return ok
}

// Mimetypes with a registered decoder, in sniffing order.
func (engine *Engine) MimeTypes() []mimetype.MimeType {
	mimeTypes := make([]mimetype.MimeType, len(engine.decoderOrder))
	copy(mimeTypes, engine.decoderOrder)
	return mimeTypes
}

// JSONHandle returns the handle used by the JSON and JSONC decoders.
func (engine *Engine) JSONHandle() *codec.JsonHandle {
	return engine.jsonHandle
}

// CBORMode returns the decoding mode used by the CBOR decoder.
func (engine *Engine) CBORMode() cbor.DecMode {
	return engine.cborMode
}

// Select what engine to pass into the decoder in case we are extending the engine
// type.
func (engine *Engine) getEngine() (passEngine ContentEngine) {
	if engine.passedEngine != nil {
		passEngine = engine.passedEngine
	} else {
		passEngine = engine
	}

	return passEngine
}

// Uses a decoder while catching panics to return as errors
func (engine *Engine) safeDecode(
	decoder Decoder, reader io.Reader,
) (decoded interface{}, err error) {
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}
		decoded = nil
		if recoveredErr, ok := recovered.(error); ok {
			err = xerrors.Errorf("panic during decode: %w", recoveredErr)
		} else {
			err = xerrors.Errorf("panic during decode: %v", recovered)
		}
	}()

	return decoder.Decode(engine.getEngine(), reader)
}

// Attempts to decode content with all registered decoders until one succeeds or all
// fail.
func (engine *Engine) sniffContent(content []byte) (interface{}, error) {
	var decoderErr error

	for _, mimeType := range engine.decoderOrder {
		// Each attempt gets its own reader, otherwise we'll run out of bytes.
		decoded, err := engine.safeDecode(engine.decoders[mimeType], bytes.NewReader(content))
		if err == nil {
			engine.logger.Debug("sniffed content", zap.String("mimetype", string(mimeType)))
			return decoded, nil
		}

		engine.logger.Debug(
			"sniff attempt failed",
			zap.String("mimetype", string(mimeType)),
			zap.Error(err),
		)
		if decoderErr == nil {
			decoderErr = xerrors.Errorf("%v: %w", mimeType, err)
		} else {
			decoderErr = xerrors.Errorf("%v: %v after: %w", mimeType, err, decoderErr)
		}
	}

	if decoderErr == nil {
		decoderErr = xerrors.New("no decoders registered")
	}
	return nil, decoderErr
}

// Decode reads all of reader and decodes it as mimeType. UNKNOWN content is sniffed
// when the engine allows it. The reader is closed if it is an io.Closer.
func (engine *Engine) Decode(
	mimeType mimetype.MimeType, reader io.Reader,
) (interface{}, error) {
	// Close the reader if it's a closer.
	if readCloser, ok := reader.(io.Closer); ok {
		defer func() {
			_ = readCloser.Close()
		}()
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, wxferrors.ParserError.New("error reading content", err)
	}

	if mimeType == mimetype.UNKNOWN {
		if !engine.SniffType() {
			return nil, wxferrors.ParserError.New(
				"mimetype is unknown and sniffing is disabled", nil,
			)
		}
		decoded, err := engine.sniffContent(content)
		if err != nil {
			return nil, wxferrors.ParserError.
				New("could not sniff content type", err).
				WithContext(quoteContext(content))
		}
		return decoded, nil
	}

	decoder, ok := engine.decoders[mimeType]
	if !ok {
		return nil, wxferrors.ParserError.New("no decoder for "+string(mimeType), nil)
	}

	decoded, err := engine.safeDecode(decoder, bytes.NewReader(content))
	if err != nil {
		return nil, wxferrors.ParserError.
			New("decode err: "+err.Error(), err).
			WithContext(quoteContext(content))
	}

	return decoded, nil
}

func quoteContext(content []byte) string {
	if len(content) > contextBytes {
		return strconv.Quote(string(content[:contextBytes])) + "..."
	}
	return strconv.Quote(string(content))
}

// NewEngine returns an engine with the default decoders registered in sniffing
// order: JSON, JSONC, BSON, CBOR, YAML, then TEXT, which accepts anything.
func NewEngine(allowSniff bool) (*Engine, error) {
	// Create the json handle.
	jsonHandle := &codec.JsonHandle{}
	jsonHandle.MapType = reflect.TypeOf(map[string]interface{}(nil))
	jsonHandle.SignedInteger = true

	cborMode, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]interface{}(nil)),
	}.DecMode()
	if err != nil {
		return nil, xerrors.Errorf("error building cbor decoding mode: %w", err)
	}

	engine := &Engine{
		decoders:      make(map[mimetype.MimeType]Decoder),
		decoderOrder:  make([]mimetype.MimeType, 0, 6),
		sniffMimeType: allowSniff,
		jsonHandle:    jsonHandle,
		cborMode:      cborMode,
	}
	engine.SetLogger(nil)

	// Add the default decoders.
	engine.SetDecoder(mimetype.JSON, &jsonDecoder{handle: jsonHandle})
	engine.SetDecoder(mimetype.JSONC, &jsoncDecoder{handle: jsonHandle})
	engine.SetDecoder(mimetype.BSON, &bsonDecoder{})
	engine.SetDecoder(mimetype.CBOR, &cborDecoder{mode: cborMode})
	engine.SetDecoder(mimetype.YAML, &yamlDecoder{})
	engine.SetDecoder(mimetype.TEXT, &textDecoder{})

	return engine, nil
}
