package content

import (
	"bufio"
	"bytes"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/tidwall/jsonc"
	"github.com/ugorji/go/codec"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

// BsonListSepString is a delimiter for top-level bson lists, which bson does not
// normally support. When multiple documents are sent in a single payload, the unicode
// SYMBOL FOR RECORD SEPARATOR is used.
// (http://fileformat.info/info/unicode/char/241e/index.htm)
const BsonListSepString = "␞"

// BsonListSepBytes is a byte representation of BsonListSepString.
var BsonListSepBytes = []byte(BsonListSepString)

// JSON

type jsonDecoder struct {
	handle *codec.JsonHandle
}

func (decoder *jsonDecoder) Decode(engine ContentEngine, reader io.Reader) (interface{}, error) {
	var decoded interface{}
	if err := codec.NewDecoder(reader, decoder.handle).Decode(&decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

// JSONC

// JSON with comments and trailing commas.
type jsoncDecoder struct {
	handle *codec.JsonHandle
}

func (decoder *jsoncDecoder) Decode(engine ContentEngine, reader io.Reader) (interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	var decoded interface{}
	jsonDecoder := codec.NewDecoderBytes(jsonc.ToJSON(data), decoder.handle)
	if err := jsonDecoder.Decode(&decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

// BSON

// split function used to separate the bson records.
func splitBsonFunc(data []byte, atEOF bool) (advance int, token []byte, err error) {
	// Return nothing if at end of file and no data passed
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	// Find the index of a separator
	if i := bytes.Index(data, BsonListSepBytes); i >= 0 {
		return i + len(BsonListSepBytes), data[0:i], nil
	}

	// If at end of file with data return the data
	if atEOF {
		return len(data), data, nil
	}

	return advance, token, err
}

type bsonDecoder struct{}

func (decoder *bsonDecoder) decodeSingle(record []byte) (bson.D, error) {
	raw, err := bson.NewFromIOReader(bytes.NewReader(record))
	if err != nil {
		return nil, err
	}

	document := bson.D{}
	if err := bson.Unmarshal(raw, &document); err != nil {
		return nil, err
	}
	return document, nil
}

// Returns a bson.D for a single document, or a bson.A of them for a separated list.
func (decoder *bsonDecoder) Decode(engine ContentEngine, reader io.Reader) (interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, xerrors.New("no bson document")
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, len(data)), len(data)+len(BsonListSepBytes))
	scanner.Split(splitBsonFunc)

	documents := bson.A{}
	for scanner.Scan() {
		document, err := decoder.decodeSingle(scanner.Bytes())
		if err != nil {
			return nil, xerrors.Errorf(
				"error decoding bson document %d: %w", len(documents), err,
			)
		}
		documents = append(documents, document)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(documents) == 1 {
		return documents[0], nil
	}
	return documents, nil
}

// CBOR

type cborDecoder struct {
	mode cbor.DecMode
}

func (decoder *cborDecoder) Decode(engine ContentEngine, reader io.Reader) (interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	var decoded interface{}
	if err := decoder.mode.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

// YAML

// Mappings are decoded to yaml.MapSlice, nested ones included, so document order is
// kept. Documents that are not a mapping at the top level fall back to yaml's
// default types.
type yamlDecoder struct{}

func (decoder *yamlDecoder) Decode(engine ContentEngine, reader io.Reader) (interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	mapSlice := yaml.MapSlice{}
	if err := yaml.Unmarshal(data, &mapSlice); err == nil {
		return mapSlice, nil
	}

	var decoded interface{}
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

// TEXT

type textDecoder struct{}

func (decoder *textDecoder) Decode(engine ContentEngine, reader io.Reader) (interface{}, error) {
	buffer := new(bytes.Buffer)
	if _, err := buffer.ReadFrom(reader); err != nil {
		return nil, err
	}
	return buffer.String(), nil
}
