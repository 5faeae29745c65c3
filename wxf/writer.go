/*
Package wxf writes token streams as WXF, the Wolfram Exchange Format.

A payload is a header, "8:" or "8C:" when the body is zlib compressed, followed by the
tokens of a single expression in stream order. Nothing is buffered beyond the token
being written, so arbitrarily large values can be streamed straight to a connection or
file.
*/
package wxf

import (
	"bytes"
	"io"

	"github.com/illuscio-dev/wxftools-go/encoding"
	"github.com/illuscio-dev/wxftools-go/wxferrors"
	"github.com/klauspost/compress/zlib"
	"go.uber.org/zap"
	"golang.org/x/xerrors"
)

// WriterOpts holds options for NewWriter.
type WriterOpts struct {
	// Compress the body with zlib.
	Compress bool
	// Check the arity of the stream while writing it. Malformed streams fail with
	// *encoding.MalformedEncoderError.
	Validate bool
	// Logger for written payloads. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Counts the bytes that reach the wrapped writer.
type countingWriter struct {
	w io.Writer
	n int64
}

func (counting *countingWriter) Write(b []byte) (int, error) {
	n, err := counting.w.Write(b)
	counting.n += int64(n)
	return n, err
}

// Writer serializes token streams to an io.Writer. A Writer may write any number of
// payloads one after the other, but is not safe for concurrent use.
type Writer struct {
	target *countingWriter
	opts   WriterOpts
	logger *zap.Logger
	// Scratch space for the token being written.
	buffer []byte
}

// NewWriter returns a Writer writing to w.
func NewWriter(w io.Writer, opts WriterOpts) *Writer {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Writer{
		target: &countingWriter{w: w},
		opts:   opts,
		logger: logger,
		buffer: make([]byte, 0, 64),
	}
}

// BytesWritten returns the number of bytes written to the underlying writer so far,
// after compression.
func (writer *Writer) BytesWritten() int64 {
	return writer.target.n
}

func transportError(message string, err error) error {
	return wxferrors.TransportError.New(message+": "+err.Error(), err)
}

// WriteStream writes the header and every token of stream. Errors produced by the
// stream are returned wrapped; failures of the underlying writer are returned as
// *wxferrors.Error of kind wxferrors.TransportError.
func (writer *Writer) WriteStream(stream encoding.Stream) error {
	header := Header
	if writer.opts.Compress {
		header = CompressedHeader
	}
	if _, err := writer.target.Write(header); err != nil {
		return transportError("error writing header", err)
	}

	var body io.Writer = writer.target
	var compressor *zlib.Writer
	if writer.opts.Compress {
		compressor = zlib.NewWriter(writer.target)
		body = compressor
	}

	var validator *encoding.Validator
	if writer.opts.Validate {
		validator = encoding.NewValidator()
	}

	tokenCount := 0
	for token, err := range stream {
		if err != nil {
			return xerrors.Errorf("error encoding value: %w", err)
		}
		if validator != nil {
			if err := validator.Push(token); err != nil {
				return err
			}
		}

		buffer, appendErr := AppendToken(writer.buffer[:0], token)
		writer.buffer = buffer
		if appendErr != nil {
			return appendErr
		}
		if _, err := body.Write(writer.buffer); err != nil {
			return transportError("error writing token", err)
		}
		tokenCount++
	}

	if validator != nil {
		if err := validator.Done(); err != nil {
			return err
		}
	}

	if compressor != nil {
		if err := compressor.Close(); err != nil {
			return transportError("error flushing compressed body", err)
		}
	}

	if checked := writer.logger.Check(zap.DebugLevel, "wrote wxf payload"); checked != nil {
		checked.Write(
			zap.Int("tokens", tokenCount),
			zap.Int64("bytes", writer.target.n),
			zap.Bool("compressed", writer.opts.Compress),
		)
	}

	return nil
}

// Encode writes the WXF payload for value, as encoded by engine.
func (writer *Writer) Encode(engine encoding.TokenEngine, value interface{}) error {
	return writer.WriteStream(engine.ProvideTokens(value))
}

// Marshal returns the WXF payload for value, as encoded by engine.
func Marshal(engine encoding.TokenEngine, value interface{}, opts WriterOpts) ([]byte, error) {
	buffer := new(bytes.Buffer)
	if err := NewWriter(buffer, opts).Encode(engine, value); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
