// Command wxfencode converts JSON, JSONC, YAML, BSON, CBOR or text payloads to WXF.
//
//	wxfencode [flags] [FILE]
//
// The payload is read from FILE, or from stdin when FILE is omitted or "-". Its format
// is taken from --format, else from the extension of FILE, else sniffed.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/illuscio-dev/wxftools-go/content"
	"github.com/illuscio-dev/wxftools-go/encoding"
	"github.com/illuscio-dev/wxftools-go/mimetype"
	"github.com/illuscio-dev/wxftools-go/wxf"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/xerrors"
)

type options struct {
	format     string
	compress   bool
	validate   bool
	extensions bool
	out        string
	verbose    bool
	input      string
}

func parseOptions(args []string, errOutput io.Writer) (*options, error) {
	opts := &options{}

	flags := flag.NewFlagSet("wxfencode", flag.ContinueOnError)
	flags.SetOutput(errOutput)
	flags.StringVarP(&opts.format, "format", "f", "", "Input format: json, jsonc, yaml, bson, cbor or text")
	flags.BoolVarP(&opts.compress, "compress", "c", false, "Compress the body with zlib")
	flags.BoolVar(&opts.validate, "validate", false, "Check the arity of every expression while writing it")
	flags.BoolVar(&opts.extensions, "extensions", true, "Register the BSON, YAML, CBOR, UUID, ordered map and struct encoders")
	flags.StringVarP(&opts.out, "out", "o", "", "Output file; stdout when omitted")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug information to stderr")
	flags.Usage = func() {
		_, _ = fmt.Fprintln(errOutput, "usage: wxfencode [flags] [FILE]")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if flags.NArg() > 1 {
		return nil, xerrors.Errorf("expected at most one input file, got %d", flags.NArg())
	}
	opts.input = flags.Arg(0)

	return opts, nil
}

func newLogger(verbose bool, output io.Writer) *zap.Logger {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if verbose {
		level.SetLevel(zap.DebugLevel)
	}
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	return zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(zapcore.AddSync(output)),
		level,
	))
}

// Picks the input mimetype from the flag, then the file extension. UNKNOWN means the
// content engine has to sniff.
func inputMimeType(opts *options) mimetype.MimeType {
	if opts.format != "" {
		return mimetype.FromString(opts.format)
	}
	if opts.input != "" && opts.input != "-" {
		return mimetype.FromExtension(opts.input)
	}
	return mimetype.UNKNOWN
}

func run(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		return err
	}

	logger := newLogger(opts.verbose, stderr)
	defer func() {
		_ = logger.Sync()
	}()

	contentEngine, err := content.NewEngine(true)
	if err != nil {
		return err
	}
	contentEngine.SetLogger(logger)

	reader := stdin
	if opts.input != "" && opts.input != "-" {
		file, err := os.Open(opts.input)
		if err != nil {
			return xerrors.Errorf("error opening input: %w", err)
		}
		// Closed by the content engine.
		reader = file
	}

	mimeType := inputMimeType(opts)
	logger.Debug("decoding input",
		zap.String("file", opts.input),
		zap.String("mimetype", string(mimeType)),
	)
	value, err := contentEngine.Decode(mimeType, reader)
	if err != nil {
		return err
	}

	chainOpts := encoding.ChainOpts{Logger: logger}
	if opts.extensions {
		chainOpts.Extensions = encoding.DefaultExtensions()
	}
	chain := encoding.NewChain(chainOpts)

	output := stdout
	if opts.out != "" {
		file, err := os.Create(opts.out)
		if err != nil {
			return xerrors.Errorf("error creating output: %w", err)
		}
		defer func() {
			_ = file.Close()
		}()
		output = file
	}

	writer := wxf.NewWriter(output, wxf.WriterOpts{
		Compress: opts.compress,
		Validate: opts.validate,
		Logger:   logger,
	})
	if err := writer.Encode(chain, value); err != nil {
		return err
	}

	logger.Debug("done", zap.Int64("bytes", writer.BytesWritten()))
	return nil
}

func main() {
	err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if xerrors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "wxfencode: %v\n", err)
		os.Exit(1)
	}
}
