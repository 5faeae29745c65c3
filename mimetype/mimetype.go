// Enumeration-like type for input and output content types.
package mimetype

import (
	"path/filepath"
	"strings"
)

/*
MimeType is used to enumerate the content types wxftools can read values from or write
expressions to. Non default MimeTypes can be used by wrapping a custom string:

	MimeType("text/csv")
*/
type MimeType string

const (
	JSON  = MimeType("application/json")
	JSONC = MimeType("application/jsonc")
	BSON  = MimeType("application/bson")
	YAML  = MimeType("application/yaml")
	CBOR  = MimeType("application/cbor")
	TEXT  = MimeType("text/plain")
	// WXF is the binary expression format written by the wxf package.
	WXF = MimeType("application/vnd.wolfram.wxf")
	// UNKNOWN is used when the incoming string is blank
	UNKNOWN = MimeType("")
)

// List of default mimeTypes that are decoded to objects (as opposed to raw text).
// JSONC must be tested before JSON since "jsonc" ends in neither suffix otherwise.
var objectMimeTypes = []MimeType{JSONC, JSON, BSON, YAML, CBOR, WXF}

// File extensions for the default mimeTypes.
var extensionIndex = map[string]MimeType{
	".json":  JSON,
	".jsonc": JSONC,
	".bson":  BSON,
	".yaml":  YAML,
	".yml":   YAML,
	".cbor":  CBOR,
	".txt":   TEXT,
	".wxf":   WXF,
}

// Interface for object used to set headers such as http.Request.Header or
// http.Response.Header
type headerFetcher interface {
	Get(string) string
}

// Extract content type from a message / request header.
func FromHeader(headers headerFetcher) MimeType {
	return FromString(headers.Get("Content-Type"))
}

/*
Convert MimeType from a string. Ignores case and content-type parameters. If the
MimeType is a default type, multiple formats are respected. For instance, all of the
following will yield "mimetype.JSON":

• "application/json"

• "application/JSON"

• "application/x-json"

• "application/json; charset=utf-8"

• "json"

• "x-json"
*/
func FromString(incoming string) MimeType {
	incoming = strings.ToLower(strings.TrimSpace(incoming))
	if parameterStart := strings.IndexByte(incoming, ';'); parameterStart >= 0 {
		incoming = strings.TrimSpace(incoming[:parameterStart])
	}

	if incoming == "" {
		return UNKNOWN
	}
	if incoming == "text/plain" || incoming == "text" {
		return TEXT
	}

	for _, mimeType := range objectMimeTypes {
		mimeTypeLower := strings.ToLower(string(mimeType))
		mimeTypeLower = mimeTypeLower[strings.LastIndexAny(mimeTypeLower, "/.")+1:]
		if incoming == mimeTypeLower ||
			strings.HasSuffix(incoming, "/"+mimeTypeLower) ||
			strings.HasSuffix(incoming, "-"+mimeTypeLower) ||
			strings.HasSuffix(incoming, "."+mimeTypeLower) {
			return mimeType
		}
	}

	return MimeType(incoming)
}

// FromExtension picks the MimeType for a file path by its extension. Returns UNKNOWN
// for unrecognized extensions.
func FromExtension(path string) MimeType {
	mimeType, ok := extensionIndex[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return UNKNOWN
	}
	return mimeType
}
