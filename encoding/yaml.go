package encoding

import (
	"github.com/illuscio-dev/wxftools-go/wxftypes"
	"gopkg.in/yaml.v2"
)

// YAMLEncoder encodes yaml.MapSlice documents as associations in document order. The
// content package decodes YAML into MapSlice so key order survives the round trip.
type YAMLEncoder struct{}

func (encoder *YAMLEncoder) Encode(engine TokenEngine, value interface{}) Stream {
	mapSlice, ok := value.(yaml.MapSlice)
	if !ok {
		return emptyStream
	}

	return func(yield func(wxftypes.Token, error) bool) {
		if !yield(wxftypes.Association(len(mapSlice)), nil) {
			return
		}
		for _, item := range mapSlice {
			if !yield(wxftypes.Rule(), nil) {
				return
			}
			if !Serialize(engine, item.Key, yield) {
				return
			}
			if !Serialize(engine, item.Value, yield) {
				return
			}
		}
	}
}
