package encoding

import (
	"reflect"
	"strings"

	"github.com/illuscio-dev/wxftools-go/wxftypes"
)

// StructTag is the struct tag StructEncoder reads field options from.
const StructTag = "wxf"

// Field selected for encoding.
type structField struct {
	name  string
	index int
}

// StructEncoder encodes structs as associations from field name to field value, in
// declaration order. Only exported fields are encoded. The wxf struct tag renames a
// field, omits it with "-", or skips zero values with ",omitempty":
//
//	type Point struct {
//		X     float64 `wxf:"x"`
//		Y     float64 `wxf:"y"`
//		Label string  `wxf:",omitempty"`
//		cache []byte
//	}
//
// Structs without exported fields are declined, so types such as big.Int or time.Time
// are left to later encoders.
type StructEncoder struct{}

func (encoder *StructEncoder) Encode(engine TokenEngine, value interface{}) Stream {
	structValue := reflect.ValueOf(value)
	if structValue.Kind() != reflect.Struct {
		return emptyStream
	}

	fields, hasExported := encoder.fields(structValue)
	if !hasExported {
		return emptyStream
	}

	return func(yield func(wxftypes.Token, error) bool) {
		if !yield(wxftypes.Association(len(fields)), nil) {
			return
		}
		for _, field := range fields {
			if !yield(wxftypes.Rule(), nil) {
				return
			}
			if !yield(wxftypes.String(field.name), nil) {
				return
			}
			fieldValue := structValue.Field(field.index).Interface()
			if !Serialize(engine, fieldValue, yield) {
				return
			}
		}
	}
}

// Lists the fields to encode, and whether the struct has any exported field at all.
func (encoder *StructEncoder) fields(structValue reflect.Value) ([]structField, bool) {
	structType := structValue.Type()
	fields := make([]structField, 0, structType.NumField())
	hasExported := false

	for index := 0; index < structType.NumField(); index++ {
		fieldType := structType.Field(index)
		if !fieldType.IsExported() {
			continue
		}
		hasExported = true

		name, options, _ := strings.Cut(fieldType.Tag.Get(StructTag), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = fieldType.Name
		}
		if options == "omitempty" && structValue.Field(index).IsZero() {
			continue
		}

		fields = append(fields, structField{name: name, index: index})
	}

	return fields, hasExported
}
