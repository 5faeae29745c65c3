package encoding

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/illuscio-dev/wxftools-go/wxftypes"
)

// OrderedMap is the insertion-ordered mapping OrderedMapEncoder understands.
type OrderedMap = orderedmap.OrderedMap[string, interface{}]

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap() *OrderedMap {
	return orderedmap.NewOrderedMap[string, interface{}]()
}

// OrderedMapEncoder encodes *OrderedMap values as associations in insertion order,
// for callers that need a Go mapping with a stable, non-sorted key order.
type OrderedMapEncoder struct{}

func (encoder *OrderedMapEncoder) Encode(engine TokenEngine, value interface{}) Stream {
	ordered, ok := value.(*OrderedMap)
	if !ok || ordered == nil {
		return emptyStream
	}

	return func(yield func(wxftypes.Token, error) bool) {
		if !yield(wxftypes.Association(ordered.Len()), nil) {
			return
		}
		for element := ordered.Front(); element != nil; element = element.Next() {
			if !yield(wxftypes.Rule(), nil) {
				return
			}
			if !yield(wxftypes.String(element.Key), nil) {
				return
			}
			if !Serialize(engine, element.Value, yield) {
				return
			}
		}
	}
}
