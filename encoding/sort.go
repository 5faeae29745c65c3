package encoding

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

type mapEntry struct {
	key   reflect.Value
	value reflect.Value
}

// sortedMapEntries returns the entries of mapping in a stable, deterministic order:
// keys of the same type compare by value, keys of different types by kind and type
// name. Entries are read with MapRange since keys such as NaN never look up their own
// value. Entries with equal keys (only possible for NaN) are ordered by value.
func sortedMapEntries(mapping reflect.Value) []mapEntry {
	entries := make([]mapEntry, 0, mapping.Len())
	entryIter := mapping.MapRange()
	for entryIter.Next() {
		entries = append(entries, mapEntry{key: entryIter.Key(), value: entryIter.Value()})
	}

	slices.SortStableFunc(entries, func(left mapEntry, right mapEntry) int {
		if order := compareKeys(left.key, right.key); order != 0 {
			return order
		}
		return compareKeys(left.value, right.value)
	})
	return entries
}

func compareKeys(left reflect.Value, right reflect.Value) int {
	// Keys of interface-typed maps hold the dynamic value one level down.
	if left.Kind() == reflect.Interface {
		left = left.Elem()
	}
	if right.Kind() == reflect.Interface {
		right = right.Elem()
	}

	if !left.IsValid() || !right.IsValid() {
		return cmp.Compare(validRank(left), validRank(right))
	}

	if left.Type() != right.Type() {
		if order := cmp.Compare(left.Kind(), right.Kind()); order != 0 {
			return order
		}
		if order := strings.Compare(left.Type().String(), right.Type().String()); order != 0 {
			return order
		}
	}

	switch left.Kind() {
	case reflect.String:
		return strings.Compare(left.String(), right.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(left.Int(), right.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr:
		return cmp.Compare(left.Uint(), right.Uint())
	case reflect.Float32, reflect.Float64:
		return cmp.Compare(left.Float(), right.Float())
	case reflect.Complex64, reflect.Complex128:
		leftComplex, rightComplex := left.Complex(), right.Complex()
		if order := cmp.Compare(real(leftComplex), real(rightComplex)); order != 0 {
			return order
		}
		return cmp.Compare(imag(leftComplex), imag(rightComplex))
	case reflect.Bool:
		return cmp.Compare(boolRank(left.Bool()), boolRank(right.Bool()))
	default:
		return strings.Compare(fmt.Sprint(left.Interface()), fmt.Sprint(right.Interface()))
	}
}

// nil keys sort first.
func validRank(value reflect.Value) int {
	if value.IsValid() {
		return 1
	}
	return 0
}

func boolRank(value bool) int {
	if value {
		return 1
	}
	return 0
}
