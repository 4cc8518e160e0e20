// SPDX-License-Identifier: MPL-2.0

package convert

import (
	"encoding/json"
	"math"
	"math/big"
	"reflect"

	"github.com/cockroachdb/apd/v3"
)

const (
	// NoMatch is the distance reported when a type cannot reach a capability.
	NoMatch = -1
	// TopDistance is the distance to the universal capability any. It is a
	// match, but ranks after every finite distance.
	TopDistance = math.MaxInt
)

type (
	// Number is the capability shared by every numeric type: the predeclared
	// integer and float types, *big.Int, *big.Float, *apd.Decimal and
	// json.Number. Converters declaring Number as their target handle all of
	// them. No value implements Number; it exists only as a reflect.Type.
	Number interface {
		number()
	}

	// Enum is implemented by types with a closed set of named constants.
	// The text form of each constant is its fmt.Sprint rendering.
	Enum interface {
		EnumConstants() []any
	}
)

var (
	anyType    = reflect.TypeFor[any]()
	stringType = reflect.TypeFor[string]()
	numberType = reflect.TypeFor[Number]()
	enumType   = reflect.TypeFor[Enum]()

	bigIntType     = reflect.TypeFor[big.Int]()
	bigFloatType   = reflect.TypeFor[big.Float]()
	decimalType    = reflect.TypeFor[apd.Decimal]()
	jsonNumberType = reflect.TypeFor[json.Number]()

	predeclared = map[reflect.Kind]reflect.Type{
		reflect.Bool:       reflect.TypeFor[bool](),
		reflect.Int:        reflect.TypeFor[int](),
		reflect.Int8:       reflect.TypeFor[int8](),
		reflect.Int16:      reflect.TypeFor[int16](),
		reflect.Int32:      reflect.TypeFor[int32](),
		reflect.Int64:      reflect.TypeFor[int64](),
		reflect.Uint:       reflect.TypeFor[uint](),
		reflect.Uint8:      reflect.TypeFor[uint8](),
		reflect.Uint16:     reflect.TypeFor[uint16](),
		reflect.Uint32:     reflect.TypeFor[uint32](),
		reflect.Uint64:     reflect.TypeFor[uint64](),
		reflect.Uintptr:    reflect.TypeFor[uintptr](),
		reflect.Float32:    reflect.TypeFor[float32](),
		reflect.Float64:    reflect.TypeFor[float64](),
		reflect.Complex64:  reflect.TypeFor[complex64](),
		reflect.Complex128: reflect.TypeFor[complex128](),
		reflect.String:     stringType,
	}
)

// Distance returns the number of hierarchy steps from concrete up to
// capability, NoMatch when capability is unreachable, and TopDistance when
// capability is the universal type.
func Distance(concrete, capability reflect.Type) int {
	var ifaces []reflect.Type
	if capability != nil && capability.Kind() == reflect.Interface && !isTop(capability) {
		ifaces = []reflect.Type{capability}
	}
	return distance(concrete, capability, ifaces)
}

// distance walks the hierarchy breadth-first so the shortest path wins.
// ifaces are the interface capabilities known to the engine.
func distance(concrete, capability reflect.Type, ifaces []reflect.Type) int {
	if concrete == nil || capability == nil {
		return NoMatch
	}
	if concrete == capability {
		return 0
	}
	if isTop(capability) {
		return TopDistance
	}

	visited := map[reflect.Type]bool{concrete: true}
	frontier := []reflect.Type{concrete}
	for depth := 1; len(frontier) > 0; depth++ {
		var next []reflect.Type
		for _, t := range frontier {
			for _, s := range supertypes(t, ifaces) {
				if s == capability {
					return depth
				}
				if !visited[s] {
					visited[s] = true
					next = append(next, s)
				}
			}
		}
		frontier = next
	}
	return NoMatch
}

// supertypes returns the types one step above t.
func supertypes(t reflect.Type, ifaces []reflect.Type) []reflect.Type {
	var out []reflect.Type
	if t.Kind() != reflect.Interface {
		if basic, ok := predeclared[t.Kind()]; ok && basic != t {
			out = append(out, basic)
		}
		if isNumeric(t) {
			out = append(out, numberType)
		}
	}
	for _, iface := range ifaces {
		if iface == t || isTop(iface) {
			continue
		}
		if implements(t, iface) {
			out = append(out, iface)
		}
	}
	return out
}

func implements(t, iface reflect.Type) bool {
	if t.Implements(iface) {
		return true
	}
	return t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(iface)
}

// isNumeric reports whether t sits directly below Number. Defined numeric
// types such as time.Duration reach Number through their predeclared type.
func isNumeric(t reflect.Type) bool {
	switch t {
	case bigIntType, bigFloatType, decimalType, jsonNumberType:
		return true
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return predeclared[t.Kind()] == t
	default:
		return false
	}
}

func isTop(t reflect.Type) bool {
	return t.Kind() == reflect.Interface && t.NumMethod() == 0
}

// indirect strips pointer layers from t and reports how many were removed.
func indirect(t reflect.Type) (reflect.Type, int) {
	depth := 0
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
		depth++
	}
	return t, depth
}
