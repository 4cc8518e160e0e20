// SPDX-License-Identifier: MPL-2.0

package convert

import (
	"encoding"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// Built-in converter IDs.
const (
	StringToBoolID     = "string-to-bool"
	StringToNumberID   = "string-to-number"
	StringToEnumID     = "string-to-enum"
	StringToObjectID   = "string-to-object"
	StringToTextID     = "string-to-text"
	StringToDurationID = "string-to-duration"
	ObjectToStringID   = "object-to-string"
)

var (
	trueWords  = []string{"true", "on", "yes", "y", "1"}
	falseWords = []string{"false", "off", "no", "n", "0"}
)

// Builtins returns the default converters in their registration order. On
// equal distance a later converter wins, so *big.Int keeps its numeric parse
// over UnmarshalText and enums win over UnmarshalText.
func Builtins() []Converter {
	return []Converter{
		NewFunc[string, any](StringToObjectID, stringToObject),
		NewFunc[any, string](ObjectToStringID, objectToString),
		NewFunc[string, encoding.TextUnmarshaler](StringToTextID, stringToText),
		NewFunc[string, Enum](StringToEnumID, stringToEnum),
		NewFunc[string, Number](StringToNumberID, stringToNumber),
		NewFunc[string, bool](StringToBoolID, stringToBool),
		NewFunc[string, time.Duration](StringToDurationID, stringToDuration),
	}
}

// ParseBool parses the case-insensitive words true/on/yes/y/1 and
// false/off/no/n/0. Surrounding whitespace is ignored.
func ParseBool(s string) (bool, error) {
	word := strings.ToLower(strings.TrimSpace(s))
	for _, w := range trueWords {
		if word == w {
			return true, nil
		}
	}
	for _, w := range falseWords {
		if word == w {
			return false, nil
		}
	}
	return false, &ValueError{
		Value:  s,
		Target: reflect.TypeFor[bool](),
		Reason: fmt.Sprintf("expected one of %s or %s", strings.Join(trueWords, "/"), strings.Join(falseWords, "/")),
	}
}

func stringToBool(s string, target reflect.Type) (any, error) {
	b, err := ParseBool(s)
	if err != nil {
		var ve *ValueError
		if errors.As(err, &ve) {
			ve.Target = target
		}
		return nil, err
	}
	return b, nil
}

func stringToDuration(s string, target reflect.Type) (any, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return nil, &ValueError{Value: s, Target: target, Err: err}
	}
	return d, nil
}

func objectToString(v any, _ reflect.Type) (any, error) {
	return fmt.Sprint(v), nil
}

// stringToNumber parses s according to the target's kind. Targets that only
// reach Number through a string kind, such as json.Number, are validated as
// arbitrary-precision decimals.
func stringToNumber(s string, target reflect.Type) (any, error) {
	text := strings.TrimSpace(s)

	switch target {
	case bigIntType:
		n, ok := new(big.Int).SetString(text, 10)
		if !ok {
			return nil, &ValueError{Value: s, Target: target, Reason: "not an integer"}
		}
		return n, nil
	case bigFloatType:
		f, _, err := big.ParseFloat(text, 10, 0, big.ToNearestEven)
		if err != nil {
			return nil, &ValueError{Value: s, Target: target, Err: err}
		}
		return f, nil
	case decimalType:
		d, _, err := apd.NewFromString(text)
		if err != nil {
			return nil, &ValueError{Value: s, Target: target, Err: err}
		}
		return d, nil
	}

	out := reflect.New(target).Elem()
	switch target.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(text, 10, target.Bits())
		if err != nil {
			return nil, &ValueError{Value: s, Target: target, Err: numError(err)}
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(text, 10, target.Bits())
		if err != nil {
			return nil, &ValueError{Value: s, Target: target, Err: numError(err)}
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(text, target.Bits())
		if err != nil {
			return nil, &ValueError{Value: s, Target: target, Err: numError(err)}
		}
		out.SetFloat(f)
	case reflect.String:
		d, _, err := apd.NewFromString(text)
		if err != nil {
			return nil, &ValueError{Value: s, Target: target, Err: err}
		}
		out.SetString(d.String())
	default:
		return nil, &UnsupportedError{Source: stringType, Target: target, Reason: "not a numeric type"}
	}
	return out.Interface(), nil
}

// stringToEnum matches s exactly against the text form of the target's constants.
func stringToEnum(s string, target reflect.Type) (any, error) {
	var e Enum
	if ptr := reflect.New(target); ptr.Type().Implements(enumType) && !target.Implements(enumType) {
		e = ptr.Interface().(Enum)
	} else {
		e, _ = ptr.Elem().Interface().(Enum)
	}
	if e == nil {
		return nil, &UnsupportedError{Source: stringType, Target: target, Reason: "not an enum"}
	}

	constants := e.EnumConstants()
	names := make([]string, 0, len(constants))
	for _, c := range constants {
		name := fmt.Sprint(c)
		if name == s {
			return c, nil
		}
		names = append(names, name)
	}
	return nil, &ValueError{Value: s, Target: target, Reason: "expected one of " + strings.Join(names, ", ")}
}

// stringToText builds a value through its UnmarshalText method.
func stringToText(s string, target reflect.Type) (any, error) {
	if target.Kind() == reflect.Interface {
		return nil, &UnsupportedError{Source: stringType, Target: target, Reason: "interface target cannot be constructed from text"}
	}
	ptr := reflect.New(target)
	u, ok := ptr.Interface().(encoding.TextUnmarshaler)
	if !ok {
		return nil, &UnsupportedError{Source: stringType, Target: target, Reason: "type does not implement encoding.TextUnmarshaler"}
	}
	if err := u.UnmarshalText([]byte(s)); err != nil {
		return nil, &ValueError{Value: s, Target: target, Err: err}
	}
	return ptr.Interface(), nil
}

// stringToObject is the fallback for targets without a closer converter. It
// builds a value through a binary unmarshaler (url.URL has one) or converts
// directly for string kinds.
func stringToObject(s string, target reflect.Type) (any, error) {
	if target.Kind() == reflect.Interface {
		if stringType.AssignableTo(target) {
			return s, nil
		}
		return nil, &UnsupportedError{Source: stringType, Target: target, Reason: "interface target cannot be constructed from text"}
	}

	ptr := reflect.New(target)
	if u, ok := ptr.Interface().(encoding.BinaryUnmarshaler); ok {
		if err := u.UnmarshalBinary([]byte(s)); err != nil {
			return nil, &ValueError{Value: s, Target: target, Err: err}
		}
		return ptr.Interface(), nil
	}

	if target.Kind() == reflect.String {
		return reflect.ValueOf(s).Convert(target).Interface(), nil
	}
	return nil, &UnsupportedError{
		Source: stringType,
		Target: target,
		Reason: "type has no text constructor; implement encoding.TextUnmarshaler",
	}
}

// numError strips the strconv wrapper, whose message repeats the input.
func numError(err error) error {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return ne.Err
	}
	return err
}
