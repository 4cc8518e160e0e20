// SPDX-License-Identifier: MPL-2.0

package convert

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
)

type (
	color string
	level int
	path  string

	// noCapabilities reports nil capabilities.
	noCapabilities struct{}
)

func (color) EnumConstants() []any { return []any{color("Red"), color("Green")} }

func (l *level) UnmarshalText(b []byte) error {
	switch string(b) {
	case "debug":
		*l = 0
	case "info":
		*l = 1
	default:
		return fmt.Errorf("unknown level %q", b)
	}
	return nil
}

func (l level) String() string {
	if l == 0 {
		return "debug"
	}
	return "info"
}

func (noCapabilities) ID() string                                  { return "none" }
func (noCapabilities) Capabilities() (reflect.Type, reflect.Type) { return nil, nil }
func (noCapabilities) Convert(any, reflect.Type) (any, error)     { return nil, nil }

// render prints Stringers through String and dereferences other pointers.
func render(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		return render(rv.Elem().Interface())
	}
	return fmt.Sprint(v)
}

func TestEngine_Convert(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	tests := []struct {
		name   string
		value  string
		target reflect.Type
		want   string
	}{
		{"int", "42", reflect.TypeFor[int](), "42"},
		{"int with spaces", " 7 ", reflect.TypeFor[int](), "7"},
		{"negative int8", "-128", reflect.TypeFor[int8](), "-128"},
		{"uint16", "65535", reflect.TypeFor[uint16](), "65535"},
		{"float64", "3.5", reflect.TypeFor[float64](), "3.5"},
		{"bool yes", "yes", reflect.TypeFor[bool](), "true"},
		{"bool off", " Off ", reflect.TypeFor[bool](), "false"},
		{"duration", "1m30s", reflect.TypeFor[time.Duration](), "1m30s"},
		{"string", "hello", reflect.TypeFor[string](), "hello"},
		{"defined string", "a/b", reflect.TypeFor[path](), "a/b"},
		{"pointer to int", "42", reflect.TypeFor[*int](), "42"},
		{"big int", "12345678901234567890123", reflect.TypeFor[*big.Int](), "12345678901234567890123"},
		{"decimal", "1.25", reflect.TypeFor[*apd.Decimal](), "1.25"},
		{"json number", "1.5", reflect.TypeFor[json.Number](), "1.5"},
		{"enum", "Green", reflect.TypeFor[color](), "Green"},
		{"text unmarshaler", "info", reflect.TypeFor[level](), "info"},
		{"time", "2024-01-02T03:04:05Z", reflect.TypeFor[time.Time](), "2024-01-02 03:04:05 +0000 UTC"},
		{"url", "https://example.com/x?q=1", reflect.TypeFor[*url.URL](), "https://example.com/x?q=1"},
		{"any", "raw", reflect.TypeFor[any](), "raw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := e.Convert(tt.value, tt.target)
			if err != nil {
				t.Fatalf("Convert(%q, %s) error = %v", tt.value, tt.target, err)
			}
			if tt.target.Kind() != reflect.Interface && reflect.TypeOf(got) != tt.target {
				t.Errorf("Convert(%q, %s) type = %T", tt.value, tt.target, got)
			}
			if r := render(got); r != tt.want {
				t.Errorf("Convert(%q, %s) = %s, want %s", tt.value, tt.target, r, tt.want)
			}
		})
	}
}

func TestEngine_Convert_Errors(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	tests := []struct {
		name    string
		value   any
		target  reflect.Type
		wantErr error
		msg     string
	}{
		{"not a number", "abc", reflect.TypeFor[int](), ErrInvalidValue, "cannot convert"},
		{"int8 overflow", "128", reflect.TypeFor[int8](), ErrInvalidValue, "out of range"},
		{"negative uint", "-1", reflect.TypeFor[uint](), ErrInvalidValue, ""},
		{"bad bool", "maybe", reflect.TypeFor[bool](), ErrInvalidValue, "true/on/yes/y/1"},
		{"unknown enum constant", "Purple", reflect.TypeFor[color](), ErrInvalidValue, "Red, Green"},
		{"bad level", "loud", reflect.TypeFor[level](), ErrInvalidValue, "unknown level"},
		{"bad duration", "soon", reflect.TypeFor[time.Duration](), ErrInvalidValue, ""},
		{"bad json number", "1.2.3", reflect.TypeFor[json.Number](), ErrInvalidValue, ""},
		{"slice target", "x", reflect.TypeFor[[]string](), ErrConversionUnsupported, "no text constructor"},
		{"non-text source", 5, reflect.TypeFor[int](), ErrConversionUnsupported, "no suitable converter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := e.Convert(tt.value, tt.target)
			if err == nil {
				t.Fatalf("Convert(%v, %s) error = nil, want %v", tt.value, tt.target, tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error should wrap %v, got: %v", tt.wantErr, err)
			}
			if tt.msg != "" && !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q should contain %q", err, tt.msg)
			}
		})
	}
}

func TestEngine_Convert_ValueErrorDetails(t *testing.T) {
	t.Parallel()

	_, err := NewEngine().Convert("x", reflect.TypeFor[int32]())
	var ve *ValueError
	if !errors.As(err, &ve) {
		t.Fatalf("error should be *ValueError, got: %T", err)
	}
	if ve.Value != "x" || ve.Target != reflect.TypeFor[int32]() {
		t.Errorf("ValueError = %+v", ve)
	}
	if !errors.Is(err, strconv.ErrSyntax) {
		t.Errorf("error should wrap strconv.ErrSyntax, got: %v", err)
	}
}

func TestEngine_Convert_Nil(t *testing.T) {
	t.Parallel()

	got, err := NewEngine().Convert(nil, reflect.TypeFor[int]())
	if err != nil || got != nil {
		t.Errorf("Convert(nil) = %v, %v; want nil, nil", got, err)
	}
}

func TestNumericBoundaries(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	values := []any{
		int8(math.MinInt8), int8(math.MaxInt8),
		int16(math.MinInt16), int16(math.MaxInt16),
		int32(math.MinInt32), int32(math.MaxInt32),
		int64(math.MinInt64), int64(math.MaxInt64),
		int(math.MinInt), int(math.MaxInt),
		uint8(math.MaxUint8), uint16(math.MaxUint16), uint32(math.MaxUint32),
		uint64(math.MaxUint64), uint(math.MaxUint),
		float32(math.MaxFloat32), float32(math.SmallestNonzeroFloat32),
		math.MaxFloat64, math.SmallestNonzeroFloat64, -math.MaxFloat64,
	}

	for _, want := range values {
		text := fmt.Sprint(want)
		if f, ok := want.(float32); ok {
			text = strconv.FormatFloat(float64(f), 'g', -1, 32)
		}
		got, err := e.Convert(text, reflect.TypeOf(want))
		if err != nil {
			t.Errorf("Convert(%q, %T) error = %v", text, want, err)
			continue
		}
		if got != want {
			t.Errorf("Convert(%q, %T) = %v, want %v", text, want, got, want)
		}
	}
}

func TestEngine_MostSpecificTargetWins(t *testing.T) {
	t.Parallel()

	intConv := NewFunc[string, int]("custom-int", func(string, reflect.Type) (any, error) { return -1, nil })
	numberConv := NewFunc[string, Number](StringToNumberID, stringToNumber)

	orders := map[string][]Converter{
		"int first":    {intConv, numberConv},
		"number first": {numberConv, intConv},
	}
	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			e := NewEmptyEngine()
			for _, c := range order {
				if err := e.Register(c); err != nil {
					t.Fatalf("Register(%s) error = %v", c.ID(), err)
				}
			}

			got, err := ConvertTo[int](e, "5")
			if err != nil {
				t.Fatalf("ConvertTo[int] error = %v", err)
			}
			if got != -1 {
				t.Errorf("ConvertTo[int] = %d, want the exact int converter's -1", got)
			}

			got64, err := ConvertTo[int64](e, "5")
			if err != nil {
				t.Fatalf("ConvertTo[int64] error = %v", err)
			}
			if got64 != 5 {
				t.Errorf("ConvertTo[int64] = %d, want 5 from the Number converter", got64)
			}
		})
	}
}

func TestEngine_SourceDistanceBreaksTies(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	upper := NewFunc[string, string]("upper", func(s string, _ reflect.Type) (any, error) {
		return strings.ToUpper(s), nil
	})
	if err := e.Register(upper); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, err := ConvertTo[string](e, "abc")
	if err != nil {
		t.Fatalf("ConvertTo[string] error = %v", err)
	}
	if got != "ABC" {
		t.Errorf("ConvertTo[string] = %q, want the string-sourced converter to beat %s", got, ObjectToStringID)
	}
}

func TestEngine_RegistrationOrderBreaksTies(t *testing.T) {
	t.Parallel()

	e := NewEmptyEngine()
	for _, id := range []string{"first", "second"} {
		c := NewFunc[string, int](id, func(string, reflect.Type) (any, error) { return 0, nil })
		if err := e.Register(c); err != nil {
			t.Fatalf("Register(%s) error = %v", id, err)
		}
	}

	for range 3 {
		id, err := e.Resolve(reflect.TypeFor[string](), reflect.TypeFor[int]())
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if id != "second" {
			t.Errorf("Resolve() = %q, want %q", id, "second")
		}
	}
}

func TestEngine_RegisterOverridesBuiltin(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	strict := NewFunc[string, bool]("strict-bool", func(s string, target reflect.Type) (any, error) {
		switch s {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, &ValueError{Value: s, Target: target, Reason: "expected true or false"}
	})
	if err := e.Register(strict); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	id, err := e.Resolve(reflect.TypeFor[string](), reflect.TypeFor[bool]())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if id != "strict-bool" {
		t.Errorf("Resolve() = %q, want strict-bool", id)
	}
	if _, err := ConvertTo[bool](e, "yes"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("ConvertTo[bool](yes) error = %v, want ErrInvalidValue", err)
	}

	// Built-in ties keep their numeric and enum precedence.
	for _, tt := range []struct {
		target reflect.Type
		want   string
	}{
		{reflect.TypeFor[big.Int](), StringToNumberID},
		{reflect.TypeFor[apd.Decimal](), StringToNumberID},
		{reflect.TypeFor[color](), StringToEnumID},
		{reflect.TypeFor[level](), StringToTextID},
	} {
		if id, _ := e.Resolve(reflect.TypeFor[string](), tt.target); id != tt.want {
			t.Errorf("Resolve(string, %s) = %q, want %q", tt.target, id, tt.want)
		}
	}
}

func TestEngine_Register(t *testing.T) {
	t.Parallel()

	e := NewEmptyEngine()
	c := NewFunc[string, int]("dup", func(string, reflect.Type) (any, error) { return 1, nil })
	for range 2 {
		if err := e.Register(c); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}
	if got := e.Converters(); !slices.Equal(got, []string{"dup"}) {
		t.Errorf("Converters() = %v, want [dup]", got)
	}

	invalid := []Converter{
		nil,
		NewFunc[string, int]("", func(string, reflect.Type) (any, error) { return 1, nil }),
		noCapabilities{},
	}
	for _, c := range invalid {
		err := e.Register(c)
		if !errors.Is(err, ErrInvalidConverter) {
			t.Errorf("Register(%v) error = %v, want ErrInvalidConverter", c, err)
		}
		var ice *InvalidConverterError
		if !errors.As(err, &ice) {
			t.Errorf("error should be *InvalidConverterError, got: %T", err)
		}
	}
}

func TestEngine_CacheInvalidation(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	source, target := reflect.TypeFor[string](), reflect.TypeFor[int]()

	if id, _ := e.Resolve(source, target); id != StringToNumberID {
		t.Fatalf("Resolve() = %q, want %q", id, StringToNumberID)
	}

	custom := NewFunc[string, int]("custom-int", func(string, reflect.Type) (any, error) { return 1, nil })
	if err := e.Register(custom); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if id, _ := e.Resolve(source, target); id != "custom-int" {
		t.Errorf("after Register, Resolve() = %q, want custom-int", id)
	}

	if !e.Unregister("custom-int") {
		t.Fatal("Unregister() = false, want true")
	}
	if id, _ := e.Resolve(source, target); id != StringToNumberID {
		t.Errorf("after Unregister, Resolve() = %q, want %q", id, StringToNumberID)
	}
	if e.Unregister("custom-int") {
		t.Error("second Unregister() = true, want false")
	}
}

func TestEngine_Concurrent(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	var wg sync.WaitGroup
	errs := make(chan error, 64)

	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := ConvertTo[int](e, strconv.Itoa(i))
			if err != nil {
				errs <- err
				return
			}
			if got != i {
				errs <- fmt.Errorf("ConvertTo[int](%d) = %d", i, got)
			}
		}()
	}
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fmt.Sprintf("noop-%d", i)
			c := NewFunc[int, string](id, func(int, reflect.Type) (any, error) { return "", nil })
			if err := e.Register(c); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestConvertAll(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	got, err := e.ConvertAll([]any{"1", "2", "3"}, reflect.TypeFor[int]())
	if err != nil {
		t.Fatalf("ConvertAll() error = %v", err)
	}
	if want := []any{1, 2, 3}; !slices.Equal(got, want) {
		t.Errorf("ConvertAll() = %v, want %v", got, want)
	}

	if _, err := e.ConvertAll([]any{"1", "x"}, reflect.TypeFor[int]()); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("ConvertAll() error = %v, want ErrInvalidValue", err)
	}
}

func TestParseBool(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"true", "TRUE", "on", "Yes", "y", "1", " true "} {
		if b, err := ParseBool(s); err != nil || !b {
			t.Errorf("ParseBool(%q) = %v, %v; want true", s, b, err)
		}
	}
	for _, s := range []string{"false", "Off", "NO", "n", "0"} {
		if b, err := ParseBool(s); err != nil || b {
			t.Errorf("ParseBool(%q) = %v, %v; want false", s, b, err)
		}
	}
	for _, s := range []string{"", "2", "truthy", "nope"} {
		if _, err := ParseBool(s); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("ParseBool(%q) error = %v, want ErrInvalidValue", s, err)
		}
	}
}

func TestDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		concrete   reflect.Type
		capability reflect.Type
		want       int
	}{
		{"identity", reflect.TypeFor[string](), reflect.TypeFor[string](), 0},
		{"defined to predeclared", reflect.TypeFor[time.Duration](), reflect.TypeFor[int64](), 1},
		{"defined to number", reflect.TypeFor[time.Duration](), reflect.TypeFor[Number](), 2},
		{"int to number", reflect.TypeFor[int](), reflect.TypeFor[Number](), 1},
		{"big int to number", reflect.TypeFor[big.Int](), reflect.TypeFor[Number](), 1},
		{"string is not a number", reflect.TypeFor[string](), reflect.TypeFor[Number](), NoMatch},
		{"implemented through pointer", reflect.TypeFor[level](), reflect.TypeFor[encoding.TextUnmarshaler](), 1},
		{"enum", reflect.TypeFor[color](), reflect.TypeFor[Enum](), 1},
		{"unrelated", reflect.TypeFor[bool](), reflect.TypeFor[int](), NoMatch},
		{"top", reflect.TypeFor[int](), reflect.TypeFor[any](), TopDistance},
		{"nil", nil, reflect.TypeFor[int](), NoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Distance(tt.concrete, tt.capability); got != tt.want {
				t.Errorf("Distance(%v, %v) = %d, want %d", tt.concrete, tt.capability, got, tt.want)
			}
		})
	}
}
