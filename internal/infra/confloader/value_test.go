package confloader

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestValueOf(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null()},
		{"string", "x", String("x")},
		{"empty string", "", String("")},
		{"bool", true, Bool(true)},
		{"int", 42, Int(42)},
		{"int64", int64(-7), Int(-7)},
		{"uint8", uint8(9), Int(9)},
		{"uint64 overflow", uint64(math.MaxUint64), Float(float64(uint64(math.MaxUint64)))},
		{"float64", 1.5, Float(1.5)},
		{"whole float stays float", 2.0, Float(2)},
		{"time", ts, String("2024-05-01T12:00:00Z")},
		{"date", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), String("2024-01-01")},
		{"midnight with offset", time.Date(2024, 1, 1, 0, 0, 0, 0, time.FixedZone("", 3600)), String("2024-01-01T00:00:00+01:00")},
		{"map", map[string]any{"a": 1}, Map(Mapping{"a": Int(1)})},
		{"map any keys", map[any]any{1: "one"}, Map(Mapping{"1": String("one")})},
		{"slice", []any{"a", nil}, Seq(String("a"), Null())},
		{"value passthrough", String("v"), String("v")},
		{"unknown type", struct{ A int }{1}, String("{1}")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValueOf(tt.in)
			if !got.Equal(tt.want) {
				t.Errorf("ValueOf(%v) = %v (%s), want %v (%s)", tt.in, got, got.Kind(), tt.want, tt.want.Kind())
			}
		})
	}
}

func TestValue_ZeroIsNull(t *testing.T) {
	var v Value
	if !v.IsNull() || v.Kind() != KindNull {
		t.Errorf("zero Value kind = %s, want null", v.Kind())
	}
	if v.String() != "null" {
		t.Errorf("zero Value String() = %q, want null", v.String())
	}
}

func TestValue_Accessors(t *testing.T) {
	if s, ok := String("a").Str(); !ok || s != "a" {
		t.Errorf("Str() = %q, %v", s, ok)
	}
	if _, ok := Int(1).Str(); ok {
		t.Error("Int(1).Str() ok = true")
	}
	if n, ok := Int(3).Int(); !ok || n != 3 {
		t.Errorf("Int() = %d, %v", n, ok)
	}
	if _, ok := Float(3).Int(); ok {
		t.Error("Float(3).Int() ok = true, float numbers must not convert")
	}
	if f, ok := Int(3).Float(); !ok || f != 3 {
		t.Errorf("Int(3).Float() = %v, %v", f, ok)
	}
	if b, ok := Bool(false).Bool(); !ok || b {
		t.Errorf("Bool() = %v, %v", b, ok)
	}
	if _, ok := String("true").Bool(); ok {
		t.Error(`String("true").Bool() ok = true`)
	}
	if _, ok := Null().Map(); ok {
		t.Error("Null().Map() ok = true")
	}
	if _, ok := Map(nil).Seq(); ok {
		t.Error("Map(nil).Seq() ok = true")
	}
}

func TestValue_Text(t *testing.T) {
	tests := []struct {
		v      Value
		want   string
		wantOK bool
	}{
		{String("s"), "s", true},
		{Int(8000), "8000", true},
		{Float(0.25), "0.25", true},
		{Bool(true), "true", true},
		{Null(), "", false},
		{Map(Mapping{}), "", false},
		{Seq(), "", false},
	}

	for _, tt := range tests {
		got, ok := tt.v.Text()
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("%s.Text() = %q, %v, want %q, %v", tt.v.Kind(), got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestValue_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same string", String("a"), String("a"), true},
		{"different string", String("a"), String("b"), false},
		{"int vs float", Int(1), Float(1), false},
		{"string vs int", String("1"), Int(1), false},
		{"nulls", Null(), Null(), true},
		{"nested maps", Map(Mapping{"a": Seq(Int(1))}), Map(Mapping{"a": Seq(Int(1))}), true},
		{"nested diff", Map(Mapping{"a": Seq(Int(1))}), Map(Mapping{"a": Seq(Int(2))}), false},
		{"seq length", Seq(Int(1)), Seq(Int(1), Int(1)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValue_Clone(t *testing.T) {
	inner := Mapping{"k": String("v")}
	orig := Map(Mapping{"inner": Map(inner), "list": Seq(String("a"))})

	clone := orig.Clone()
	inner["k"] = String("changed")

	m, _ := clone.Map()
	got, _ := m["inner"].Map()
	if s, _ := got.GetString("k"); s != "v" {
		t.Errorf("clone shares nested mapping, k = %q", s)
	}
}

func TestValue_MarshalJSON(t *testing.T) {
	m := Mapping{
		"s":    String("x"),
		"n":    Int(1),
		"f":    Float(1.5),
		"b":    Bool(true),
		"null": Null(),
		"seq":  Seq(Int(1), String("two")),
		"map":  Map(Mapping{"a": Bool(false)}),
	}

	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	want := map[string]any{
		"s":    "x",
		"n":    float64(1),
		"f":    1.5,
		"b":    true,
		"null": nil,
		"seq":  []any{float64(1), "two"},
		"map":  map[string]any{"a": false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("JSON mismatch (-want +got):\n%s", diff)
	}
}

func TestValue_MarshalJSON_NonFinite(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want string
	}{
		{"nan", Float(math.NaN()), `"NaN"`},
		{"positive infinity", Float(math.Inf(1)), `"+Inf"`},
		{"negative infinity", Float(math.Inf(-1)), `"-Inf"`},
		{"nested in mapping", Map(Mapping{"r": Float(math.NaN())}), `{"r":"NaN"}`},
		{"nested in sequence", Seq(Float(1), Float(math.Inf(1))), `[1,"+Inf"]`},
		{"empty mapping", Map(nil), `{}`},
		{"empty sequence", Seq(), `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.in)
			if err != nil {
				t.Fatalf("json.Marshal() error = %v", err)
			}
			if string(b) != tt.want {
				t.Errorf("json.Marshal() = %s, want %s", b, tt.want)
			}
		})
	}
}

func TestValue_MarshalYAML(t *testing.T) {
	m := Mapping{"port": Int(8000), "dsn": String("postgresql://h/db")}

	b, err := yaml.Marshal(m)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}

	var got map[string]any
	if err := yaml.Unmarshal(b, &got); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if got["port"] != 8000 || got["dsn"] != "postgresql://h/db" {
		t.Errorf("round trip = %v", got)
	}
}

func TestMapping_Keys(t *testing.T) {
	m := Mapping{"b": Null(), "a": Null(), "c": Null()}
	if diff := cmp.Diff([]string{"a", "b", "c"}, m.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestMapping_GetString(t *testing.T) {
	m := Mapping{"s": String("x"), "n": Int(1)}

	if v, ok := m.GetString("s"); !ok || v != "x" {
		t.Errorf("GetString(s) = %q, %v", v, ok)
	}
	if _, ok := m.GetString("n"); ok {
		t.Error("GetString(n) ok = true for a number")
	}
	if _, ok := m.GetString("missing"); ok {
		t.Error("GetString(missing) ok = true")
	}
	if _, ok := m.Get("n"); !ok {
		t.Error("Get(n) ok = false")
	}
}
