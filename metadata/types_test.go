package metadata

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAny(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected Value
	}{
		{"nil", nil, Null()},
		{"Value", Int(1), Int(1)},
		{"bool", true, Bool(true)},
		{"string", "hello", String("hello")},
		{"float64", 3.14, Float(3.14)},
		{"float32", float32(1.5), Float(1.5)},
		{"int", 1, Int(1)},
		{"int8", int8(-1), Int(-1)},
		{"uint32 max", uint32(math.MaxUint32), Int(math.MaxUint32)},
		{"uint64", uint64(1) << 40, Int(1 << 40)},
		{"[]string", []string{"a"}, Array([]Value{String("a")})},
		{"[]int", []int{1, 2}, Array([]Value{Int(1), Int(2)})},
		{"[]float64", []float64{0.5}, Array([]Value{Float(0.5)})},
		{"[]bool", []bool{true}, Array([]Value{Bool(true)})},
		{"[]any", []any{1, "x", nil}, Array([]Value{Int(1), String("x"), Null()})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := FromAny(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}

	t.Run("Errors", func(t *testing.T) {
		_, err := FromAny(uint64(math.MaxUint64))
		assert.ErrorContains(t, err, "out of range")

		_, err = FromAny(map[string]int{})
		assert.ErrorContains(t, err, "unsupported")

		_, err = FromAny([]any{1, struct{}{}})
		assert.Error(t, err)
	})
}

func TestDocumentFromAny(t *testing.T) {
	doc, err := DocumentFromAny(map[string]any{"a": 1, "b": "x"})
	require.NoError(t, err)
	assert.Equal(t, Document{"a": Int(1), "b": String("x")}, doc)
	assert.Equal(t, map[string]any{"a": int64(1), "b": "x"}, doc.ToMap())

	_, err = DocumentFromAny(map[string]any{"bad": struct{}{}})
	assert.ErrorContains(t, err, `field "bad"`)
}

func TestValueAccessors(t *testing.T) {
	i, ok := Int(3).AsInt64()
	assert.True(t, ok)
	assert.Equal(t, int64(3), i)

	f, ok := Int(3).AsFloat64()
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)

	_, ok = String("x").AsFloat64()
	assert.False(t, ok)

	s, ok := String("x").AsString()
	assert.True(t, ok)
	assert.Equal(t, "x", s)
	assert.Equal(t, "", Int(1).StringValue())

	b, ok := Bool(true).AsBool()
	assert.True(t, ok)
	assert.True(t, b)

	_, ok = Int(1).AsArray()
	assert.False(t, ok)

	assert.Equal(t, []any{int64(1), "a"}, Array([]Value{Int(1), String("a")}).Any())
	assert.Nil(t, Null().Any())
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "null", Null().String())
	assert.Equal(t, "-4", Int(-4).String())
	assert.Equal(t, "0.5", Float(0.5).String())
	assert.Equal(t, `"a b"`, String("a b").String())
	assert.Equal(t, "false", Bool(false).String())
	assert.Equal(t, "[1, true]", Array([]Value{Int(1), Bool(true)}).String())
	assert.Equal(t, "<invalid>", Value{}.String())
	assert.Equal(t, "array", KindArray.String())
}

func TestDocumentClone(t *testing.T) {
	orig := Document{"tags": Array([]Value{String("a")}), "n": Int(1)}
	c := orig.Clone()
	c["tags"].A[0] = String("changed")
	c["n"] = Int(2)

	assert.Equal(t, "a", orig["tags"].A[0].StringValue())
	assert.Equal(t, int64(1), orig["n"].I64)
	assert.Nil(t, Document(nil).Clone())
}

func TestDocumentMerge(t *testing.T) {
	base := Document{"a": Int(1), "b": Int(2)}
	merged := base.Merge(Document{"b": Int(3), "c": Bool(true)})

	assert.Equal(t, Document{"a": Int(1), "b": Int(3), "c": Bool(true)}, merged)
	assert.Equal(t, Int(2), base["b"])
	assert.Equal(t, Document{}, Document(nil).Merge(nil))
}

func TestSchemaValidate(t *testing.T) {
	s := Schema{
		"s": FieldTypeString,
		"i": FieldTypeInt,
		"f": FieldTypeFloat,
		"b": FieldTypeBool,
		"a": FieldTypeArray,
		"x": FieldTypeAny,
	}

	tests := []struct {
		name    string
		doc     Document
		wantErr bool
	}{
		{"Valid", Document{"s": String("v"), "i": Int(1), "f": Float(0.5), "b": Bool(true), "a": Array(nil), "x": Int(1)}, false},
		{"IntAsFloat", Document{"f": Int(10)}, false},
		{"UnknownField", Document{"other": Int(1)}, false},
		{"Null", Document{"s": Null()}, false},
		{"WrongString", Document{"s": Int(1)}, true},
		{"FloatAsInt", Document{"i": Float(1)}, true},
		{"WrongBool", Document{"b": String("true")}, true},
		{"WrongArray", Document{"a": String("[]")}, true},
		{"InvalidAny", Document{"x": Value{}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate(tt.doc)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.NoError(t, Schema(nil).Validate(Document{"s": Int(1)}))
}

func TestParseFieldType(t *testing.T) {
	for _, ft := range []FieldType{FieldTypeAny, FieldTypeInt, FieldTypeFloat, FieldTypeString, FieldTypeBool, FieldTypeArray} {
		got, err := ParseFieldType(ft.String())
		require.NoError(t, err)
		assert.Equal(t, ft, got)
	}
	_, err := ParseFieldType("decimal")
	assert.Error(t, err)
	assert.Equal(t, "unknown", FieldType(99).String())
}
