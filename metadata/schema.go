package metadata

import (
	"fmt"
	"strings"
)

// FieldType defines the data type of a metadata field.
type FieldType uint8

const (
	FieldTypeAny FieldType = iota
	FieldTypeInt
	FieldTypeFloat
	FieldTypeString
	FieldTypeBool
	FieldTypeArray
)

// String returns the string representation of the FieldType.
func (t FieldType) String() string {
	switch t {
	case FieldTypeAny:
		return "any"
	case FieldTypeInt:
		return "int"
	case FieldTypeFloat:
		return "float"
	case FieldTypeString:
		return "string"
	case FieldTypeBool:
		return "bool"
	case FieldTypeArray:
		return "array"
	default:
		return "unknown"
	}
}

// ParseFieldType parses the names produced by FieldType.String.
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(s) {
	case "any", "":
		return FieldTypeAny, nil
	case "int", "integer":
		return FieldTypeInt, nil
	case "float", "number":
		return FieldTypeFloat, nil
	case "string":
		return FieldTypeString, nil
	case "bool", "boolean":
		return FieldTypeBool, nil
	case "array":
		return FieldTypeArray, nil
	default:
		return 0, fmt.Errorf("unknown field type %q", s)
	}
}

// Schema declares the expected type of selected metadata fields. Fields not
// named by the schema are unconstrained; null is accepted for every field.
type Schema map[string]FieldType

// Validate checks that doc conforms to s. A nil schema accepts everything.
func (s Schema) Validate(doc Document) error {
	if s == nil {
		return nil
	}
	for k, v := range doc {
		expected, ok := s[k]
		if !ok {
			continue
		}
		if !checkKind(v.Kind, expected) {
			return fmt.Errorf("field %q has type %s, expected %s", k, v.Kind, expected)
		}
	}
	return nil
}

func checkKind(k Kind, expected FieldType) bool {
	if k == KindNull {
		return true
	}
	switch expected {
	case FieldTypeAny:
		return k != KindInvalid
	case FieldTypeInt:
		return k == KindInt
	case FieldTypeFloat:
		return k == KindFloat || k == KindInt
	case FieldTypeString:
		return k == KindString
	case FieldTypeBool:
		return k == KindBool
	case FieldTypeArray:
		return k == KindArray
	}
	return false
}
