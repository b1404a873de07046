package wire

import (
	"fmt"
	"strings"
)

// ValueKind is a scalar wire type a schema field can declare.
type ValueKind int

const (
	KindInt ValueKind = iota
	KindFloat
	KindBool
	KindString
)

func (k ValueKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// fieldSpec is either a scalar kind or a nested object schema. Exactly one
// of the two is set.
type fieldSpec struct {
	kind   ValueKind
	nested schema
	isLeaf bool
}

// schema is the authoritative shape of one action's payload: a fixed table
// of required keys with declared scalar types or nested sub-schemas. It is
// the Go equivalent of messages_rx.py's payload_template dicts.
type schema map[string]fieldSpec

func leaf(k ValueKind) fieldSpec   { return fieldSpec{kind: k, isLeaf: true} }
func nest(s schema) fieldSpec      { return fieldSpec{nested: s, isLeaf: false} }

// SchemaError reports a schema violation: a missing key or a type mismatch.
type SchemaError struct {
	Key      string
	Expected string
	Observed string
}

func (e *SchemaError) Error() string {
	if e.Observed == "" {
		return fmt.Sprintf("missing required key %q", e.Key)
	}
	return fmt.Sprintf("key %q: expected %s, observed %s", e.Key, e.Expected, e.Observed)
}

// jsonNumberIsInt reports whether a decoded json.Number's literal form is an
// integer (no fractional part or exponent), matching the int/float
// distinction the original Python implementation gets for free from
// json.loads.
func jsonNumberIsInt(lit string) bool {
	return !strings.ContainsAny(lit, ".eE")
}

// validate walks payload against s, returning a copy of payload restricted
// to (and coerced to native Go types for) the schema's declared keys. Any
// missing key or type mismatch is a hard parse failure naming the offending
// key and observed type, per spec.md §4.1/§7 kind 1.
func validate(payload map[string]any, s schema) (map[string]any, error) {
	out := make(map[string]any, len(s))
	for key, spec := range s {
		val, ok := payload[key]
		if !ok {
			return nil, &SchemaError{Key: key}
		}

		if !spec.isLeaf {
			sub, ok := val.(map[string]any)
			if !ok {
				return nil, &SchemaError{Key: key, Expected: "object", Observed: goTypeName(val)}
			}
			parsed, err := validate(sub, spec.nested)
			if err != nil {
				return nil, err
			}
			out[key] = parsed
			continue
		}

		coerced, ok := coerceLeaf(val, spec.kind)
		if !ok {
			return nil, &SchemaError{Key: key, Expected: spec.kind.String(), Observed: goTypeName(val)}
		}
		out[key] = coerced
	}
	return out, nil
}

func coerceLeaf(val any, kind ValueKind) (any, bool) {
	switch kind {
	case KindBool:
		b, ok := val.(bool)
		return b, ok
	case KindString:
		s, ok := val.(string)
		return s, ok
	case KindInt:
		n, ok := val.(jsonNumber)
		if !ok || !jsonNumberIsInt(n.String()) {
			return nil, false
		}
		i, err := n.Int64()
		if err != nil {
			return nil, false
		}
		return int(i), true
	case KindFloat:
		n, ok := val.(jsonNumber)
		if !ok {
			return nil, false
		}
		f, err := n.Float64()
		if err != nil {
			return nil, false
		}
		return f, true
	default:
		return nil, false
	}
}

func goTypeName(v any) string {
	switch v.(type) {
	case bool:
		return "bool"
	case string:
		return "string"
	case jsonNumber:
		return "number"
	case map[string]any:
		return "object"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
