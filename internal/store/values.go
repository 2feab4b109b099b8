package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// typeOf maps a decoded JSON value to a column type.
func typeOf(v any) ColumnType {
	switch val := v.(type) {
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInteger
	case float32, float64:
		return TypeFloat
	case json.Number:
		if _, err := val.Int64(); err == nil {
			return TypeInteger
		}
		return TypeFloat
	default:
		return TypeText
	}
}

// sqlValue converts a decoded JSON value into a value the sqlite driver binds.
// Objects and arrays become canonical JSON text.
func sqlValue(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case bool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil
	case string:
		return val, nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val, err)
		}
		return f, nil
	case int:
		return int64(val), nil
	case int8, int16, int32, int64, uint8, uint16, uint32, float32, float64:
		return val, nil
	case uint:
		if uint64(val) > math.MaxInt64 {
			return strconv.FormatUint(uint64(val), 10), nil
		}
		return int64(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return strconv.FormatUint(val, 10), nil
		}
		return int64(val), nil
	case map[string]any, Record, []any:
		data, err := marshalCanonical(val)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("unsupported value type %T: %w", v, err)
		}
		return string(data), nil
	}
}

// marshalCanonical produces deterministic JSON for nested values:
// object keys sorted, strings NFC normalized, no HTML escaping.
// Re-syncing an unchanged object therefore writes byte-identical text.
func marshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case string:
		return writeCanonicalString(buf, val)
	case json.Number:
		buf.WriteString(val.String())
	case Record:
		return writeCanonical(buf, map[string]any(val))
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonicalString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("object[%q]: %w", k, err)
			}
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Errorf("unsupported type for canonical JSON: %T", v)
		}
		buf.Write(data)
	}
	return nil
}

func writeCanonicalString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	// json.Encoder adds trailing newline, remove it
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}
