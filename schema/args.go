package schema

import "fmt"

// Args are positional call arguments, already converted to the Go types
// matching each parameter's Kind (int for KindInt, float32 for KindFloat32,
// the host value for class and struct kinds, and so on).
type Args []any

// Len returns the number of arguments
func (a Args) Len() int { return len(a) }

// Value returns argument i, or nil when out of range
func (a Args) Value(i int) any {
	if i < 0 || i >= len(a) {
		return nil
	}
	return a[i]
}

// String returns argument i as a string
func (a Args) String(i int) string {
	switch v := a.Value(i).(type) {
	case string:
		return v
	case nil:
		return ""
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Bool returns argument i as a bool
func (a Args) Bool(i int) bool {
	v, _ := a.Value(i).(bool)
	return v
}

// Int64 returns argument i as an int64, truncating floats
func (a Args) Int64(i int) int64 {
	switch v := a.Value(i).(type) {
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case float32:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// Int returns argument i as an int
func (a Args) Int(i int) int {
	return int(a.Int64(i))
}

// Float64 returns argument i as a float64
func (a Args) Float64(i int) float64 {
	switch v := a.Value(i).(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	}
	return float64(a.Int64(i))
}

// Float32 returns argument i as a float32
func (a Args) Float32(i int) float32 {
	return float32(a.Float64(i))
}
