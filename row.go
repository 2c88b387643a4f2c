package report

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Field names of a report row, in declared order.
const (
	FieldName        = "name"
	FieldPrice       = "price"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldMaterial    = "material"
	FieldColor       = "color"
	FieldStock       = "stock"
	FieldCreatedAt   = "created_at"
	FieldSellerID    = "seller_id"
)

var fields = []string{
	FieldName, FieldPrice, FieldDescription, FieldCategory, FieldMaterial,
	FieldColor, FieldStock, FieldCreatedAt, FieldSellerID,
}

// Fields returns the row field names in declared order.
func Fields() []string {
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

// Row is one product as it appears in a report. The zero value of every
// field is its default, so a Row never has an absent key.
type Row struct {
	Name        string
	Price       float64
	Description string
	Category    string
	Material    string
	Color       string
	Stock       int
	CreatedAt   time.Time
	SellerID    string
}

// Value returns the field named by key. Timestamps are returned as
// ISO-8601 strings. Unknown keys return "".
func (r Row) Value(key string) any {
	switch key {
	case FieldName:
		return r.Name
	case FieldPrice:
		return r.Price
	case FieldDescription:
		return r.Description
	case FieldCategory:
		return r.Category
	case FieldMaterial:
		return r.Material
	case FieldColor:
		return r.Color
	case FieldStock:
		return r.Stock
	case FieldCreatedAt:
		return FormatTime(r.CreatedAt)
	case FieldSellerID:
		return r.SellerID
	default:
		return ""
	}
}

// Text returns the field named by key rendered as a string.
func (r Row) Text(key string) string {
	switch v := r.Value(key).(type) {
	case string:
		return v
	case float64:
		return FormatPrice(v)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprint(v)
	}
}

// FormatTime renders t as an ISO-8601 timestamp in UTC. The zero time
// renders as "".
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// FormatPrice renders p using the shortest decimal that round-trips.
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// RowFromMap builds a Row from a generic record. Absent keys take their
// defaults; keys outside [Fields] are ignored. A value that cannot be
// converted to its field's type returns an error wrapping [ErrEncoding].
func RowFromMap(m map[string]any) (Row, error) {
	var r Row
	var err error
	if r.Name, err = stringField(m, FieldName); err != nil {
		return Row{}, err
	}
	if r.Description, err = stringField(m, FieldDescription); err != nil {
		return Row{}, err
	}
	if r.Category, err = stringField(m, FieldCategory); err != nil {
		return Row{}, err
	}
	if r.Material, err = stringField(m, FieldMaterial); err != nil {
		return Row{}, err
	}
	if r.Color, err = stringField(m, FieldColor); err != nil {
		return Row{}, err
	}
	if r.SellerID, err = stringField(m, FieldSellerID); err != nil {
		return Row{}, err
	}
	if r.Price, err = floatField(m, FieldPrice); err != nil {
		return Row{}, err
	}
	if r.Stock, err = intField(m, FieldStock); err != nil {
		return Row{}, err
	}
	if r.CreatedAt, err = timeField(m, FieldCreatedAt); err != nil {
		return Row{}, err
	}
	return r, nil
}

func fieldError(key string, v any) error {
	return fmt.Errorf("%w: field %q has unsupported value of type %T", ErrEncoding, key, v)
}

func stringField(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", nil
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	case fmt.Stringer:
		return s.String(), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(s), nil
	default:
		return "", fieldError(key, v)
	}
}

func floatField(m map[string]any, key string) (float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: field %q: %w", ErrEncoding, key, err)
		}
		return f, nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: field %q: %w", ErrEncoding, key, err)
		}
		return f, nil
	default:
		return 0, fieldError(key, v)
	}
}

// intField accepts integers and integral floats or numeric strings that fit
// in an int.
func intField(m map[string]any, key string) (int, error) {
	switch n := m[key].(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		if n < math.MinInt || n > math.MaxInt {
			return 0, fmt.Errorf("%w: field %q: %d out of range", ErrEncoding, key, n)
		}
		return int(n), nil
	case uint, uint8, uint16, uint32, uint64:
		u := reflect.ValueOf(n).Uint()
		if u > math.MaxInt {
			return 0, fmt.Errorf("%w: field %q: %d out of range", ErrEncoding, key, u)
		}
		return int(u), nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return intField(map[string]any{key: i}, key)
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 0); err == nil {
			return int(i), nil
		}
	}

	f, err := floatField(m, key)
	if err != nil {
		return 0, err
	}
	// float64(math.MaxInt) rounds up to 2^63, which does not fit.
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) ||
		f < math.MinInt || f >= float64(math.MaxInt) {
		return 0, fmt.Errorf("%w: field %q: %v is not a whole number in range", ErrEncoding, key, f)
	}
	return int(f), nil
}

func timeField(m map[string]any, key string) (time.Time, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return time.Time{}, nil
	}
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case *time.Time:
		if t == nil {
			return time.Time{}, nil
		}
		return *t, nil
	case string:
		if t == "" {
			return time.Time{}, nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: field %q: %w", ErrEncoding, key, err)
		}
		return parsed, nil
	default:
		return time.Time{}, fieldError(key, v)
	}
}
