package paraffin

import (
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	default:
		return "unknown"
	}
}

// BindHint is the parameter type a Value is bound with.
type BindHint uint8

const (
	HintGeneric BindHint = iota
	HintInt
)

// Value is a single column value. The zero Value is null.
type Value struct {
	kind Kind
	i    int64
	f    float64
	b    bool
	s    string
	t    time.Time
}

func Null() Value            { return Value{} }
func Int(v int64) Value      { return Value{kind: KindInt, i: v} }
func Float(v float64) Value  { return Value{kind: KindFloat, f: v} }
func Bool(v bool) Value      { return Value{kind: KindBool, b: v} }
func String(v string) Value  { return Value{kind: KindString, s: v} }
func Time(v time.Time) Value { return Value{kind: KindTime, t: v} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Hint reports how v is bound: integers with an integer hint, everything
// else, null included, through the driver's generic path.
func (v Value) Hint() BindHint {
	if v.kind == KindInt {
		return HintInt
	}
	return HintGeneric
}

func (v Value) Int64() (int64, bool) {
	return v.i, v.kind == KindInt
}

func (v Value) Float64() (float64, bool) {
	return v.f, v.kind == KindFloat
}

func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == KindBool
}

func (v Value) Str() (string, bool) {
	return v.s, v.kind == KindString
}

func (v Value) Time() (time.Time, bool) {
	return v.t, v.kind == KindTime
}

// Interface returns the Go value held by v, nil for null.
func (v Value) Interface() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindString:
		return v.s
	case KindTime:
		return v.t
	default:
		return nil
	}
}

// Value implements driver.Valuer so a Value can be passed directly as a
// statement argument.
func (v Value) Value() (driver.Value, error) {
	return v.Interface(), nil
}

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindBool:
		return v.b == o.b
	case KindString:
		return v.s == o.s
	case KindTime:
		return v.t.Equal(o.t)
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindString:
		return v.s
	case KindTime:
		return v.t.Format(time.RFC3339Nano)
	default:
		return "NULL"
	}
}

// ValueOf converts a Go value into a Value. Pointers are dereferenced and
// driver.Valuer implementations (null.String, sql.NullInt64, ...) are
// resolved first.
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case []byte:
		if t == nil {
			return Null(), nil
		}
		return String(string(t)), nil
	case bool:
		return Bool(t), nil
	case time.Time:
		return Time(t), nil
	case int:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case float64:
		return Float(t), nil
	case driver.Valuer:
		rv := reflect.ValueOf(x)
		if rv.Kind() == reflect.Ptr && rv.IsNil() {
			return Null(), nil
		}

		dv, err := t.Value()
		if err != nil {
			return Null(), err
		}

		if _, again := dv.(driver.Valuer); again {
			return Null(), fmt.Errorf("%w: %T", ErrUnsupportedValue, x)
		}

		return ValueOf(dv)
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return Null(), nil
		}
		return ValueOf(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Null(), fmt.Errorf("%w: %d overflows int64", ErrUnsupportedValue, u)
		}
		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	}

	return Null(), fmt.Errorf("%w: %T", ErrUnsupportedValue, x)
}

// valueFromDriver converts a value scanned by the driver. Anything the
// connection hands back that ValueOf does not know is kept as its string
// form.
func valueFromDriver(x any) Value {
	v, err := ValueOf(x)
	if err != nil {
		return String(fmt.Sprint(x))
	}
	return v
}

// toInt64 coerces an id for an IN-list.
func toInt64(x any) (int64, error) {
	v, err := ValueOf(x)
	if err != nil {
		return 0, err
	}

	switch v.kind {
	case KindInt:
		return v.i, nil
	case KindFloat:
		if v.f == float64(int64(v.f)) {
			return int64(v.f), nil
		}
	case KindString:
		if n, err := strconv.ParseInt(v.s, 10, 64); err == nil {
			return n, nil
		}
	}

	return 0, fmt.Errorf("%w: %v", ErrNonNumericID, x)
}
