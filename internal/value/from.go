package value

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"time"

	"github.com/mcncl/jsontree/internal/errors"
)

// From converts a Go value into a Value. Go maps have no insertion order, so their keys are
// sorted. Types without a JSON-tree meaning (structs, channels, ...) yield ErrUnsupportedValue.
func From(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("number %q: %w", v.String(), errors.ErrUnsupportedValue)
		}
		return Number(f), nil
	case time.Time:
		return Date(v), nil
	case *regexp.Regexp:
		return RegExp(v), nil
	case []any:
		items := make([]Value, len(v))
		for i, item := range v {
			converted, err := From(item)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = converted
		}
		return Value{kind: KindArray, items: items}, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		members := make([]Member, len(keys))
		for i, k := range keys {
			converted, err := From(v[k])
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			members[i] = Member{Key: k, Value: converted}
		}
		return Value{kind: KindObject, members: members}, nil
	}
	return fromReflect(reflect.ValueOf(x))
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Number(float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float()), nil
	case reflect.Func:
		if rv.IsNil() {
			return Null(), nil
		}
		return Function(fmt.Sprintf("func %s", rv.Type())), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return From(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null(), nil
		}
		items := make([]Value, rv.Len())
		for i := range items {
			converted, err := From(rv.Index(i).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = converted
		}
		return Value{kind: KindArray, items: items}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		if rv.IsNil() {
			return Null(), nil
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		members := make([]Member, len(keys))
		for i, k := range keys {
			converted, err := From(rv.MapIndex(k).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k.String(), err)
			}
			members[i] = Member{Key: k.String(), Value: converted}
		}
		return Value{kind: KindObject, members: members}, nil
	}
	return Value{}, fmt.Errorf("%s: %w", rv.Type(), errors.ErrUnsupportedValue)
}
