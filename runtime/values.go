package runtime

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// resolveField reads attr from value. Missing members resolve to nil.
func resolveField(value interface{}, attr string) interface{} {
	if value == nil {
		return nil
	}

	if str, ok := value.(string); ok {
		if attr == "length" {
			return utf8.RuneCountInString(str)
		}
		return nil
	}

	val := reflect.ValueOf(value)

	// Handle pointers
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		if method := val.MethodByName(exportedName(attr)); method.IsValid() {
			return callAccessor(method)
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Map:
		keyVal := reflect.ValueOf(attr)
		if !keyVal.Type().ConvertibleTo(val.Type().Key()) {
			return nil
		}
		if result := val.MapIndex(keyVal.Convert(val.Type().Key())); result.IsValid() {
			return result.Interface()
		}
	case reflect.Struct:
		// Try exact field name, then the exported spelling
		for _, name := range []string{attr, exportedName(attr)} {
			field := val.FieldByName(name)
			if field.IsValid() && field.CanInterface() {
				return field.Interface()
			}
		}
		if method := val.MethodByName(exportedName(attr)); method.IsValid() {
			return callAccessor(method)
		}
	case reflect.Slice, reflect.Array:
		if attr == "length" {
			return val.Len()
		}
	case reflect.Interface:
		return resolveField(val.Elem().Interface(), attr)
	}

	return nil
}

// resolveIndex reads value[index]. Integer-like indexes address slices,
// arrays and strings; anything else is used as a map key or field name.
func resolveIndex(value interface{}, index interface{}) interface{} {
	if value == nil || index == nil {
		return nil
	}

	val := reflect.ValueOf(value)

	// Handle pointers
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Map:
		keyVal := reflect.ValueOf(index)
		keyType := val.Type().Key()
		switch {
		case keyType.Kind() == reflect.String:
			keyVal = reflect.ValueOf(fmt.Sprint(index))
		case !keyVal.Type().ConvertibleTo(keyType):
			return nil
		}
		if result := val.MapIndex(keyVal.Convert(keyType)); result.IsValid() {
			return result.Interface()
		}
		return nil
	case reflect.Slice, reflect.Array, reflect.String:
		idx, ok := toInt(index)
		if !ok {
			if name, isString := index.(string); isString {
				return resolveField(value, name)
			}
			return nil
		}
		if idx < 0 || idx >= val.Len() {
			return nil
		}
		if val.Kind() == reflect.String {
			return string(val.String()[idx])
		}
		return val.Index(idx).Interface()
	case reflect.Struct:
		return resolveField(val.Interface(), fmt.Sprint(index))
	case reflect.Interface:
		return resolveIndex(val.Elem().Interface(), index)
	}

	return nil
}

// memberOf is the member lookup of embedded expressions. Names go through
// resolveField like path segments do; other keys index.
func memberOf(value, key interface{}) interface{} {
	if name, ok := key.(string); ok {
		return resolveField(value, name)
	}
	return resolveIndex(value, key)
}

func callAccessor(method reflect.Value) interface{} {
	typ := method.Type()
	if typ.NumIn() != 0 || typ.NumOut() == 0 {
		return method.Interface()
	}
	return method.Call(nil)[0].Interface()
}

func exportedName(attr string) string {
	r, size := utf8.DecodeRuneInString(attr)
	if r == utf8.RuneError {
		return attr
	}
	return string(unicode.ToUpper(r)) + attr[size:]
}

func toInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint:
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		return int(v), true
	case float32:
		if float32(int(v)) == v {
			return int(v), true
		}
	case float64:
		if float64(int(v)) == v {
			return int(v), true
		}
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i, true
		}
	}
	return 0, false
}

// truthy reports whether value counts as true in a condition. Empty strings,
// collections and zero numbers are false.
func truthy(value interface{}) bool {
	if value == nil {
		return false
	}

	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0 && !math.IsNaN(v)
	case float32:
		return v != 0 && !math.IsNaN(float64(v))
	}

	val := reflect.ValueOf(value)
	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return val.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return val.Uint() != 0
	case reflect.Slice, reflect.Map, reflect.Array:
		return val.Len() > 0
	case reflect.Ptr, reflect.Interface, reflect.Func, reflect.Chan:
		return !val.IsNil()
	}
	return true
}

// stringify converts a rendered value to output text. nil renders as the
// empty string.
func stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	case error:
		return v.Error()
	}
	return fmt.Sprint(value)
}

// iterate returns the elements of a slice or array, or the values of a map
// in key order. Other values are not iterable and yield nil.
func iterate(value interface{}) []interface{} {
	if value == nil {
		return nil
	}
	if items, ok := value.([]interface{}); ok {
		return items
	}

	val := reflect.ValueOf(value)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]interface{}, val.Len())
		for i := range items {
			items[i] = val.Index(i).Interface()
		}
		return items
	case reflect.Map:
		keys := sortedMapKeys(val)
		items := make([]interface{}, len(keys))
		for i, k := range keys {
			items[i] = val.MapIndex(k).Interface()
		}
		return items
	}
	return nil
}

// objectKeys enumerates the keys of value: sorted map keys, exported struct
// fields in declaration order, or slice indexes.
func objectKeys(value interface{}) []interface{} {
	if value == nil {
		return nil
	}

	val := reflect.ValueOf(value)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Map:
		keys := sortedMapKeys(val)
		out := make([]interface{}, len(keys))
		for i, k := range keys {
			out[i] = k.Interface()
		}
		return out
	case reflect.Struct:
		typ := val.Type()
		var out []interface{}
		for i := 0; i < typ.NumField(); i++ {
			if typ.Field(i).IsExported() {
				out = append(out, typ.Field(i).Name)
			}
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]interface{}, val.Len())
		for i := range out {
			out[i] = i
		}
		return out
	case reflect.Interface:
		return objectKeys(val.Elem().Interface())
	}
	return nil
}

func sortedMapKeys(val reflect.Value) []reflect.Value {
	keys := val.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})
	return keys
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// EscapeHTML replaces &, <, > and " with their entities. Single quotes are
// left alone.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
