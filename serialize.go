package fast

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// ContextSerializer lets a response value take over its own serialization
// when the route carries a serialization context. The returned value is
// written as-is in place of the model-driven output.
type ContextSerializer interface {
	SerializeWithContext(sctx map[string]any) (any, error)
}

// ResponseValidationError reports handler output that does not conform to
// the route's declared response model. It surfaces to the client as a 500:
// the request was fine, the server produced bad data.
type ResponseValidationError struct {
	Errors []ValidationError
}

func (e *ResponseValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("response validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("response validation: %d fields failed", len(e.Errors))
}

// StatusCode returns the HTTP status code.
func (e *ResponseValidationError) StatusCode() int { return 500 }

// serializer validates handler output against a field tree and rewrites it
// into wire shape: alias keys, coerced scalars, defaults filled in.
type serializer struct {
	root         *Field
	excludeUnset bool
	sctx         map[string]any
}

func (s *serializer) serialize(v any) (any, error) {
	var errs []ValidationError
	out := s.walk(s.root, v, s.root.Name, &errs)
	if len(errs) > 0 {
		return nil, &ResponseValidationError{Errors: errs}
	}
	return out, nil
}

func (s *serializer) walk(f *Field, v any, path string, errs *[]ValidationError) any {
	if v == nil {
		return nil
	}

	if s.sctx != nil {
		if cs, ok := v.(ContextSerializer); ok {
			out, err := cs.SerializeWithContext(s.sctx)
			if err != nil {
				*errs = append(*errs, ValidationError{Field: path, Message: err.Error()})
				return nil
			}
			return out
		}
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
		v = rv.Interface()
	}

	//exhaustive:ignore
	switch f.Type.Kind() {
	case reflect.Struct:
		return s.walkStruct(f, rv, path, errs)
	case reflect.Slice, reflect.Array:
		return s.walkList(f, rv, path, errs)
	case reflect.Map:
		return s.walkMap(f, rv, path, errs)
	default:
		return coerceScalar(f, v, path, errs)
	}
}

// walkStruct accepts either a value of the model's own struct type or a
// map keyed by field name or alias. Map input is where exclude-unset
// applies: a missing key is unset, a present key is explicit.
func (s *serializer) walkStruct(f *Field, rv reflect.Value, path string, errs *[]ValidationError) any {
	out := make(map[string]any, len(f.Fields))

	switch rv.Kind() {
	case reflect.Map:
		for _, sub := range f.Fields {
			val, set := mapLookup(rv, sub.Name, sub.JSONName, sub.Alias)
			if !set {
				switch {
				case s.excludeUnset:
				case sub.Default != nil:
					out[sub.WireName()] = sub.Default
				case sub.Required:
					*errs = append(*errs, ValidationError{
						Field:   joinPath(path, sub.WireName()),
						Message: "field required",
					})
				}
				continue
			}
			out[sub.WireName()] = s.walk(sub, val, joinPath(path, sub.WireName()), errs)
		}

	case reflect.Struct:
		for _, sub := range f.Fields {
			fv := rv.FieldByName(sub.Name)
			if !fv.IsValid() {
				if sub.Required {
					*errs = append(*errs, ValidationError{
						Field:   joinPath(path, sub.WireName()),
						Message: "field required",
					})
				}
				continue
			}
			out[sub.WireName()] = s.walk(sub, fv.Interface(), joinPath(path, sub.WireName()), errs)
		}

	default:
		*errs = append(*errs, ValidationError{
			Field:   path,
			Message: fmt.Sprintf("expected object, got %s", rv.Kind()),
			Value:   rv.Interface(),
		})
		return nil
	}

	return out
}

func (s *serializer) walkList(f *Field, rv reflect.Value, path string, errs *[]ValidationError) any {
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		*errs = append(*errs, ValidationError{
			Field:   path,
			Message: fmt.Sprintf("expected array, got %s", rv.Kind()),
			Value:   rv.Interface(),
		})
		return nil
	}
	out := make([]any, rv.Len())
	for i := range rv.Len() {
		out[i] = s.walk(f.Items, rv.Index(i).Interface(), fmt.Sprintf("%s[%d]", path, i), errs)
	}
	return out
}

func (s *serializer) walkMap(f *Field, rv reflect.Value, path string, errs *[]ValidationError) any {
	if rv.Kind() != reflect.Map {
		*errs = append(*errs, ValidationError{
			Field:   path,
			Message: fmt.Sprintf("expected map, got %s", rv.Kind()),
			Value:   rv.Interface(),
		})
		return nil
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key := fmt.Sprint(iter.Key().Interface())
		out[key] = s.walk(f.Value, iter.Value().Interface(), joinPath(path, key), errs)
	}
	return out
}

// coerceScalar converts loosely-typed handler output into the declared
// scalar type. Numeric strings parse, integral floats narrow to ints, and
// anything else is a validation failure.
func coerceScalar(f *Field, v any, path string, errs *[]ValidationError) any {
	fail := func(want string) any {
		*errs = append(*errs, ValidationError{
			Field:   path,
			Message: fmt.Sprintf("expected %s, got %T", want, v),
			Value:   v,
		})
		return nil
	}

	//exhaustive:ignore
	switch f.Type.Kind() {
	case reflect.String:
		switch x := v.(type) {
		case string:
			return x
		}
		return fail("string")

	case reflect.Float32, reflect.Float64:
		switch x := v.(type) {
		case float64:
			return x
		case float32:
			return float64(x)
		case int:
			return float64(x)
		case int64:
			return float64(x)
		case string:
			n, err := strconv.ParseFloat(x, 64)
			if err != nil {
				return fail("number")
			}
			return n
		}
		return fail("number")

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		switch x := v.(type) {
		case int:
			return int64(x)
		case int64:
			return x
		case float64:
			if x != math.Trunc(x) {
				return fail("integer")
			}
			return int64(x)
		case string:
			n, err := strconv.ParseInt(x, 10, 64)
			if err != nil {
				return fail("integer")
			}
			return n
		}
		return fail("integer")

	case reflect.Bool:
		switch x := v.(type) {
		case bool:
			return x
		case string:
			b, err := strconv.ParseBool(x)
			if err != nil {
				return fail("boolean")
			}
			return b
		}
		return fail("boolean")
	}

	// Interface-typed or otherwise unconstrained: pass through.
	return v
}

func mapLookup(rv reflect.Value, keys ...string) (any, bool) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		mv := rv.MapIndex(reflect.ValueOf(key))
		if mv.IsValid() {
			return mv.Interface(), true
		}
	}
	return nil, false
}

func joinPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}
