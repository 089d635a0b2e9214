package fast

import (
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// validateConstraints walks the request struct and checks every constraint
// tag (minLength, maxLength, pattern, enum, minimum, maximum, minItems,
// maxItems) against the bound values. All violations are collected into a
// single ProblemDetail so the client sees the full list at once.
func validateConstraints(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	var violations []ValidationError
	walkConstraints(rv, "", &violations)
	if len(violations) == 0 {
		return nil
	}

	return &ProblemDetail{
		Type:   "about:blank",
		Title:  "Validation Failed",
		Status: http.StatusBadRequest,
		Detail: fmt.Sprintf("%d constraint violation(s)", len(violations)),
		Errors: violations,
	}
}

func walkConstraints(rv reflect.Value, prefix string, out *[]ValidationError) {
	t := rv.Type()

	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() || sf.Type == reflect.TypeFor[RawRequest]() {
			continue
		}

		name := jsonFieldName(sf)
		if name == "-" {
			continue
		}
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}

		fv := rv.Field(i)

		// The Body field is reported under the "body" prefix rather than
		// its own field name.
		if sf.Name == "Body" && sf.Type.Kind() == reflect.Struct {
			walkConstraints(fv, "body", out)
			continue
		}

		checkConstraintTags(sf.Tag, fv, path, out)

		if fv.Kind() == reflect.Struct && !isParamField(sf) {
			walkConstraints(fv, path, out)
		}
	}
}

// checkConstraintTags applies the constraint tags relevant to the value's
// kind. Tags that do not apply to the kind are ignored, as are tags with
// unparseable bounds.
func checkConstraintTags(tag reflect.StructTag, fv reflect.Value, path string, out *[]ValidationError) {
	switch {
	case fv.Kind() == reflect.String:
		checkStringTags(tag, fv.String(), path, out)
	case isNumericKind(fv.Kind()):
		checkNumericTags(tag, toFloat64(fv), path, out)
	case fv.Kind() == reflect.Slice:
		checkSliceTags(tag, fv.Len(), path, out)
	}
}

func checkStringTags(tag reflect.StructTag, val, path string, out *[]ValidationError) {
	if raw := tag.Get("minLength"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && len(val) < n {
			*out = append(*out, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("must be at least %d characters", n),
				Value:   val,
			})
		}
	}
	if raw := tag.Get("maxLength"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && len(val) > n {
			*out = append(*out, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("must be at most %d characters", n),
				Value:   val,
			})
		}
	}
	if raw := tag.Get("pattern"); raw != "" {
		if ok, err := regexp.MatchString(raw, val); err == nil && !ok {
			*out = append(*out, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("must match pattern %s", raw),
				Value:   val,
			})
		}
	}
	if raw := tag.Get("enum"); raw != "" {
		allowed := strings.Split(raw, ",")
		ok := false
		for _, candidate := range allowed {
			if candidate == val {
				ok = true
				break
			}
		}
		if !ok {
			*out = append(*out, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("must be one of [%s]", raw),
				Value:   val,
			})
		}
	}
}

func checkNumericTags(tag reflect.StructTag, val float64, path string, out *[]ValidationError) {
	if raw := tag.Get("minimum"); raw != "" {
		if lower, err := strconv.ParseFloat(raw, 64); err == nil && val < lower {
			*out = append(*out, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("must be at least %s", raw),
				Value:   val,
			})
		}
	}
	if raw := tag.Get("maximum"); raw != "" {
		if upper, err := strconv.ParseFloat(raw, 64); err == nil && val > upper {
			*out = append(*out, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("must be at most %s", raw),
				Value:   val,
			})
		}
	}
}

func checkSliceTags(tag reflect.StructTag, length int, path string, out *[]ValidationError) {
	if raw := tag.Get("minItems"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && length < n {
			*out = append(*out, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("must have at least %d items", n),
				Value:   length,
			})
		}
	}
	if raw := tag.Get("maxItems"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && length > n {
			*out = append(*out, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("must have at most %d items", n),
				Value:   length,
			})
		}
	}
}

func isNumericKind(k reflect.Kind) bool {
	//exhaustive:ignore
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func toFloat64(v reflect.Value) float64 {
	//exhaustive:ignore
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	default: // float32, float64
		return v.Float()
	}
}
