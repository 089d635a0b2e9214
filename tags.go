package fast

import (
	"reflect"
	"strings"
)

// paramTags mark a struct field as a bound request input rather than part
// of the JSON body.
var paramTags = []string{"path", "query", "header", "cookie", "form"}

// bindTags are the paramTags bound from the URL/header/cookie layer.
var bindTags = []string{"path", "query", "header", "cookie"}

// structFields walks the exported fields of t, dereferencing a pointer
// type first. It reports false if t is not a struct.
func structFields(t reflect.Type, visit func(reflect.StructField) bool) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := range t.NumField() {
		if visit(t.Field(i)) {
			return true
		}
	}
	return false
}

// hasParamTags reports whether any exported field carries a parameter
// binding tag.
func hasParamTags(t reflect.Type) bool {
	return structFields(t, func(sf reflect.StructField) bool {
		if !sf.IsExported() {
			return false
		}
		for _, tag := range paramTags {
			if sf.Tag.Get(tag) != "" {
				return true
			}
		}
		return false
	})
}

// hasRawRequest reports whether the type embeds a RawRequest field.
func hasRawRequest(t reflect.Type) bool {
	return structFields(t, func(sf reflect.StructField) bool {
		return sf.Type == reflect.TypeFor[RawRequest]()
	})
}

// hasBodyField reports whether the type has an exported "Body" field.
func hasBodyField(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	_, ok := t.FieldByName("Body")
	return ok
}

// hasFormTags reports whether any exported field carries a "form" tag.
func hasFormTags(t reflect.Type) bool {
	return structFields(t, func(sf reflect.StructField) bool {
		return sf.IsExported() && sf.Tag.Get("form") != ""
	})
}

// tagOptions splits a struct tag value into its name and the remaining
// comma-separated options.
func tagOptions(tag string) (string, string) {
	name, opts, _ := strings.Cut(tag, ",")
	return name, opts
}

// tagContains reports whether a comma-separated option list contains the
// named option.
func tagContains(opts string, name string) bool {
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == name {
			return true
		}
	}
	return false
}
