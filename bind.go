package fast

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"
)

// bindDeclaredParams populates target from the request according to its
// declared parameter list. It is the binding path for request types that
// implement ParamDeclarer; tag-based binding has already run, so declared
// params override or supplement tagged fields.
func bindDeclaredParams(target any, r *http.Request, params []Param) error {
	v := reflect.ValueOf(target)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	var (
		errs     []ValidationError
		body     map[string]json.RawMessage
		bodyRead bool
		depCache map[string]any
	)

	readBody := func() map[string]json.RawMessage {
		if !bodyRead {
			bodyRead = true
			if r.Body != nil && r.ContentLength != 0 {
				//nolint:errcheck // malformed bodies surface as missing params
				json.NewDecoder(r.Body).Decode(&body)
			}
		}
		return body
	}

	for _, p := range params {
		field := fieldForParam(v, p)
		if !field.IsValid() {
			panic(fmt.Errorf("%w: %s declares parameter %q but has no matching field",
				ErrConfig, v.Type(), p.Name))
		}

		switch p.Source {
		case SourcePath, SourceQuery, SourceHeader, SourceCookie, SourceForm:
			bindStringParam(field, r, p, &errs)

		case SourceBody:
			bindBodyParam(field, readBody(), p, &errs)

		case SourceFile:
			if err := bindFileParam(field, r, p, &errs); err != nil {
				return err
			}

		case SourceDependency, SourceSecurity:
			if depCache == nil {
				depCache = make(map[string]any)
			}
			if err := resolveDependency(field, r, p, depCache); err != nil {
				return err
			}
		}
	}

	if len(errs) > 0 {
		return &ProblemDetail{
			Type:   "about:blank",
			Title:  "Validation Failed",
			Status: http.StatusBadRequest,
			Detail: fmt.Sprintf("%d parameter violation(s)", len(errs)),
			Errors: errs,
		}
	}

	return nil
}

func bindStringParam(field reflect.Value, r *http.Request, p Param, errs *[]ValidationError) {
	raw, present := lookupParamValue(r, p)

	// An explicitly sent empty value ("?q=") binds as the empty string and
	// goes through constraint checks; only a truly absent parameter falls
	// back to the default. Path lookups report empty as absent already.
	if !present {
		switch {
		case p.HasDefault():
			if p.Default != nil {
				assignParamValue(field, p.Default)
			}
		case p.Required():
			*errs = append(*errs, ValidationError{
				Field:   p.wireName(),
				Message: fmt.Sprintf("%s parameter required", p.Source),
			})
		}
		return
	}

	if err := setFieldValue(field, raw); err != nil {
		*errs = append(*errs, ValidationError{
			Field:   p.wireName(),
			Message: err.Error(),
			Value:   raw,
		})
		return
	}

	checkParamConstraints(p, field, errs)
}

func lookupParamValue(r *http.Request, p Param) (string, bool) {
	name := p.wireName()

	//exhaustive:ignore
	switch p.Source {
	case SourcePath:
		val := r.PathValue(name)
		return val, val != ""
	case SourceQuery:
		if !r.URL.Query().Has(name) {
			return "", false
		}
		return r.URL.Query().Get(name), true
	case SourceHeader:
		vals := r.Header.Values(name)
		if len(vals) == 0 {
			return "", false
		}
		return vals[0], true
	case SourceCookie:
		c, err := r.Cookie(name)
		if err != nil {
			return "", false
		}
		return c.Value, true
	case SourceForm:
		if err := r.ParseForm(); err != nil {
			return "", false
		}
		if !r.PostForm.Has(name) {
			return "", false
		}
		return r.PostForm.Get(name), true
	}
	return "", false
}

// bindBodyParam extracts a declared body parameter from the decoded JSON
// object. Embedded params read the key named after the parameter; a single
// non-embedded param consumes the whole object.
func bindBodyParam(field reflect.Value, body map[string]json.RawMessage, p Param, errs *[]ValidationError) {
	var raw json.RawMessage
	if p.Embed {
		raw = body[p.FieldName()]
	} else if body != nil {
		buf, err := json.Marshal(body)
		if err == nil {
			raw = buf
		}
	}

	if raw == nil {
		switch {
		case p.HasDefault():
			if p.Default != nil {
				assignParamValue(field, p.Default)
			}
		case p.Required():
			*errs = append(*errs, ValidationError{
				Field:   p.FieldName(),
				Message: "body parameter required",
			})
		}
		return
	}

	if err := json.Unmarshal(raw, field.Addr().Interface()); err != nil {
		*errs = append(*errs, ValidationError{
			Field:   p.FieldName(),
			Message: err.Error(),
		})
		return
	}

	checkParamConstraints(p, field, errs)
}

func bindFileParam(field reflect.Value, r *http.Request, p Param, errs *[]ValidationError) error {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBindForm, p.wireName(), err)
	}

	file, header, err := r.FormFile(p.wireName())
	if errors.Is(err, http.ErrMissingFile) {
		if p.Required() {
			*errs = append(*errs, ValidationError{
				Field:   p.wireName(),
				Message: "file parameter required",
			})
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBindForm, p.wireName(), err)
	}

	field.Set(reflect.ValueOf(FileUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Header:   header,
		file:     file,
	}))
	return nil
}

// resolveDependency runs a declared resolver and injects its result.
// Results are memoized per request by parameter name so shared dependencies
// run once; a NoCache resolver neither reads nor populates the memo.
// A failed security dependency rejects the request with 401 unless the
// error carries its own status.
func resolveDependency(field reflect.Value, r *http.Request, p Param, cache map[string]any) error {
	result, cached := cache[p.Name]
	if !cached || !p.UseCache {
		var err error
		result, err = p.Resolve(r.Context(), r)
		if err != nil {
			if p.Source == SourceSecurity {
				var sc StatusCoder
				if errors.As(err, &sc) {
					return err
				}
				return Error(http.StatusUnauthorized, err.Error())
			}
			return err
		}
		if p.UseCache {
			cache[p.Name] = result
		}
	}

	if result == nil {
		return nil
	}
	assignParamValue(field, result)
	return nil
}

// checkParamConstraints validates a bound value against the parameter's
// declared constraints, in the same shape constraint tags report.
func checkParamConstraints(p Param, field reflect.Value, errs *[]ValidationError) {
	name := p.wireName()

	if isNumericKind(field.Kind()) {
		n := toFloat64(field)
		if p.GT != nil && n <= *p.GT {
			*errs = append(*errs, ValidationError{
				Field: name, Message: fmt.Sprintf("must be greater than %v", *p.GT), Value: n,
			})
		}
		if p.GE != nil && n < *p.GE {
			*errs = append(*errs, ValidationError{
				Field: name, Message: fmt.Sprintf("must be at least %v", *p.GE), Value: n,
			})
		}
		if p.LT != nil && n >= *p.LT {
			*errs = append(*errs, ValidationError{
				Field: name, Message: fmt.Sprintf("must be less than %v", *p.LT), Value: n,
			})
		}
		if p.LE != nil && n > *p.LE {
			*errs = append(*errs, ValidationError{
				Field: name, Message: fmt.Sprintf("must be at most %v", *p.LE), Value: n,
			})
		}
	}

	if field.Kind() == reflect.String {
		s := field.String()
		if p.MinLength != nil && len(s) < *p.MinLength {
			*errs = append(*errs, ValidationError{
				Field: name, Message: fmt.Sprintf("must be at least %d characters", *p.MinLength), Value: s,
			})
		}
		if p.MaxLength != nil && len(s) > *p.MaxLength {
			*errs = append(*errs, ValidationError{
				Field: name, Message: fmt.Sprintf("must be at most %d characters", *p.MaxLength), Value: s,
			})
		}
		if p.Pattern != "" {
			if matched, err := regexp.MatchString(p.Pattern, s); err == nil && !matched {
				*errs = append(*errs, ValidationError{
					Field: name, Message: fmt.Sprintf("must match pattern %s", p.Pattern), Value: s,
				})
			}
		}
	}
}

// fieldForParam locates the struct field a parameter binds to. Matching is
// case-insensitive with underscores ignored, so user_id finds UserID.
func fieldForParam(v reflect.Value, p Param) reflect.Value {
	want := normalizeFieldName(p.FieldName())
	t := v.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if normalizeFieldName(f.Name) == want {
			return v.Field(i)
		}
	}
	return reflect.Value{}
}

func normalizeFieldName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}

// assignParamValue sets field from a resolved or default value, converting
// when the dynamic type differs but is convertible.
func assignParamValue(field reflect.Value, v any) {
	rv := reflect.ValueOf(v)
	switch {
	case rv.Type().AssignableTo(field.Type()):
		field.Set(rv)
	case rv.Type().ConvertibleTo(field.Type()):
		field.Set(rv.Convert(field.Type()))
	}
}
