package fast

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"time"
)

// maxMultipartMemory caps in-memory multipart form parsing at 32 MB.
const maxMultipartMemory = 32 << 20

// requestCategory describes how a request type is decoded.
type requestCategory int

const (
	catVoid     requestCategory = iota // Void, nothing to decode
	catBodyOnly                        // whole struct is the body
	catParams                          // tagged params only, no body
	catMixed                           // tagged params plus a Body field
	catForm                            // multipart form tags
)

func classifyRequest(t reflect.Type) requestCategory {
	switch {
	case t == reflect.TypeFor[Void]():
		return catVoid
	case hasFormTags(t):
		return catForm
	case hasBodyField(t):
		return catMixed
	case hasParamTags(t) || hasRawRequest(t):
		return catParams
	default:
		return catBodyOnly
	}
}

// decodeRequest allocates a Req and populates it from the HTTP request:
// tagged params first, then the body per the request's category.
func decodeRequest[Req any](r *http.Request, codecs *codecRegistry, params []Param) (*Req, error) {
	req := new(Req)
	cat := classifyRequest(reflect.TypeFor[Req]())
	if cat == catVoid {
		return req, nil
	}

	if err := bindParams(req, r); err != nil {
		return nil, err
	}

	// Declared body, form, and file params own the request body; the
	// declared binder consumes it after tag binding.
	if paramsOwnBody(params) {
		return req, nil
	}

	switch cat {
	case catBodyOnly:
		if err := decodeBody(r, codecs, req); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBindBody, err)
		}
	case catMixed:
		body := reflect.ValueOf(req).Elem().FieldByName("Body").Addr().Interface()
		if err := decodeBody(r, codecs, body); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBindBody, err)
		}
	case catForm:
		if err := bindFormFields(req, r); err != nil {
			return nil, err
		}
	}

	return req, nil
}

// paramsOwnBody reports whether declared parameters will consume the
// request body themselves.
func paramsOwnBody(params []Param) bool {
	for _, p := range params {
		//exhaustive:ignore
		switch p.Source {
		case SourceBody, SourceForm, SourceFile:
			return true
		}
	}
	return false
}

// tagSource is one place a tagged struct field can bind from. Path values
// never fall back to the default tag: a matched route always has them.
type tagSource struct {
	tag         string
	sentinel    error
	allowsDflt  bool
	lookupValue func(r *http.Request, name string) string
}

var tagSources = []tagSource{
	{"path", ErrBindPath, false, func(r *http.Request, name string) string {
		return r.PathValue(name)
	}},
	{"query", ErrBindQuery, true, func(r *http.Request, name string) string {
		return r.URL.Query().Get(name)
	}},
	{"header", ErrBindHeader, true, func(r *http.Request, name string) string {
		return r.Header.Get(name)
	}},
	{"cookie", ErrBindCookie, true, func(r *http.Request, name string) string {
		c, err := r.Cookie(name)
		if err != nil {
			return ""
		}
		return c.Value
	}},
}

// bindParams fills path, query, header, and cookie tagged fields and
// injects the request into an embedded RawRequest.
func bindParams(target any, r *http.Request) error {
	v := reflect.ValueOf(target)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	t := v.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() || sf.Name == "Body" {
			continue
		}

		field := v.Field(i)

		if sf.Type == reflect.TypeFor[RawRequest]() {
			field.Set(reflect.ValueOf(RawRequest{Request: r}))
			continue
		}

		for _, src := range tagSources {
			name := sf.Tag.Get(src.tag)
			if name == "" {
				continue
			}
			val := src.lookupValue(r, name)
			if val == "" && src.allowsDflt {
				val = sf.Tag.Get("default")
			}
			if val == "" {
				continue
			}
			if err := setFieldValue(field, val); err != nil {
				return fmt.Errorf("%w: %s: %w", src.sentinel, name, err)
			}
		}
	}

	return nil
}

// bindFormFields parses a multipart form and fills `form`-tagged fields,
// including FileUpload and []FileUpload file fields.
func bindFormFields(target any, r *http.Request) error {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return fmt.Errorf("%w: %w", ErrBindForm, err)
	}

	v := reflect.ValueOf(target)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	t := v.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Tag.Get("form")
		if name == "" {
			continue
		}

		field := v.Field(i)

		switch sf.Type {
		case reflect.TypeFor[FileUpload]():
			upload, err := formFile(r, name)
			if err != nil {
				return err
			}
			if upload != nil {
				field.Set(reflect.ValueOf(*upload))
			}
		case reflect.TypeFor[[]FileUpload]():
			uploads, err := formFiles(r, name)
			if err != nil {
				return err
			}
			if uploads != nil {
				field.Set(reflect.ValueOf(uploads))
			}
		default:
			if val := r.FormValue(name); val != "" {
				if err := setFieldValue(field, val); err != nil {
					return fmt.Errorf("%w: %s: %w", ErrBindForm, name, err)
				}
			}
		}
	}

	return nil
}

// formFile returns the named upload, or nil when the file is absent so
// optional file fields keep their zero value.
func formFile(r *http.Request, name string) (*FileUpload, error) {
	file, header, err := r.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBindForm, name, err)
	}
	return &FileUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Header:   header,
		file:     file,
	}, nil
}

func formFiles(r *http.Request, name string) ([]FileUpload, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[name]) == 0 {
		return nil, nil
	}
	headers := r.MultipartForm.File[name]
	uploads := make([]FileUpload, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrBindForm, name, err)
		}
		uploads = append(uploads, FileUpload{
			Filename: header.Filename,
			Size:     header.Size,
			Header:   header,
			file:     file,
		})
	}
	return uploads, nil
}

// setFieldValue assigns a string to a struct field, parsing it per the
// field's type.
func setFieldValue(field reflect.Value, value string) error {
	if field.Type() == reflect.TypeFor[time.Duration]() {
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(d))
		return nil
	}

	//exhaustive:ignore
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Float64:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported type: %s", field.Type())
	}
	return nil
}

// decodeBody decodes the request body with the decoder registered for the
// request's Content-Type. An unrecognized content type is a bind error.
func decodeBody(r *http.Request, codecs *codecRegistry, target any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec, ok := codecs.decoderFor(r.Header.Get("Content-Type"))
	if !ok {
		return fmt.Errorf("unsupported content type %q", r.Header.Get("Content-Type"))
	}
	return dec.Decode(r.Body, target)
}
