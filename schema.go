package fast

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// JSONSchema represents a JSON Schema object (subset for OpenAPI 3.1).
type JSONSchema struct {
	Type        string                `json:"type,omitempty"`
	Format      string                `json:"format,omitempty"`
	Properties  map[string]JSONSchema `json:"properties,omitempty"`
	Items       *JSONSchema           `json:"items,omitempty"`
	Required    []string              `json:"required,omitempty"`
	Description string                `json:"description,omitempty"`
	Enum        []string              `json:"enum,omitempty"`
	Ref         string                `json:"$ref,omitempty"`

	// Constraint keywords, populated from struct tags or Param declarations.
	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMinimum *float64 `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *float64 `json:"exclusiveMaximum,omitempty"`
	MinLength        *int     `json:"minLength,omitempty"`
	MaxLength        *int     `json:"maxLength,omitempty"`
	Pattern          string   `json:"pattern,omitempty"`
	MinItems         *int     `json:"minItems,omitempty"`
	MaxItems         *int     `json:"maxItems,omitempty"`

	Default         any    `json:"default,omitempty"`
	Example         any    `json:"example,omitempty"`
	ContentEncoding string `json:"contentEncoding,omitempty"`
	Deprecated      bool   `json:"deprecated,omitempty"`
	Title           string `json:"title,omitempty"`

	// AdditionalProperties can be true (any) or a schema.
	AdditionalProperties *JSONSchema `json:"additionalProperties,omitempty"`
}

// SchemaProvider is implemented by types that supply their own JSON schema,
// overriding reflection.
type SchemaProvider interface {
	JSONSchema() JSONSchema
}

// SchemaTransformer is implemented by types that want to adjust the schema
// derived by reflection before it is registered.
type SchemaTransformer interface {
	TransformSchema(schema JSONSchema) JSONSchema
}

// errorSchemaName is the components key for the error response schema.
const errorSchemaName = "ProblemDetail"

// errorResponseSchema describes the ProblemDetail error body.
func errorResponseSchema() JSONSchema {
	return JSONSchema{
		Type: "object",
		Properties: map[string]JSONSchema{
			"type":     {Type: "string"},
			"title":    {Type: "string"},
			"status":   {Type: "integer"},
			"detail":   {Type: "string"},
			"instance": {Type: "string"},
			"errors": {
				Type: "array",
				Items: &JSONSchema{
					Type: "object",
					Properties: map[string]JSONSchema{
						"field":   {Type: "string"},
						"message": {Type: "string"},
						"value":   {},
					},
					Required: []string{"field", "message"},
				},
			},
		},
		Required: []string{"status"},
	}
}

// schemaRegistry collects named struct schemas into components/schemas and
// hands out $ref schemas for them. Anonymous structs stay inline. Component
// keys are claimed per Go type, so two distinct types sharing a name never
// share a schema.
type schemaRegistry struct {
	defs   map[string]JSONSchema
	names  map[reflect.Type]string
	byName map[string]reflect.Type
}

func newSchemaRegistry() *schemaRegistry {
	return &schemaRegistry{
		defs:   make(map[string]JSONSchema),
		names:  make(map[reflect.Type]string),
		byName: make(map[string]reflect.Type),
	}
}

// seed installs a hand-written schema under a fixed components key and claims
// the key for its Go type, so a reflected registration of an unrelated type
// with the same name gets qualified instead of overwriting it.
func (r *schemaRegistry) seed(name string, t reflect.Type, s JSONSchema) {
	r.defs[name] = s
	r.names[t] = name
	r.byName[name] = t
}

const refPrefix = "#/components/schemas/"

// typeToSchema converts a reflect.Type to a JSONSchema, registering named
// struct types in the registry and returning a $ref for them.
func (r *schemaRegistry) typeToSchema(t reflect.Type) JSONSchema {
	if t.Kind() == reflect.Pointer {
		return r.typeToSchema(t.Elem())
	}

	if s, ok := wellKnownSchema(t); ok {
		return s
	}

	if s, ok := providerSchema(t); ok {
		return s
	}

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return JSONSchema{Type: "string", ContentEncoding: "base64"}
		}
		items := r.typeToSchema(t.Elem())
		return JSONSchema{Type: "array", Items: &items}
	case reflect.Array:
		items := r.typeToSchema(t.Elem())
		return JSONSchema{Type: "array", Items: &items}
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return JSONSchema{Type: "object"}
		}
		valSchema := r.typeToSchema(t.Elem())
		return JSONSchema{Type: "object", AdditionalProperties: &valSchema}
	case reflect.Struct:
		return r.structRef(t)
	default:
		return scalarSchema(t.Kind())
	}
}

// structRef registers a named struct and returns its $ref. Anonymous structs
// are inlined without registration.
func (r *schemaRegistry) structRef(t reflect.Type) JSONSchema {
	if t.Name() == "" {
		return r.buildStruct(t)
	}

	name, ok := r.names[t]
	if !ok {
		name = r.componentName(t)
		r.names[t] = name
		r.byName[name] = t

		// Reserve the slot first so self-referential types terminate.
		r.defs[name] = JSONSchema{}
		schema := r.buildStruct(t)
		if st, ok := transformerFor(t); ok {
			schema = st.TransformSchema(schema)
		}
		r.defs[name] = schema
	}

	return JSONSchema{Ref: refPrefix + name}
}

// componentName picks the components key for a named struct. When a distinct
// type already holds the bare name, the new type is qualified with its
// package. Two same-named types in the same package cannot be told apart in
// the document, so that is a configuration error.
func (r *schemaRegistry) componentName(t reflect.Type) string {
	name := t.Name()
	if prior, taken := r.byName[name]; !taken || prior == t {
		return name
	}

	if pkg := t.PkgPath(); pkg != "" {
		if i := strings.LastIndex(pkg, "/"); i >= 0 {
			pkg = pkg[i+1:]
		}
		qualified := pkg + "." + name
		if prior, taken := r.byName[qualified]; !taken || prior == t {
			return qualified
		}
	}

	panic(fmt.Errorf("%w: schema component %q is already registered for a different type", ErrConfig, name))
}

func (r *schemaRegistry) buildStruct(t reflect.Type) JSONSchema {
	return buildStructSchema(t, r.typeToSchema)
}

// typeToSchema converts a reflect.Type to an inline JSONSchema without a
// component registry. Used for parameter schemas and form bodies where $refs
// are not wanted.
func typeToSchema(t reflect.Type) JSONSchema {
	if t.Kind() == reflect.Pointer {
		return typeToSchema(t.Elem())
	}

	if s, ok := wellKnownSchema(t); ok {
		return s
	}

	if s, ok := providerSchema(t); ok {
		return s
	}

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return JSONSchema{Type: "string", ContentEncoding: "base64"}
		}
		items := typeToSchema(t.Elem())
		return JSONSchema{Type: "array", Items: &items}
	case reflect.Array:
		items := typeToSchema(t.Elem())
		return JSONSchema{Type: "array", Items: &items}
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return JSONSchema{Type: "object"}
		}
		valSchema := typeToSchema(t.Elem())
		return JSONSchema{Type: "object", AdditionalProperties: &valSchema}
	case reflect.Struct:
		return structToSchema(t)
	default:
		return scalarSchema(t.Kind())
	}
}

// structToSchema converts a struct type to an inline JSONSchema with properties.
func structToSchema(t reflect.Type) JSONSchema {
	return buildStructSchema(t, typeToSchema)
}

// buildStructSchema walks struct fields, skipping param/binding fields, and
// converts each property with the given type converter.
func buildStructSchema(t reflect.Type, convert func(reflect.Type) JSONSchema) JSONSchema {
	schema := JSONSchema{
		Type:       "object",
		Properties: make(map[string]JSONSchema),
	}

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		// Param and binding fields are not part of the body schema.
		if isParamField(f) {
			continue
		}

		// Skip embedded RawRequest.
		if f.Type == reflect.TypeFor[RawRequest]() {
			continue
		}

		name := jsonFieldName(f)
		if name == "-" {
			continue
		}

		prop := convert(f.Type)

		if doc := f.Tag.Get("doc"); doc != "" {
			prop.Description = doc
		}
		applyConstraintTags(&prop, f.Tag)

		schema.Properties[name] = prop

		if f.Tag.Get("required") == "true" {
			schema.Required = append(schema.Required, name)
		}
	}

	return schema
}

// wellKnownSchema handles types with a fixed schema representation.
func wellKnownSchema(t reflect.Type) (JSONSchema, bool) {
	switch t {
	case reflect.TypeFor[time.Time]():
		return JSONSchema{Type: "string", Format: "date-time"}, true
	case reflect.TypeFor[time.Duration]():
		return JSONSchema{Type: "string", Format: "duration"}, true
	case reflect.TypeFor[Void](), reflect.TypeFor[Stream](), reflect.TypeFor[SSEStream]():
		return JSONSchema{}, true
	case reflect.TypeFor[FileUpload]():
		return JSONSchema{Type: "string", Format: "binary"}, true
	}
	return JSONSchema{}, false
}

func scalarSchema(k reflect.Kind) JSONSchema {
	//exhaustive:ignore
	switch k {
	case reflect.String:
		return JSONSchema{Type: "string"}
	case reflect.Bool:
		return JSONSchema{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return JSONSchema{Type: "integer"}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return JSONSchema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return JSONSchema{Type: "number"}
	default:
		return JSONSchema{}
	}
}

// providerSchema checks for a SchemaProvider implementation on T or *T.
func providerSchema(t reflect.Type) (JSONSchema, bool) {
	providerType := reflect.TypeFor[SchemaProvider]()
	if t.Implements(providerType) {
		return reflect.New(t).Elem().Interface().(SchemaProvider).JSONSchema(), true
	}
	if reflect.PointerTo(t).Implements(providerType) {
		return reflect.New(t).Interface().(SchemaProvider).JSONSchema(), true
	}
	return JSONSchema{}, false
}

// transformerFor checks for a SchemaTransformer implementation on T or *T.
func transformerFor(t reflect.Type) (SchemaTransformer, bool) {
	transformerType := reflect.TypeFor[SchemaTransformer]()
	if t.Implements(transformerType) {
		return reflect.New(t).Elem().Interface().(SchemaTransformer), true
	}
	if reflect.PointerTo(t).Implements(transformerType) {
		return reflect.New(t).Interface().(SchemaTransformer), true
	}
	return nil, false
}

// applyConstraintTags copies constraint struct tags into schema keywords.
func applyConstraintTags(prop *JSONSchema, tag reflect.StructTag) {
	if v := tag.Get("minLength"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			prop.MinLength = &n
		}
	}
	if v := tag.Get("maxLength"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			prop.MaxLength = &n
		}
	}
	if v := tag.Get("pattern"); v != "" {
		prop.Pattern = v
	}
	if v := tag.Get("enum"); v != "" {
		prop.Enum = strings.Split(v, ",")
	}
	if v := tag.Get("minimum"); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			prop.Minimum = &n
		}
	}
	if v := tag.Get("maximum"); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			prop.Maximum = &n
		}
	}
	if v := tag.Get("minItems"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			prop.MinItems = &n
		}
	}
	if v := tag.Get("maxItems"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			prop.MaxItems = &n
		}
	}
	if v := tag.Get("default"); v != "" {
		prop.Default = v
	}
	if v := tag.Get("example"); v != "" {
		prop.Example = v
	}
}

// jsonFieldName returns the JSON field name for a struct field.
func jsonFieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" {
		return f.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}
	return name
}

// isParamField reports whether a struct field has parameter binding tags.
func isParamField(f reflect.StructField) bool {
	for _, tag := range paramTags {
		if f.Tag.Get(tag) != "" {
			return true
		}
	}
	return false
}
