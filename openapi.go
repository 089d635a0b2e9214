package fast

import (
	"encoding/json"
	"net/http"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// OpenAPISpec is the top-level OpenAPI 3.1 document.
type OpenAPISpec struct {
	OpenAPI    string                `json:"openapi"`
	Info       OpenAPIInfo           `json:"info"`
	Servers    []Server              `json:"servers,omitempty"`
	Paths      map[string]PathItem   `json:"paths"`
	Webhooks   map[string]PathItem   `json:"webhooks,omitempty"`
	Components *Components           `json:"components,omitempty"`
	Security   []SecurityRequirement `json:"security,omitempty"`
	Tags       []TagObj              `json:"tags,omitempty"`
}

// OpenAPIInfo holds API metadata.
type OpenAPIInfo struct {
	Title   string `json:"title"`
	Version string `json:"version"`
}

// Server describes a server the API is available on.
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// Components holds reusable schema and security scheme definitions.
type Components struct {
	Schemas         map[string]JSONSchema     `json:"schemas,omitempty"`
	SecuritySchemes map[string]SecurityScheme `json:"securitySchemes,omitempty"`
}

// SecurityScheme describes a named security scheme.
type SecurityScheme struct {
	Type         string `json:"type"`
	Description  string `json:"description,omitempty"`
	Scheme       string `json:"scheme,omitempty"`
	BearerFormat string `json:"bearerFormat,omitempty"`
	Name         string `json:"name,omitempty"`
	In           string `json:"in,omitempty"`
}

// SecurityRequirement maps a scheme name to its required scopes.
type SecurityRequirement map[string][]string

// TagObj is a documented tag.
type TagObj struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// PathItem maps HTTP methods to operations.
type PathItem map[string]Operation

// Operation describes a single API operation on a path.
type Operation struct {
	Summary     string                         `json:"summary,omitempty"`
	Description string                         `json:"description,omitempty"`
	Tags        []string                       `json:"tags,omitempty"`
	OperationID string                         `json:"operationId,omitempty"`
	Parameters  []Parameter                    `json:"parameters,omitempty"`
	RequestBody *RequestBody                   `json:"requestBody,omitempty"`
	Responses   OperationResp                  `json:"responses"`
	Deprecated  bool                           `json:"deprecated,omitempty"`
	Security    *[]SecurityRequirement         `json:"security,omitempty"`
	Callbacks   map[string]map[string]PathItem `json:"callbacks,omitempty"`
	Extensions  map[string]any                 `json:"-"`
}

// MarshalJSON inlines extensions as top-level x- keys on the operation.
func (o Operation) MarshalJSON() ([]byte, error) {
	type plain Operation
	b, err := json.Marshal(plain(o))
	if err != nil || len(o.Extensions) == 0 {
		return b, err
	}

	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	ext := make(map[string]any, len(o.Extensions))
	for k, v := range o.Extensions {
		if strings.HasPrefix(k, "x-") {
			ext[k] = v
		}
	}
	deepMerge(m, ext)
	return json.Marshal(m)
}

// Parameter describes a single operation parameter.
type Parameter struct {
	Name        string         `json:"name"`
	In          string         `json:"in"`
	Description string         `json:"description,omitempty"`
	Required    bool           `json:"required,omitempty"`
	Deprecated  bool           `json:"deprecated,omitempty"`
	Schema      JSONSchema     `json:"schema"`
	Example     any            `json:"example,omitempty"`
	Examples    map[string]any `json:"examples,omitempty"`
}

// RequestBody describes the request body.
type RequestBody struct {
	Required bool                `json:"required"`
	Content  map[string]MediaObj `json:"content"`
}

// MediaObj is a media type object with an optional schema.
type MediaObj struct {
	Schema *JSONSchema `json:"schema,omitempty"`
}

// OperationResp maps HTTP status codes to response objects.
type OperationResp map[string]ResponseObj

// ResponseObj describes a single response.
type ResponseObj struct {
	Description string               `json:"description"`
	Content     map[string]MediaObj  `json:"content,omitempty"`
	Headers     map[string]HeaderObj `json:"headers,omitempty"`
	Links       map[string]Link      `json:"links,omitempty"`
}

// HeaderObj documents a response header.
type HeaderObj struct {
	Description string     `json:"description,omitempty"`
	Schema      JSONSchema `json:"schema"`
}

// Link describes an OpenAPI link between operations.
type Link struct {
	OperationID string         `json:"operationId,omitempty"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// ResponseHeaders is optionally implemented by response types to document
// their headers in the OpenAPI spec.
type ResponseHeaders interface {
	ResponseHeaders() map[string]HeaderObj
}

// Spec generates the full OpenAPI 3.1 specification from registered routes.
func (r *Router) Spec() OpenAPISpec {
	schemas := newSchemaRegistry()
	schemas.seed(errorSchemaName, reflect.TypeOf(ProblemDetail{}), errorResponseSchema())

	spec := OpenAPISpec{
		OpenAPI: "3.1.0",
		Info: OpenAPIInfo{
			Title:   r.title,
			Version: r.version,
		},
		Servers:  r.servers,
		Paths:    make(map[string]PathItem),
		Webhooks: r.webhooks,
	}

	for _, name := range r.security {
		spec.Security = append(spec.Security, SecurityRequirement{name: {}})
	}

	tagNames := make(map[string]struct{})
	for name := range r.tagDescs {
		tagNames[name] = struct{}{}
	}

	for i := range r.routes {
		ri := &r.routes[i]
		path := toOpenAPIPath(ri.pattern)
		method := strings.ToLower(ri.method)

		op := buildOperation(ri, schemas, r.getCodecs())

		for _, tag := range ri.tags {
			tagNames[tag] = struct{}{}
		}

		if spec.Paths[path] == nil {
			spec.Paths[path] = make(PathItem)
		}
		spec.Paths[path][method] = op
	}

	for name := range tagNames {
		spec.Tags = append(spec.Tags, TagObj{Name: name, Description: r.tagDescs[name]})
	}
	sort.Slice(spec.Tags, func(i, j int) bool { return spec.Tags[i].Name < spec.Tags[j].Name })

	spec.Components = &Components{
		Schemas:         schemas.defs,
		SecuritySchemes: r.securitySchemes,
	}

	return spec
}

// buildOperation creates an Operation from a routeInfo.
func buildOperation(ri *routeInfo, schemas *schemaRegistry, codecs *codecRegistry) Operation {
	op := Operation{
		Summary:     ri.summary,
		Description: ri.desc,
		Tags:        ri.tags,
		Deprecated:  ri.deprecated,
		OperationID: ri.operationID,
		Callbacks:   ri.callbacks,
		Extensions:  ri.extensions,
		Responses:   make(OperationResp),
	}

	if op.OperationID == "" {
		op.OperationID = generateOperationID(ri.method, ri.pattern)
	}

	switch {
	case ri.noSecurity:
		empty := []SecurityRequirement{}
		op.Security = &empty
	case len(ri.security) > 0:
		reqs := make([]SecurityRequirement, 0, len(ri.security))
		for _, name := range ri.security {
			scopes := []string{}
			for _, p := range ri.params {
				if p.Source == SourceSecurity && len(p.Scopes) > 0 {
					scopes = p.Scopes
				}
			}
			reqs = append(reqs, SecurityRequirement{name: scopes})
		}
		op.Security = &reqs
	}

	// Build parameters and request body from Req type.
	if ri.reqType != nil && ri.reqType != reflect.TypeFor[Void]() {
		op.Parameters = extractParameters(ri.reqType, schemas)
		op.RequestBody = extractRequestBody(ri.reqType, ri.method, schemas, codecs)
	}
	op.Parameters = append(op.Parameters, declaredParameters(ri.params, ri.reqType, schemas)...)

	buildResponses(&op, ri, schemas, codecs)

	return op
}

// buildResponses fills the operation's response map: the success response
// from the route's types and status, then the framework error responses.
func buildResponses(op *Operation, ri *routeInfo, schemas *schemaRegistry, codecs *codecRegistry) {
	status := ri.status
	if status == 0 {
		status = http.StatusOK
	}

	success := ResponseObj{Description: "Successful response", Links: ri.links}

	switch {
	case ri.respType == nil || ri.respType == reflect.TypeFor[Void]() || !bodyAllowedForStatusCode(status):
		if ri.respType == nil || ri.respType == reflect.TypeFor[Void]() {
			if status == http.StatusOK {
				status = http.StatusNoContent
			}
			success.Description = "No content"
		}

	case ri.respType == reflect.TypeFor[Stream]():
		success.Content = map[string]MediaObj{
			"application/octet-stream": {},
		}

	case ri.respType == reflect.TypeFor[SSEStream]():
		success.Content = map[string]MediaObj{
			"text/event-stream": {Schema: &JSONSchema{Type: "string"}},
		}

	default:
		respSchema := schemas.typeToSchema(ri.respType)
		success.Content = make(map[string]MediaObj, len(codecs.contentTypes()))
		for _, ct := range codecs.contentTypes() {
			success.Content[ct] = MediaObj{Schema: &respSchema}
		}
		success.Headers = responseHeadersFor(ri.respType)
	}

	op.Responses[statusToString(status)] = success

	errorCodes := []int{http.StatusBadRequest, http.StatusInternalServerError}
	if len(pathParamNames(ri.pattern)) > 0 {
		errorCodes = append(errorCodes, http.StatusNotFound)
	}
	errorCodes = append(errorCodes, ri.errors...)

	errSchema := JSONSchema{Ref: refPrefix + errorSchemaName}
	for _, code := range errorCodes {
		key := statusToString(code)
		if _, exists := op.Responses[key]; exists {
			continue
		}
		op.Responses[key] = ResponseObj{
			Description: http.StatusText(code),
			Content: map[string]MediaObj{
				"application/json": {Schema: &errSchema},
			},
		}
	}
}

// responseHeadersFor returns declared response headers when the response
// type implements ResponseHeaders.
func responseHeadersFor(t reflect.Type) map[string]HeaderObj {
	hdrType := reflect.TypeFor[ResponseHeaders]()
	switch {
	case t.Implements(hdrType):
		return reflect.New(t).Elem().Interface().(ResponseHeaders).ResponseHeaders()
	case reflect.PointerTo(t).Implements(hdrType):
		return reflect.New(t).Interface().(ResponseHeaders).ResponseHeaders()
	}
	return nil
}

// extractParameters builds OpenAPI parameters from param-tagged fields.
func extractParameters(t reflect.Type, schemas *schemaRegistry) []Parameter {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var params []Parameter
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		for _, tagName := range bindTags {
			val := f.Tag.Get(tagName)
			if val == "" {
				continue
			}

			schema := schemas.typeToSchema(f.Type)
			applyConstraintTags(&schema, f.Tag)

			p := Parameter{
				Name:   val,
				In:     tagName,
				Schema: schema,
			}

			if doc := f.Tag.Get("doc"); doc != "" {
				p.Description = doc
			}

			if f.Tag.Get("required") == "true" || tagName == "path" {
				p.Required = true
			}

			params = append(params, p)
		}
	}

	return params
}

// declaredParameters converts declared path/query/header/cookie params into
// OpenAPI parameters.
func declaredParameters(params []Param, reqType reflect.Type, schemas *schemaRegistry) []Parameter {
	var out []Parameter
	for _, p := range params {
		if !p.IncludeInSchema {
			continue
		}

		var in string
		//exhaustive:ignore
		switch p.Source {
		case SourcePath:
			in = "path"
		case SourceQuery:
			in = "query"
		case SourceHeader:
			in = "header"
		case SourceCookie:
			in = "cookie"
		default:
			continue
		}

		schema := declaredParamSchema(p, reqType, schemas)

		out = append(out, Parameter{
			Name:        p.wireName(),
			In:          in,
			Description: p.Description,
			Required:    p.Required(),
			Deprecated:  p.Deprecated,
			Schema:      schema,
			Example:     p.Example,
			Examples:    p.Examples,
		})
	}
	return out
}

// declaredParamSchema derives a parameter schema from the bound field's
// type plus the declaration's constraints.
func declaredParamSchema(p Param, reqType reflect.Type, schemas *schemaRegistry) JSONSchema {
	schema := JSONSchema{Type: "string"}
	if reqType != nil {
		t := reqType
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t.Kind() == reflect.Struct {
			if field := fieldForParam(reflect.New(t).Elem(), p); field.IsValid() {
				schema = schemas.typeToSchema(field.Type())
			}
		}
	}

	if p.Title != "" {
		schema.Title = p.Title
	}
	if p.GT != nil {
		schema.ExclusiveMinimum = p.GT
	}
	if p.GE != nil {
		schema.Minimum = p.GE
	}
	if p.LT != nil {
		schema.ExclusiveMaximum = p.LT
	}
	if p.LE != nil {
		schema.Maximum = p.LE
	}
	schema.MinLength = p.MinLength
	schema.MaxLength = p.MaxLength
	if p.Pattern != "" {
		schema.Pattern = p.Pattern
	}
	if p.HasDefault() {
		schema.Default = p.Default
	}
	return schema
}

// extractRequestBody builds an OpenAPI RequestBody if the request type has a body.
func extractRequestBody(t reflect.Type, method string, schemas *schemaRegistry, codecs *codecRegistry) *RequestBody {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	// Form tags → a multipart body. Form requests are never JSON.
	if hasFormTags(t) {
		schema := formBodySchema(t)
		return &RequestBody{
			Required: true,
			Content: map[string]MediaObj{
				"multipart/form-data": {Schema: &schema},
			},
		}
	}

	// Has Body field → body is the Body field's type.
	if bodyField, ok := t.FieldByName("Body"); ok {
		schema := schemas.typeToSchema(bodyField.Type)
		return bodyContent(schema, codecs)
	}

	// No param tags → entire struct is body (only for POST/PUT/PATCH).
	if !hasParamTags(t) && !hasRawRequest(t) && (method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch) {
		schema := schemas.typeToSchema(t)
		return bodyContent(schema, codecs)
	}

	return nil
}

// bodyContent lists the body schema under every decodable content type.
func bodyContent(schema JSONSchema, codecs *codecRegistry) *RequestBody {
	content := make(map[string]MediaObj, len(codecs.contentTypes()))
	for _, ct := range codecs.contentTypes() {
		content[ct] = MediaObj{Schema: &schema}
	}
	return &RequestBody{Required: true, Content: content}
}

// formBodySchema builds the multipart schema from form-tagged fields.
func formBodySchema(t reflect.Type) JSONSchema {
	schema := JSONSchema{
		Type:       "object",
		Properties: make(map[string]JSONSchema),
	}

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Tag.Get("form")
		if name == "" {
			continue
		}

		var prop JSONSchema
		switch f.Type {
		case reflect.TypeFor[FileUpload]():
			prop = JSONSchema{Type: "string", Format: "binary"}
		case reflect.TypeFor[[]FileUpload]():
			prop = JSONSchema{
				Type:  "array",
				Items: &JSONSchema{Type: "string", Format: "binary"},
			}
		default:
			prop = typeToSchema(f.Type)
		}

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

// toOpenAPIPath converts a Go 1.22 pattern like "/users/{id}" to
// an OpenAPI path. Strips the method prefix and wildcard suffixes.
func toOpenAPIPath(pattern string) string {
	// Go's mux patterns can include {name...} for wildcards.
	// OpenAPI uses {name} without the ellipsis.
	result := strings.ReplaceAll(pattern, "...", "")
	return result
}

// statusToString converts an HTTP status code to its string representation.
func statusToString(code int) string {
	return strconv.Itoa(code)
}
