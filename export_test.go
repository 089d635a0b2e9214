package fast

import "reflect"

// Test-only exports for internal functions.
var (
	HasParamTags  = hasParamTags
	HasFormTags   = hasFormTags
	HasBodyField  = hasBodyField
	HasRawRequest = hasRawRequest
	TagOptions    = tagOptions
	TagContains   = tagContains

	TypeToSchema        = typeToSchema
	StructToSchema      = structToSchema
	JSONFieldName       = jsonFieldName
	ApplyConstraintTags = applyConstraintTags

	ErrorResponseSchema = errorResponseSchema
	ErrorSchemaName     = errorSchemaName

	ValidateConstraints = validateConstraints
	GenerateOperationID = generateOperationID

	BodyAllowedForStatus     = bodyAllowedForStatus
	BodyAllowedForStatusCode = bodyAllowedForStatusCode
	PathParamNames           = pathParamNames
	DeepMerge                = deepMerge
	NewField                 = newField
	UnderscoresToHyphens     = underscoresToHyphens
)

// ParamWireName exposes the request-side name a param binds to.
func ParamWireName(p Param) string { return p.wireName() }

// TestSchemaRegistry wraps schemaRegistry for external tests.
type TestSchemaRegistry struct {
	reg  *schemaRegistry
	Defs map[string]JSONSchema
}

// NewSchemaRegistry creates a TestSchemaRegistry for testing.
func NewSchemaRegistry() *TestSchemaRegistry {
	r := newSchemaRegistry()
	return &TestSchemaRegistry{reg: r, Defs: r.defs}
}

// TypeToSchema delegates to the internal registry.
func (t *TestSchemaRegistry) TypeToSchema(typ reflect.Type) JSONSchema {
	return t.reg.typeToSchema(typ)
}

// Seed installs a fixed schema under a components key, claiming the key for
// the given type.
func (t *TestSchemaRegistry) Seed(name string, typ reflect.Type, s JSONSchema) {
	t.reg.seed(name, typ, s)
}

// RouteResponseModel exposes the field tree a ResponseModel option hands to
// a route.
func RouteResponseModel[T any](opts ...FieldOption) *Field {
	ri := &routeInfo{}
	ResponseModel[T](opts...)(ri)
	return ri.respModel
}
