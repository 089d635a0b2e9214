package fast

import (
	"context"
	"net/http"
)

// ParamSource identifies where a declared parameter is read from.
type ParamSource int

const (
	SourcePath ParamSource = iota
	SourceQuery
	SourceHeader
	SourceCookie
	SourceBody
	SourceForm
	SourceFile
	SourceDependency
	SourceSecurity
)

// String returns the OpenAPI "in" value for parameter sources, and a
// descriptive name for the rest.
func (s ParamSource) String() string {
	switch s {
	case SourcePath:
		return "path"
	case SourceQuery:
		return "query"
	case SourceHeader:
		return "header"
	case SourceCookie:
		return "cookie"
	case SourceBody:
		return "body"
	case SourceForm:
		return "form"
	case SourceFile:
		return "file"
	case SourceDependency:
		return "dependency"
	case SourceSecurity:
		return "security"
	default:
		return "unknown"
	}
}

// noDefault is the sentinel distinguishing "no default declared" from a
// default that was explicitly set to a zero value.
type noDefault struct{}

// Resolver produces a value for a Dependency or Security parameter before
// the handler runs.
type Resolver func(ctx context.Context, r *http.Request) (any, error)

// Param is an immutable declaration of a single route input: where it comes
// from, how it is validated, and how it is documented. Params are built by
// the declarator functions (Path, Query, Header, ...) at route-definition
// time and consumed by the request binder and the OpenAPI generator.
type Param struct {
	Name   string
	Source ParamSource

	// Default holds the declared default value; it is the noDefault
	// sentinel when none was declared.
	Default any

	// Validation constraints.
	GT, GE, LT, LE       *float64
	MinLength, MaxLength *int
	Pattern              string

	// Presentation metadata.
	Alias           string
	Title           string
	Description     string
	Deprecated      bool
	IncludeInSchema bool
	Example         any
	Examples        map[string]any

	// Header only: convert struct-style names (user_agent) to their wire
	// form (User-Agent). On unless disabled.
	ConvertUnderscores bool

	// Body/Form/File only.
	Embed     bool
	MediaType string

	// Dependency/Security only.
	Resolve  Resolver
	UseCache bool
	Scopes   []string
}

// HasDefault reports whether a default value was declared.
func (p Param) HasDefault() bool {
	_, isSentinel := p.Default.(noDefault)
	return !isSentinel
}

// Required reports whether the binder must reject a request missing this
// parameter. Path parameters are always required.
func (p Param) Required() bool {
	return p.Source == SourcePath || !p.HasDefault()
}

// FieldName returns the name used to locate the target struct field:
// the alias when set, the declared name otherwise.
func (p Param) FieldName() string {
	if p.Alias != "" {
		return p.Alias
	}
	return p.Name
}

// wireName returns the name looked up in the request: the alias when set,
// with header underscore conversion applied when enabled.
func (p Param) wireName() string {
	name := p.Name
	if p.Alias != "" {
		name = p.Alias
	}
	if p.Source == SourceHeader && p.ConvertUnderscores {
		name = underscoresToHyphens(name)
	}
	return name
}

// ParamDeclarer is implemented by request types that declare their inputs
// explicitly instead of (or in addition to) struct tags.
type ParamDeclarer interface {
	Params() []Param
}

// ParamOption configures a declared parameter.
type ParamOption func(*Param)

// WithDefault declares a default value, making the parameter optional.
func WithDefault(v any) ParamOption {
	return func(p *Param) { p.Default = v }
}

// WithAlias sets the wire name used instead of the declared name.
func WithAlias(alias string) ParamOption {
	return func(p *Param) { p.Alias = alias }
}

// WithParamTitle sets the OpenAPI title for the parameter schema.
func WithParamTitle(title string) ParamOption {
	return func(p *Param) { p.Title = title }
}

// WithParamDescription sets the OpenAPI description for the parameter.
func WithParamDescription(desc string) ParamOption {
	return func(p *Param) { p.Description = desc }
}

// GreaterThan constrains numeric values to be strictly greater than n.
func GreaterThan(n float64) ParamOption {
	return func(p *Param) { p.GT = &n }
}

// AtLeast constrains numeric values to be greater than or equal to n.
func AtLeast(n float64) ParamOption {
	return func(p *Param) { p.GE = &n }
}

// LessThan constrains numeric values to be strictly less than n.
func LessThan(n float64) ParamOption {
	return func(p *Param) { p.LT = &n }
}

// AtMost constrains numeric values to be less than or equal to n.
func AtMost(n float64) ParamOption {
	return func(p *Param) { p.LE = &n }
}

// MinLen constrains string values to a minimum length.
func MinLen(n int) ParamOption {
	return func(p *Param) { p.MinLength = &n }
}

// MaxLen constrains string values to a maximum length.
func MaxLen(n int) ParamOption {
	return func(p *Param) { p.MaxLength = &n }
}

// Matching constrains string values to match a regular expression.
func Matching(pattern string) ParamOption {
	return func(p *Param) { p.Pattern = pattern }
}

// WithParamExample sets a single example value.
func WithParamExample(v any) ParamOption {
	return func(p *Param) { p.Example = v }
}

// WithParamExamples sets named example values.
func WithParamExamples(examples map[string]any) ParamOption {
	return func(p *Param) { p.Examples = examples }
}

// DeprecatedParam marks the parameter as deprecated in the OpenAPI spec.
func DeprecatedParam() ParamOption {
	return func(p *Param) { p.Deprecated = true }
}

// ExcludeFromSchema hides the parameter from the OpenAPI spec.
func ExcludeFromSchema() ParamOption {
	return func(p *Param) { p.IncludeInSchema = false }
}

// KeepUnderscores disables the header-name underscore-to-hyphen conversion.
func KeepUnderscores() ParamOption {
	return func(p *Param) { p.ConvertUnderscores = false }
}

// Embedded marks a body parameter as a keyed sub-object of the JSON body
// instead of the whole body.
func Embedded() ParamOption {
	return func(p *Param) { p.Embed = true }
}

// WithMediaType overrides the media type of a body, form, or file parameter.
func WithMediaType(mt string) ParamOption {
	return func(p *Param) { p.MediaType = mt }
}

// NoCache disables per-request memoization of a dependency resolver.
func NoCache() ParamOption {
	return func(p *Param) { p.UseCache = false }
}

// WithScopes declares the security scopes required by a Security parameter.
func WithScopes(scopes ...string) ParamOption {
	return func(p *Param) { p.Scopes = append(p.Scopes, scopes...) }
}

func newParam(name string, source ParamSource, opts []ParamOption) Param {
	p := Param{
		Name:               name,
		Source:             source,
		Default:            noDefault{},
		IncludeInSchema:    true,
		ConvertUnderscores: true,
		UseCache:           true,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// PathParam declares a path parameter. Path parameters are always required;
// a declared default is only used for documentation.
func PathParam(name string, opts ...ParamOption) Param {
	return newParam(name, SourcePath, opts)
}

// QueryParam declares a query-string parameter.
func QueryParam(name string, opts ...ParamOption) Param {
	return newParam(name, SourceQuery, opts)
}

// HeaderParam declares a header parameter. Underscores in the name are
// converted to hyphens unless KeepUnderscores is given.
func HeaderParam(name string, opts ...ParamOption) Param {
	return newParam(name, SourceHeader, opts)
}

// CookieParam declares a cookie parameter.
func CookieParam(name string, opts ...ParamOption) Param {
	return newParam(name, SourceCookie, opts)
}

// BodyParam declares a body parameter with media type application/json.
func BodyParam(name string, opts ...ParamOption) Param {
	p := newParam(name, SourceBody, opts)
	if p.MediaType == "" {
		p.MediaType = "application/json"
	}
	return p
}

// FormParam declares a form field with media type
// application/x-www-form-urlencoded.
func FormParam(name string, opts ...ParamOption) Param {
	p := newParam(name, SourceForm, opts)
	if p.MediaType == "" {
		p.MediaType = "application/x-www-form-urlencoded"
	}
	return p
}

// FileParam declares an uploaded file field with media type
// multipart/form-data.
func FileParam(name string, opts ...ParamOption) Param {
	p := newParam(name, SourceFile, opts)
	if p.MediaType == "" {
		p.MediaType = "multipart/form-data"
	}
	return p
}

// Depends declares a dependency parameter: resolve runs before the handler
// and its result is injected into the named request field. Results are
// memoized per request unless NoCache is given.
func Depends(name string, resolve Resolver, opts ...ParamOption) Param {
	p := newParam(name, SourceDependency, opts)
	p.Resolve = resolve
	return p
}

// SecurityDep declares a security dependency: like Depends, but carrying
// required scopes that are recorded in the OpenAPI spec, and whose failure
// rejects the request before the handler runs.
func SecurityDep(name string, resolve Resolver, opts ...ParamOption) Param {
	p := newParam(name, SourceSecurity, opts)
	p.Resolve = resolve
	return p
}

// underscoresToHyphens converts user_agent to User-Agent style header names.
func underscoresToHyphens(name string) string {
	b := []byte(name)
	upper := true
	for i, c := range b {
		switch {
		case c == '_':
			b[i] = '-'
			upper = true
		case upper && 'a' <= c && c <= 'z':
			b[i] = c - ('a' - 'A')
			upper = false
		default:
			upper = false
		}
	}
	return string(b)
}
