package fast

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
)

// Registrar is the interface accepted by the registration functions.
// Both *Router and *Group implement it.
type Registrar interface {
	addRoute(ri routeInfo)
	getValidator() Validator
	getErrorHandler() ErrorHandler
	getCodecs() *codecRegistry
	defaultStatus() DefaultPlaceholder[int]
	routeMiddleware() []Middleware
}

func (r *Router) getValidator() Validator       { return r.validator }
func (r *Router) getErrorHandler() ErrorHandler { return r.errorHandler }
func (r *Router) routeMiddleware() []Middleware { return nil }

// register is the internal generic registration function.
func register[Req, Resp any](reg Registrar, method, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	ri := routeInfo{
		method:   method,
		pattern:  pattern,
		reqType:  reflect.TypeFor[Req](),
		respType: reflect.TypeFor[Resp](),
	}

	for _, opt := range opts {
		opt(&ri)
	}

	// Request types can declare their own params.
	if pd, ok := any(new(Req)).(ParamDeclarer); ok {
		ri.params = append(pd.Params(), ri.params...)
	}
	checkDeclaredParams(ri)

	// Success status cascade: route, then group, then router, then the
	// built-in default (204 for empty responses, 200 otherwise).
	base := DefaultOf(http.StatusOK)
	if ri.respType == reflect.TypeFor[Void]() {
		base = DefaultOf(http.StatusNoContent)
	}
	route := base
	if ri.status != 0 {
		route = Explicit(ri.status)
	}
	ri.status = ValueOrDefault(route, reg.defaultStatus(), base).Value()

	validator := reg.getValidator()
	errHandler := reg.getErrorHandler()
	codecs := reg.getCodecs()
	routeMW := reg.routeMiddleware()

	ri.handler = buildHandler(h, &ri, validator, errHandler, codecs)

	// Apply route-level middleware (from Group).
	for i := len(routeMW) - 1; i >= 0; i-- {
		ri.handler = routeMW[i](ri.handler)
	}

	reg.addRoute(ri)
}

// checkDeclaredParams verifies declared path parameters against the route
// pattern at registration time. A declared path param the pattern does not
// capture can never bind, so it panics rather than 404-ing at runtime.
func checkDeclaredParams(ri routeInfo) {
	names := pathParamNames(ri.pattern)
	for _, p := range ri.params {
		if p.Source != SourcePath {
			continue
		}
		if _, ok := names[p.FieldName()]; !ok {
			panic(fmt.Errorf("%w: route %s %s declares path parameter %q not present in pattern",
				ErrConfig, ri.method, ri.pattern, p.FieldName()))
		}
	}
}

// buildHandler wraps a typed Handler into an http.Handler.
func buildHandler[Req, Resp any](h Handler[Req, Resp], ri *routeInfo, validator Validator, errHandler ErrorHandler, codecs *codecRegistry) http.Handler {
	writeErr := func(w http.ResponseWriter, r *http.Request, err error) {
		if errHandler != nil {
			errHandler(w, r, err)
			return
		}
		writeErrorResponse(w, err)
	}

	defaultStatus := ri.status
	params := ri.params

	var ser *serializer
	if ri.respModel != nil {
		ser = &serializer{
			root:         ri.respModel,
			excludeUnset: ri.excludeUnset,
			sctx:         ri.serializeCtx,
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeRequest[Req](r, codecs, params)
		if err != nil {
			writeErr(w, r, toBindError(err))
			return
		}

		if len(params) > 0 {
			if err := bindDeclaredParams(req, r, params); err != nil {
				writeErr(w, r, err)
				return
			}
		}

		// Run constraint validation on struct tags.
		if err := validateConstraints(req); err != nil {
			writeErr(w, r, err)
			return
		}

		// Run SelfValidator if implemented.
		if sv, ok := any(req).(SelfValidator); ok {
			if err := sv.Validate(); err != nil {
				writeErr(w, r, err)
				return
			}
		}

		// Run global validator if set.
		if validator != nil {
			if err := validator.Validate(req); err != nil {
				writeErr(w, r, err)
				return
			}
		}

		resp, err := h(r.Context(), req)
		if err != nil {
			writeErr(w, r, err)
			return
		}

		// Void response.
		if _, ok := any(resp).(*Void); ok || resp == nil {
			w.WriteHeader(defaultStatus)
			return
		}

		payload := any(resp)
		if ser != nil {
			payload, err = ser.serialize(resp)
			if err != nil {
				writeErr(w, r, err)
				return
			}
		}

		encodeResponse(w, r, payload, defaultStatus, codecs)
	})
}

// toBindError maps decode failures to 400 unless the error already carries
// a status.
func toBindError(err error) error {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return err
	}
	return Error(http.StatusBadRequest, err.Error())
}

// Get registers a GET handler.
func Get[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodGet, pattern, h, opts...)
}

// Post registers a POST handler.
func Post[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodPost, pattern, h, opts...)
}

// Put registers a PUT handler.
func Put[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodPut, pattern, h, opts...)
}

// Patch registers a PATCH handler.
func Patch[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodPatch, pattern, h, opts...)
}

// Delete registers a DELETE handler.
func Delete[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodDelete, pattern, h, opts...)
}

// Raw registers a raw http.Handler with manual OperationInfo for the OpenAPI spec.
func Raw(reg Registrar, method, pattern string, h RawHandler, info OperationInfo) {
	ri := routeInfo{
		method:  method,
		pattern: pattern,
		summary: info.Summary,
		desc:    info.Description,
		tags:    info.Tags,
		status:  info.Status,
		handler: http.HandlerFunc(h),
	}

	routeMW := reg.routeMiddleware()
	for i := len(routeMW) - 1; i >= 0; i-- {
		ri.handler = routeMW[i](ri.handler)
	}

	reg.addRoute(ri)
}
