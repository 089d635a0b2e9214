package fast

// Group is a collection of routes under a shared prefix with shared middleware and tags.
type Group struct {
	router     *Router
	prefix     string
	middleware []Middleware
	tags       []string
	security   []string
	status     DefaultPlaceholder[int]
}

// GroupOption configures a Group.
type GroupOption func(*Group)

// WithGroupTags adds default tags to all routes registered on the group.
func WithGroupTags(tags ...string) GroupOption {
	return func(g *Group) {
		g.tags = append(g.tags, tags...)
	}
}

// WithGroupMiddleware adds middleware to the group.
func WithGroupMiddleware(mw ...Middleware) GroupOption {
	return func(g *Group) {
		g.middleware = append(g.middleware, mw...)
	}
}

// WithGroupSecurity sets default security schemes for all routes in the
// group. Routes with their own WithSecurity or WithNoSecurity win.
func WithGroupSecurity(schemes ...string) GroupOption {
	return func(g *Group) {
		g.security = append(g.security, schemes...)
	}
}

// WithGroupDefaultStatus sets the default success status for routes in the
// group. Routes with their own WithStatus win; the router-wide default
// loses to both.
func WithGroupDefaultStatus(code int) GroupOption {
	return func(g *Group) {
		g.status = Explicit(code)
	}
}

// Group creates a new route group with the given prefix and options.
func (r *Router) Group(prefix string, opts ...GroupOption) *Group {
	g := &Group{
		router: r,
		prefix: prefix,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// addRoute implements Registrar for Group.
func (g *Group) addRoute(ri routeInfo) {
	ri.pattern = g.prefix + ri.pattern
	ri.tags = append(g.tags, ri.tags...)
	if len(ri.security) == 0 && !ri.noSecurity {
		ri.security = append(ri.security, g.security...)
	}
	g.router.addRoute(ri)
}

func (g *Group) getValidator() Validator { return g.router.validator }

func (g *Group) getErrorHandler() ErrorHandler { return g.router.errorHandler }

func (g *Group) getCodecs() *codecRegistry { return g.router.getCodecs() }

func (g *Group) defaultStatus() DefaultPlaceholder[int] {
	return ValueOrDefault(g.status, g.router.status)
}

func (g *Group) routeMiddleware() []Middleware { return g.middleware }
