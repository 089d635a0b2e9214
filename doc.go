// Package fast is a generics-first HTTP API framework for Go. Handler types
// are the source of truth — request parameters, bodies, and responses are
// all expressed as Go types, and the framework derives serialization, param
// binding, and OpenAPI 3.1 specs from them automatically.
//
// The core handler signature removes http.ResponseWriter and *http.Request:
//
//	type Handler[Req, Resp any] func(ctx context.Context, req *Req) (*Resp, error)
//
// Routes are registered with package-level generic functions:
//
//	r := fast.New(fast.WithTitle("My API"), fast.WithVersion("1.0.0"))
//	fast.Get[ListReq, ListResp](r, "/items", listItems)
//	fast.Post[CreateReq, Item](r, "/items", createItem, fast.WithStatus(http.StatusCreated))
//
// Request types use struct tags for parameter binding and a Body field for
// request bodies:
//
//	type CreateReq struct {
//	    OrgID string `path:"org_id"`
//	    Body  struct {
//	        Name string `json:"name" required:"true"`
//	    }
//	}
//
// Parameters can also be declared explicitly with the declarator functions,
// which adds defaults, constraints, and dependency injection:
//
//	fast.Get(r, "/search", search, fast.WithParams(
//	    fast.QueryParam("q", fast.MinLen(2)),
//	    fast.QueryParam("limit", fast.WithDefault(10), fast.AtMost(100)),
//	    fast.Depends("viewer", currentViewer),
//	))
//
// Response models validate and reshape handler output before encoding:
//
//	fast.Get(r, "/items/{id}", getItem, fast.ResponseModel[Item]())
//
// Middleware uses the standard func(http.Handler) http.Handler signature,
// so the entire Go middleware ecosystem works natively.
//
// OpenAPI 3.1 specs are generated from registered routes:
//
//	r.ServeSpec("/openapi.json")
package fast
