package fast

import "net/http"

// RawRequest can be embedded in a request type to get access to the
// underlying *http.Request, e.g. for multipart forms the binder should
// not consume.
type RawRequest struct {
	Request *http.Request
}

// GetRequest returns the embedded request. Global validators can assert
// for this method to inspect transport-level details on any request type.
func (r *RawRequest) GetRequest() *http.Request { return r.Request }

// OperationInfo provides OpenAPI metadata for raw handlers that the
// framework cannot infer from types.
type OperationInfo struct {
	Summary     string
	Description string
	Tags        []string
	Status      int
}
