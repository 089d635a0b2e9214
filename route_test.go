package fast_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/graphyhiren/fast"
)

func TestRouteOptions_compile(t *testing.T) {
	t.Parallel()

	opts := []fast.RouteOption{
		fast.WithStatus(http.StatusCreated),
		fast.WithSummary("Create a user"),
		fast.WithDescription("Creates a new user account"),
		fast.WithTags("users", "admin"),
		fast.WithDeprecated(),
	}

	assert.Len(t, opts, 5)
}
