package app

import (
	"regexp"

	"github.com/signet-one/signet"
)

var isPath = regexp.MustCompile(`^[a-z0-9_]+/[a-z0-9_]+$`).MatchString

// Router maps instruction paths to handlers within one program.
type Router struct {
	routes map[string]signet.Handler
}

var _ signet.Registry = (*Router)(nil)

func NewRouter() *Router {
	return &Router{
		routes: make(map[string]signet.Handler),
	}
}

// Handle registers a handler for the given path. Routing is set up once
// during initialization, so collisions and malformed paths panic.
func (r *Router) Handle(path string, h signet.Handler) {
	if !isPath(path) {
		panic("paths must be of the form program/instruction, lowercase alphanumeric or underscore")
	}
	if _, ok := r.routes[path]; ok {
		panic("re-registering route: " + path)
	}
	r.routes[path] = h
}

// Handler returns the handler registered for path, or nil.
func (r *Router) Handler(path string) signet.Handler {
	return r.routes[path]
}
