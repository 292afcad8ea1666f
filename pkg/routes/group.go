package routes

import (
	"net/http"
	"strings"
)

// Group collects routes under a shared prefix. Children inherit the prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds every route in groups to mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		g.register(mux, "")
	}
}

// Mount serves handler beneath prefix with the prefix stripped, so
// handlers registered at "/decisions" answer "/api/decisions".
func Mount(mux *http.ServeMux, prefix string, handler http.Handler) {
	prefix = "/" + strings.Trim(prefix, "/")
	mux.Handle(prefix+"/", http.StripPrefix(prefix, handler))
}

func (g Group) register(mux *http.ServeMux, parent string) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		mux.HandleFunc(r.pattern(prefix), r.Handler)
	}
	for _, child := range g.Children {
		child.register(mux, prefix)
	}
}
