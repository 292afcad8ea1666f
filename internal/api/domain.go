package api

import (
	"github.com/JaimeStill/intake/internal/decisions"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Decisions decisions.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	return &Domain{
		Decisions: decisions.New(
			runtime.Database.Connection(),
			runtime.Pipeline,
			runtime.Logger,
			runtime.Pagination,
			runtime.Config.API.RunTimeoutDuration(),
		),
	}
}
