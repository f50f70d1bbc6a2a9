// Package wrappers implements Go bindings for the environment wrappers
// in OpenAI's Gym.
package wrappers

import (
	python "github.com/DataDog/go-python3"
	"github.com/samuelfneumann/rlenv/gym"
)

// Closed indicates whether the package has been closed or not
var Closed bool = false

// Python wrapper modules imported by this package
var modules []*python.PyObject

// Close performs cleanup of package-level resources for the wrappers
// and gym packages.
func Close() {
	if !Closed {
		for _, module := range modules {
			module.DecRef()
		}
		modules = nil
	}
	Closed = true

	gym.Close()
}
