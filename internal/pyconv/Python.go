// Package pyconv sets up the embedded Python interpreter and converts
// values between Python and Go.
//
// Before building, ensure python-3.7.pc is in a directory pointed to
// by PKG_CONFIG_PATH. On Ubuntu:
// export PKG_CONFIG_PATH="$PKG_CONFIG_PATH":/usr/local/lib/pkgconfig
package pyconv

// #cgo pkg-config: python-3.7
// #include <Python.h>
import "C"
import (
	"fmt"
	"os"
	"sync"

	python "github.com/DataDog/go-python3"
)

var (
	initOnce sync.Once
	closed   bool
)

// Initialize starts the Python interpreter. It is safe to call
// Initialize more than once.
func Initialize() {
	initOnce.Do(func() {
		python.Py_Initialize()
	})
}

// Finalize stops the Python interpreter. No Python objects may be
// used after Finalize returns.
func Finalize() {
	if !closed {
		python.Py_Finalize()
	}
	closed = true
}

// Closed returns whether the interpreter has been finalized
func Closed() bool {
	return closed
}

// Import imports the Python module with the given name and returns
// a new reference to it
func Import(name string) (*python.PyObject, error) {
	Initialize()
	module := python.PyImport_ImportModule(name)
	if module == nil {
		PrintError()
		return nil, fmt.Errorf("import: could not import %v", name)
	}
	return module, nil
}

// PrintError prints the pending Python exception, if any, to stderr
func PrintError() {
	if python.PyErr_Occurred() == nil {
		return
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "========== Python Error ==========")
	python.PyErr_Print()
	fmt.Fprintln(os.Stderr, "==================================")
	fmt.Fprintln(os.Stderr)
}

// Call calls obj with positional arguments args and keyword arguments
// kwargs, either of which may be nil. Call returns a new reference.
func Call(obj *python.PyObject, args []*python.PyObject,
	kwargs map[string]*python.PyObject) (*python.PyObject, error) {
	if obj == nil || !python.PyCallable_Check(obj) {
		return nil, fmt.Errorf("call: object is not callable")
	}

	// PyTuple_SetItem and PyDict_SetItemString steal and borrow
	// references respectively
	tuple := python.PyTuple_New(len(args))
	defer tuple.DecRef()
	for i, arg := range args {
		python.PyTuple_SetItem(tuple, i, arg)
	}

	var dict *python.PyObject
	if len(kwargs) > 0 {
		dict = python.PyDict_New()
		defer dict.DecRef()
		for key, value := range kwargs {
			python.PyDict_SetItemString(dict, key, value)
			value.DecRef()
		}
	}

	ret := obj.Call(tuple, dict)
	if ret == nil {
		PrintError()
		return nil, fmt.Errorf("call: Python call failed")
	}
	return ret, nil
}

// CallMethod calls the method with the given name on obj. Arguments
// are stolen. CallMethod returns a new reference.
func CallMethod(obj *python.PyObject, name string,
	args ...*python.PyObject) (*python.PyObject, error) {
	method := obj.GetAttrString(name)
	if method == nil {
		PrintError()
		return nil, fmt.Errorf("callMethod: no method %v", name)
	}
	defer method.DecRef()

	ret, err := Call(method, args, nil)
	if err != nil {
		return nil, fmt.Errorf("callMethod: %v: %v", name, err)
	}
	return ret, nil
}
