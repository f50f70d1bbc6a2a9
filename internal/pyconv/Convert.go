package pyconv

import (
	"fmt"

	python "github.com/DataDog/go-python3"
	"github.com/emer/etable/etensor"
	"gonum.org/v1/gonum/mat"
)

// F64SliceFromIter converts a Python iterable to a []float64. Borrows
// python.PyObject reference.
//
// Note: this is used to convert NumPy vectors to []float64. Since the
// NumPy C API is currently not supported by this library, no error
// checking is done.
func F64SliceFromIter(obj *python.PyObject) ([]float64, error) {
	seq := obj.GetIter()
	if seq == nil {
		PrintError()
		return nil, fmt.Errorf("f64SliceFromIter: object is not iterable")
	}
	defer seq.DecRef()
	next := seq.GetAttrString("__next__")
	defer next.DecRef()

	data := make([]float64, obj.Length())
	for i := range data {
		item := next.CallObject(nil)
		if item == nil {
			return nil, fmt.Errorf("f64SliceFromIter: nil item at index %v", i)
		}

		// No error checking: we need to use the NumPy C API for this
		data[i] = python.PyFloat_AsDouble(item)
		item.DecRef()
	}

	return data, nil
}

// StringSliceFromIter converts a Python iterable to a []string. Borrows
// python.PyObject reference.
func StringSliceFromIter(obj *python.PyObject) ([]string, error) {
	seq := obj.GetIter()
	if seq == nil {
		PrintError()
		return nil, fmt.Errorf("stringSliceFromIter: object is not iterable")
	}
	defer seq.DecRef()
	next := seq.GetAttrString("__next__")
	defer next.DecRef()

	data := make([]string, obj.Length())
	for i := range data {
		item := next.CallObject(nil)
		if item == nil {
			return nil, fmt.Errorf("stringSliceFromIter: nil item at index %v", i)
		}

		if !python.PyUnicode_Check(item) {
			item.DecRef()
			return nil, fmt.Errorf("stringSliceFromIter: item at index %v is "+
				"not a string", i)
		}

		data[i] = python.PyUnicode_AsUTF8(item)
		item.DecRef()
	}

	return data, nil
}

// IntSliceFromIter converts a Python iterable to a []int. Borrows
// python.PyObject reference.
func IntSliceFromIter(obj *python.PyObject) ([]int, error) {
	seq := obj.GetIter()
	if seq == nil {
		PrintError()
		return nil, fmt.Errorf("intSliceFromIter: object is not iterable")
	}
	defer seq.DecRef()
	next := seq.GetAttrString("__next__")
	defer next.DecRef()

	data := make([]int, obj.Length())
	for i := range data {
		item := next.CallObject(nil)
		if item == nil {
			return nil, fmt.Errorf("intSliceFromIter: nil item at index %v", i)
		}

		if !python.PyLong_Check(item) {
			item.DecRef()
			return nil, fmt.Errorf("intSliceFromIter: item at index %v is "+
				"not an int", i)
		}

		data[i] = python.PyLong_AsLong(item)
		item.DecRef()
	}

	return data, nil
}

// BoolSliceFromIter converts a Python iterable of truth values to a
// []bool. Borrows python.PyObject reference.
func BoolSliceFromIter(obj *python.PyObject) ([]bool, error) {
	seq := obj.GetIter()
	if seq == nil {
		PrintError()
		return nil, fmt.Errorf("boolSliceFromIter: object is not iterable")
	}
	defer seq.DecRef()
	next := seq.GetAttrString("__next__")
	defer next.DecRef()

	data := make([]bool, obj.Length())
	for i := range data {
		item := next.CallObject(nil)
		if item == nil {
			return nil, fmt.Errorf("boolSliceFromIter: nil item at index %v", i)
		}
		data[i] = item.IsTrue() == 1
		item.DecRef()
	}

	return data, nil
}

// F64ToList converts a []float64 to a Python List. Creates a new
// python.PyObject reference.
func F64ToList(slice []float64) (*python.PyObject, error) {
	list := python.PyList_New(len(slice))
	for i, elem := range slice {
		float := python.PyFloat_FromDouble(elem)
		n := python.PyList_SetItem(list, i, float)
		if n != 0 {
			PrintError()
			float.DecRef()
			list.DecRef()
			return nil, fmt.Errorf("f64ToList: could not set Python list item")
		}
	}
	return list, nil
}

// DenseToList converts the rows of a *mat.Dense to a Python List of
// Lists. Creates a new python.PyObject reference.
func DenseToList(m *mat.Dense) (*python.PyObject, error) {
	rows, _ := m.Dims()
	list := python.PyList_New(rows)
	for i := 0; i < rows; i++ {
		row, err := F64ToList(m.RawRowView(i))
		if err != nil {
			list.DecRef()
			return nil, fmt.Errorf("denseToList: row %v: %v", i, err)
		}
		if python.PyList_SetItem(list, i, row) != 0 {
			PrintError()
			row.DecRef()
			list.DecRef()
			return nil, fmt.Errorf("denseToList: could not set Python list item")
		}
	}
	return list, nil
}

// Tensor converts a Python number or NumPy array into a tensor of the
// same shape. Numbers become tensors of shape [1]. Borrows
// python.PyObject reference.
func Tensor(obj *python.PyObject) (*etensor.Float64, error) {
	if obj == nil {
		return nil, fmt.Errorf("tensor: nil object")
	}

	// Scalar observations, e.g. the state index of FrozenLake
	if python.PyLong_Check(obj) || python.PyFloat_Check(obj) {
		t := etensor.NewFloat64([]int{1}, nil, nil)
		t.Values[0] = python.PyFloat_AsDouble(obj)
		return t, nil
	}

	pyShape := obj.GetAttrString("shape")
	if pyShape == nil {
		python.PyErr_Clear()
		return nil, fmt.Errorf("tensor: object is not a number or array")
	}
	defer pyShape.DecRef()
	shape, err := IntSliceFromIter(pyShape)
	if err != nil {
		return nil, fmt.Errorf("tensor: could not decode shape: %v", err)
	}
	if len(shape) == 0 {
		// Zero-dimensional NumPy array
		shape = []int{1}
	}

	flat, err := CallMethod(obj, "ravel")
	if err != nil {
		return nil, fmt.Errorf("tensor: %v", err)
	}
	defer flat.DecRef()
	data, err := F64SliceFromIter(flat)
	if err != nil {
		return nil, fmt.Errorf("tensor: %v", err)
	}

	t := etensor.NewFloat64(shape, nil, nil)
	if len(data) != len(t.Values) {
		return nil, fmt.Errorf("tensor: shape %v holds %v values, got %v",
			shape, len(t.Values), len(data))
	}
	copy(t.Values, data)
	return t, nil
}
