package catalog

import "errors"

var (
	// ErrMachineNotFound indicates a missing machine record.
	ErrMachineNotFound = errors.New("catalog: machine not found")
	// ErrProductNotFound indicates a missing product record.
	ErrProductNotFound = errors.New("catalog: product not found")
	// ErrSupplierNotFound indicates a missing supplier record.
	ErrSupplierNotFound = errors.New("catalog: supplier not found")
	// ErrInvalidStatus is returned for an unknown machine status.
	ErrInvalidStatus = errors.New("catalog: invalid machine status")
)
