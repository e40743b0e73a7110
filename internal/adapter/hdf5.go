package adapter

import "fmt"

// NewHDF5 is the HDF5 adapter entry point named in spec.md §1/§9. No Go
// HDF5 binding appears anywhere in the retrieval pack (h5py is a CPython
// extension with no Go equivalent among the example repos' dependency
// graphs), and the core contract only requires the interface, not a
// working backend (spec.md §1: "the concrete tree adapters (filesystem,
// ZIP, HDF5)" are named as out-of-scope external collaborators). This
// returns a clear error instead of silently mis-supporting the format;
// see DESIGN.md for the full justification.
func NewHDF5(path string) (Adapter, error) {
	return nil, fmt.Errorf("adapter: HDF5 support requires a cgo HDF5 binding not available in this build (%q)", path)
}
