package adapter

import (
	"fmt"
	"os"
	"strings"
)

// ForPath picks the Adapter backend based on the target's filesystem
// kind, mirroring original_source/src/dirschema/adapters.py::get_adapter_for.
func ForPath(path string) (Adapter, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("adapter: stat %q: %w", path, err)
	}
	if info.IsDir() {
		return NewFilesystem(path), nil
	}
	name := strings.ToLower(info.Name())
	switch {
	case strings.HasSuffix(name, "zip"):
		return NewZip(path)
	case strings.HasSuffix(name, "h5"), strings.HasSuffix(name, "hdf5"):
		return NewHDF5(path)
	default:
		return nil, fmt.Errorf("adapter: no suitable adapter for %q", path)
	}
}
