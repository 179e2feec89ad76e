package simulator

import (
	"fmt"
	"slices"
)

// faces is the allowlist of registered names, in registration order.
type faces struct {
	max   int
	names []string
}

func (f *faces) register(name string) (bool, string) {
	if len(f.names) >= f.max {
		return false, fmt.Sprintf("Maximum %d faces already registered", f.max)
	}
	if slices.Contains(f.names, name) {
		return false, fmt.Sprintf("Face '%s' already exists", name)
	}
	f.names = append(f.names, name)
	return true, fmt.Sprintf("Registered '%s'", name)
}

func (f *faces) remove(name string) (bool, string) {
	i := slices.Index(f.names, name)
	if i < 0 {
		return false, "Face not found"
	}
	f.names = slices.Delete(f.names, i, i+1)
	return true, "Deleted successfully"
}
