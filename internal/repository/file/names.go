package file

import (
	"fmt"
	"strings"
)

// safeName rejects names that could escape the base directory.
func safeName(kind, name string) error {
	if name == "" || name == "." || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid %s name %q", kind, name)
	}
	return nil
}
