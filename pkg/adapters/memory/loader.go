package memory

import (
	"fmt"
	"sort"
)

// Scripts implements ports.ScriptSource using an in-memory map of handle to source.
type Scripts struct {
	sources map[string]string
}

// NewScripts creates a script source from the provided handle/source pairs.
func NewScripts(sources map[string]string) *Scripts {
	copied := make(map[string]string, len(sources))
	for k, v := range sources {
		copied[k] = v
	}
	return &Scripts{sources: copied}
}

// ReadScript returns the source registered under handle.
func (s *Scripts) ReadScript(handle string) (string, error) {
	src, ok := s.sources[handle]
	if !ok {
		return "", fmt.Errorf("script not found: %s", handle)
	}
	return src, nil
}

// Handles returns every registered handle, sorted.
func (s *Scripts) Handles() []string {
	keys := make([]string, 0, len(s.sources))
	for k := range s.sources {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
