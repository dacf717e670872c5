package file

import (
	"fmt"
	"os"
	"path/filepath"
)

// Scripts implements ports.ScriptSource by reading handles as paths relative to Dir.
type Scripts struct {
	Dir string
}

// NewScripts creates a script source rooted at dir.
func NewScripts(dir string) *Scripts {
	return &Scripts{Dir: dir}
}

// ReadScript reads the file named by handle. Absolute handles are used as-is.
func (s *Scripts) ReadScript(handle string) (string, error) {
	path := handle
	if !filepath.IsAbs(handle) {
		path = filepath.Join(s.Dir, handle)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read script %s: %w", handle, err)
	}
	return string(data), nil
}
