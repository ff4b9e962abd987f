package marshaller

import (
	"path/filepath"
	"strings"
)

// Service decodes configuration documents. Unknown keys are rejected.
type Service interface {
	Unmarshal(data []byte, v interface{}) error
}

// ForFile picks the marshaller by the file extension; YAML is used unless the file is .toml.
func ForFile(path string) Service {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return NewToml()
	}
	return NewYaml()
}
