package marshaller

import (
	"bytes"
	"io"

	"gopkg.in/yaml.v2"
)

// NewYaml creates a new instance of YAML marshaller.
func NewYaml() Service {
	return Yaml{}
}

// Yaml implements the YAML marshaller.
type Yaml struct {
}

// Unmarshal decodes the first YAML document; an empty input leaves v untouched.
func (y Yaml) Unmarshal(data []byte, v interface{}) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.SetStrict(true)
	if err := dec.Decode(v); err != nil && err != io.EOF {
		return err
	}
	return nil
}
