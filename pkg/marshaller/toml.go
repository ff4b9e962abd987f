package marshaller

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// NewToml creates a new instance of TOML marshaller.
func NewToml() Service {
	return Toml{}
}

// Toml implements the TOML marshaller.
type Toml struct {
}

// Unmarshal decodes the TOML document and fails on the keys that v has no field for.
func (t Toml) Unmarshal(data []byte, v interface{}) error {
	md, err := toml.Decode(string(data), v)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown keys: %v", undecoded)
	}
	return nil
}
