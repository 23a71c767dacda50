package adapters

import (
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"github.com/kandji-inc/kpkg/internal/ports"
	"github.com/kandji-inc/kpkg/internal/types"
)

// IdentityMapFileAdapter loads the identifier-to-name map that steers
// multi-component resolution. YAML is the native format; JSON maps
// parse as well.
type IdentityMapFileAdapter struct{}

func NewIdentityMapFileAdapter() IdentityMapFileAdapter {
	return IdentityMapFileAdapter{}
}

func (a IdentityMapFileAdapter) Load(path string) (types.IdentityMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.IdentityMap{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("identity map not found").
			WithCause(err)
	}
	var identityMap types.IdentityMap
	if err := yaml.Unmarshal(data, &identityMap); err != nil {
		return types.IdentityMap{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse identity map").
			WithCause(err)
	}
	return identityMap, nil
}

var _ ports.IdentityMapPort = IdentityMapFileAdapter{}
