package adapters

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"github.com/kandji-inc/kpkg/internal/ports"
	"github.com/kandji-inc/kpkg/internal/types"
)

// ArtifactFileAdapter accumulates resolved identities in a YAML file
// for the catalog hand-off. Appending the same media again replaces its
// entry.
type ArtifactFileAdapter struct{}

func NewArtifactFileAdapter() ArtifactFileAdapter {
	return ArtifactFileAdapter{}
}

type artifactFile struct {
	Items []types.ResolvedIdentity `yaml:"items"`
}

func (a ArtifactFileAdapter) Append(path string, identity types.ResolvedIdentity) error {
	if path == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("artifact path is empty")
	}
	contents, err := a.loadFile(path)
	if err != nil {
		return err
	}
	replaced := false
	for i, item := range contents.Items {
		if item.Identifier == identity.Identifier && item.Version == identity.Version {
			contents.Items[i] = identity
			replaced = true
			break
		}
	}
	if !replaced {
		contents.Items = append(contents.Items, identity)
	}
	sort.Slice(contents.Items, func(i, j int) bool {
		if contents.Items[i].MediaName != contents.Items[j].MediaName {
			return contents.Items[i].MediaName < contents.Items[j].MediaName
		}
		if contents.Items[i].Identifier != contents.Items[j].Identifier {
			return contents.Items[i].Identifier < contents.Items[j].Identifier
		}
		return contents.Items[i].Version < contents.Items[j].Version
	})
	data, err := yaml.Marshal(contents)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode artifact file").
			WithCause(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create artifact directory").
			WithCause(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write artifact file").
			WithCause(err)
	}
	return nil
}

func (a ArtifactFileAdapter) Read(path string) ([]types.ResolvedIdentity, error) {
	contents, err := a.loadFile(path)
	if err != nil {
		return nil, err
	}
	return contents.Items, nil
}

func (a ArtifactFileAdapter) loadFile(path string) (artifactFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return artifactFile{}, nil
		}
		return artifactFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read artifact file").
			WithCause(err)
	}
	var contents artifactFile
	if err := yaml.Unmarshal(data, &contents); err != nil {
		return artifactFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse artifact file").
			WithCause(err)
	}
	return contents, nil
}

var _ ports.ArtifactPort = ArtifactFileAdapter{}
