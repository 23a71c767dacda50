package ports

import "github.com/kandji-inc/kpkg/internal/types"

// IdentityMapPort loads the identifier-to-name map consulted during
// multi-component identity resolution.
type IdentityMapPort interface {
	Load(path string) (types.IdentityMap, error)
}

// ArtifactPort persists resolved identities for the catalog hand-off.
type ArtifactPort interface {
	Append(path string, identity types.ResolvedIdentity) error
	Read(path string) ([]types.ResolvedIdentity, error)
}
