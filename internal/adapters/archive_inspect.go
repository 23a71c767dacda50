package adapters

import (
	"context"
	"encoding/xml"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/kandji-inc/kpkg/internal/core"
	"github.com/kandji-inc/kpkg/internal/policies"
	"github.com/kandji-inc/kpkg/internal/ports"
	"github.com/kandji-inc/kpkg/internal/types"
)

// ArchiveInspectAdapter expands a package archive into a scratch
// directory and inventories its component metadata, largest payload
// first.
type ArchiveInspectAdapter struct {
	Extractor ports.ArchiveExtractorPort
	Policy    policies.EnumerationPolicy
}

func NewArchiveInspectAdapter(extractor ports.ArchiveExtractorPort, policy policies.EnumerationPolicy) ArchiveInspectAdapter {
	return ArchiveInspectAdapter{Extractor: extractor, Policy: policy}
}

const (
	packageInfoName  = "PackageInfo"
	distributionName = "Distribution"
)

func (a ArchiveInspectAdapter) Inspect(ctx context.Context, pkgPath string) (types.ArchiveInventory, error) {
	if err := ctx.Err(); err != nil {
		return types.ArchiveInventory{}, err
	}
	if strings.TrimSpace(pkgPath) == "" {
		return types.ArchiveInventory{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package path is empty")
	}
	if _, err := os.Stat(pkgPath); err != nil {
		return types.ArchiveInventory{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("package archive not found").
			WithCause(err)
	}
	scratch, err := os.MkdirTemp("", "kpkg-expand-")
	if err != nil {
		return types.ArchiveInventory{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create scratch directory").
			WithCause(err)
	}
	defer os.RemoveAll(scratch)

	expanded := filepath.Join(scratch, "expanded")
	if err := a.Extractor.ExtractMetadata(ctx, pkgPath, expanded); err != nil {
		return types.ArchiveInventory{}, err
	}
	return a.inventory(expanded)
}

type packageInfoXML struct {
	Identifier string             `xml:"identifier,attr"`
	Version    string             `xml:"version,attr"`
	Payload    packageInfoPayload `xml:"payload"`
}

type packageInfoPayload struct {
	InstallKBytes string `xml:"installKBytes,attr"`
}

type distributionXML struct {
	Product distributionProduct  `xml:"product"`
	PkgRefs []distributionPkgRef `xml:"pkg-ref"`
}

type distributionProduct struct {
	ID      string `xml:"id,attr"`
	Version string `xml:"version,attr"`
}

type distributionPkgRef struct {
	ID      string `xml:"id,attr"`
	Version string `xml:"version,attr"`
}

func (a ArchiveInspectAdapter) inventory(root string) (types.ArchiveInventory, error) {
	var inventory types.ArchiveInventory
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if a.Policy.ExcludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if a.Policy.Excluded(rel) {
			return nil
		}
		switch d.Name() {
		case packageInfoName:
			if descriptor, ok := a.readPackageInfo(root, path); ok {
				inventory.Descriptors = append(inventory.Descriptors, descriptor)
			}
		case distributionName:
			if inventory.Manifest == nil {
				if manifest, ok := readDistribution(path); ok {
					inventory.Manifest = &manifest
				}
			}
		}
		return nil
	})
	if err != nil {
		return types.ArchiveInventory{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to scan expanded archive").
			WithCause(err)
	}
	if len(inventory.Descriptors) == 0 {
		return types.ArchiveInventory{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("no component metadata found in archive")
	}
	core.SortDescriptors(inventory.Descriptors)
	return inventory, nil
}

// readPackageInfo parses one component descriptor. Malformed files are
// skipped so the remaining components can still resolve.
func (a ArchiveInspectAdapter) readPackageInfo(root string, path string) (types.MetadataDescriptor, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return types.MetadataDescriptor{}, false
	}
	var info packageInfoXML
	if err := xml.Unmarshal(content, &info); err != nil {
		return types.MetadataDescriptor{}, false
	}
	parent := filepath.Dir(path)
	containing := parent
	if rel, err := filepath.Rel(root, parent); err == nil {
		containing = rel
	}
	descriptor := types.MetadataDescriptor{
		Identifier:     strings.TrimSpace(info.Identifier),
		Version:        strings.TrimSpace(info.Version),
		ContainingPath: containing,
	}
	if kb, err := strconv.ParseInt(strings.TrimSpace(info.Payload.InstallKBytes), 10, 64); err == nil && kb > 0 {
		descriptor.PayloadSizeBytes = kb * 1024
	} else {
		descriptor.PayloadSizeBytes = dirSize(parent)
	}
	return descriptor, true
}

func readDistribution(path string) (types.DistributionManifest, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return types.DistributionManifest{}, false
	}
	var distribution distributionXML
	if err := xml.Unmarshal(content, &distribution); err != nil {
		return types.DistributionManifest{}, false
	}
	manifest := types.DistributionManifest{
		DeclaredVersion:     strings.TrimSpace(distribution.Product.Version),
		IdentifierByVersion: map[string]string{},
	}
	for _, ref := range distribution.PkgRefs {
		id := strings.TrimSpace(ref.ID)
		version := strings.TrimSpace(ref.Version)
		if id == "" || version == "" {
			continue
		}
		if _, exists := manifest.IdentifierByVersion[version]; !exists {
			manifest.IdentifierByVersion[version] = id
		}
	}
	return manifest, true
}

// dirSize sums regular file sizes under dir. Symlinks are not followed
// so a link cannot inflate its parent's weight.
func dirSize(dir string) int64 {
	var total int64
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}

var _ ports.ArchiveInspectorPort = ArchiveInspectAdapter{}
