package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"github.com/kandji-inc/kpkg/internal/core"
	"github.com/kandji-inc/kpkg/internal/types"
)

// Resolve runs the identity lookup pipeline over every media item.
// Failures are local to one item; the call errors only when nothing
// resolved at all.
func (s Service) Resolve(ctx context.Context, req ResolveRequest) (ResolveResult, error) {
	media, err := s.expandMedia(ctx, req.Media)
	if err != nil {
		return ResolveResult{}, err
	}
	hints := types.IdentityMap{}
	if mapPath := strings.TrimSpace(req.IdentityMap); mapPath != "" {
		hints, err = s.IdentityMaps.Load(mapPath)
		if err != nil {
			return ResolveResult{}, err
		}
	}

	result := ResolveResult{}
	var firstErr error
	for _, path := range media {
		identity, err := s.resolveMedia(ctx, path, hints)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("media", path).Msg("identity resolution failed")
			result.Failed = append(result.Failed, ResolveFailure{Path: path, Reason: reasonOf(err)})
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		log.Ctx(ctx).Info().
			Str("media", path).
			Str("name", identity.MediaName).
			Str("identifier", identity.Identifier).
			Str("version", identity.Version).
			Msg("identity resolved")
		if artifact := strings.TrimSpace(req.ArtifactPath); artifact != "" {
			if err := s.Artifacts.Append(artifact, identity); err != nil {
				return ResolveResult{}, err
			}
		}
		result.Identities = append(result.Identities, identity)
	}
	if len(result.Identities) == 0 {
		if len(media) == 1 {
			return ResolveResult{}, firstErr
		}
		return ResolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("all %d media items failed to resolve", len(media))).
			WithCause(firstErr)
	}
	return result, nil
}

func (s Service) resolveMedia(ctx context.Context, path string, hints types.IdentityMap) (types.ResolvedIdentity, error) {
	kind, err := s.Prober.Classify(ctx, path)
	if err != nil {
		return types.ResolvedIdentity{}, err
	}
	if kind == types.MediaKindUnknown {
		return types.ResolvedIdentity{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported media kind")
	}
	name, err := s.Prober.DisplayName(ctx, path, kind)
	if err != nil {
		return types.ResolvedIdentity{}, err
	}

	var descriptor types.MetadataDescriptor
	switch kind {
	case types.MediaKindPackage:
		descriptor, err = s.resolveArchive(ctx, path, hints)
	default:
		descriptor, err = s.resolveDiskImage(ctx, path, hints)
	}
	if err != nil {
		return types.ResolvedIdentity{}, err
	}

	digest, err := fileSHA256(path)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("media", path).Msg("media checksum failed")
		digest = ""
	}
	return types.ResolvedIdentity{
		MediaName:  name,
		Identifier: descriptor.Identifier,
		Version:    descriptor.Version,
		Kind:       string(kind),
		SHA256:     digest,
	}, nil
}

func (s Service) resolveArchive(ctx context.Context, pkgPath string, hints types.IdentityMap) (types.MetadataDescriptor, error) {
	inventory, err := s.Inspector.Inspect(ctx, pkgPath)
	if err != nil {
		return types.MetadataDescriptor{}, err
	}
	descriptor, err := core.ResolvePackageIdentity(inventory, hints)
	if err != nil {
		return types.MetadataDescriptor{}, err
	}
	log.Ctx(ctx).Debug().
		Str("identifier", descriptor.Identifier).
		Str("version", descriptor.Version).
		Int("descriptors", len(inventory.Descriptors)).
		Msg("archive descriptor selected")
	return descriptor, nil
}

func (s Service) resolveDiskImage(ctx context.Context, imagePath string, hints types.IdentityMap) (types.MetadataDescriptor, error) {
	var descriptor types.MetadataDescriptor
	err := s.withMountedImage(ctx, imagePath, func(mountPoint string) error {
		volume, err := s.Volumes.Survey(ctx, mountPoint)
		if err != nil {
			return err
		}
		resolution, err := core.ResolveVolume(volume)
		if err != nil {
			return err
		}
		log.Ctx(ctx).Debug().
			Str("route", string(resolution.Route)).
			Str("mount_point", mountPoint).
			Msg("volume route selected")
		if resolution.Route == types.VolumeRouteNestedPackage {
			descriptor, err = s.resolveArchive(ctx, resolution.Package.Path, hints)
			return err
		}
		descriptor = resolution.Bundle
		return nil
	})
	return descriptor, err
}

// withMountedImage attaches the image under a fresh scratch directory,
// runs fn against the mount point, and detaches on every exit path. A
// failed attach force-detaches any stale mount of the same image and
// retries exactly once.
func (s Service) withMountedImage(ctx context.Context, imagePath string, fn func(mountPoint string) error) error {
	scratch, err := os.MkdirTemp("", "kpkg-mount-")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create mount scratch directory").
			WithCause(err)
	}
	defer os.RemoveAll(scratch)

	mountPoint := filepath.Join(scratch, "volume")
	if err := os.MkdirAll(mountPoint, 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create mount point").
			WithCause(err)
	}
	if err := s.DiskImages.Attach(ctx, imagePath, mountPoint); err != nil {
		stale, found, staleErr := s.DiskImages.StaleMountPoint(ctx, imagePath)
		if staleErr != nil || !found {
			return err
		}
		log.Ctx(ctx).Warn().
			Str("image", imagePath).
			Str("stale", stale).
			Msg("detaching stale mount before retry")
		if detachErr := s.DiskImages.Detach(ctx, stale, true); detachErr != nil {
			return err
		}
		if err := s.DiskImages.Attach(ctx, imagePath, mountPoint); err != nil {
			return err
		}
	}
	defer func() {
		cleanup := context.WithoutCancel(ctx)
		if err := s.DiskImages.Detach(cleanup, mountPoint, false); err != nil {
			if err := s.DiskImages.Detach(cleanup, mountPoint, true); err != nil {
				log.Ctx(ctx).Warn().Err(err).Str("mount_point", mountPoint).Msg("failed to detach volume")
			}
		}
	}()
	return fn(mountPoint)
}

// expandMedia turns the request paths into concrete media items,
// scanning plain directories one level deep. Directory-shaped media
// like .mpkg bundles pass through as items.
func (s Service) expandMedia(ctx context.Context, paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one media path is required")
	}
	var media []string
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("media path does not exist").
				WithCause(err)
		}
		if info.IsDir() && !isMediaPath(path) {
			found, err := s.MediaScan.FindMedia(path)
			if err != nil {
				return nil, err
			}
			if len(found) == 0 {
				log.Ctx(ctx).Warn().Str("dir", path).Msg("no install media in directory")
			}
			media = append(media, found...)
			continue
		}
		media = append(media, path)
	}
	if len(media) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("no install media found")
	}
	return media, nil
}

func isMediaPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pkg", ".mpkg", ".dmg":
		return true
	}
	return false
}

// fileSHA256 digests the media file for the catalog hand-off. Bundle
// style media is a directory and has no single-file digest.
func fileSHA256(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", nil
	}
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

func reasonOf(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
