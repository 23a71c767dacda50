package app

import (
	"time"

	"github.com/kandji-inc/kpkg/internal/adapters"
	"github.com/kandji-inc/kpkg/internal/policies"
	"github.com/kandji-inc/kpkg/internal/ports"
)

type Service struct {
	Prober       ports.MediaProbePort
	MediaScan    ports.MediaScanPort
	Inspector    ports.ArchiveInspectorPort
	DiskImages   ports.DiskImagePort
	Volumes      ports.VolumeSurveyPort
	Metadata     ports.BundleMetadataPort
	Index        ports.ContentIndexPort
	Walker       ports.BundleWalkPort
	Receipts     ports.ReceiptStorePort
	Processes    ports.ProcessMonitorPort
	Dialog       ports.DialogPort
	IdentityMaps ports.IdentityMapPort
	Artifacts    ports.ArtifactPort

	// DeferralStore opens the store at the given path; audits take the
	// path per invocation.
	DeferralStore func(path string) ports.DeferralStorePort

	InstallRoots []string
	Clock        func() time.Time
}

func NewService() Service {
	enumeration := policies.NewEnumerationPolicy()
	metadata := adapters.NewBundlePlistAdapter()
	return Service{
		Prober:       adapters.NewMediaProbeAdapter(),
		MediaScan:    adapters.NewMediaScanAdapter(),
		Inspector:    adapters.NewArchiveInspectAdapter(adapters.NewArchiveExtractAdapter(), enumeration),
		DiskImages:   adapters.NewDiskImageHdiutilAdapter(),
		Volumes:      adapters.NewVolumeSurveyAdapter(metadata, enumeration),
		Metadata:     metadata,
		Index:        adapters.NewContentIndexMdfindAdapter(),
		Walker:       adapters.NewBundleWalkAdapter(enumeration),
		Receipts:     adapters.NewReceiptPkgutilAdapter(),
		Processes:    adapters.NewProcessMonitorAdapter(),
		Dialog:       adapters.NewDialogOsascriptAdapter(),
		IdentityMaps: adapters.NewIdentityMapFileAdapter(),
		Artifacts:    adapters.NewArtifactFileAdapter(),
		DeferralStore: func(path string) ports.DeferralStorePort {
			return adapters.NewDeferralPlistAdapter(path)
		},
		InstallRoots: defaultInstallRoots(),
		Clock:        time.Now,
	}
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}
