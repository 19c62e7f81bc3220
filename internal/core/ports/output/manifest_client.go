package ports

import "context"

// ManifestUpdate pins an image digest into one environment's manifest in the
// GitOps configuration repository.
type ManifestUpdate struct {
	Path        string
	Environment string
	ImageRepo   string
	Digest      string
	Message     string
}

// ManifestClient commits manifest changes to the GitOps configuration
// repository.
type ManifestClient interface {
	IsAvailable() bool
	// PinImage rewrites the image reference in the manifest at update.Path
	// and returns the SHA of the resulting commit.
	PinImage(ctx context.Context, update ManifestUpdate) (string, error)
}
