package registry

import (
	"context"
	"fmt"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	log "github.com/sirupsen/logrus"

	output "pipeline-orchestrator/internal/core/ports/output"
)

// registryClient resolves image tags against the container registry using the
// ambient keychain (docker config, cloud credential helpers).
type registryClient struct {
	enabled bool
}

// NewClient creates a RegistryClient. When disabled, digest resolution is
// skipped and artifacts keep whatever digest the caller supplied.
func NewClient(enabled bool) output.RegistryClient {
	return &registryClient{enabled: enabled}
}

var _ output.RegistryClient = (*registryClient)(nil)

func (c *registryClient) IsAvailable() bool {
	return c.enabled
}

func (c *registryClient) ResolveDigest(ctx context.Context, imageRepo, tag string) (string, error) {
	ref, err := name.ParseReference(fmt.Sprintf("%s:%s", imageRepo, tag))
	if err != nil {
		return "", fmt.Errorf("parse image reference: %w", err)
	}

	desc, err := remote.Head(ref,
		remote.WithContext(ctx),
		remote.WithAuthFromKeychain(authn.DefaultKeychain),
	)
	if err != nil {
		return "", fmt.Errorf("resolve digest for %s: %w", ref.Name(), err)
	}

	log.WithFields(log.Fields{
		"image":  imageRepo,
		"tag":    tag,
		"digest": desc.Digest.String(),
	}).Debug("Resolved image digest")

	return desc.Digest.String(), nil
}
