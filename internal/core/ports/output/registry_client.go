package ports

import "context"

// RegistryClient talks to the container registry.
type RegistryClient interface {
	IsAvailable() bool
	// ResolveDigest resolves a tag to its immutable image digest.
	ResolveDigest(ctx context.Context, imageRepo, tag string) (string, error)
}
