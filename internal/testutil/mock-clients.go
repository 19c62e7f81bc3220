package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pipeline-orchestrator/internal/core/domain"
	output "pipeline-orchestrator/internal/core/ports/output"
)

// MockStepRunner is a mock of StepRunner.
type MockStepRunner struct {
	mock.Mock
}

func (m *MockStepRunner) Run(ctx context.Context, step domain.Step, env map[string]string) (*output.StepResult, error) {
	args := m.Called(ctx, step, env)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*output.StepResult), args.Error(1)
}

// MockRegistryClient is a mock of RegistryClient.
type MockRegistryClient struct {
	mock.Mock
}

func (m *MockRegistryClient) IsAvailable() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockRegistryClient) ResolveDigest(ctx context.Context, imageRepo, tag string) (string, error) {
	args := m.Called(ctx, imageRepo, tag)
	return args.String(0), args.Error(1)
}

// MockManifestClient is a mock of ManifestClient.
type MockManifestClient struct {
	mock.Mock
}

func (m *MockManifestClient) IsAvailable() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockManifestClient) PinImage(ctx context.Context, update output.ManifestUpdate) (string, error) {
	args := m.Called(ctx, update)
	return args.String(0), args.Error(1)
}

// MockGitOpsClient is a mock of GitOpsClient.
type MockGitOpsClient struct {
	mock.Mock
}

func (m *MockGitOpsClient) IsAvailable() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockGitOpsClient) GetSyncState(ctx context.Context, namespace, name string) (*output.SyncState, error) {
	args := m.Called(ctx, namespace, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*output.SyncState), args.Error(1)
}
