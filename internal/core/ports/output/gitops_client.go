package ports

import "context"

// SyncState is the cluster-side reconciliation state of one environment.
type SyncState struct {
	Ready    bool
	Revision string
	Error    string
}

// GitOpsClient reads the deployment controller's reconciliation status from
// the cluster.
type GitOpsClient interface {
	IsAvailable() bool
	GetSyncState(ctx context.Context, namespace, name string) (*SyncState, error)
}
