package gitops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"pipeline-orchestrator/internal/config"
	output "pipeline-orchestrator/internal/core/ports/output"
)

var kustomizationGVR = schema.GroupVersionResource{
	Group:    "kustomize.toolkit.fluxcd.io",
	Version:  "v1",
	Resource: "kustomizations",
}

type gitopsClient struct {
	client    dynamic.Interface
	enabled   bool
	defaultNS string
}

// NewGitOpsClient creates a client that reads Flux Kustomization status from
// the cluster.
func NewGitOpsClient(cfg *config.KubernetesConfig) (output.GitOpsClient, error) {
	if !cfg.Enabled {
		return &gitopsClient{enabled: false}, nil
	}

	var restCfg *rest.Config
	var err error

	if cfg.InCluster {
		restCfg, err = rest.InClusterConfig()
	} else if cfg.KubeConfigPath != "" {
		restCfg, err = clientcmd.BuildConfigFromFlags("", cfg.KubeConfigPath)
	} else {
		// Try default kubeconfig location
		home, _ := os.UserHomeDir()
		kubeconfig := filepath.Join(home, ".kube", "config")
		restCfg, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	}
	if err != nil {
		return nil, fmt.Errorf("build k8s config: %w", err)
	}

	client, err := dynamic.NewForConfig(restCfg)
	if err != nil {
		return nil, fmt.Errorf("create dynamic client: %w", err)
	}

	defaultNS := cfg.DefaultNS
	if defaultNS == "" {
		defaultNS = "flux-system"
	}

	return &gitopsClient{
		client:    client,
		enabled:   true,
		defaultNS: defaultNS,
	}, nil
}

func (c *gitopsClient) IsAvailable() bool {
	return c.enabled
}

func (c *gitopsClient) GetSyncState(ctx context.Context, namespace, name string) (*output.SyncState, error) {
	if namespace == "" {
		namespace = c.defaultNS
	}

	obj, err := c.client.Resource(kustomizationGVR).
		Namespace(namespace).
		Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("get flux kustomization: %w", err)
	}

	return parseSyncState(obj), nil
}

func parseSyncState(obj *unstructured.Unstructured) *output.SyncState {
	state := &output.SyncState{}

	statusMap, found, _ := unstructured.NestedMap(obj.Object, "status")
	if !found {
		return state
	}

	state.Revision, _, _ = unstructured.NestedString(statusMap, "lastAppliedRevision")

	conditions, found, _ := unstructured.NestedSlice(statusMap, "conditions")
	if found {
		for _, cond := range conditions {
			condMap, ok := cond.(map[string]interface{})
			if !ok {
				continue
			}
			condType, _ := condMap["type"].(string)
			condStatus, _ := condMap["status"].(string)

			if condType == "Ready" {
				state.Ready = condStatus == "True"
				if condStatus == "False" {
					if msg, ok := condMap["message"].(string); ok {
						state.Error = msg
					}
				}
				break
			}
		}
	}

	return state
}

// Ensure interface compliance
var _ output.GitOpsClient = (*gitopsClient)(nil)
