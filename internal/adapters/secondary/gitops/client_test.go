package gitops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func kustomization(status map[string]interface{}) *unstructured.Unstructured {
	obj := map[string]interface{}{
		"apiVersion": "kustomize.toolkit.fluxcd.io/v1",
		"kind":       "Kustomization",
		"metadata": map[string]interface{}{
			"name":      "apps-production",
			"namespace": "flux-system",
		},
	}
	if status != nil {
		obj["status"] = status
	}
	return &unstructured.Unstructured{Object: obj}
}

func TestParseSyncState_Ready(t *testing.T) {
	state := parseSyncState(kustomization(map[string]interface{}{
		"lastAppliedRevision": "main@sha1:abcdef123456",
		"conditions": []interface{}{
			map[string]interface{}{
				"type":   "Ready",
				"status": "True",
				"reason": "ReconciliationSucceeded",
			},
		},
	}))

	assert.True(t, state.Ready)
	assert.Equal(t, "main@sha1:abcdef123456", state.Revision)
	assert.Empty(t, state.Error)
}

func TestParseSyncState_NotReady(t *testing.T) {
	state := parseSyncState(kustomization(map[string]interface{}{
		"lastAppliedRevision": "main@sha1:000000ffffff",
		"conditions": []interface{}{
			map[string]interface{}{
				"type":    "Ready",
				"status":  "False",
				"message": "kustomization path not found",
			},
		},
	}))

	assert.False(t, state.Ready)
	assert.Equal(t, "kustomization path not found", state.Error)
}

func TestParseSyncState_NoStatus(t *testing.T) {
	state := parseSyncState(kustomization(nil))

	assert.False(t, state.Ready)
	assert.Empty(t, state.Revision)
	assert.Empty(t, state.Error)
}

func TestParseSyncState_IgnoresOtherConditions(t *testing.T) {
	state := parseSyncState(kustomization(map[string]interface{}{
		"conditions": []interface{}{
			map[string]interface{}{
				"type":   "Healthy",
				"status": "False",
			},
			map[string]interface{}{
				"type":   "Ready",
				"status": "True",
			},
		},
	}))

	assert.True(t, state.Ready)
	assert.Empty(t, state.Error)
}
