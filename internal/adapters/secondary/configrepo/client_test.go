package configrepo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"pipeline-orchestrator/internal/core/domain"
	output "pipeline-orchestrator/internal/core/ports/output"
)

const manifest = `apiVersion: apps/v1
kind: Deployment
spec:
  template:
    spec:
      containers:
        - name: app
          image: registry.example.com/org/app:latest
`

func TestRewriteImage(t *testing.T) {
	out, err := rewriteImage([]byte(manifest), "registry.example.com/org/app", "sha256:deadbeef")
	assert.NoError(t, err)
	assert.Contains(t, string(out), "image: registry.example.com/org/app@sha256:deadbeef")
	assert.NotContains(t, string(out), ":latest")
}

func TestRewriteImage_PreservesIndentation(t *testing.T) {
	out, err := rewriteImage([]byte(manifest), "registry.example.com/org/app", "sha256:cafe")
	assert.NoError(t, err)
	assert.Contains(t, string(out), "          image: registry.example.com/org/app@sha256:cafe")
}

func TestRewriteImage_ImageNotFound(t *testing.T) {
	_, err := rewriteImage([]byte(manifest), "registry.example.com/org/other", "sha256:deadbeef")
	assert.ErrorIs(t, err, domain.ErrManifestImageNotFound)
}

func TestRewriteImage_RepinsDigest(t *testing.T) {
	pinned := "image: registry.example.com/org/app@sha256:old\n"
	out, err := rewriteImage([]byte(pinned), "registry.example.com/org/app", "sha256:new")
	assert.NoError(t, err)
	assert.Equal(t, "image: registry.example.com/org/app@sha256:new\n", string(out))
}

func TestPinImage(t *testing.T) {
	var putBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "/repos/acme/gitops/contents/apps/app/production.yaml", r.URL.Path)
			assert.Equal(t, "main", r.URL.Query().Get("ref"))
			assert.Equal(t, "Bearer token123", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]string{
				"content": base64.StdEncoding.EncodeToString([]byte(manifest)),
				"sha":     "file-sha",
			})
		case http.MethodPut:
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&putBody))
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]any{
				"commit": map[string]string{"sha": "commit-sha"},
			})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer srv.Close()

	client := NewClient(true, Options{
		BaseURL: srv.URL,
		Owner:   "acme",
		Repo:    "gitops",
		Branch:  "main",
		Token:   "token123",
	})

	sha, err := client.PinImage(context.Background(), output.ManifestUpdate{
		Path:        "apps/app/production.yaml",
		Environment: "production",
		ImageRepo:   "registry.example.com/org/app",
		Digest:      "sha256:deadbeef",
		Message:     "promote app to production",
	})
	assert.NoError(t, err)
	assert.Equal(t, "commit-sha", sha)

	assert.Equal(t, "file-sha", putBody["sha"])
	assert.Equal(t, "main", putBody["branch"])
	assert.Equal(t, "promote app to production", putBody["message"])

	updated, err := base64.StdEncoding.DecodeString(putBody["content"])
	assert.NoError(t, err)
	assert.Contains(t, string(updated), "registry.example.com/org/app@sha256:deadbeef")
}

func TestPinImage_ManifestMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(true, Options{BaseURL: srv.URL, Owner: "acme", Repo: "gitops", Branch: "main"})

	_, err := client.PinImage(context.Background(), output.ManifestUpdate{
		Path:      "apps/app/missing.yaml",
		ImageRepo: "registry.example.com/org/app",
		Digest:    "sha256:deadbeef",
	})
	assert.ErrorContains(t, err, "status 404")
}

func TestIsAvailable(t *testing.T) {
	assert.True(t, NewClient(true, Options{}).IsAvailable())
	assert.False(t, NewClient(false, Options{}).IsAvailable())
}
