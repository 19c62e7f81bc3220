package configrepo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	log "github.com/sirupsen/logrus"

	"pipeline-orchestrator/internal/core/domain"
	output "pipeline-orchestrator/internal/core/ports/output"
)

// Options configures the GitOps configuration repository client.
type Options struct {
	BaseURL string
	Owner   string
	Repo    string
	Branch  string
	Token   string
}

// githubClient commits manifest changes through the GitHub contents API.
type githubClient struct {
	enabled bool
	opts    Options
	http    *http.Client
}

// NewClient creates a ManifestClient backed by the GitHub contents API.
func NewClient(enabled bool, opts Options) output.ManifestClient {
	return &githubClient{
		enabled: enabled,
		opts:    opts,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

var _ output.ManifestClient = (*githubClient)(nil)

func (c *githubClient) IsAvailable() bool {
	return c.enabled
}

type contentsResponse struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

type commitResponse struct {
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

func (c *githubClient) PinImage(ctx context.Context, update output.ManifestUpdate) (string, error) {
	manifest, fileSHA, err := c.getFile(ctx, update.Path)
	if err != nil {
		return "", err
	}

	rewritten, err := rewriteImage(manifest, update.ImageRepo, update.Digest)
	if err != nil {
		return "", err
	}

	commitSHA, err := c.putFile(ctx, update.Path, rewritten, fileSHA, update.Message)
	if err != nil {
		return "", err
	}

	log.WithFields(log.Fields{
		"path":        update.Path,
		"environment": update.Environment,
		"digest":      update.Digest,
		"commit":      commitSHA,
	}).Info("Pinned image in configuration repository")

	return commitSHA, nil
}

func (c *githubClient) getFile(ctx context.Context, path string) ([]byte, string, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		c.opts.BaseURL, c.opts.Owner, c.opts.Repo, path, url.QueryEscape(c.opts.Branch))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build contents request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("get manifest %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("get manifest %s: status %d: %s", path, resp.StatusCode, body)
	}

	var contents contentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&contents); err != nil {
		return nil, "", fmt.Errorf("decode contents response: %w", err)
	}

	raw, err := base64.StdEncoding.DecodeString(contents.Content)
	if err != nil {
		return nil, "", fmt.Errorf("decode manifest content: %w", err)
	}

	return raw, contents.SHA, nil
}

func (c *githubClient) putFile(ctx context.Context, path string, content []byte, fileSHA, message string) (string, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		c.opts.BaseURL, c.opts.Owner, c.opts.Repo, path)

	payload := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
		"sha":     fileSHA,
		"branch":  c.opts.Branch,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal contents payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build contents request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("put manifest %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("put manifest %s: status %d: %s", path, resp.StatusCode, raw)
	}

	var commit commitResponse
	if err := json.NewDecoder(resp.Body).Decode(&commit); err != nil {
		return "", fmt.Errorf("decode commit response: %w", err)
	}

	return commit.Commit.SHA, nil
}

func (c *githubClient) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.Token)
	}
}

// rewriteImage pins every image line for repo to repo@digest. The manifest
// must already reference the repository; pinning never introduces new images.
func rewriteImage(manifest []byte, imageRepo, digest string) ([]byte, error) {
	pattern := regexp.MustCompile(`(?m)^(\s*image:\s*)` + regexp.QuoteMeta(imageRepo) + `\S*$`)
	if !pattern.Match(manifest) {
		return nil, domain.ErrManifestImageNotFound
	}
	return pattern.ReplaceAll(manifest, []byte("${1}"+imageRepo+"@"+digest)), nil
}
