package probe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/core-tools/hsu-sentinel/pkg/config"
	"github.com/core-tools/hsu-sentinel/pkg/logging"
	"github.com/core-tools/hsu-sentinel/pkg/procmgr"

	json "github.com/goccy/go-json"
)

// maxDetailBytes bounds the raw response body carried in a Result.
const maxDetailBytes = 512

// maxBodyBytes bounds how much of a probe response is read at all.
const maxBodyBytes = 64 * 1024

// Client issues the three probe depths against the monitored service.
// Every method is pure with respect to supervisor state and reports
// expected failures as values, never as panics or errors.
type Client interface {
	// CheckProcessAlive reports whether the service unit is running.
	CheckProcessAlive(ctx context.Context, identity config.ServiceIdentity) bool

	// CheckHealthEndpoint reports whether the health URL answered 2xx
	// within the timeout.
	CheckHealthEndpoint(ctx context.Context, identity config.ServiceIdentity, timeout time.Duration) bool

	// CheckFunctional performs a full store-verify-delete round trip.
	CheckFunctional(ctx context.Context, identity config.ServiceIdentity, timeout time.Duration) Result

	// CheckPortOpen reports whether the service's TCP port accepts
	// connections. Diagnostic only; it never drives a state transition.
	CheckPortOpen(ctx context.Context, identity config.ServiceIdentity, timeout time.Duration) bool
}

type memoryStoreRequest struct {
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
	MemoryType string   `json:"memory_type"`
}

type memoryStoreResponse struct {
	Success     bool   `json:"success"`
	ContentHash string `json:"content_hash"`
	Message     string `json:"message,omitempty"`
}

type httpProbeClient struct {
	manager procmgr.Manager
	logger  logging.Logger
}

// NewClient returns a probe client backed by HTTP and the given process
// manager collaborator.
func NewClient(manager procmgr.Manager, logger logging.Logger) Client {
	return &httpProbeClient{
		manager: manager,
		logger:  logger,
	}
}

func (c *httpProbeClient) CheckProcessAlive(ctx context.Context, identity config.ServiceIdentity) bool {
	active, status := c.manager.IsActive(ctx, identity.Unit)
	c.logger.Debugf("Process liveness, unit: %s, status: %s", identity.Unit, status)
	return active
}

func (c *httpProbeClient) CheckHealthEndpoint(ctx context.Context, identity config.ServiceIdentity, timeout time.Duration) bool {
	requestCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, identity.HealthURL, nil)
	if err != nil {
		c.logger.Errorf("Failed to create health request, url: %s, error: %v", identity.HealthURL, err)
		return false
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		c.logger.Debugf("Health endpoint unreachable, url: %s, error: %v", identity.HealthURL, err)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.Debugf("Health endpoint passed: %d", resp.StatusCode)
		return true
	}

	c.logger.Debugf("Health endpoint failed: %d %s", resp.StatusCode, resp.Status)
	return false
}

func (c *httpProbeClient) CheckFunctional(ctx context.Context, identity config.ServiceIdentity, timeout time.Duration) Result {
	requestCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload := memoryStoreRequest{
		Content:    probeContent(identity.Name),
		Tags:       []string{"hsu-sentinel", "probe"},
		MemoryType: "note",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return FunctionalFailure(fmt.Sprintf("failed to encode probe payload: %v", err))
	}

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, identity.MemoriesURL, bytes.NewReader(body))
	if err != nil {
		return FunctionalFailure(fmt.Sprintf("failed to create probe request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return Unreachable(fmt.Sprintf("store request failed: %v", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Unreachable(fmt.Sprintf("failed to read store response: %v", err))
	}

	var parsed memoryStoreResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		// An unparseable body from a reachable service is a functional
		// failure, not a crash.
		return FunctionalFailure(fmt.Sprintf("unparseable store response: %s", truncateDetail(raw)))
	}

	if !parsed.Success {
		return FunctionalFailure(truncateDetail(raw))
	}

	artifact := Artifact{ContentHash: parsed.ContentHash}
	c.deleteArtifact(ctx, identity, artifact)

	return Alive()
}

// deleteArtifact removes the probe's test record so a successful probe
// leaves the service's stored-item count unchanged. Errors intentionally
// ignored: cleanup failure never changes the probe result.
func (c *httpProbeClient) deleteArtifact(ctx context.Context, identity config.ServiceIdentity, artifact Artifact) {
	if artifact.ContentHash == "" {
		c.logger.Warnf("Store response carried no content hash, skipping cleanup")
		return
	}

	requestCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	deleteURL := strings.TrimSuffix(identity.MemoriesURL, "/") + "/" + url.PathEscape(artifact.ContentHash)
	req, err := http.NewRequestWithContext(requestCtx, http.MethodDelete, deleteURL, nil)
	if err != nil {
		c.logger.Warnf("Failed to create cleanup request, hash: %s, error: %v", artifact.ContentHash, err)
		return
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		c.logger.Warnf("Probe artifact cleanup failed, hash: %s, error: %v", artifact.ContentHash, err)
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	if resp.StatusCode >= 300 {
		c.logger.Warnf("Probe artifact cleanup rejected, hash: %s, status: %d", artifact.ContentHash, resp.StatusCode)
		return
	}

	c.logger.Debugf("Probe artifact deleted, hash: %s", artifact.ContentHash)
}

func (c *httpProbeClient) CheckPortOpen(ctx context.Context, identity config.ServiceIdentity, timeout time.Duration) bool {
	host := "127.0.0.1"
	if parsed, err := url.Parse(identity.HealthURL); err == nil && parsed.Hostname() != "" {
		host = parsed.Hostname()
	}
	address := net.JoinHostPort(host, fmt.Sprintf("%d", identity.Port))

	dialer := &net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		c.logger.Debugf("TCP port closed, address: %s, error: %v", address, err)
		return false
	}
	conn.Close()
	return true
}

// probeContent builds a uniquely tagged payload so concurrent deployments
// never collide on the content-derived identifier.
func probeContent(serviceName string) string {
	return fmt.Sprintf("sentinel functional probe: service=%s time=%s pid=%d",
		serviceName, time.Now().UTC().Format(time.RFC3339Nano), os.Getpid())
}

func truncateDetail(raw []byte) string {
	detail := strings.TrimSpace(string(raw))
	if len(detail) > maxDetailBytes {
		return detail[:maxDetailBytes] + "..."
	}
	return detail
}
