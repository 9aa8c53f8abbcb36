package notify

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/core-tools/hsu-sentinel/pkg/config"
	"github.com/core-tools/hsu-sentinel/pkg/logging"
)

const notifyTimeout = 5 * time.Second

// Delivery is the discardable result of an alert attempt. Callers are
// free to ignore it: alert failure is logged, never escalated, so a
// broken sink cannot start an alert-of-alert-failure loop.
type Delivery struct {
	Delivered bool
	Reason    string
}

// Notifier delivers a human-facing alert to an ntfy-style topic server.
type Notifier interface {
	Notify(ctx context.Context, message string) Delivery
}

type httpNotifier struct {
	config config.NotifierConfig
	logger logging.Logger
}

func NewNotifier(config config.NotifierConfig, logger logging.Logger) Notifier {
	return &httpNotifier{
		config: config,
		logger: logger,
	}
}

func (n *httpNotifier) Notify(ctx context.Context, message string) Delivery {
	if n.config.BaseURL == "" {
		n.logger.Debugf("Alerting disabled, no sink configured")
		return Delivery{Delivered: false, Reason: "alerting disabled"}
	}

	base := strings.TrimSuffix(n.config.BaseURL, "/")

	// Probe the sink's own liveness first; a dead sink is a silent no-op.
	if !n.sinkReachable(ctx, base) {
		n.logger.Warnf("Alert sink unreachable, dropping alert: %s", message)
		return Delivery{Delivered: false, Reason: "sink unreachable"}
	}

	requestCtx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, base+"/"+n.config.Topic, strings.NewReader(message))
	if err != nil {
		n.logger.Warnf("Failed to create alert request: %v", err)
		return Delivery{Delivered: false, Reason: "request creation failed"}
	}
	req.Header.Set("X-Title", n.config.Title)
	req.Header.Set("X-Priority", n.config.Priority)
	if n.config.Tags != "" {
		req.Header.Set("X-Tags", n.config.Tags)
	}

	client := &http.Client{Timeout: notifyTimeout}
	resp, err := client.Do(req)
	if err != nil {
		n.logger.Warnf("Alert delivery failed: %v", err)
		return Delivery{Delivered: false, Reason: "delivery failed"}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		n.logger.Warnf("Alert sink rejected alert, status: %d", resp.StatusCode)
		return Delivery{Delivered: false, Reason: resp.Status}
	}

	n.logger.Infof("Alert delivered, topic: %s", n.config.Topic)
	return Delivery{Delivered: true}
}

func (n *httpNotifier) sinkReachable(ctx context.Context, base string) bool {
	requestCtx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, base+"/health", nil)
	if err != nil {
		return false
	}

	client := &http.Client{Timeout: notifyTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode < 300
}
