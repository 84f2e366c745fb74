package sdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Component health values.
const (
	StatusOK   = "ok"
	StatusDown = "down"
)

// HealthReport is the outcome of Health per component.
type HealthReport struct {
	Indexer   string        `json:"indexer"`
	Gateway   string        `json:"gateway"`
	CheckedAt time.Time     `json:"checked_at"`
	Latency   time.Duration `json:"latency"`
	Errors    []string      `json:"errors,omitempty"`
}

// Healthy reports whether every component is up.
func (r *HealthReport) Healthy() bool {
	return r.Indexer == StatusOK && r.Gateway == StatusOK
}

// Health checks the indexer's /health endpoint and that the IPFS gateway
// answers. The report is always returned; the error joins the failures.
func (c *Core) Health(ctx context.Context) (*HealthReport, error) {
	start := time.Now()
	report := &HealthReport{Indexer: StatusOK, Gateway: StatusOK, CheckedAt: start.UTC()}

	ctx, cancel := context.WithTimeout(ctx, c.Timeouts.Request)
	defer cancel()

	var errs []error
	if err := c.indexer.Health(ctx); err != nil {
		report.Indexer = StatusDown
		errs = append(errs, fmt.Errorf("indexer: %w", err))
	}
	if err := checkGateway(ctx, c.GatewayURL); err != nil {
		report.Gateway = StatusDown
		errs = append(errs, fmt.Errorf("gateway: %w", err))
	}
	for _, err := range errs {
		report.Errors = append(report.Errors, err.Error())
	}
	report.Latency = time.Since(start)

	if len(errs) > 0 {
		zap.L().Warn("health check failed", zap.Strings("errors", report.Errors))
		return report, errors.Join(errs...)
	}
	zap.L().Debug("health check passed", zap.Duration("latency", report.Latency))
	return report, nil
}

// checkGateway treats any response below 500 as reachable; gateways answer
// 404 or 400 for their bare prefix.
func checkGateway(ctx context.Context, base string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, base, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			zap.L().Error("failed to close gateway response", zap.Error(err))
		}
	}()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
