package cluster

import (
	"errors"
	"fmt"
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
)

var (
	// ErrMetricsUnavailable is returned when the metrics.k8s.io API is not
	// served, or the requested metrics object does not exist.
	ErrMetricsUnavailable = errors.New("metrics server not available")

	// ErrInvalidSelector is returned for a label selector that does not parse.
	ErrInvalidSelector = errors.New("invalid label selector")
)

// MetricsServerHint tells operators how to install the metrics API.
const MetricsServerHint = "kubectl apply -f https://github.com/kubernetes-sigs/metrics-server/releases/latest/download/components.yaml"

func isMetricsAPIUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if apierrors.IsNotFound(err) || apierrors.IsServiceUnavailable(err) || meta.IsNoMatchError(err) {
		return true
	}
	return strings.Contains(err.Error(), "metrics.k8s.io")
}

// metricsError wraps a failed metrics.k8s.io call, tagging it with
// ErrMetricsUnavailable when the API is missing.
func metricsError(op string, err error) error {
	if isMetricsAPIUnavailable(err) {
		return fmt.Errorf("failed to %s: %w: %w", op, ErrMetricsUnavailable, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
