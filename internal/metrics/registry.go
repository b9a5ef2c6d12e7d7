package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Registry holds the governance-domain metrics for the application.
type Registry struct {
	meter metric.Meter

	PolicyEvaluations metric.Int64Counter
	ViolationCounter  metric.Int64Counter
	RemediationsTotal metric.Int64Counter
	SubmitsBlocked    metric.Int64Counter
	SubmitsAccepted   metric.Int64Counter
	RiskScoreGauge    metric.Int64ObservableGauge

	// State for observable metrics
	mu        sync.RWMutex
	riskScore int64
}

// NewRegistry creates a metrics registry bound to the named meter.
func NewRegistry(meterName string) (*Registry, error) {
	r := &Registry{meter: otel.Meter(meterName)}

	var err error
	if r.PolicyEvaluations, err = r.meter.Int64Counter(
		"governance.policy.evaluations",
		metric.WithDescription("Policy evaluation passes executed"),
	); err != nil {
		return nil, err
	}

	if r.ViolationCounter, err = r.meter.Int64Counter(
		"governance.policy.violations",
		metric.WithDescription("Policy violations emitted, by severity"),
	); err != nil {
		return nil, err
	}

	if r.RemediationsTotal, err = r.meter.Int64Counter(
		"governance.remediations",
		metric.WithDescription("Auto-remediation patches applied"),
	); err != nil {
		return nil, err
	}

	if r.SubmitsBlocked, err = r.meter.Int64Counter(
		"governance.submits.blocked",
		metric.WithDescription("Submissions rejected by errors, violations or approval gates"),
	); err != nil {
		return nil, err
	}

	if r.SubmitsAccepted, err = r.meter.Int64Counter(
		"governance.submits.accepted",
		metric.WithDescription("Submissions that passed all gates"),
	); err != nil {
		return nil, err
	}

	if r.RiskScoreGauge, err = r.meter.Int64ObservableGauge(
		"governance.risk.score",
		metric.WithDescription("Current multi-factor risk score (0-100)"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			r.mu.RLock()
			defer r.mu.RUnlock()
			o.Observe(r.riskScore)
			return nil
		}),
	); err != nil {
		return nil, err
	}

	return r, nil
}

// RecordEvaluation counts one policy evaluation pass and its violations.
func (r *Registry) RecordEvaluation(ctx context.Context, warns, blocks int) {
	r.PolicyEvaluations.Add(ctx, 1)
	if warns > 0 {
		r.ViolationCounter.Add(ctx, int64(warns), metric.WithAttributes(attribute.String("severity", "WARN")))
	}
	if blocks > 0 {
		r.ViolationCounter.Add(ctx, int64(blocks), metric.WithAttributes(attribute.String("severity", "BLOCK")))
	}
}

// SetRiskScore updates the observable risk score gauge.
func (r *Registry) SetRiskScore(score int) {
	r.mu.Lock()
	r.riskScore = int64(score)
	r.mu.Unlock()
}
