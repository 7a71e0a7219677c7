package nats

import (
	"context"
	"errors"

	"github.com/nats-io/nats.go"

	"coursecompass/internal/core/domain"
	"coursecompass/internal/infrastructure/resilience"
)

// classifyPublishError tells the executor how to treat a failed reindex or
// index-published publish. Connectivity loss is worth a retry and a breaker
// strike; a bad subject or oversized payload is not going to get better.
func classifyPublishError(err error) resilience.ErrorClassification {
	switch {
	case err == nil:
		return resilience.ErrorClassification{}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// The caller gave up; neither a retry nor a breaker strike.
		return resilience.ErrorClassification{}
	case resilience.IsCircuitOpen(err),
		errors.Is(err, nats.ErrNoServers),
		errors.Is(err, nats.ErrTimeout),
		errors.Is(err, nats.ErrConnectionClosed),
		errors.Is(err, nats.ErrConnectionDraining),
		errors.Is(err, nats.ErrConnectionReconnecting),
		errors.Is(err, nats.ErrDisconnected):
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	default:
		return resilience.ErrorClassification{RecordFailure: true}
	}
}

// markTemporary tags transient publish failures with ErrTemporary so the
// HTTP layer maps a failed reindex request to 503 rather than 500.
func markTemporary(err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyPublishError(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, "nats publish", err)
	}
	return err
}
