package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/dillanci/settlement/internal/domain/event"
	"github.com/dillanci/settlement/internal/domain/port"
)

// MeterName identifies the settlement instruments.
const MeterName = "github.com/dillanci/settlement"

// Metrics holds the service's otel instruments.
type Metrics struct {
	eventsPublished metric.Int64Counter
	publishFailures metric.Int64Counter
	rpcRequests     metric.Int64Counter
	rpcDuration     metric.Float64Histogram
}

// New creates the instruments on meter.
func New(meter metric.Meter) (*Metrics, error) {
	eventsPublished, err := meter.Int64Counter("settlement_events_published_total",
		metric.WithDescription("Domain events handed to the broker, by type."))
	if err != nil {
		return nil, fmt.Errorf("metrics: events counter: %w", err)
	}
	publishFailures, err := meter.Int64Counter("settlement_event_publish_failures_total",
		metric.WithDescription("Event batches the broker rejected."))
	if err != nil {
		return nil, fmt.Errorf("metrics: failures counter: %w", err)
	}
	rpcRequests, err := meter.Int64Counter("settlement_rpc_requests_total",
		metric.WithDescription("gRPC calls by method and status code."))
	if err != nil {
		return nil, fmt.Errorf("metrics: rpc counter: %w", err)
	}
	rpcDuration, err := meter.Float64Histogram("settlement_rpc_duration_seconds",
		metric.WithDescription("gRPC call latency."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("metrics: rpc histogram: %w", err)
	}
	return &Metrics{
		eventsPublished: eventsPublished,
		publishFailures: publishFailures,
		rpcRequests:     rpcRequests,
		rpcDuration:     rpcDuration,
	}, nil
}

// ---------------------------------------------------------------------------
// Event publisher decorator
// ---------------------------------------------------------------------------

// CountingPublisher counts events flowing through another EventPublisher.
type CountingPublisher struct {
	next    port.EventPublisher
	metrics *Metrics
}

// NewCountingPublisher wraps next.
func NewCountingPublisher(next port.EventPublisher, m *Metrics) *CountingPublisher {
	return &CountingPublisher{next: next, metrics: m}
}

// Publish forwards events and records the outcome.
func (p *CountingPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	if err := p.next.Publish(ctx, events...); err != nil {
		p.metrics.publishFailures.Add(ctx, 1)
		return err
	}
	for _, evt := range events {
		p.metrics.eventsPublished.Add(ctx, 1,
			metric.WithAttributes(attribute.String("event_type", evt.EventType())))
	}
	return nil
}

// ---------------------------------------------------------------------------
// gRPC interceptor
// ---------------------------------------------------------------------------

// UnaryServerInterceptor records call counts and latency per method.
func (m *Metrics) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		attrs := metric.WithAttributes(
			attribute.String("method", info.FullMethod),
			attribute.String("code", status.Code(err).String()),
		)
		m.rpcRequests.Add(ctx, 1, attrs)
		m.rpcDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		return resp, err
	}
}
