package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ammar0144/catalog4go/pkg/cache"
)

const tracerName = "github.com/ammar0144/catalog4go/pkg/service"

type options struct {
	tracerProvider trace.TracerProvider
	cacheTTL       time.Duration
}

// Option customises a service.
type Option func(*options)

// WithTracerProvider overrides the global OpenTelemetry provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}

// WithCacheTTL sets how long cached reads live. Defaults to cache.DefaultTTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.cacheTTL = ttl
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		tracerProvider: otel.GetTracerProvider(),
		cacheTTL:       cache.DefaultTTL,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) tracer() trace.Tracer {
	return o.tracerProvider.Tracer(tracerName)
}

func startSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan records err on span, if any, and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
