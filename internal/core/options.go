package core

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"havenlist/pkg/domain"
)

const tracerName = "havenlist/internal/core"

type options struct {
	logger  Logger
	clock   Clock
	ids     domain.IDGenerator
	metrics MetricsRecorder
	tracer  trace.Tracer
	seed    []domain.ChildrensHome
	seeded  bool
	policy  domain.PersistencePolicy
}

func defaultOptions() options {
	return options{
		logger:  noopLogger{},
		clock:   systemClock(),
		ids:     UUIDv7Generator{},
		metrics: noopMetrics{},
		tracer:  otel.Tracer(tracerName),
	}
}

// Option configures a Container.
type Option func(*options)

// WithLogger sets the container logger. A nil logger disables logging.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = noopLogger{}
		}
		o.logger = logger
	}
}

// WithClock overrides the time source used for generated dates.
func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithIDGenerator overrides the id strategy (UUIDv7 by default).
func WithIDGenerator(ids domain.IDGenerator) Option {
	return func(o *options) {
		if ids != nil {
			o.ids = ids
		}
	}
}

// WithMetrics installs a metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithTracer overrides the OpenTelemetry tracer (the global provider's by default).
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithSeedHomes replaces the embedded seed homes. An empty slice starts
// the directory empty.
func WithSeedHomes(homes []domain.ChildrensHome) Option {
	return func(o *options) {
		o.seed = homes
		o.seeded = true
	}
}

// WithPersistencePolicy selects which collections are durable.
func WithPersistencePolicy(p domain.PersistencePolicy) Option {
	return func(o *options) { o.policy = p }
}
