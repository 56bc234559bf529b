package telemetry

import (
	"context"
	"fmt"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/deepworkai/deepwork/internal/config"
	"github.com/deepworkai/deepwork/internal/focus"
)

const serviceName = "deepwork"

// Exporter exports finished session metrics to an OTEL Collector.
type Exporter struct {
	provider        *sdkmetric.MeterProvider
	focusTotal      metric.Int64Counter
	distractedTotal metric.Int64Counter
	sessionsTotal   metric.Int64Counter
	nudgesTotal     metric.Int64Counter
	focusLevelHist  metric.Int64Histogram
}

// NewExporter creates an OTLP/gRPC metrics exporter.
func NewExporter(ctx context.Context, cfg config.TelemetryConfig, version string) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return newExporter(provider)
}

func newExporter(provider *sdkmetric.MeterProvider) (*Exporter, error) {
	meter := provider.Meter(serviceName)

	focusTotal, err := meter.Int64Counter(
		"deepwork_focus_seconds_total",
		metric.WithDescription("Seconds spent focused"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating focus counter: %w", err)
	}

	distractedTotal, err := meter.Int64Counter(
		"deepwork_distracted_seconds_total",
		metric.WithDescription("Seconds spent distracted"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating distracted counter: %w", err)
	}

	sessionsTotal, err := meter.Int64Counter(
		"deepwork_sessions_total",
		metric.WithDescription("Finished study sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sessions counter: %w", err)
	}

	nudgesTotal, err := meter.Int64Counter(
		"deepwork_nudges_total",
		metric.WithDescription("Nudges shown to the user"),
		metric.WithUnit("{nudge}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating nudges counter: %w", err)
	}

	focusLevelHist, err := meter.Int64Histogram(
		"deepwork_session_focus_level",
		metric.WithDescription("Average focus level per session (0-10)"),
		metric.WithExplicitBucketBoundaries(0, 2, 4, 6, 8, 10),
	)
	if err != nil {
		return nil, fmt.Errorf("creating focus level histogram: %w", err)
	}

	return &Exporter{
		provider:        provider,
		focusTotal:      focusTotal,
		distractedTotal: distractedTotal,
		sessionsTotal:   sessionsTotal,
		nudgesTotal:     nudgesTotal,
		focusLevelHist:  focusLevelHist,
	}, nil
}

// RecordSession records the metrics of a finished session.
func (e *Exporter) RecordSession(ctx context.Context, sum focus.Summary) {
	opt := metric.WithAttributes(
		attribute.String("project_name", sum.ProjectName),
		attribute.String("end_kind", string(sum.EndKind)),
		attribute.String("termination_reason", sum.TerminationReason),
	)

	e.focusTotal.Add(ctx, int64(sum.FocusSeconds), opt)
	e.distractedTotal.Add(ctx, int64(sum.DistractedSeconds), opt)
	e.sessionsTotal.Add(ctx, 1, opt)
	e.nudgesTotal.Add(ctx, int64(nudgesShown(sum.Interactions)), opt)
	e.focusLevelHist.Record(ctx, int64(sum.AverageFocusLevel), opt)
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	if err := e.provider.Shutdown(ctx); err != nil {
		log.Printf("Failed to flush metrics: %v", err)
		return err
	}
	return nil
}

func nudgesShown(interactions []focus.Interaction) int {
	n := 0
	for _, i := range interactions {
		if i.Type == focus.InteractionShown || i.Type == focus.InteractionShownPositive {
			n++
		}
	}
	return n
}

// NoOpExporter is a recorder that does nothing.
type NoOpExporter struct{}

func (NoOpExporter) RecordSession(ctx context.Context, sum focus.Summary) {}

func (NoOpExporter) Close(ctx context.Context) error {
	return nil
}
