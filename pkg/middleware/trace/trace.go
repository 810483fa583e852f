package trace

import (
	"context"
	"time"

	"github.com/scienceol/labinv/pkg/middleware/logger"
	"go.opentelemetry.io/contrib/instrumentation/host"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type InitConfig struct {
	ServiceName     string
	Version         string
	TraceEndpoint   string
	MetricEndpoint  string
	TraceProject    string
	TraceInstanceID string
	TraceAK         string
	TraceSK         string
	// Stdout exports to stdout when no endpoint is configured.
	Stdout bool
}

var (
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
)

func (c *InitConfig) headers() map[string]string {
	h := map[string]string{}
	if c.TraceProject != "" {
		h["x-trace-project"] = c.TraceProject
	}
	if c.TraceInstanceID != "" {
		h["x-trace-instance-id"] = c.TraceInstanceID
	}
	if c.TraceAK != "" {
		h["x-trace-ak"] = c.TraceAK
	}
	if c.TraceSK != "" {
		h["x-trace-sk"] = c.TraceSK
	}
	return h
}

func InitTrace(ctx context.Context, conf *InitConfig) {
	res := resource.NewSchemaless(
		attribute.String("service.name", conf.ServiceName),
		attribute.String("service.version", conf.Version),
	)

	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	}
	switch {
	case conf.TraceEndpoint != "":
		exp, err := otlptrace.New(ctx, otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(conf.TraceEndpoint),
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithHeaders(conf.headers()),
		))
		if err != nil {
			logger.Errorf(ctx, "init otlp trace exporter err: %+v", err)
			break
		}
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exp))
	case conf.Stdout:
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			logger.Errorf(ctx, "init stdout trace exporter err: %+v", err)
			break
		}
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exp))
	}
	tracerProvider = sdktrace.NewTracerProvider(tpOpts...)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	mpOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	switch {
	case conf.MetricEndpoint != "":
		exp, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(conf.MetricEndpoint),
			otlpmetricgrpc.WithInsecure(),
			otlpmetricgrpc.WithHeaders(conf.headers()),
		)
		if err != nil {
			logger.Errorf(ctx, "init otlp metric exporter err: %+v", err)
			break
		}
		mpOpts = append(mpOpts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(30*time.Second))))
	case conf.Stdout:
		exp, err := stdoutmetric.New()
		if err != nil {
			logger.Errorf(ctx, "init stdout metric exporter err: %+v", err)
			break
		}
		mpOpts = append(mpOpts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(time.Minute))))
	}
	meterProvider = sdkmetric.NewMeterProvider(mpOpts...)
	otel.SetMeterProvider(meterProvider)

	if err := host.Start(host.WithMeterProvider(meterProvider)); err != nil {
		logger.Warnf(ctx, "start host metrics err: %+v", err)
	}
	if err := runtime.Start(runtime.WithMeterProvider(meterProvider)); err != nil {
		logger.Warnf(ctx, "start runtime metrics err: %+v", err)
	}
	initMetrics()
}

func CloseTrace() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if tracerProvider != nil {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			logger.Errorf(ctx, "shutdown tracer provider err: %+v", err)
		}
	}
	if meterProvider != nil {
		if err := meterProvider.Shutdown(ctx); err != nil {
			logger.Errorf(ctx, "shutdown meter provider err: %+v", err)
		}
	}
}
