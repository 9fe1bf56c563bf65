// Package observability configures the process-wide slog logger. Records go to a text or
// JSON handler, or through the OpenTelemetry log SDK when the otel format is chosen.
package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/processors/minsev"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
)

const serviceName = "qbtools"

// Supported log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatOTel = "otel"
)

// Instrument installs the default logger writing to w at the given level and returns a
// shutdown func that flushes pending records. The shutdown func is never nil.
func Instrument(level slog.Level, format string, w io.Writer) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	opts := &slog.HandlerOptions{Level: level}

	switch format {
	case FormatText, "":
		slog.SetDefault(slog.New(slog.NewTextHandler(w, opts)))
		return noop, nil
	case FormatJSON:
		slog.SetDefault(slog.New(slog.NewJSONHandler(w, opts)))
		return noop, nil
	case FormatOTel:
		return instrumentOTel(level, w)
	default:
		return noop, fmt.Errorf("unsupported log format: %s", format)
	}
}

func instrumentOTel(level slog.Level, w io.Writer) (func(context.Context) error, error) {
	processor, err := newProcessor(context.Background(), w)
	if err != nil {
		return nil, err
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
		sdklog.WithProcessor(minsev.NewLogProcessor(processor, severity(level))),
	)
	global.SetLoggerProvider(provider)

	// Exporter failures must not end up in the pipeline that is failing
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		fmt.Fprintf(w, "otel: %v\n", err)
	}))

	slog.SetDefault(slog.New(otelslog.NewHandler(serviceName, otelslog.WithLoggerProvider(provider))))

	return provider.Shutdown, nil
}

// newProcessor picks the exporter from OTEL_LOGS_EXPORTER (console|otlp, default otlp).
// The console exporter writes synchronously; OTLP exporters are batched.
func newProcessor(ctx context.Context, w io.Writer) (sdklog.Processor, error) {
	switch exporter := strings.ToLower(os.Getenv("OTEL_LOGS_EXPORTER")); exporter {
	case "console":
		exp, err := stdoutlog.New(stdoutlog.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("creating console log exporter: %w", err)
		}
		return sdklog.NewSimpleProcessor(exp), nil
	case "otlp", "":
		exp, err := newOTLPExporter(ctx)
		if err != nil {
			return nil, fmt.Errorf("creating otlp log exporter: %w", err)
		}
		return sdklog.NewBatchProcessor(exp), nil
	default:
		return nil, errors.New("unsupported OTEL_LOGS_EXPORTER: " + exporter)
	}
}

func newOTLPExporter(ctx context.Context) (sdklog.Exporter, error) {
	protocol := os.Getenv("OTEL_EXPORTER_OTLP_LOGS_PROTOCOL")
	if protocol == "" {
		protocol = os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL")
	}

	switch protocol {
	case "grpc":
		return otlploggrpc.New(ctx)
	case "http/protobuf", "":
		return otlploghttp.New(ctx)
	default:
		return nil, fmt.Errorf("unsupported otlp protocol: %s", protocol)
	}
}

func severity(level slog.Level) minsev.Severity {
	switch {
	case level <= slog.LevelDebug:
		return minsev.SeverityDebug
	case level <= slog.LevelInfo:
		return minsev.SeverityInfo
	case level <= slog.LevelWarn:
		return minsev.SeverityWarn
	default:
		return minsev.SeverityError
	}
}
