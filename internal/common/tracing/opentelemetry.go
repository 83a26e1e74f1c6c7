// Package tracing 提供 OpenTelemetry 分布式追踪
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/config"
)

const defaultServiceName = "hotel-frontdesk-backend"

// Config 追踪配置
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string // OTLP gRPC 地址，为空时输出到 stdout
	SampleRate     float64
	Enabled        bool
}

// Tracer 追踪器包装，未启用时所有 span 为空操作
type Tracer struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	config   *Config
}

var defaultTracer *Tracer

// FromConfig 由应用配置构建追踪配置
func FromConfig(cfg *config.TracingConfig, version, environment string) *Config {
	return &Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: version,
		Environment:    environment,
		Endpoint:       cfg.Endpoint,
		SampleRate:     cfg.SampleRate,
		Enabled:        cfg.Enabled,
	}
}

// Init 初始化全局追踪器
func Init(cfg *Config) (*Tracer, error) {
	if cfg == nil {
		cfg = &Config{ServiceName: defaultServiceName, Environment: "development", SampleRate: 1.0, Enabled: true}
	}
	if !cfg.Enabled {
		defaultTracer = &Tracer{config: cfg}
		return defaultTracer, nil
	}

	exporter, err := newExporter(cfg)
	if err != nil {
		return nil, err
	}
	t, err := newTracer(cfg, sdktrace.WithBatcher(exporter))
	if err != nil {
		return nil, err
	}

	otel.SetTracerProvider(t.provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	defaultTracer = t
	return t, nil
}

func newExporter(cfg *Config) (sdktrace.SpanExporter, error) {
	if cfg.Endpoint == "" {
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create stdout exporter: %w", err)
		}
		return exporter, nil
	}
	exporter, err := otlptrace.New(context.Background(), otlptracegrpc.NewClient(
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	))
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}
	return exporter, nil
}

// newTracer 按配置创建 provider，span 处理方式由 opts 决定
func newTracer(cfg *Config, opts ...sdktrace.TracerProviderOption) (*Tracer, error) {
	name := cfg.ServiceName
	if name == "" {
		name = defaultServiceName
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(name),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	opts = append(opts,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler(cfg.SampleRate))),
	)
	provider := sdktrace.NewTracerProvider(opts...)
	return &Tracer{provider: provider, tracer: provider.Tracer(name), config: cfg}, nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// GetTracer 获取默认追踪器，未初始化时返回空操作追踪器
func GetTracer() *Tracer {
	if defaultTracer == nil {
		return &Tracer{config: &Config{}}
	}
	return defaultTracer
}

// Shutdown 刷新未导出的 span 并关闭
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// StartSpan 开始一个带属性的内部 span
func (t *Tracer) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if t.tracer == nil {
		return ctx, noop.Span{}
	}
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// SetError 在当前 span 上记录错误并标记失败
func SetError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// 业务属性键
var (
	AttrEmployeeID = attribute.Key("employee.id")
	AttrStayID     = attribute.Key("stay.id")
	AttrOperation  = attribute.Key("operation")
	AttrOutboxKind = attribute.Key("outbox.kind")
)

// WithEmployeeID 员工 ID
func WithEmployeeID(id int64) attribute.KeyValue {
	return AttrEmployeeID.Int64(id)
}

// WithStayID 住宿 ID
func WithStayID(id int64) attribute.KeyValue {
	return AttrStayID.Int64(id)
}

// WithOperation 状态迁移名称
func WithOperation(op string) attribute.KeyValue {
	return AttrOperation.String(op)
}

// WithOutboxKind 出站事件主题
func WithOutboxKind(kind string) attribute.KeyValue {
	return AttrOutboxKind.String(kind)
}
