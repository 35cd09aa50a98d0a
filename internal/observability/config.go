package observability

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/bukukas/internal/config"
)

// Config holds observability settings. Service identity comes from the
// application config; everything else is read from the environment.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel            string
	LogFormat           string
	LogSampleInitial    int
	LogSampleThereafter int

	DBLogLevel      string
	DBSlowThreshold time.Duration

	TracingEnabled       bool
	MetricsEnabled       bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

func LoadConfig(cfg config.Config) Config {
	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "bukukas"
	}

	protocol := lower(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"))
	if traces := lower(os.Getenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL")); traces != "" {
		protocol = traces
	}
	otelEnabled := getenvBool("OTEL_ENABLED", true)

	return Config{
		ServiceName: serviceName,
		Environment: getenv("DEPLOYMENT_ENV", cfg.Environment),
		Version:     getenv("SERVICE_VERSION", cfg.AppVersion),

		LogLevel:            lower(getenv("LOG_LEVEL", "info")),
		LogFormat:           lower(getenv("LOG_FORMAT", "json")),
		LogSampleInitial:    getenvInt("LOG_SAMPLE_INITIAL", 100),
		LogSampleThereafter: getenvInt("LOG_SAMPLE_THEREAFTER", 100),

		DBLogLevel:      lower(getenv("DB_LOG_LEVEL", "warn")),
		DBSlowThreshold: getenvDuration("DB_SLOW_QUERY_THRESHOLD", 200*time.Millisecond),

		TracingEnabled:       otelEnabled,
		MetricsEnabled:       getenvBool("OTEL_METRICS_ENABLED", otelEnabled),
		OtelExporterEndpoint: getenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint),
		OtelExporterProtocol: protocol,
		OtelSamplingRatio:    getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
	}
}

// Debug is true for debug logging or a development environment.
func (c Config) Debug() bool {
	if lower(c.LogLevel) == "debug" {
		return true
	}
	switch lower(c.Environment) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

func lower(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func getenv(key, def string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return def
}

func getenvBool(key string, def bool) bool {
	switch lower(os.Getenv(key)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	}
	return def
}

func getenvInt(key string, def int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	parsed, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
