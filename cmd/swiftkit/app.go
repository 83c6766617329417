package main

import (
	"context"
	stderrors "errors"
	"fmt"

	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/swiftkit/config"
	"github.com/kbukum/swiftkit/logger"
	"github.com/kbukum/swiftkit/observability"
	"github.com/kbukum/swiftkit/redis"
	"github.com/kbukum/swiftkit/swift"
	"github.com/kbukum/swiftkit/version"
)

const serviceName = "swiftkit"

// fileConfig is the layout of swiftkit.yml. Every key can be overridden by
// its environment variable, e.g. SWIFT_AUTH_URL or REDIS_ADDR.
type fileConfig struct {
	Swift     config.Options  `yaml:"swift" mapstructure:"swift"`
	Redis     redis.Config    `yaml:"redis" mapstructure:"redis"`
	Logging   logger.Config   `yaml:"logging" mapstructure:"logging"`
	Telemetry telemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

type telemetryConfig struct {
	// Endpoint is the OTLP HTTP collector (host:port). Empty disables export.
	Endpoint    string `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure    bool   `yaml:"insecure" mapstructure:"insecure"`
	Environment string `yaml:"environment" mapstructure:"environment"`
}

// app holds what the commands share. The Swift client is created on first
// use so that commands such as version work without credentials.
type app struct {
	cfg    fileConfig
	log    *logger.Logger
	redis  *redis.Client
	swift  *swift.Client
	tracer *trace.TracerProvider
	meter  *metric.MeterProvider
}

func (a *app) setup(ctx context.Context, flags *rootFlags) error {
	var opts []config.LoaderOption
	if flags.configFile != "" {
		opts = append(opts, config.WithConfigFile(flags.configFile))
	}
	if flags.envFile != "" {
		opts = append(opts, config.WithEnvFile(flags.envFile))
	}
	if err := config.Load(&a.cfg, opts...); err != nil {
		return err
	}
	if flags.redisAddr != "" {
		a.cfg.Redis.Enabled = true
		a.cfg.Redis.Addr = flags.redisAddr
	}
	if flags.logLevel != "" {
		a.cfg.Logging.Level = flags.logLevel
	}

	a.cfg.Logging.ApplyDefaults()
	if err := a.cfg.Logging.Validate(); err != nil {
		return err
	}
	a.log = logger.New(&a.cfg.Logging, serviceName)

	if a.cfg.Telemetry.Endpoint != "" {
		if err := a.initTelemetry(ctx); err != nil {
			a.log.Warn("telemetry disabled", logger.ErrorFields("init_telemetry", err))
		}
	}

	if a.cfg.Redis.Enabled {
		client, err := redis.New(a.cfg.Redis, a.log)
		if err != nil {
			return err
		}
		a.redis = client
		a.cfg.Swift.Cache = redis.NewStore(client, a.cfg.Redis.KeyPrefix)
	}
	return nil
}

func (a *app) initTelemetry(ctx context.Context) error {
	tc := observability.DefaultTracerConfig(serviceName)
	tc.ServiceVersion = version.GetShortVersion()
	tc.Endpoint = a.cfg.Telemetry.Endpoint
	tc.Insecure = a.cfg.Telemetry.Insecure
	if a.cfg.Telemetry.Environment != "" {
		tc.Environment = a.cfg.Telemetry.Environment
	}
	tp, err := observability.InitTracer(ctx, tc, a.log)
	if err != nil {
		return err
	}
	a.tracer = tp

	mc := observability.DefaultMeterConfig(serviceName)
	mc.ServiceVersion = tc.ServiceVersion
	mc.Endpoint = tc.Endpoint
	mc.Insecure = tc.Insecure
	mc.Environment = tc.Environment
	mp, err := observability.InitMeter(ctx, mc, a.log)
	if err != nil {
		return err
	}
	a.meter = mp
	return nil
}

// client returns the Swift client, authenticating on first use.
func (a *app) client(ctx context.Context) (*swift.Client, error) {
	if a.swift != nil {
		return a.swift, nil
	}
	c, err := swift.New(ctx, a.cfg.Swift, swift.WithLogger(a.log))
	if err != nil {
		return nil, fmt.Errorf("connect to swift: %w", err)
	}
	a.swift = c
	return c, nil
}

// checkers lists the components health reports on.
func (a *app) checkers(ctx context.Context) ([]observability.HealthChecker, error) {
	c, err := a.client(ctx)
	if err != nil {
		return nil, err
	}
	out := []observability.HealthChecker{c}
	if a.redis != nil {
		out = append(out, a.redis)
	}
	return out, nil
}

func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.swift != nil {
		errs = append(errs, a.swift.Close(ctx))
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.tracer != nil {
		errs = append(errs, a.tracer.Shutdown(ctx))
	}
	if a.meter != nil {
		errs = append(errs, a.meter.Shutdown(ctx))
	}
	return stderrors.Join(errs...)
}
