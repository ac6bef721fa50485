package flags

import (
	"fmt"
	"slices"

	libnats "github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

var ListenAddr = &cli.StringFlag{
	Name:    "listen-addr",
	Usage:   "Address the API server listens on",
	Value:   ":8888",
	Sources: cli.EnvVars("LISTEN_ADDR"),
}

var MetricsAddr = &cli.StringFlag{
	Name:    "metrics-addr",
	Usage:   "Address the metrics/health server listens on",
	Value:   ":8080",
	Sources: cli.EnvVars("METRICS_ADDR"),
}

var DatabaseURL = &cli.StringFlag{
	Name:    "database-url",
	Usage:   "PostgreSQL DSN",
	Value:   "postgres://localhost:5432/spokd",
	Sources: cli.EnvVars("DATABASE_URL"),
}

var NATSUrl = &cli.StringFlag{
	Name:    "nats-url",
	Aliases: []string{"n"},
	Usage:   "The URL of the NATS server",
	Value:   libnats.DefaultURL,
	Sources: cli.EnvVars("NATS_URL"),
}

var InitNATS = &cli.BoolFlag{
	Name:        "nats-init",
	Aliases:     []string{"i"},
	Usage:       "Initialize the NATS server: create streams, KV buckets, etc.",
	DefaultText: "false",
	Value:       false,
	Sources:     cli.EnvVars("NATS_INIT"),
}

var TokenSecret = &cli.StringFlag{
	Name:    "token-secret",
	Usage:   "HMAC secret for session tokens",
	Sources: cli.EnvVars("TOKEN_SECRET"),
}

var SMSGatewayURL = &cli.StringFlag{
	Name:    "sms-gateway-url",
	Usage:   "Base URL of the SMS gateway",
	Sources: cli.EnvVars("SMS_GATEWAY_URL"),
}

var SMSGatewayKey = &cli.StringFlag{
	Name:    "sms-gateway-key",
	Usage:   "API key for the SMS gateway",
	Sources: cli.EnvVars("SMS_GATEWAY_KEY"),
}

var LogLevel = &cli.StringFlag{
	Name:    "log-level",
	Aliases: []string{"l"},
	Usage:   "The level of the logs",
	Value:   "info",
	Validator: func(value string) error {
		if !slices.Contains(validLogLevels, value) {
			return fmt.Errorf("invalid log level: %s, allowed values are: %s", value, validLogLevels)
		}
		return nil
	},
	Sources: cli.EnvVars("LOG_LEVEL"),
}
