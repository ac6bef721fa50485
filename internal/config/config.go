package config

type Config struct {
	ListenAddr  string `flag:"listen-addr"`
	MetricsAddr string `flag:"metrics-addr"`

	DatabaseURL string `flag:"database-url"`

	NATSURL  string `flag:"nats-url"`
	NATSInit bool   `flag:"nats-init"`

	TokenSecret string `flag:"token-secret"`

	SMSGatewayURL string `flag:"sms-gateway-url"`
	SMSGatewayKey string `flag:"sms-gateway-key"`

	LogLevel string `flag:"log-level"`
}
