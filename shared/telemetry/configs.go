package telemetry

// Predefined service configurations
var (
	// OrderServiceConfig is the telemetry configuration for the order service
	OrderServiceConfig = Config{
		ServiceName:    "order-service",
		ServiceVersion: "1.0.0",
	}

	// PaymentServiceConfig is the telemetry configuration for the payment service
	PaymentServiceConfig = Config{
		ServiceName:    "payment-service",
		ServiceVersion: "1.0.0",
	}

	// ShipmentServiceConfig is the telemetry configuration for the shipment service
	ShipmentServiceConfig = Config{
		ServiceName:    "shipment-service",
		ServiceVersion: "1.0.0",
	}

	// OrchestratorConfig is the telemetry configuration for the saga orchestrator
	OrchestratorConfig = Config{
		ServiceName:    "saga-orchestrator",
		ServiceVersion: "1.0.0",
	}
)

// WithOTLPEndpoint sets the OTLP endpoint for a config
func (c Config) WithOTLPEndpoint(endpoint string) Config {
	c.OTLPEndpoint = endpoint
	return c
}

// WithVersion sets the service version for a config
func (c Config) WithVersion(version string) Config {
	c.ServiceVersion = version
	return c
}
