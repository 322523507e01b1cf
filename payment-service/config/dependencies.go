package config

import (
	"context"
	"fmt"
	"log/slog"

	orderinfra "github.com/LuanFernandes23/SagaPattern/order-service/infrastructure"
	"github.com/LuanFernandes23/SagaPattern/payment-service/application"
	"github.com/LuanFernandes23/SagaPattern/payment-service/handlers"
	"github.com/LuanFernandes23/SagaPattern/payment-service/infrastructure"
	sharedinfra "github.com/LuanFernandes23/SagaPattern/shared/infrastructure"
	"github.com/LuanFernandes23/SagaPattern/shared/messaging"
	"github.com/LuanFernandes23/SagaPattern/shared/telemetry"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Dependencies struct {
	// Database
	DB *sqlx.DB

	// Telemetry
	Telemetry *telemetry.Telemetry

	// Repositories
	PaymentRepository *infrastructure.PostgresPaymentRepository

	// Use Cases
	ProcessPayment *application.ProcessPayment
	RefundPayment  *application.RefundPayment
	GetPayment     *application.GetPayment

	// HTTP Handlers
	PaymentHandlers *handlers.PaymentHandlers

	// Event Handlers
	PaymentEventHandlers *handlers.PaymentEventHandlers

	// Infrastructure
	EventPublisher  messaging.Publisher
	EventSubscriber messaging.Subscriber
	DeadLetters     messaging.DeadLetterSink

	rabbit            *sharedinfra.RabbitMQConnection
	telemetryShutdown func()
}

func BuildDependencies(ctx context.Context, config *Config) (*Dependencies, error) {
	deps := &Dependencies{}
	logger := slog.Default()

	tel, telShutdown, err := telemetry.InitTelemetry(ctx,
		telemetry.PaymentServiceConfig.WithOTLPEndpoint(config.Telemetry.OTLPEndpoint))
	if err != nil {
		return nil, fmt.Errorf("failed to init telemetry: %w", err)
	}
	deps.Telemetry = tel
	deps.telemetryShutdown = telShutdown

	// Initialize database
	db, err := sqlx.Connect("postgres", config.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	deps.DB = db
	deps.DeadLetters = sharedinfra.NewPostgresDeadLetterStore(db)

	// Initialize broker transport
	if err := deps.buildBroker(ctx, config, logger); err != nil {
		return nil, err
	}

	// Initialize repositories. Orders are read from the shared orders store;
	// the payment service never writes them.
	deps.PaymentRepository = infrastructure.NewPostgresPaymentRepository(db)
	orders := orderinfra.NewPostgresOrderRepository(db)

	// Initialize use cases
	gateway := infrastructure.NewStaticGateway(config.Gateway.ApproveLimit)
	deps.ProcessPayment = application.NewProcessPayment(deps.PaymentRepository, orders, gateway, deps.EventPublisher, logger)
	deps.RefundPayment = application.NewRefundPayment(deps.PaymentRepository)
	deps.GetPayment = application.NewGetPayment(deps.PaymentRepository)

	// Initialize handlers
	deps.PaymentHandlers = handlers.NewPaymentHandlers(deps.RefundPayment, deps.GetPayment)
	deps.PaymentEventHandlers = handlers.NewPaymentEventHandlers(deps.ProcessPayment, deps.RefundPayment, logger)

	return deps, nil
}

func (d *Dependencies) buildBroker(ctx context.Context, config *Config, logger *slog.Logger) error {
	switch config.Broker.Kind {
	case "rabbitmq":
		d.rabbit = sharedinfra.NewRabbitMQConnection(config.Broker.RabbitMQURL, logger)
		d.EventPublisher = sharedinfra.NewRabbitMQPublisher(d.rabbit, config.Broker.Exchange)
		d.EventSubscriber = sharedinfra.NewRabbitMQSubscriber(d.rabbit, config.Broker.Exchange, config.Broker.Queue, d.DeadLetters, logger)

	case "aws":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("failed to load AWS config: %w", err)
		}
		d.EventPublisher = sharedinfra.NewSNSPublisher(sns.NewFromConfig(awsCfg), config.Broker.SNSTopicArn)
		d.EventSubscriber = sharedinfra.NewSQSSubscriber(sqs.NewFromConfig(awsCfg), config.Broker.SQSQueueURL, d.DeadLetters, logger)

	case "memory":
		broker := sharedinfra.NewMemoryBroker(logger)
		d.EventPublisher = broker
		d.EventSubscriber = broker.Queue(config.Broker.Queue, d.DeadLetters)

	default:
		return fmt.Errorf("unknown broker kind %q", config.Broker.Kind)
	}

	return nil
}

// Close closes all dependencies
func (d *Dependencies) Close() error {
	var errs []error

	if d.rabbit != nil {
		if err := d.rabbit.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close broker connection: %w", err))
		}
	}

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if d.telemetryShutdown != nil {
		d.telemetryShutdown()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing dependencies: %v", errs)
	}

	return nil
}
