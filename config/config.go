package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all service configuration, loaded from environment variables.
type Config struct {
	Port      int    `env:"PORT" envDefault:"3000"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	PgURL     string `env:"PG_URL,required"`
	PgPoolMax int    `env:"PG_POOL_MAX" envDefault:"10"`

	// Saleor GraphQL API
	SaleorAPIURL         string        `env:"SALEOR_API_URL,required"`
	SaleorAPIToken       string        `env:"SALEOR_API_TOKEN"`
	SaleorTimeout        time.Duration `env:"SALEOR_HTTP_TIMEOUT" envDefault:"20s"`
	SaleorRetryAttempts  int           `env:"SALEOR_RETRY_ATTEMPTS" envDefault:"3"`
	SaleorStorefrontHost string        `env:"SALEOR_STOREFRONT_HOST"`
	SaleorChannel        string        `env:"SALEOR_CHANNEL" envDefault:"default-channel"`

	// Public base URL of this service, used in the app manifest
	// (token target and webhook target URLs).
	AppBaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:3000"`

	// Ordered list of fulfillment pipeline step names. Loaded once at startup;
	// the sequence is immutable for the lifetime of the process.
	FulfillmentPipeline []string `env:"FULFILLMENT_PIPELINE" envSeparator:"," envDefault:"resolve_user,resolve_courses,enroll_user,report_fulfillment"`

	// Kafka enrollment events (disabled when no brokers are configured)
	KafkaBrokers          []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaEnrollmentsTopic string   `env:"KAFKA_ENROLLMENTS_TOPIC" envDefault:"enrollments.events"`

	// OpenSearch enrollment audit sink (disabled when no URLs are configured)
	OpensearchURLs            []string `env:"OPENSEARCH_URLS" envSeparator:","`
	OpensearchIndexEnrollment string   `env:"OPENSEARCH_INDEX_ENROLLMENTS" envDefault:"enrollment-events"`
}

// New loads the configuration from the environment.
func New() (Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}

	return c, nil
}
