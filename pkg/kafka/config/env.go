package kafka_config

const (
	EnvBrokers  = "KAFKA_BROKERS"
	EnvClientID = "KAFKA_CLIENT_ID"

	EnvAppointmentsTopic    = "KAFKA_APPOINTMENTS_TOPIC"
	EnvAppointmentsDLQTopic = "KAFKA_APPOINTMENTS_DLQ_TOPIC"
	EnvNotifierGroupID      = "KAFKA_NOTIFIER_GROUP_ID"

	EnvProducerMaxAttempts  = "KAFKA_PRODUCER_MAX_ATTEMPTS"
	EnvProducerBatchTimeout = "KAFKA_PRODUCER_BATCH_TIMEOUT"
	EnvProducerRequireAcks  = "KAFKA_PRODUCER_REQUIRE_ACKS"
	EnvProducerCompression  = "KAFKA_PRODUCER_COMPRESSION"

	EnvConsumerStartOffset      = "KAFKA_CONSUMER_START_OFFSET"
	EnvConsumerMaxBytes         = "KAFKA_CONSUMER_MAX_BYTES"
	EnvConsumerMaxWait          = "KAFKA_CONSUMER_MAX_WAIT"
	EnvConsumerCommitInterval   = "KAFKA_CONSUMER_COMMIT_INTERVAL"
	EnvConsumerSessionTimeout   = "KAFKA_CONSUMER_SESSION_TIMEOUT"
	EnvConsumerRebalanceTimeout = "KAFKA_CONSUMER_REBALANCE_TIMEOUT"
	EnvConsumerMaxRetries       = "KAFKA_CONSUMER_MAX_RETRIES"
	EnvConsumerRetryBackoff     = "KAFKA_CONSUMER_RETRY_BACKOFF"

	EnvEnableMiddleware = "KAFKA_ENABLE_MIDDLEWARE"
)
