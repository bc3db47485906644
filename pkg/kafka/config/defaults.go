package kafka_config

import "time"

const (
	DefaultBrokers  = "localhost:9092"
	DefaultClientID = "salonbook"

	DefaultAppointmentsTopic    = "appointments.events"
	DefaultAppointmentsDLQTopic = "appointments.events.dlq"
	DefaultNotifierGroupID      = "salonbook-notifier"

	// Appointment events are acknowledged by every replica before the
	// booking commit reports success.
	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1
	DefaultProducerCompression  = "snappy"

	// A fresh notifier group only needs recent events; its broker keeps a
	// bounded history anyway.
	DefaultConsumerStartOffset      = -1
	DefaultConsumerMaxBytes         = 1 << 20
	DefaultConsumerMaxWait          = 250 * time.Millisecond
	DefaultConsumerCommitInterval   = time.Second
	DefaultConsumerSessionTimeout   = 10 * time.Second
	DefaultConsumerRebalanceTimeout = 30 * time.Second
	DefaultConsumerMaxRetries       = 3
	DefaultConsumerRetryBackoff     = 200 * time.Millisecond

	DefaultEnableMiddleware = true
)
