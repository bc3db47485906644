package kafka_config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"salonbook/pkg/logger"
)

// Topics names the streams appointment events travel on.
type Topics struct {
	Appointments    string
	AppointmentsDLQ string
	NotifierGroupID string
}

type ProducerConfig struct {
	MaxAttempts  int
	BatchTimeout time.Duration
	RequireAcks  int    // -1 all replicas, 0 none, 1 leader
	Compression  string // none, gzip, snappy, lz4, zstd
}

type ConsumerConfig struct {
	StartOffset      int64 // -1 newest, -2 oldest
	MaxBytes         int
	MaxWait          time.Duration
	CommitInterval   time.Duration
	SessionTimeout   time.Duration
	RebalanceTimeout time.Duration
	MaxRetries       int
	RetryBackoff     time.Duration
}

type Config struct {
	Brokers  []string
	ClientID string
	Topics   Topics
	Producer ProducerConfig
	Consumer ConsumerConfig

	EnableMiddleware bool
}

var compressions = []string{"none", "gzip", "snappy", "lz4", "zstd"}

// Load reads the Kafka settings from the environment and exits on invalid values.
func Load(log *logger.Logger) *Config {
	cfg := &Config{
		Brokers:  splitBrokers(envOr(EnvBrokers, DefaultBrokers, parseString)),
		ClientID: envOr(EnvClientID, DefaultClientID, parseString),
		Topics: Topics{
			Appointments:    envOr(EnvAppointmentsTopic, DefaultAppointmentsTopic, parseString),
			AppointmentsDLQ: envOr(EnvAppointmentsDLQTopic, DefaultAppointmentsDLQTopic, parseString),
			NotifierGroupID: envOr(EnvNotifierGroupID, DefaultNotifierGroupID, parseString),
		},
		Producer: ProducerConfig{
			MaxAttempts:  envOr(EnvProducerMaxAttempts, DefaultProducerMaxAttempts, strconv.Atoi),
			BatchTimeout: envOr(EnvProducerBatchTimeout, DefaultProducerBatchTimeout, time.ParseDuration),
			RequireAcks:  envOr(EnvProducerRequireAcks, DefaultProducerRequireAcks, strconv.Atoi),
			Compression:  envOr(EnvProducerCompression, DefaultProducerCompression, parseString),
		},
		Consumer: ConsumerConfig{
			StartOffset:      envOr(EnvConsumerStartOffset, int64(DefaultConsumerStartOffset), parseInt64),
			MaxBytes:         envOr(EnvConsumerMaxBytes, DefaultConsumerMaxBytes, strconv.Atoi),
			MaxWait:          envOr(EnvConsumerMaxWait, DefaultConsumerMaxWait, time.ParseDuration),
			CommitInterval:   envOr(EnvConsumerCommitInterval, DefaultConsumerCommitInterval, time.ParseDuration),
			SessionTimeout:   envOr(EnvConsumerSessionTimeout, DefaultConsumerSessionTimeout, time.ParseDuration),
			RebalanceTimeout: envOr(EnvConsumerRebalanceTimeout, DefaultConsumerRebalanceTimeout, time.ParseDuration),
			MaxRetries:       envOr(EnvConsumerMaxRetries, DefaultConsumerMaxRetries, strconv.Atoi),
			RetryBackoff:     envOr(EnvConsumerRetryBackoff, DefaultConsumerRetryBackoff, time.ParseDuration),
		},
		EnableMiddleware: envOr(EnvEnableMiddleware, DefaultEnableMiddleware, strconv.ParseBool),
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal("Kafka configuration validation failed", "error", err)
	}
	cfg.LogConfiguration(log)

	return cfg
}

func (cfg *Config) Validate() error {
	var errors []string

	if len(cfg.Brokers) == 0 {
		errors = append(errors, "At least one Kafka broker is required")
	}
	if cfg.Topics.Appointments == "" {
		errors = append(errors, "Appointments topic cannot be empty")
	}
	if cfg.Topics.AppointmentsDLQ == cfg.Topics.Appointments {
		errors = append(errors, "Appointments DLQ topic must differ from the appointments topic")
	}
	if cfg.Topics.NotifierGroupID == "" {
		errors = append(errors, "Notifier group id cannot be empty")
	}

	p := cfg.Producer
	if p.MaxAttempts <= 0 {
		errors = append(errors, fmt.Sprintf("Producer.MaxAttempts must be positive, got: %d", p.MaxAttempts))
	}
	if p.BatchTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("Producer.BatchTimeout must be positive, got: %s", p.BatchTimeout))
	}
	if p.RequireAcks < -1 || p.RequireAcks > 1 {
		errors = append(errors, fmt.Sprintf("Producer.RequireAcks must be -1, 0, or 1, got: %d", p.RequireAcks))
	}
	if !validCompression(p.Compression) {
		errors = append(errors, fmt.Sprintf("Producer.Compression must be one of [%s], got: %s", strings.Join(compressions, ", "), p.Compression))
	}

	c := cfg.Consumer
	if c.StartOffset != -1 && c.StartOffset != -2 {
		errors = append(errors, fmt.Sprintf("Consumer.StartOffset must be -1 (newest) or -2 (oldest), got: %d", c.StartOffset))
	}
	if c.MaxBytes <= 0 {
		errors = append(errors, fmt.Sprintf("Consumer.MaxBytes must be positive, got: %d", c.MaxBytes))
	}
	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"Consumer.MaxWait", c.MaxWait},
		{"Consumer.CommitInterval", c.CommitInterval},
		{"Consumer.SessionTimeout", c.SessionTimeout},
		{"Consumer.RebalanceTimeout", c.RebalanceTimeout},
	} {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}
	if c.MaxRetries < 0 {
		errors = append(errors, fmt.Sprintf("Consumer.MaxRetries cannot be negative, got: %d", c.MaxRetries))
	}
	if c.RetryBackoff < 0 {
		errors = append(errors, fmt.Sprintf("Consumer.RetryBackoff cannot be negative, got: %s", c.RetryBackoff))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}
	return nil
}

func (cfg *Config) LogConfiguration(log *logger.Logger) {
	log.Info("Kafka configuration loaded successfully",
		"brokers", cfg.Brokers,
		"client_id", cfg.ClientID,
		"appointments_topic", cfg.Topics.Appointments,
		"appointments_dlq_topic", cfg.Topics.AppointmentsDLQ,
		"notifier_group_id", cfg.Topics.NotifierGroupID,
		"producer_require_acks", cfg.Producer.RequireAcks,
		"producer_compression", cfg.Producer.Compression,
		"consumer_start_offset", cfg.Consumer.StartOffset,
		"consumer_max_retries", cfg.Consumer.MaxRetries,
		"enable_middleware", cfg.EnableMiddleware,
	)
}

func validCompression(name string) bool {
	for _, c := range compressions {
		if c == name {
			return true
		}
	}
	return false
}

func splitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// envOr parses key with parse, falling back when unset or malformed.
func envOr[T any](key string, fallback T, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		return fallback
	}
	return v
}

func parseString(s string) (string, error) { return s, nil }

func parseInt64(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }
