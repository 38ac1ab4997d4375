package kafka

// Config holds Kafka connection parameters.
type Config struct {
	Brokers []string

	// SASLMechanism is "PLAIN", "SCRAM-SHA-256" or "SCRAM-SHA-512".
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string
	SASLEnabled   bool

	TLS bool
}
