package mqtt

// Publisher sends payloads to an MQTT broker.
type Publisher interface {
	// Publish sends payload to topic. Retained messages are kept by the
	// broker for late subscribers.
	Publish(topic string, payload []byte, retained bool) error

	// Disconnect closes the connection to the broker.
	Disconnect()
}
