// Package infra contains technical adapters: storage backends, the MQTT
// notifier, metrics sinks, the tariff feed and error monitoring. These
// packages depend only on the interfaces defined in the core packages.
package infra
