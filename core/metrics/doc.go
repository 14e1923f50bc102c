// Package metrics defines the sinks recording advisor results for
// observability. Sinks like PromSink and InfluxSink live in infra/metrics and
// are combined with NewMultiSink; the factory helpers return a MultiSink
// automatically when several sinks are configured. Optional recorder
// interfaces let a sink opt into savings and HTTP request metrics.
package metrics
