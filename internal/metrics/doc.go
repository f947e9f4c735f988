// Package metrics collects redirect service metrics through a buffered event
// channel and exposes a JSON snapshot over HTTP. Events are emitted by the
// request handler and aggregated into outcome counts and resolution latency
// percentiles.
package metrics
