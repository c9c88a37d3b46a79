// Package metrics provides Prometheus metrics for the gateway.
//
// A single Collector owns every metric and its private registry. The
// server instruments each route through Collector.Instrument, the chat
// handler records completion outcomes and stream deltas, and the session
// manager reports re-creates and pacing waits.
//
// # Metrics
//
//   - livcap_gateway_requests_total{endpoint, method, code}
//   - livcap_gateway_request_duration_seconds{endpoint}
//   - livcap_gateway_requests_in_flight
//   - livcap_gateway_completions_total{model, mode, status}
//   - livcap_gateway_completion_duration_seconds{model, mode}
//   - livcap_gateway_stream_deltas_total{model}
//   - livcap_gateway_session_restarts_total
//   - livcap_gateway_pace_wait_seconds
//
// The completion status label is "ok" on success and the mapped error
// type on failure, so dashboards can split failures by class without a
// second metric.
package metrics
