// LivCap Translate is an OpenAI-compatible HTTP gateway in front of a
// single shared Gemini session.
//
// It accepts chat completion requests in the OpenAI wire format and serves
// them from one long-lived Gemini session, providing:
//   - OpenAI-compatible /v1/chat/completions with bulk and SSE streaming
//   - Model aliasing with a hot-reloadable model table
//   - Daily per-model request caps with persistent counters
//   - Usage recording with scheduled retention pruning
//   - Prometheus metrics and structured logging
//
// Usage:
//
//	# Start the gateway with built-in defaults
//	livcap-translate run
//
//	# Start with a configuration file
//	livcap-translate run --config /path/to/config.yaml
//
//	# Show version information
//	livcap-translate version
//
//	# Validate a configuration file
//	livcap-translate validate --config config.yaml
//
//	# Query recorded usage
//	livcap-translate usage query --since 24h
//
// For complete documentation, see: https://github.com/w93163red/LivCap-Translate
package main

func main() {
	Execute()
}
