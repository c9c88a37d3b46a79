// Package middleware provides the HTTP middleware shared by all gateway
// routes: request correlation, structured request logging, CORS, and
// panic recovery.
//
// The server assembles the chain outermost-first:
//
//	handler = Recovery(RequestID(Logging(CORS(policy)(mux))))
//
// Recovery sits outermost so even a panic inside another middleware
// still produces a well-formed 500. RequestID runs before Logging so
// every log line carries the correlation ID.
//
// There is deliberately no per-request timeout middleware: a shared
// deadline would sever long-lived SSE streams. Upstream hangs are
// bounded by the backend request timeout instead.
//
// The correlation ID comes from the client's X-Request-ID header when
// present, otherwise a fresh UUID. It is echoed in the response header,
// attached to the request context (RequestIDFrom), and reused as the
// chatcmpl- completion ID suffix, so one identifier links the client's
// view, the logs, and the usage records.
package middleware
