// Package handlers holds the gateway's endpoint handlers: chat
// completions (bulk and streaming), the model catalog, the health
// check, and a websocket stub that redirects clients to SSE. Each
// handler parses its request, talks to the shared backend session
// through narrow collaborator interfaces, and renders OpenAI-shaped
// responses.
//
// # Completion Pipeline
//
// The chat handler follows a fixed pipeline:
//
//  1. Parse and validate the request body
//  2. Resolve the model name through the alias table (fail-fast: an
//     unknown name is rejected before the session is touched)
//  3. Admit the request against the daily cap, when one is configured
//  4. Flatten the conversation into a single prompt
//  5. Invoke the shared session (bulk) or open a delta stream (SSE)
//  6. Render the reply in OpenAI response shape
//  7. Hand a metadata record to the usage recorder
//
// # Failure Envelope
//
// All failures surface in the OpenAI error envelope:
//
//	{
//	  "error": {
//	    "message": "gemini authentication failed: cookie expired",
//	    "type": "authentication_error",
//	    "code": "auth_error"
//	  }
//	}
//
// # Event Stream
//
// Streaming responses use Server-Sent Events:
//
//	data: {"id":"chatcmpl-...","object":"chat.completion.chunk","choices":[{"delta":{"role":"assistant"},...}]}
//	data: {"id":"chatcmpl-...","object":"chat.completion.chunk","choices":[{"delta":{"content":"Hel"},...}]}
//	data: {"id":"chatcmpl-...","object":"chat.completion.chunk","choices":[{"delta":{},"finish_reason":"stop",...}]}
//	data: [DONE]
//
// A request with N non-empty backend deltas frames exactly N+2 events
// before [DONE]: the role event, N delta events, and the finish event.
// If the backend fails mid-stream the handler emits one error event in
// the same framing and still terminates with [DONE]; the HTTP status
// remains 200 because headers were sent when the stream opened.
package handlers
