// Package types defines the OpenAI-compatible wire types served by the
// gateway.
//
// Everything here is shaped by one constraint: clients are stock OpenAI
// SDKs pointed at a local base URL, and none of them may need a code
// change. ChatCompletionRequest and Message mirror the Chat Completions
// request body; ChatCompletionResponse, Choice, Usage and the streaming
// ChatCompletionStreamChunk/StreamChoice/Delta trio mirror the two
// response modes; Model and ModelList back the /v1/models catalog; and
// ErrorResponse/ErrorDetail carry the error envelope together with the
// type and code taxonomy the rest of the gateway maps failures onto.
//
// A typical client does no more than this:
//
//	gateway = OpenAI(base_url="http://127.0.0.1:11435/v1", api_key="unused")
//	reply = gateway.chat.completions.create(
//	    model="gemini-3.0-flash",
//	    messages=[{"role": "user", "content": "Translate this caption."}],
//	)
//
// Two deliberate deviations from a literal OpenAI transcript: Usage is
// always present with zero counts, because the backend session hides
// token accounting and SDKs handle zeros better than omission; and
// Message.Content stays untyped so multimodal part arrays survive
// decoding until prompt building flattens them.
//
// ChatCompletionRequest.Validate performs the well-formedness checks and
// names the offending field in a *ValidationError, which the request
// parsing layer turns into an invalid_request_error payload.
package types
