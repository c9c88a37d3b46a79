// Package gateway implements the protocol translation between the OpenAI
// Chat Completions surface and the shared Gemini backend session.
//
// The pieces line up with the request path:
//
//   - request.go parses and validates incoming bodies
//   - prompt.go flattens conversation turns into the backend prompt
//   - response.go formats completions, stream chunks, and SSE frames
//   - errors.go maps every failure onto the caller-facing error taxonomy
//
// HTTP handlers live in the handlers subpackage and middleware in the
// middleware subpackage; both build on the functions here.
package gateway
