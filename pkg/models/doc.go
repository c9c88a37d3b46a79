// Package models owns the model name table: which Gemini models the
// gateway advertises and which foreign names (OpenAI-style aliases) map
// onto them.
//
// Every request resolves its model through the Registry before the session
// is touched; an unresolvable name fails fast with *UnknownModelError and
// never reaches the backend. The table ships with built-in defaults and can
// be replaced at runtime from a YAML file, with a TableWatcher reloading
// the file on change.
package models
