// Package recorder provides asynchronous usage recording.
//
// The chat handler hands each finished request's metadata to the recorder,
// which enqueues it on a buffered channel; a background worker drains the
// channel into storage. The request path never waits on a disk write, and a
// full buffer drops the record with a logged error rather than applying
// backpressure.
//
// Close drains the channel before returning, so records accepted before
// shutdown still reach storage.
package recorder
