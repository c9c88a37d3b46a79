// Package retention bounds how much usage history the gateway keeps.
//
// A Janitor applies a Policy with two independent bounds: records older
// than MaxAgeDays are removed, and the total row count is trimmed to
// MaxRows from the oldest end. Sweeps run on demand via Sweep or on a
// cron schedule armed with Start.
package retention
