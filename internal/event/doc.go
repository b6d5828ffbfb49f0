// Package event defines the core records that flow through the resolution
// engine: raw table rows, occurrences, resolved events, and the canonical
// venue entries loaded from the location registry.
package event
