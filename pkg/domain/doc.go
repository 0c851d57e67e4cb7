// Package domain is the shared kernel every bounded context builds on: typed
// identifiers, the aggregate root with its pending-event buffer, and the
// generic status history used by finite-state aggregates.
package domain
