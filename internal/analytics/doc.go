// Package analytics computes sales report figures from record snapshots.
//
// Every function here is pure: it takes its data as explicit arguments, never
// touches storage, and returns a fresh value owned by the caller. Empty inputs
// produce zero or empty results rather than errors.
package analytics
