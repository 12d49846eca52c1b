// Package catalog provides the static substitute data set served when the
// live observation source is unavailable.
//
// The catalog tracks eight air-care queries against the brands Levoit,
// Dyson, Coway and Honeywell. Its data is deterministic: every call with
// the same arguments and clock returns the same values, so fallback views
// are stable across refreshes.
package catalog
