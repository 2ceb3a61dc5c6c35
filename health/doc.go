// Package health probes the application's backing services.
//
// A [Probe] runs its checks in registration order, each under its own
// timeout, and reports every result. [Report.FirstFailure] names the first
// failing component so callers get a deterministic answer when several
// dependencies are down at once. A check that panics is reported as failed.
package health
