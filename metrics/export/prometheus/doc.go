// Package prometheus renders sharedauth counters in the Prometheus text
// exposition format.
//
// [NewExporter] reads a [sharedauth.Service] snapshot on every scrape.
// Counter names are prefixed sharedauth_*_total; the single histogram is
// sharedauth_login_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global registry; callers mount the Handler.
//   - Mutate service state.
package prometheus
