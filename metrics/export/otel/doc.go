// Package otel binds sharedauth counters to OpenTelemetry observable
// instruments.
//
// [NewExporter] registers one Int64ObservableCounter per service counter and
// one Int64ObservableGauge per histogram bucket. A single callback reads the
// service snapshot on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider; callers supply the Meter.
//   - Mutate service state.
package otel
