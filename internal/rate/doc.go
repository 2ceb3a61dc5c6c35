// Package rate provides a Redis-backed throttle for failed login attempts.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key prefixes:
//   - "sl:" counts failed logins per email
//   - "sli:" counts failed logins per client IP
//
// Counters are shared through Redis, so every server process sees the same
// budget for a given email or IP.
//
// # What this package must NOT do
//
//   - Decide whether credentials are valid.
//   - Be imported outside this module.
package rate
