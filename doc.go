// Package sharedauth authenticates users and keeps them logged in across
// requests and across interchangeable front-end processes.
//
// The package is the auth service: [Service.Signup], [Service.Login],
// [Service.Logout], [Service.CurrentUser] and [Service.ListUsers]. Session
// identity lives in Redis behind a signed cookie (package session);
// credentials live in a relational store (package credential) and are only
// ever compared through a [password.Hasher].
//
// Service methods are safe to call from multiple goroutines after
// initialization through [Builder.Build]. The only in-process mutable state
// is the metrics counters and the audit dispatcher queue.
//
// # What this package must NOT do
//
//   - Store, log or return plaintext passwords or password digests.
//   - Hold session state between requests; every request resolves its
//     session from the shared store.
//   - Let raw driver errors escape without one of the sentinels in errors.go.
package sharedauth
