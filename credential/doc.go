// Package credential is the client for the relational store that holds user
// accounts and password digests.
//
// The [Store] contract is deliberately narrow: create a user, look one up by
// email or id, stamp a successful login, list users. Email uniqueness is
// enforced by a unique index; [SQLStore.Create] performs a single INSERT and
// maps the driver's uniqueness violation to [ErrDuplicateEmail], so
// concurrent signups for one address produce exactly one row.
//
// Two dialects are supported: PostgreSQL through github.com/lib/pq and
// SQLite through modernc.org/sqlite (local development and tests).
package credential
