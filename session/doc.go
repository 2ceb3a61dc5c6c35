// Package session provides Redis-backed server-side sessions shared by every
// process of the application.
//
// # Model
//
// A session is a random id held by the browser in a signed cookie and a
// [State] held in Redis under that id. Processes keep nothing between
// requests: [Manager.Resolve] rebuilds a [Handle] from the cookie and the
// store on every request, so any process can serve any request.
//
// # Binary encoding
//
// [State] is stored as a compact binary blob whose first byte is the schema
// version. [Decode] rejects unknown versions, truncated or trailing bytes, and
// blobs whose kind and user fields disagree.
//
// # Expiry
//
// Lifetime is fixed at first save. Later saves keep the original expiry, and
// the Redis TTL always equals the remaining lifetime.
//
// # What this package must NOT do
//
//   - Import the root package or the credential store (no upward imports).
//   - Store passwords or password digests in [State].
//   - Surface store failures from Resolve; they degrade to anonymous.
package session
