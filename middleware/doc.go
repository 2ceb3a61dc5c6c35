// Package middleware exposes net/http adapters over [sharedauth.Service] for
// applications that do not use the bundled gin routers.
//
// # Adapters
//
//   - [Sessions] resolves the request's session once and stores the handle
//     in the request context.
//   - [RequireUser] rejects anonymous requests with 401 and exposes the
//     bound [sharedauth.UserSummary].
//
// # What this package must NOT do
//
//   - Parse cookies or tokens directly (delegates to session.Manager).
//   - Access Redis or the credential database.
//   - Write session cookies; Login and Logout return them to the caller.
package middleware
