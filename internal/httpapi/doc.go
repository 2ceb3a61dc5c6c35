// Package httpapi exposes the auth service over HTTP with gin.
//
// Every request passes through [Sessions], which resolves the session
// cookie into a handle before any handler runs. Handlers that change the
// session set the cookie before writing the body.
//
// # What this package must NOT do
//
//   - Write raw store or driver errors to a response body.
//   - Keep session state between requests.
package httpapi
