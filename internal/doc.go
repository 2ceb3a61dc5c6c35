// Package internal holds the process plumbing shared by cmd/api and cmd/web.
//
// # Sub-packages
//
//   - app: dependency bootstrap and graceful http serving
//   - config: environment variables parsed with caarlos0/env
//   - httpapi: gin engine, middleware and the /api handlers
//   - logging: zerolog construction
//   - rate: Redis-backed failed-login throttling
//   - web: front-end page routes on top of httpapi
//
// # What this package must NOT do
//
//   - Export types that appear in the public sharedauth API.
//   - Be imported by any package outside the sharedauth module.
package internal
