// Package auth holds the request-scoped identity produced by the gateway and
// the authorization decisions made over it.
//
// This package implements:
//   - The resolved per-request identity (Context)
//   - Credential failure kinds (AuthError) shared by extraction and validation
//   - Group and tenant based access checks (backoffice, customer scope)
//
// Nothing here performs I/O; every function is safe for concurrent use.
package auth
