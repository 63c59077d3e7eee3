// Package auth carries the caller identity into the request context.
//
// Authentication itself happens upstream. The gateway in front of this service
// forwards the verified user ID and role in the X-User-ID and X-User-Role
// headers; Middleware parses them and RequireRole gates routes by role.
// Admins satisfy every role check.
package auth
