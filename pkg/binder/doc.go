// Package binder decodes HTTP request bodies for handlers.
//
// JSON returns a strict binder for application/json bodies that plugs into
// handler.WithBinder. File extracts one uploaded file from a multipart form.
package binder
