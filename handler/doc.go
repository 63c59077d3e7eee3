// Package handler provides typed HTTP handlers that bind a request value,
// return a Response and route every failure through one ErrorHandler.
//
// Successful JSON responses use the envelope {"data": ..., "meta": ...}.
// Errors render as {"error": CODE, ...}: HTTPError supplies the status and
// code, ValidationError adds "details", and a PayloadError supplies its own
// body so domain errors can expose extra fields such as a quota limit.
package handler
