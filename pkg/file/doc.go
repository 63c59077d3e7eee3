// Package file stores uploaded gallery images on local disk or in S3.
//
// Keys are slash-separated and relative; anything that would escape the
// storage root is rejected with ErrInvalidPath. Content types are sniffed
// from the bytes, never taken from the client.
package file
