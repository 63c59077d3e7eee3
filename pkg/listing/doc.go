// Package listing stores car listings and gates their creation on the
// seller's listing quota.
package listing
