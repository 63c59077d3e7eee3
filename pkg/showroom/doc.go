// Package showroom manages the seller's public showroom profile. Website,
// opening hours and social media links are paid-tier capabilities.
package showroom
