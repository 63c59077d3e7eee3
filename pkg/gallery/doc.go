// Package gallery manages listing images. Uploads require the gallery
// capability and are capped per listing by maxGalleryImages.
package gallery
