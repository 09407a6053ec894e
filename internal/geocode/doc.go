// Package geocode resolves GPS coordinates to place names through a
// Nominatim-style reverse geocoding endpoint, with a SQLite coordinate cache
// and request spacing that honors the public API usage policy.
package geocode
