// Package surf holds the domain vocabulary shared by the extraction pipeline:
// the SurfRecord produced for every (spot, month) chart, the Spot metadata read
// from the locations list, month canonicalisation and chart URL construction.
//
// A SurfRecord is the boundary contract handed to the merge stage. Every
// percentage field is always populated, either with a parsed value or with the
// documented 0.0 fallback.
package surf
