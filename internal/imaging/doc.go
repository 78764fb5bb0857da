// Package imaging decomposes surf condition charts into the regions that OCR
// reads.
//
// A chart is decoded, upscaled 4x with a Lanczos filter, flattened to opaque
// RGB and contrast-boosted 2x around its mean grey. The enhanced image is then
// cut into fixed-fraction regions:
//
//   - Header: top 20% of the height, full width (clean / blown out / too small)
//   - Bar band: 70% to 100% of the height, full width
//   - Bars: the bar band split into five equal-width strips, left to right,
//     mapping positionally to flat, 0-4ft, 4-6ft, 6-10ft and 10ft+
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner. For
// regions, (X1,Y1) is inclusive and (X2,Y2) is exclusive.
//
// # Error Handling
//
// Decode wraps every decoder failure with ErrDecode. Decompose fails only when
// the chart is too small to hold a non-empty header and five bar strips.
//
// # Thread Safety
//
// All functions are stateless. Each Decomposition belongs to the call that
// produced it. ChartCache is the only shared structure and holds encoded bytes
// only.
package imaging
