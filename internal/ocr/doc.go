// Package ocr reads numbers out of chart crops using Tesseract.
//
// Recognition is tuned per region kind with a RegionConfig value passed into
// every call: the header is read as a single block restricted to digits, "."
// "%" and the label letters; each bar is read with automatic segmentation
// restricted to digits, "." and "%".
//
// # Parsing
//
// Recognized text is parsed into Readings. Each field carries a Status so
// callers can tell a parsed 0% from a missed label:
//
//   - Header labels (Clean, Blown out / Biown out, Too small / too small) are
//     matched independently; a missing label reads as 0.0.
//   - Each bar takes the first "<number>%" in its text. Values above 100 are
//     OCR misreads and read as 0.0.
//   - Bars map to height buckets by position, and only when all five were
//     read.
//
// The letter O is accepted in digit positions and replaced with 0 before any
// number is parsed.
//
// # Prerequisites
//
// Tesseract and its language data must be installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng libtesseract-dev
//   - macOS: brew install tesseract
package ocr
