package dataset

import (
	"strings"
	"sync"

	"github.com/ironsheep/surf-chart-ocr/internal/surf"
)

// CSVSink collects records in memory and writes the analysis CSV. Snapshots
// go to IntermediatePath(path); Close writes path itself.
type CSVSink struct {
	mu   sync.Mutex
	path string
	rows []Row
}

// NewCSVSink creates a sink for the analysis CSV at path. Rows passed in
// seed the output, which lets a resumed run keep earlier results.
func NewCSVSink(path string, seed ...Row) *CSVSink {
	return &CSVSink{path: path, rows: append([]Row(nil), seed...)}
}

// IntermediatePath names the snapshot file for an output path:
// "out/surf_analysis.csv" becomes "out/surf_analysis_intermediate.csv".
func IntermediatePath(path string) string {
	return strings.TrimSuffix(path, ".csv") + "_intermediate.csv"
}

// Append implements extract.RecordSink.
func (s *CSVSink) Append(spot surf.Spot, rec surf.SurfRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, NewRow(spot, rec))
	return nil
}

// Snapshot writes every row so far to the intermediate file.
func (s *CSVSink) Snapshot() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFile(IntermediatePath(s.path), s.rows)
}

// Close writes the final file. Nothing is written when no rows were
// collected.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.rows) == 0 {
		return nil
	}
	return writeFile(s.path, s.rows)
}

// Rows returns a copy of the collected rows.
func (s *CSVSink) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Row(nil), s.rows...)
}

// Index answers whether a spot/month pair already has a row. Names and
// months compare case-insensitively.
type Index struct {
	pairs map[string]bool
	names map[string]bool
}

// NewIndex builds an Index over rows.
func NewIndex(rows []Row) *Index {
	ix := &Index{pairs: map[string]bool{}, names: map[string]bool{}}
	for _, r := range rows {
		name := strings.ToLower(r.Record.Location)
		ix.names[name] = true
		ix.pairs[name+"\x00"+strings.ToLower(r.Record.Month)] = true
	}
	return ix
}

// Has reports whether spot already has a row for month.
func (ix *Index) Has(spot surf.Spot, month string) bool {
	return ix.pairs[strings.ToLower(spot.Name)+"\x00"+strings.ToLower(month)]
}

// HasSpot reports whether spot has any row at all.
func (ix *Index) HasSpot(spot surf.Spot) bool {
	return ix.names[strings.ToLower(spot.Name)]
}
