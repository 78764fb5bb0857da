package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ironsheep/surf-chart-ocr/internal/surf"
)

// Columns is the analysis CSV header.
var Columns = []string{
	"name", "new_region", "month",
	"clean", "blown_out", "too_small",
	"flat", "height_0_4", "height_4_6", "height_6_10", "height_10_plus",
}

// Row is one analysis CSV line: a record plus the region of its spot.
type Row struct {
	Region string
	Record surf.SurfRecord
}

// NewRow pairs a record with the spot it was extracted for.
func NewRow(spot surf.Spot, rec surf.SurfRecord) Row {
	return Row{Region: spot.Region, Record: rec}
}

func (r Row) values() []string {
	rec := r.Record
	return []string{
		rec.Location, r.Region, rec.Month,
		formatPercent(rec.Clean), formatPercent(rec.BlownOut), formatPercent(rec.TooSmall),
		formatPercent(rec.Flat), formatPercent(rec.Height0to4), formatPercent(rec.Height4to6),
		formatPercent(rec.Height6to10), formatPercent(rec.Height10Plus),
	}
}

// formatPercent always keeps a decimal point, so 62 is written as 62.0.
func formatPercent(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// WriteRows writes the header and rows.
func WriteRows(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.values()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadRows parses an analysis CSV previously written by WriteRows.
func ReadRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read results header: %w", err)
	}
	idx := columnIndex(header)
	for _, c := range Columns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("results file has no %q column", c)
		}
	}

	var rows []Row
	for line := 2; ; line++ {
		values, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read results line %d: %w", line, err)
		}

		pct := make(map[string]float64, len(Columns)-3)
		for _, c := range Columns[3:] {
			v, err := strconv.ParseFloat(field(values, idx, c), 64)
			if err != nil {
				return nil, fmt.Errorf("results line %d: column %s: %w", line, c, err)
			}
			pct[c] = v
		}
		rows = append(rows, Row{
			Region: field(values, idx, "new_region"),
			Record: surf.SurfRecord{
				Location:     field(values, idx, "name"),
				Month:        field(values, idx, "month"),
				Clean:        pct["clean"],
				BlownOut:     pct["blown_out"],
				TooSmall:     pct["too_small"],
				Flat:         pct["flat"],
				Height0to4:   pct["height_0_4"],
				Height4to6:   pct["height_4_6"],
				Height6to10:  pct["height_6_10"],
				Height10Plus: pct["height_10_plus"],
			},
		})
	}
}

// LoadRows reads the analysis CSV at path. A missing file yields no rows.
func LoadRows(path string) ([]Row, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open results file: %w", err)
	}
	defer f.Close()
	return ReadRows(f)
}

// writeFile replaces path atomically with the given rows.
func writeFile(path string, rows []Row) error {
	return replaceFile(path, func(w io.Writer) error { return WriteRows(w, rows) })
}

// replaceFile writes path through a temp file in the same directory and
// renames it into place, so readers never see a partial file.
func replaceFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
