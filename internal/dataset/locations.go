package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ironsheep/surf-chart-ocr/internal/surf"
)

// Location CSV columns. Only name is required.
const (
	ColName       = "name"
	ColRegion     = "new_region"
	ColTimeOfYear = "time_of_year"
	ColGIFURL     = "gif_url"
)

// ReadSpots parses a locations CSV with a header row. Columns are found by
// name; unknown columns are ignored.
func ReadSpots(r io.Reader) ([]surf.Spot, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("locations file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read locations header: %w", err)
	}
	idx := columnIndex(header)
	if _, ok := idx[ColName]; !ok {
		return nil, fmt.Errorf("locations file has no %q column", ColName)
	}

	var spots []surf.Spot
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read locations line %d: %w", line, err)
		}
		spot := surf.Spot{
			Name:       field(row, idx, ColName),
			Region:     field(row, idx, ColRegion),
			TimeOfYear: field(row, idx, ColTimeOfYear),
			GIFURL:     field(row, idx, ColGIFURL),
		}
		if spot.Name == "" {
			continue
		}
		spots = append(spots, spot)
	}
	return spots, nil
}

// LoadSpots reads the locations CSV at path.
func LoadSpots(path string) ([]surf.Spot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open locations file: %w", err)
	}
	defer f.Close()
	return ReadSpots(f)
}

// SaveGIFURLs writes discovered chart URLs back into the locations CSV at
// path, keyed by spot name. Every other column and row is kept as is; a
// gif_url column is appended when the file has none. Rows that already carry
// a URL are left alone. It returns how many rows were updated.
func SaveGIFURLs(path string, urls map[string]string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open locations file: %w", err)
	}
	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	f.Close()
	if err != nil {
		return 0, fmt.Errorf("failed to read locations file: %w", err)
	}
	if len(rows) == 0 {
		return 0, errors.New("locations file is empty")
	}

	idx := columnIndex(rows[0])
	nameCol, ok := idx[ColName]
	if !ok {
		return 0, fmt.Errorf("locations file has no %q column", ColName)
	}
	urlCol, ok := idx[ColGIFURL]
	if !ok {
		urlCol = len(rows[0])
		rows[0] = append(rows[0], ColGIFURL)
		idx[ColGIFURL] = urlCol
	}

	updated := 0
	for i := 1; i < len(rows); i++ {
		for len(rows[i]) <= urlCol {
			rows[i] = append(rows[i], "")
		}
		if nameCol >= len(rows[i]) || field(rows[i], idx, ColGIFURL) != "" {
			continue
		}
		url, found := urls[strings.TrimSpace(rows[i][nameCol])]
		if !found || url == "" {
			continue
		}
		rows[i][urlCol] = url
		updated++
	}
	if updated == 0 {
		return 0, nil
	}

	err = replaceFile(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.WriteAll(rows); err != nil {
			return err
		}
		return cw.Error()
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	return idx
}

// field returns the trimmed value of col, or "" when absent. Spreadsheet
// exports write missing values as NaN or NA; both read as empty.
func field(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	v := strings.TrimSpace(row[i])
	switch strings.ToLower(v) {
	case "nan", "na", "n/a", "null":
		return ""
	}
	return v
}
