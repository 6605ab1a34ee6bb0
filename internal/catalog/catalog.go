// Package catalog loads and saves the tabular image catalog (CSV or
// XLSX) and resolves which columns the pipeline reads and writes.
package catalog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/andresuchdata/imagesync/pkg/logger"
)

// urlColumnPriority is the detection order for the source URL column.
var urlColumnPriority = []string{"WOO IMAGE", "s3_url", "image_url", "url"}

// Output columns written for every row.
const (
	ColumnKey       = "S3_Key"
	ColumnStatus    = "Processing_Status"
	ColumnHTTPCode  = "HTTP_Response_Code"
	resultPreferred = "NEW IMAGE"
	resultFallback  = "S3_URL"
)

// Table is an in-memory catalog: a header row plus data rows. Rows are
// padded to the header width on access.
type Table struct {
	Header []string
	Rows   [][]string
}

// Load reads a catalog from path. XLSX files use the first sheet; CSV
// files fall back through latin-1/cp1252 decoding when the bytes are not
// valid UTF-8, since exported catalogs arrive in mixed encodings.
func Load(path string) (*Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return loadXLSX(path)
	}
	return loadCSV(path)
}

func loadCSV(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	if !utf8.Valid(data) {
		for _, cm := range []*charmap.Charmap{charmap.Windows1252, charmap.ISO8859_1} {
			decoded, decErr := cm.NewDecoder().Bytes(data)
			if decErr == nil {
				logger.Log.Info().Str("path", path).Str("charset", cm.String()).Msg("catalog decoded with fallback charset")
				data = decoded
				break
			}
		}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("catalog %s is empty", path)
	}

	return &Table{Header: records[0], Rows: records[1:]}, nil
}

// Save writes the table back as CSV.
func (t *Table) Save(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(t.Header); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", path, err)
	}
	for i := range t.Rows {
		t.pad(i)
		if err := w.Write(t.Rows[i]); err != nil {
			return fmt.Errorf("failed to write row to %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}

// DetectURLColumn finds the source URL column by priority order.
func (t *Table) DetectURLColumn() (int, string, error) {
	for _, name := range urlColumnPriority {
		if idx := t.columnIndex(name); idx != -1 {
			logger.Log.Info().Str("column", name).Msg("using column for image URLs")
			return idx, name, nil
		}
	}
	return -1, "", fmt.Errorf("no recognized image URL column found, available columns: %v", t.Header)
}

// ResultColumn returns the column that receives public URLs, preferring
// an existing designated column over the fallback name.
func (t *Table) ResultColumn() int {
	if idx := t.columnIndex(resultPreferred); idx != -1 {
		return idx
	}
	return t.EnsureColumn(resultFallback)
}

// EnsureColumn returns the index of the named column, appending it to
// the header when missing.
func (t *Table) EnsureColumn(name string) int {
	if idx := t.columnIndex(name); idx != -1 {
		return idx
	}
	t.Header = append(t.Header, name)
	return len(t.Header) - 1
}

// Head truncates the table to its first n rows.
func (t *Table) Head(n int) {
	if n >= 0 && n < len(t.Rows) {
		t.Rows = t.Rows[:n]
	}
}

// Get returns the cell at (row, col), or "" when the row is short.
func (t *Table) Get(row, col int) string {
	if col < len(t.Rows[row]) {
		return t.Rows[row][col]
	}
	return ""
}

// Set writes the cell at (row, col), padding the row as needed.
func (t *Table) Set(row, col int, value string) {
	t.pad(row)
	t.Rows[row][col] = value
}

func (t *Table) pad(row int) {
	for len(t.Rows[row]) < len(t.Header) {
		t.Rows[row] = append(t.Rows[row], "")
	}
}

func (t *Table) columnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}
