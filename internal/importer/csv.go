package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV reads rows in the same column layout as a spreadsheet. A leading
// byte order mark, as written by spreadsheet exports, is ignored.
func (im *Importer) ParseCSV(name string, r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", name, err)
	}
	return im.ParseRows(name, trimTrailingEmpty(rows))
}

// trimTrailingEmpty drops empty trailing cells so a CSV row has the same
// length a spreadsheet reader would report.
func trimTrailingEmpty(rows [][]string) [][]string {
	for i, row := range rows {
		n := len(row)
		for n > 0 && row[n-1] == "" {
			n--
		}
		rows[i] = row[:n]
	}
	return rows
}
