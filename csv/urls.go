// Package csv reads URL lists from CSV files.
package csv

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/fwojciec/prodner"
)

// ReadURLs returns the values of the first column of r. The first row is a
// header and is skipped. Values are trimmed and blank ones are ignored.
// Rows may have any number of fields.
func ReadURLs(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var urls []string
	header := true
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, prodner.Errorf(prodner.EFORMAT, "reading URL list: %v", err)
		}
		if header {
			header = false
			continue
		}
		if len(row) == 0 {
			continue
		}
		if u := strings.TrimSpace(row[0]); u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}
