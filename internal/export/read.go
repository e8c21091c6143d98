package export

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ReadURLs loads a URL list from path. Plain text files carry one URL per
// line; CSV and XLSX files are scanned cell by cell. Only cells that look
// like web addresses are kept, so header rows and other columns are ignored.
func ReadURLs(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readXLSX(path)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "export: open csv")
		}
		defer f.Close() //nolint:errcheck
		return readCSV(f)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "export: open file")
		}
		defer f.Close() //nolint:errcheck
		return readLines(f)
	}
}

func readLines(r io.Reader) ([]string, error) {
	var urls []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if u, ok := looksLikeURL(sc.Text()); ok {
			urls = append(urls, u)
		}
	}
	return urls, eris.Wrap(sc.Err(), "export: read lines")
}

func readCSV(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "export: read csv")
	}
	return fromCells(records), nil
}

func readXLSX(path string) ([]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "export: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, nil
	}

	var records [][]string
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = c.String()
		}
		records = append(records, cells)
	}
	return fromCells(records), nil
}

func fromCells(records [][]string) []string {
	var urls []string
	for _, rec := range records {
		for _, cell := range rec {
			if u, ok := looksLikeURL(cell); ok {
				urls = append(urls, u)
			}
		}
	}
	return urls
}

func looksLikeURL(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "#") || strings.ContainsAny(s, " \t@") {
		return "", false
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return s, true
	}
	// bare domains like firma.pl or www.firma.pl/kontakt
	host, _, _ := strings.Cut(s, "/")
	return s, strings.Contains(host, ".") && !strings.HasPrefix(host, ".") && !strings.HasSuffix(host, ".")
}
