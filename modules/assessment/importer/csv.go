package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// ParseCSV tokenizes the uploaded buffer. The first row is the header; data
// rows keep their 1-based source line so validation errors can cite them.
// Rows with missing trailing columns read as empty strings; extra columns
// are ignored.
func ParseCSV(data []byte) ([]string, []Row, error) {
	br := bufio.NewReader(bytes.NewReader(data))
	stripUTF8BOM(br)

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = false

	header, err := readHeader(r)
	if err != nil {
		return nil, nil, &ParseError{Err: err}
	}
	idx := headerIndex(header)

	var rows []Row
	line := 1
	for {
		line++
		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, nil, &ParseError{Err: fmt.Errorf("line %d: %w", line, err)}
		}
		if len(rec) == 0 {
			continue
		}
		rows = append(rows, rowFromRecord(idx, rec, line))
	}

	return header, rows, nil
}

func stripUTF8BOM(r *bufio.Reader) {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
}

func readHeader(r *csv.Reader) ([]string, error) {
	h, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("missing header")
		}
		return nil, err
	}
	for i := range h {
		h[i] = strings.TrimSpace(h[i])
		if !utf8.ValidString(h[i]) {
			return nil, fmt.Errorf("invalid header encoding")
		}
	}
	return h, nil
}

func headerIndex(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, name := range header {
		m[name] = i
	}
	return m
}
