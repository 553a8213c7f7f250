package importer

// ImportGraph runs the full pipeline over one in-memory file buffer:
// tokenize, check headers, validate every row, normalize, assemble. It
// returns a typed error (*ParseError, *MissingHeadersError,
// *ValidationError) on any failure; a non-nil graph is complete and
// internally consistent.
func ImportGraph(data []byte) (*Graph, error) {
	header, rows, err := ParseCSV(data)
	if err != nil {
		return nil, err
	}

	if err := ValidateHeaders(header); err != nil {
		return nil, err
	}

	if errs := ValidateRows(rows); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return Normalize(rows), nil
}
