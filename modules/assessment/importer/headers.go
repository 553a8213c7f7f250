package importer

// MissingHeaders returns the required headers absent from the parsed header
// row, in declared order. Row validation is pointless against missing
// columns, so a non-empty result aborts the import.
func MissingHeaders(header []string) []string {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[h] = struct{}{}
	}

	var missing []string
	for _, req := range RequiredHeaders() {
		if _, ok := present[req]; !ok {
			missing = append(missing, req)
		}
	}
	return missing
}

// ValidateHeaders wraps MissingHeaders into the error taxonomy.
func ValidateHeaders(header []string) error {
	if missing := MissingHeaders(header); len(missing) > 0 {
		return &MissingHeadersError{Headers: missing}
	}
	return nil
}
