package block

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Source is an oracle server.
type Source struct {
	Name string `json:"name"`

	// URL is the base URL of the server, ending with "/"
	URL string `json:"url"`
}

// LoadRegistry reads the oracle servers from a CSV file with the columns name, url.
// A header row starting with "Name" is skipped.
func LoadRegistry(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read oracle registry: %w", err)
	}
	return ParseRegistry(data)
}

// ParseRegistry parses registry CSV data, see LoadRegistry.
func ParseRegistry(data []byte) ([]Source, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse oracle registry csv: %w", err)
	}

	var sources []Source
	seen := make(map[string]bool)
	for _, record := range records {
		// skip header row
		if record[0] == "Name" {
			continue
		}
		if len(record) != 2 {
			return nil, fmt.Errorf("invalid registry record: %v", record)
		}

		name := strings.TrimSpace(record[0])
		if name == "" {
			return nil, fmt.Errorf("invalid registry record - name not set: %v", record)
		}

		raw := strings.TrimSpace(record[1])
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, fmt.Errorf("invalid registry record - invalid url: %v", record)
		}
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}

		if seen[raw] {
			return nil, fmt.Errorf("duplicate oracle url in registry: %s", raw)
		}
		seen[raw] = true

		sources = append(sources, Source{Name: name, URL: raw})
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("oracle registry is empty")
	}
	return sources, nil
}
