package logofy

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// datasetRow mirrors the single column we read from the input dataset.
// Domain is a pointer so that null Parquet cells survive decoding and can be
// dropped instead of turning into empty strings silently.
type datasetRow struct {
	Domain *string `parquet:"domain,optional"`
}

// LoadDomains reads the "domain" column from path. Files ending in .csv are
// parsed as CSV with a header row; everything else is treated as Parquet.
// Null/empty cells and duplicate rows are dropped, input order is preserved.
func LoadDomains(path string) ([]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return loadCSVDomains(path)
	}
	return loadParquetDomains(path)
}

func loadParquetDomains(path string) ([]string, error) {
	rows, err := parquet.ReadFile[datasetRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	var domains []string
	for _, row := range rows {
		if row.Domain == nil {
			continue
		}
		domains = append(domains, *row.Domain)
	}
	return dropEmptyAndDuplicate(domains), nil
}

func loadCSVDomains(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv %s: empty file", path)
	}

	col := -1
	for i, name := range records[0] {
		if strings.EqualFold(strings.TrimSpace(name), "domain") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("csv %s: no domain column", path)
	}

	var domains []string
	for _, rec := range records[1:] {
		if col >= len(rec) {
			continue
		}
		domains = append(domains, rec[col])
	}
	return dropEmptyAndDuplicate(domains), nil
}

func dropEmptyAndDuplicate(domains []string) []string {
	seen := make(map[string]bool, len(domains))
	var out []string
	for _, d := range domains {
		d = strings.TrimSpace(d)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
