package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rohanmhetar/failsight/internal/dataset"
)

// CSVStore loads the collections from a directory of CSV files, one file per
// collection (orders.csv, warehouses.csv, ...). Files left as strings are
// coerced lazily by the Row accessors.
type CSVStore struct {
	dir string
}

// NewCSVStore creates a CSVStore rooted at dir.
func NewCSVStore(dir string) *CSVStore {
	return &CSVStore{dir: dir}
}

// Ping checks that the directory exists and is readable.
func (s *CSVStore) Ping(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("stat data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data path %q is not a directory", s.dir)
	}
	return nil
}

// LoadAll reads every collection file present in the directory. Missing
// files are logged and skipped; an entirely empty result is ErrNoData.
func (s *CSVStore) LoadAll(_ context.Context) (*dataset.Dataset, error) {
	collections := make(map[string][]dataset.Row, len(dataset.CollectionNames))

	for _, name := range dataset.CollectionNames {
		path := filepath.Join(s.dir, name+".csv")
		rows, err := readCSV(path)
		if os.IsNotExist(err) {
			slog.Warn("collection file missing, skipping", "collection", name, "path", path)
			collections[name] = nil
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		collections[name] = rows
	}

	ds := dataset.New(collections)
	if ds.Empty() {
		return nil, ErrNoData
	}
	return ds, nil
}

func readCSV(path string) ([]dataset.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows []dataset.Row
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		row := make(dataset.Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

var _ Store = (*CSVStore)(nil)
