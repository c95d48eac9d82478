package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"
)

func ReadCSV[T any](path string) ([]*T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ReadCSV: failed to open %s: %w", path, err)
	}
	defer file.Close()

	var rows []*T
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("ReadCSV: failed to unmarshal %s: %w", path, err)
	}

	return rows, nil
}

// WriteCSV writes records, a slice of csv-tagged structs or pointers to them,
// creating parent directories as needed.
func WriteCSV(path string, records interface{}) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("WriteCSV: failed to create %s: %w", dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("WriteCSV: failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(records, file); err != nil {
		return fmt.Errorf("WriteCSV: failed to marshal %s: %w", path, err)
	}

	log.Infof("Exported data to %s", path)
	return nil
}
