// Package slotcatalog loads the delivery time slot catalog from YAML.
package slotcatalog

import (
	"errors"
	"fmt"
	"os"

	"github.com/felixgeelhaar/mealslot/internal/delivery/domain"
	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/security"
	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a catalog file:
//
//	time_slots:
//	  - "09:00"
//	  - "11:00"
type File struct {
	TimeSlots []string `yaml:"time_slots"`
}

// Parse builds a catalog from YAML content.
func Parse(data []byte) (*domain.TimeSlotCatalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse time slot catalog: %w", err)
	}
	catalog, err := domain.ParseTimeSlotCatalog(f.TimeSlots)
	if err != nil {
		return nil, fmt.Errorf("time slot catalog: %w", err)
	}
	return catalog, nil
}

// Load reads the catalog at path. An empty path or a missing file yields the
// default catalog.
func Load(path string) (*domain.TimeSlotCatalog, error) {
	if path == "" {
		return domain.DefaultTimeSlotCatalog(), nil
	}
	data, err := security.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.DefaultTimeSlotCatalog(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read time slot catalog: %w", err)
	}
	return Parse(data)
}

// Marshal renders a catalog in the file format.
func Marshal(catalog *domain.TimeSlotCatalog) ([]byte, error) {
	return yaml.Marshal(File{TimeSlots: catalog.Strings()})
}
