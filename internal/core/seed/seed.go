// Package seed provides the directory's initial set of homes.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"havenlist/pkg/domain"
)

//go:embed homes.json
var homesJSON []byte

// Homes decodes the embedded seed table. Each call returns a fresh copy.
func Homes() ([]domain.ChildrensHome, error) {
	var homes []domain.ChildrensHome
	if err := json.Unmarshal(homesJSON, &homes); err != nil {
		return nil, fmt.Errorf("decode seed homes: %w", err)
	}
	return homes, nil
}

// MustHomes is Homes for callers that treat a broken embedded table as fatal.
func MustHomes() []domain.ChildrensHome {
	homes, err := Homes()
	if err != nil {
		panic(err)
	}
	return homes
}
