// Package sample holds the fixed dataset shown when no live source answers.
package sample

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"cafe-dashboard/internal/models"
)

//go:embed sample.json
var raw []byte

var dataset = mustLoad()

func mustLoad() models.Sections {
	var s models.Sections
	if err := json.Unmarshal(raw, &s); err != nil {
		panic(fmt.Sprintf("sample dataset is invalid: %v", err))
	}
	if !s.Complete() {
		panic("sample dataset is missing a section")
	}
	return s
}

// Sections returns a private copy of the sample dataset.
func Sections() models.Sections {
	return dataset.Clone()
}
