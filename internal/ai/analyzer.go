// Package ai identifies perishable products from photos.
package ai

import (
	"context"
	"errors"
	"strings"

	"stocky-api/internal/model"
)

// Sources reported on an Analysis
const (
	SourceAPI  = "api"
	SourceMock = "mock"
)

var ErrUndecodableImage = errors.New("image could not be decoded")

// Analysis describes what an image most likely shows
type Analysis struct {
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Description   string  `json:"description"`
	ShelfLifeDays int     `json:"shelf_life_days"`
	Confidence    float64 `json:"confidence"`
	Source        string  `json:"source"`
	Cached        bool    `json:"cached"`
}

type Analyzer interface {
	AnalyzeImage(ctx context.Context, filename string, data []byte) (*Analysis, error)
}

// NormalizeCategory maps a free-form category onto one of the seeded
// category names, falling back to Other.
func NormalizeCategory(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	for _, c := range model.DefaultCategories {
		if strings.ToLower(c.Name) == name || c.Slug == name {
			return c.Name
		}
	}
	for _, c := range model.DefaultCategories {
		first := strings.ToLower(strings.Fields(c.Name)[0])
		if len(name) >= 3 && (strings.Contains(name, first) || strings.Contains(first, name)) {
			return c.Name
		}
	}
	return model.CategoryOther
}
