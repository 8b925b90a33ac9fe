package services

import (
	"gorm.io/gorm"

	"github.com/diewo77/emenu/internal/models"
)

// DirectoryService serves the public listing pages: home page sampling,
// per-type counts, and the city/type filter values.
type DirectoryService struct{ DB *gorm.DB }

func NewDirectoryService(db *gorm.DB) *DirectoryService { return &DirectoryService{DB: db} }

// CategoryCount pairs a structure type with how many structures carry it.
type CategoryCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

// Featured returns the home page sample: the first `limit` structures.
func (s *DirectoryService) Featured(limit int) ([]models.Structure, error) {
	var structures []models.Structure
	err := s.DB.Order("id asc").Limit(limit).Find(&structures).Error
	return structures, err
}

// CategoryCounts derives live per-type counts from the structure store.
func (s *DirectoryService) CategoryCounts() ([]CategoryCount, error) {
	counts := make([]CategoryCount, 0, len(models.StructureTypes()))
	for _, typ := range models.StructureTypes() {
		var n int64
		if err := s.DB.Model(&models.Structure{}).Where("type = ?", typ).Count(&n).Error; err != nil {
			return nil, err
		}
		counts = append(counts, CategoryCount{Type: typ, Count: n})
	}
	return counts, nil
}

// List returns all structures, newest first, optionally filtered by city and type.
func (s *DirectoryService) List(ville, typ string) ([]models.Structure, error) {
	q := s.DB.Order("created_at desc")
	if ville != "" {
		q = q.Where("ville = ?", ville)
	}
	if typ != "" {
		q = q.Where("type = ?", typ)
	}
	var structures []models.Structure
	err := q.Find(&structures).Error
	return structures, err
}

// Villes returns the distinct cities present in the store, for the filter select.
func (s *DirectoryService) Villes() ([]string, error) {
	var villes []string
	err := s.DB.Model(&models.Structure{}).Distinct("ville").Order("ville asc").Pluck("ville", &villes).Error
	return villes, err
}

// Types returns the distinct structure types present in the store.
func (s *DirectoryService) Types() ([]string, error) {
	var types []string
	err := s.DB.Model(&models.Structure{}).Distinct("type").Order("type asc").Pluck("type", &types).Error
	return types, err
}
