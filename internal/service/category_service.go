package service

import (
	"errors"
	"strings"
	"unicode"

	"stocky-api/internal/model"
	"stocky-api/internal/repository"
	"stocky-api/pkg/validator"

	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
)

type CategoryService interface {
	ListCategories() ([]model.Category, error)
	CreateCategory(req *CategoryRequest) (*model.Category, error)
	UpdateCategory(id uint, req *CategoryRequest) (*model.Category, error)
}

type CategoryRequest struct {
	Name            string  `json:"name" validate:"required,max=100"`
	CarbonKgPerUnit float64 `json:"carbon_kg_per_unit" validate:"gte=0,lte=1000"`
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

// Slugify lower-cases name and joins its alphanumeric runs with dashes
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
		} else if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func (s *categoryService) ListCategories() ([]model.Category, error) {
	return s.categoryRepo.FindAll()
}

func (s *categoryService) CreateCategory(req *CategoryRequest) (*model.Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validator.Validate(req); err != nil {
		return nil, invalid(err)
	}

	if _, err := s.categoryRepo.FindByName(req.Name); err == nil {
		return nil, ErrCategoryExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category := &model.Category{Name: req.Name, Slug: Slugify(req.Name), CarbonKgPerUnit: req.CarbonKgPerUnit}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) UpdateCategory(id uint, req *CategoryRequest) (*model.Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validator.Validate(req); err != nil {
		return nil, invalid(err)
	}

	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	if !strings.EqualFold(category.Name, req.Name) {
		if _, err := s.categoryRepo.FindByName(req.Name); err == nil {
			return nil, ErrCategoryExists
		}
	}

	category.Name = req.Name
	category.Slug = Slugify(req.Name)
	category.CarbonKgPerUnit = req.CarbonKgPerUnit
	if err := s.categoryRepo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}
