package service

import (
	"context"
	"time"

	"stocky-api/internal/ai"
	"stocky-api/internal/pricing"
	"stocky-api/internal/repository"
)

type AIService interface {
	AnalyzeImage(ctx context.Context, filename string, data []byte) (*AnalysisResult, error)
	SuggestPrice(originalPrice int64, expiry time.Time) (*pricing.Suggestion, error)
}

// AnalysisResult is an image analysis resolved against the category table,
// ready to prefill the product form
type AnalysisResult struct {
	*ai.Analysis
	CategoryID      uint       `json:"category_id,omitempty"`
	SuggestedExpiry *time.Time `json:"suggested_expiry,omitempty"`
}

type aiService struct {
	analyzer     ai.Analyzer
	categoryRepo repository.CategoryRepository
	now          func() time.Time
}

func NewAIService(analyzer ai.Analyzer, categoryRepo repository.CategoryRepository) AIService {
	return &aiService{analyzer: analyzer, categoryRepo: categoryRepo, now: time.Now}
}

func (s *aiService) AnalyzeImage(ctx context.Context, filename string, data []byte) (*AnalysisResult, error) {
	analysis, err := s.analyzer.AnalyzeImage(ctx, filename, data)
	if err != nil {
		return nil, err
	}

	result := &AnalysisResult{Analysis: analysis}
	if category, err := s.categoryRepo.FindByName(analysis.Category); err == nil {
		result.CategoryID = category.ID
	}
	if analysis.ShelfLifeDays > 0 {
		expiry := s.now().AddDate(0, 0, analysis.ShelfLifeDays)
		result.SuggestedExpiry = &expiry
	}
	return result, nil
}

func (s *aiService) SuggestPrice(originalPrice int64, expiry time.Time) (*pricing.Suggestion, error) {
	if originalPrice <= 0 {
		return nil, invalidf("original_price must be greater than 0")
	}
	if expiry.IsZero() {
		return nil, invalidf("expiry_date is required")
	}
	suggestion := pricing.Suggest(originalPrice, expiry, s.now())
	return &suggestion, nil
}
