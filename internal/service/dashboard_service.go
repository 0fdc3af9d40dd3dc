package service

import (
	"errors"
	"time"

	"stocky-api/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxMovementDays = 90

type DashboardService interface {
	GetBusinessStats(businessID uuid.UUID, actor Actor) (*repository.BusinessStats, error)
	GetSalesMovement(businessID uuid.UUID, days int, actor Actor) ([]repository.SalesMovementData, error)
	GetPlatformStats() (*repository.PlatformStats, error)
}

type dashboardService struct {
	dashRepo     repository.DashboardRepository
	businessRepo repository.BusinessRepository
}

func NewDashboardService(dashRepo repository.DashboardRepository, businessRepo repository.BusinessRepository) DashboardService {
	return &dashboardService{dashRepo: dashRepo, businessRepo: businessRepo}
}

func (s *dashboardService) authorize(businessID uuid.UUID, actor Actor) error {
	business, err := s.businessRepo.FindByID(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBusinessNotFound
		}
		return err
	}
	if business.OwnerID != actor.ID && !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func (s *dashboardService) GetBusinessStats(businessID uuid.UUID, actor Actor) (*repository.BusinessStats, error) {
	if err := s.authorize(businessID, actor); err != nil {
		return nil, err
	}
	return s.dashRepo.GetBusinessStats(businessID, time.Now())
}

func (s *dashboardService) GetSalesMovement(businessID uuid.UUID, days int, actor Actor) ([]repository.SalesMovementData, error) {
	if err := s.authorize(businessID, actor); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 7
	}
	if days > maxMovementDays {
		days = maxMovementDays
	}

	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)
	return s.dashRepo.GetSalesMovement(businessID, startDate, endDate)
}

func (s *dashboardService) GetPlatformStats() (*repository.PlatformStats, error) {
	return s.dashRepo.GetPlatformStats()
}
