package service

import (
	"errors"

	"stocky-api/internal/model"
	"stocky-api/internal/repository"
	"stocky-api/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrBusinessNotFound   = errors.New("business not found")
	ErrBusinessHasOrders  = errors.New("business still has open orders")
	ErrNotBusinessAccount = errors.New("only business accounts can register a business")
)

type BusinessService interface {
	CreateBusiness(req *BusinessRequest, actor Actor) (*model.Business, error)
	GetBusiness(id uuid.UUID) (*model.Business, error)
	ListBusinesses(search string) ([]model.Business, error)
	ListMine(ownerID uuid.UUID) ([]model.Business, error)
	UpdateBusiness(id uuid.UUID, req *BusinessRequest, actor Actor) (*model.Business, error)
	DeleteBusiness(id uuid.UUID, actor Actor) error
}

type BusinessRequest struct {
	Name          string  `json:"name" validate:"required,max=255"`
	Description   string  `json:"description"`
	Address       string  `json:"address" validate:"required,max=500"`
	Latitude      float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude     float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Phone         string  `json:"phone" validate:"omitempty,max=20"`
	WalletAddress string  `json:"wallet_address" validate:"omitempty,eth_addr"`
}

type businessService struct {
	businessRepo repository.BusinessRepository
}

func NewBusinessService(businessRepo repository.BusinessRepository) BusinessService {
	return &businessService{businessRepo: businessRepo}
}

func (s *businessService) CreateBusiness(req *BusinessRequest, actor Actor) (*model.Business, error) {
	if actor.Role != model.RoleBusiness && !actor.IsAdmin() {
		return nil, ErrNotBusinessAccount
	}
	if err := validator.Validate(req); err != nil {
		return nil, invalid(err)
	}

	business := &model.Business{OwnerID: actor.ID}
	applyBusinessRequest(business, req)
	business.CreatedBy = actor.String()
	business.UpdatedBy = actor.String()

	if err := s.businessRepo.Create(business); err != nil {
		return nil, err
	}
	return business, nil
}

func applyBusinessRequest(b *model.Business, req *BusinessRequest) {
	b.Name = req.Name
	b.Description = req.Description
	b.Address = req.Address
	b.Latitude = req.Latitude
	b.Longitude = req.Longitude
	b.Phone = req.Phone
	b.WalletAddress = req.WalletAddress
}

func (s *businessService) GetBusiness(id uuid.UUID) (*model.Business, error) {
	business, err := s.businessRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	return business, nil
}

func (s *businessService) ListBusinesses(search string) ([]model.Business, error) {
	return s.businessRepo.FindAll(search)
}

func (s *businessService) ListMine(ownerID uuid.UUID) ([]model.Business, error) {
	return s.businessRepo.FindByOwner(ownerID)
}

// owned loads a business and checks that actor may manage it
func (s *businessService) owned(id uuid.UUID, actor Actor) (*model.Business, error) {
	business, err := s.GetBusiness(id)
	if err != nil {
		return nil, err
	}
	if business.OwnerID != actor.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return business, nil
}

func (s *businessService) UpdateBusiness(id uuid.UUID, req *BusinessRequest, actor Actor) (*model.Business, error) {
	if err := validator.Validate(req); err != nil {
		return nil, invalid(err)
	}

	business, err := s.owned(id, actor)
	if err != nil {
		return nil, err
	}

	applyBusinessRequest(business, req)
	business.UpdatedBy = actor.String()
	if err := s.businessRepo.Update(business); err != nil {
		return nil, err
	}
	return business, nil
}

func (s *businessService) DeleteBusiness(id uuid.UUID, actor Actor) error {
	if _, err := s.owned(id, actor); err != nil {
		return err
	}

	open, err := s.businessRepo.CountOpenOrders(id)
	if err != nil {
		return err
	}
	if open > 0 {
		return ErrBusinessHasOrders
	}
	return s.businessRepo.Delete(id, actor.String())
}
