package repository

import (
	"stocky-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BusinessRepository interface {
	Create(business *model.Business) error
	FindByID(id uuid.UUID) (*model.Business, error)
	FindAll(search string) ([]model.Business, error)
	FindByOwner(ownerID uuid.UUID) ([]model.Business, error)
	Update(business *model.Business) error
	Delete(id uuid.UUID, deletedBy string) error
	CountOpenOrders(id uuid.UUID) (int64, error)
}

type businessRepo struct {
	db *gorm.DB
}

func NewBusinessRepo(db *gorm.DB) BusinessRepository {
	return &businessRepo{db}
}

func (r *businessRepo) Create(business *model.Business) error {
	return r.db.Create(business).Error
}

func (r *businessRepo) FindByID(id uuid.UUID) (*model.Business, error) {
	var business model.Business
	if err := r.db.First(&business, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *businessRepo) FindAll(search string) ([]model.Business, error) {
	var businesses []model.Business
	query := r.db.Order("name ASC")
	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}
	err := query.Find(&businesses).Error
	return businesses, err
}

func (r *businessRepo) FindByOwner(ownerID uuid.UUID) ([]model.Business, error) {
	var businesses []model.Business
	err := r.db.Where("owner_id = ?", ownerID).Order("created_at ASC").Find(&businesses).Error
	return businesses, err
}

func (r *businessRepo) Update(business *model.Business) error {
	return r.db.Omit("Owner", "Products").Save(business).Error
}

func (r *businessRepo) Delete(id uuid.UUID, deletedBy string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Business{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Product{}, "business_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Business{}, "id = ?", id).Error
	})
}

func (r *businessRepo) CountOpenOrders(id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.Order{}).
		Where("business_id = ? AND status IN ?", id, openOrderStatuses).
		Count(&count).Error
	return count, err
}
