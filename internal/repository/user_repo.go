package repository

import (
	"stocky-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByEmail(email string) (*model.User, error)
	FindByID(id uuid.UUID) (*model.User, error)
	Create(user *model.User) error
	Update(user *model.User) error
	FindAll() ([]model.User, error)
	SetActive(userID uuid.UUID, active bool) error
	UpdateWallet(userID uuid.UUID, address string) error
	UpdateTokenVersion(userID uuid.UUID, version string) error
	UpdateLastSeen(userID uuid.UUID) error
	AddCarbonCredits(userID uuid.UUID, grams int64) error
	TopByCarbonCredits(limit int) ([]model.User, error)
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) withRole() *gorm.DB {
	return r.db.Preload("Role").Preload("Role.Privileges")
}

func (r *userRepo) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.withRole().Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByID(id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.withRole().First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *userRepo) Update(user *model.User) error {
	return r.db.Omit("Role", "Businesses").Save(user).Error
}

func (r *userRepo) FindAll() ([]model.User, error) {
	var users []model.User
	if err := r.db.Preload("Role").Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) SetActive(userID uuid.UUID, active bool) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("is_active", active).Error
}

func (r *userRepo) UpdateWallet(userID uuid.UUID, address string) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("wallet_address", address).Error
}

func (r *userRepo) UpdateTokenVersion(userID uuid.UUID, version string) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("token_version", version).Error
}

func (r *userRepo) UpdateLastSeen(userID uuid.UUID) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("last_seen_at", gorm.Expr("NOW()")).Error
}

// AddCarbonCredits increments in SQL so concurrent completions do not lose updates
func (r *userRepo) AddCarbonCredits(userID uuid.UUID, grams int64) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).
		Update("carbon_credits", gorm.Expr("carbon_credits + ?", grams)).Error
}

func (r *userRepo) TopByCarbonCredits(limit int) ([]model.User, error) {
	var users []model.User
	err := r.db.Where("carbon_credits > 0").Order("carbon_credits DESC").Limit(limit).Find(&users).Error
	return users, err
}
