package service

import (
	"errors"
	"strings"

	"stocky-api/internal/model"
	"stocky-api/internal/repository"
	"stocky-api/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrRoleNotFound = errors.New("role not found")

type UserService interface {
	CreateUser(req *CreateUserRequest, actor Actor) (*model.User, error)
	UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest) (*model.UserResponse, error)
	SetWallet(userID uuid.UUID, address string) (*model.UserResponse, error)
	SetActive(userID uuid.UUID, active bool, actor Actor) error
	UpdateRolePrivileges(roleCode string, privilegeCodes []string) (*model.Role, error)
	GetAllUsers() ([]model.UserResponse, error)
	GetUserByID(id uuid.UUID) (*model.UserResponse, error)
}

type CreateUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	FullName    string `json:"full_name" validate:"required,max=255"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=20"`
	Role        string `json:"role" validate:"required,oneof=ADMIN BUSINESS CONSUMER"`
}

type UpdateProfileRequest struct {
	FullName    string `json:"full_name" validate:"required,max=255"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=20"`
}

type userService struct {
	userRepo      repository.UserRepository
	privilegeRepo repository.PrivilegeRepository
	roleRepo      repository.RoleRepository
}

func NewUserService(userRepo repository.UserRepository, privilegeRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository) UserService {
	return &userService{
		userRepo:      userRepo,
		privilegeRepo: privilegeRepo,
		roleRepo:      roleRepo,
	}
}

// CreateUser lets an admin create an account with any role
func (s *userService) CreateUser(req *CreateUserRequest, actor Actor) (*model.User, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := validator.Validate(req); err != nil {
		return nil, invalid(err)
	}

	if existing, err := s.userRepo.FindByEmail(req.Email); err == nil && existing != nil {
		return nil, ErrEmailExists
	}

	role, err := s.roleRepo.FindByCode(req.Role)
	if err != nil {
		return nil, ErrRoleNotFound
	}

	user := &model.User{
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		RoleID:      &role.ID,
		IsActive:    true,
	}
	user.CreatedBy = actor.String()
	user.UpdatedBy = actor.String()

	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	user.Role = role
	return user, nil
}

func (s *userService) UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest) (*model.UserResponse, error) {
	if err := validator.Validate(req); err != nil {
		return nil, invalid(err)
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	user.FullName = req.FullName
	user.PhoneNumber = req.PhoneNumber
	user.UpdatedBy = userID.String()
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	response := user.ToResponse()
	return &response, nil
}

// SetWallet stores the address carbon credits are minted to. An empty address clears it.
func (s *userService) SetWallet(userID uuid.UUID, address string) (*model.UserResponse, error) {
	address = strings.TrimSpace(address)
	if address != "" {
		if err := validator.Var(address, "eth_addr"); err != nil {
			return nil, invalidf("wallet_address must be a 0x-prefixed 20-byte hex address")
		}
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if err := s.userRepo.UpdateWallet(userID, address); err != nil {
		return nil, err
	}

	user.WalletAddress = address
	response := user.ToResponse()
	return &response, nil
}

func (s *userService) SetActive(userID uuid.UUID, active bool, actor Actor) error {
	if userID == actor.ID && !active {
		return invalidf("you cannot deactivate your own account")
	}
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return ErrUserNotFound
	}
	if err := s.userRepo.SetActive(userID, active); err != nil {
		return err
	}
	if !active {
		// drop any live session
		return s.userRepo.UpdateTokenVersion(userID, uuid.New().String())
	}
	return nil
}

// UpdateRolePrivileges replaces the privilege set of a role. Sessions pick it up on next login.
func (s *userService) UpdateRolePrivileges(roleCode string, privilegeCodes []string) (*model.Role, error) {
	role, err := s.roleRepo.FindByCode(roleCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}

	privileges, err := s.privilegeRepo.FindByCodes(privilegeCodes)
	if err != nil {
		return nil, errors.New("failed to find privileges")
	}
	if len(privileges) != len(privilegeCodes) {
		return nil, invalidf("unknown privilege code in %v", privilegeCodes)
	}

	if err := s.roleRepo.ReplacePrivileges(role, privileges); err != nil {
		return nil, err
	}
	role.Privileges = privileges
	return role, nil
}

func (s *userService) GetAllUsers() ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}

	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	response := user.ToResponse()
	return &response, nil
}
