package mocks

import (
	"stocky-api/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) FindAll() ([]model.Role, error) {
	args := m.Called()
	if r := args.Get(0); r != nil {
		return r.([]model.Role), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoleRepository) FindByCode(code string) (*model.Role, error) {
	args := m.Called(code)
	if r := args.Get(0); r != nil {
		return r.(*model.Role), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoleRepository) SeedDefaults() error {
	return m.Called().Error(0)
}

func (m *MockRoleRepository) ReplacePrivileges(role *model.Role, privileges []model.Privilege) error {
	return m.Called(role, privileges).Error(0)
}

type MockPrivilegeRepository struct {
	mock.Mock
}

func (m *MockPrivilegeRepository) FindByCodes(codes []string) ([]model.Privilege, error) {
	args := m.Called(codes)
	if p := args.Get(0); p != nil {
		return p.([]model.Privilege), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPrivilegeRepository) FindAll() ([]model.Privilege, error) {
	args := m.Called()
	if p := args.Get(0); p != nil {
		return p.([]model.Privilege), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPrivilegeRepository) SeedDefaults() error {
	return m.Called().Error(0)
}
