package storage

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"urbaneye/backend/internal/models"
)

var ErrNotFound = errors.New("record not found")

func (s *Service) CreateUser(user *models.User) error {
	if err := s.DB.Create(user).Error; err != nil {
		s.Logger.Error("failed to create user", zap.String("email", user.Email), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) UpdateUser(user *models.User) error {
	return s.DB.Save(user).Error
}

func (s *Service) CountUsersByEmail(email string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count, err
}
