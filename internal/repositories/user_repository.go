package repositories

import "userdir/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Exists(username string) (bool, error)
	GetByUsername(username string) (*models.User, error)
	GetAll(page, size int) (*models.Page, error)
	Save(user *models.User) (*models.User, error)
	SaveAll(users []models.User) ([]models.User, error)
	Delete(user *models.User) error
}
