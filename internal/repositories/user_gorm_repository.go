package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"userdir/internal/apperrors"
	"userdir/internal/models"
)

// GORMUserRepository is a GORM implementation of UserRepository. The
// unique index on username makes the database the authority on
// duplicate keys; racing creates serialize there, not in the service.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Exists reports whether a user with the given username is stored.
func (r *GORMUserRepository) Exists(username string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.StoreFailure, "failed to check username", fmt.Errorf("exists %s: %w", username, err))
	}
	return count > 0, nil
}

// GetByUsername retrieves a user by their username.
func (r *GORMUserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.NotFound, fmt.Sprintf("User not found: %s", username))
		}
		return nil, apperrors.Wrap(apperrors.StoreFailure, "failed to get user", fmt.Errorf("get %s: %w", username, err))
	}
	return &user, nil
}

// GetAll retrieves one page of users plus total-count metadata. Pages
// are zero-based; rows come back in primary-key order.
func (r *GORMUserRepository) GetAll(page, size int) (*models.Page, error) {
	var total int64
	if err := r.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.StoreFailure, "failed to count users", err)
	}

	// Capacity is clamped to the stored total; the caller-supplied size
	// can be as large as math.MaxInt for an unbounded page.
	capacity := size
	if int64(capacity) > total {
		capacity = int(total)
	}
	users := make([]models.User, 0, capacity)
	if err := r.db.Order("id").Offset(page * size).Limit(size).Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.StoreFailure, "failed to list users", err)
	}

	totalPages := 0
	if size > 0 && total > 0 {
		totalPages = int((total-1)/int64(size)) + 1
	}
	return &models.Page{
		Items:      users,
		TotalItems: total,
		Page:       page,
		Size:       size,
		TotalPages: totalPages,
	}, nil
}

// Save persists a user, creating it when the ID is zero and updating
// the existing row otherwise. A duplicate username surfaces as Conflict.
func (r *GORMUserRepository) Save(user *models.User) (*models.User, error) {
	if err := r.db.Save(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Wrap(apperrors.Conflict, fmt.Sprintf("Username already exists: %s", user.Username), err)
		}
		return nil, apperrors.Wrap(apperrors.StoreFailure, "failed to save user", fmt.Errorf("save %s: %w", user.Username, err))
	}
	return user, nil
}

// SaveAll persists a batch of users in order. The whole batch fails on
// a store error, including a unique-index violation.
func (r *GORMUserRepository) SaveAll(users []models.User) ([]models.User, error) {
	if len(users) == 0 {
		return users, nil
	}
	if err := r.db.Create(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.StoreFailure, "failed to save users", fmt.Errorf("save batch of %d: %w", len(users), err))
	}
	return users, nil
}

// Delete removes a stored user.
func (r *GORMUserRepository) Delete(user *models.User) error {
	if err := r.db.Delete(user).Error; err != nil {
		return apperrors.Wrap(apperrors.StoreFailure, "failed to delete user", fmt.Errorf("delete %s: %w", user.Username, err))
	}
	return nil
}
