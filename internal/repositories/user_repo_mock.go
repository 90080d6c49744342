package repositories

import (
	"fmt"
	"sync"

	"userdir/internal/apperrors"
	"userdir/internal/models"
)

// MockUserRepository is an in-memory implementation of UserRepository.
// It keeps insertion order so listings and the tree view behave like
// the database-backed store.
type MockUserRepository struct {
	users  []models.User
	index  map[string]int // username -> position in users
	nextID uint
	mu     sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		index:  make(map[string]int),
		nextID: 1,
	}
}

// Exists reports whether a user with the given username is stored.
func (r *MockUserRepository) Exists(username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.index[username]
	return ok, nil
}

// GetByUsername returns a user by their username.
func (r *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pos, ok := r.index[username]
	if !ok {
		return nil, apperrors.New(apperrors.NotFound, fmt.Sprintf("User not found: %s", username))
	}
	user := r.users[pos]
	return &user, nil
}

// GetAll returns one page of users in insertion order.
func (r *MockUserRepository) GetAll(page, size int) (*models.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := len(r.users)
	start := page * size
	if start > total {
		start = total
	}
	end := total
	if size > 0 && total-start > size {
		end = start + size
	}

	items := make([]models.User, end-start)
	copy(items, r.users[start:end])

	totalPages := 0
	if size > 0 && total > 0 {
		totalPages = (total-1)/size + 1
	}
	return &models.Page{
		Items:      items,
		TotalItems: int64(total),
		Page:       page,
		Size:       size,
		TotalPages: totalPages,
	}, nil
}

// Save persists a user, assigning an ID on first save. A new record
// with a stored username is a Conflict, matching the database's
// unique-index behavior.
func (r *MockUserRepository) Save(user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pos, ok := r.index[user.Username]; ok {
		if user.ID != r.users[pos].ID {
			return nil, apperrors.New(apperrors.Conflict, fmt.Sprintf("Username already exists: %s", user.Username))
		}
		r.users[pos] = *user
		return user, nil
	}

	if user.ID == 0 {
		user.ID = r.nextID
		r.nextID++
	}
	r.index[user.Username] = len(r.users)
	r.users = append(r.users, *user)
	return user, nil
}

// SaveAll persists a batch of users in order. Like the database-backed
// store, the batch is all-or-nothing: a duplicate username anywhere in
// it fails the whole batch with nothing committed.
func (r *MockUserRepository) SaveAll(users []models.User) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(users))
	for i := range users {
		if _, ok := r.index[users[i].Username]; ok {
			return nil, apperrors.New(apperrors.StoreFailure, "failed to save users")
		}
		if _, ok := seen[users[i].Username]; ok {
			return nil, apperrors.New(apperrors.StoreFailure, "failed to save users")
		}
		seen[users[i].Username] = struct{}{}
	}

	for i := range users {
		users[i].ID = r.nextID
		r.nextID++
		r.index[users[i].Username] = len(r.users)
		r.users = append(r.users, users[i])
	}
	return users, nil
}

// Delete removes a stored user.
func (r *MockUserRepository) Delete(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos, ok := r.index[user.Username]
	if !ok {
		return apperrors.New(apperrors.NotFound, fmt.Sprintf("User not found: %s", user.Username))
	}
	r.users = append(r.users[:pos], r.users[pos+1:]...)
	delete(r.index, user.Username)
	for i := pos; i < len(r.users); i++ {
		r.index[r.users[i].Username] = i
	}
	return nil
}
