package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"userdir/internal/apperrors"
	"userdir/internal/models"
	"userdir/internal/repositories"
)

// EventPublisher publishes user lifecycle events to the message broker.
// Satisfied by *rabbitmq.Client.
type EventPublisher interface {
	Publish(eventType string, body []byte) error
}

// UserService enforces the uniqueness and existence invariants around
// the user store.
type UserService struct {
	repo      repositories.UserRepository
	publisher EventPublisher // may be nil when no broker is configured
}

// NewUserService creates a new UserService. Passing a nil publisher
// disables event publishing.
func NewUserService(repo repositories.UserRepository, publisher EventPublisher) *UserService {
	return &UserService{
		repo:      repo,
		publisher: publisher,
	}
}

// ListUsers retrieves one page of users with total-count metadata.
func (s *UserService) ListUsers(page, size int) (*models.Page, error) {
	return s.repo.GetAll(page, size)
}

// GetUserByUsername retrieves a single user by their username.
func (s *UserService) GetUserByUsername(username string) (*models.User, error) {
	return s.repo.GetByUsername(username)
}

// CreateUser persists a new user. The caller is expected to have
// validated field formats already; this only guards the username key.
func (s *UserService) CreateUser(user *models.User) (*models.User, error) {
	exists, err := s.repo.Exists(user.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		log.Printf("Username already exists: %s", user.Username)
		return nil, apperrors.New(apperrors.Conflict, fmt.Sprintf("Username already exists: %s", user.Username))
	}

	created, err := s.repo.Save(user)
	if err != nil {
		return nil, err
	}
	s.publishEvent("user.created", created.Username)
	return created, nil
}

// UpdateUser overwrites all non-key fields of the user sharing the
// given username. The username itself never changes.
func (s *UserService) UpdateUser(user *models.User) (*models.User, error) {
	existing, err := s.repo.GetByUsername(user.Username)
	if err != nil {
		return nil, err
	}

	user.ID = existing.ID
	updated, err := s.repo.Save(user)
	if err != nil {
		return nil, err
	}
	s.publishEvent("user.updated", updated.Username)
	return updated, nil
}

// DeleteUser removes exactly one user by their username.
func (s *UserService) DeleteUser(username string) error {
	user, err := s.repo.GetByUsername(username)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(user); err != nil {
		return err
	}
	log.Printf("User %s deleted successfully", username)
	s.publishEvent("user.deleted", username)
	return nil
}

// SaveAllUsers persists a batch of users in order. No per-record
// uniqueness pre-check happens here; the store's unique index governs
// duplicates.
func (s *UserService) SaveAllUsers(users []models.User) ([]models.User, error) {
	log.Printf("Saving %d users to the store", len(users))
	saved, err := s.repo.SaveAll(users)
	if err != nil {
		return nil, err
	}
	if len(saved) > 0 {
		s.publishEvent("users.generated", fmt.Sprintf("%d users", len(saved)))
	}
	return saved, nil
}

// publishEvent sends a lifecycle event to the broker when one is
// configured. Publish failures are logged, never propagated; events
// are best-effort.
func (s *UserService) publishEvent(eventType, subject string) {
	if s.publisher == nil {
		return
	}

	body, err := json.Marshal(map[string]interface{}{
		"eventId":    uuid.New().String(),
		"type":       eventType,
		"subject":    subject,
		"occurredAt": time.Now().Format(time.RFC3339),
	})
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", eventType, err)
		return
	}
	if err := s.publisher.Publish(eventType, body); err != nil {
		log.Printf("Warning: failed to publish %s event for %s: %v", eventType, subject, err)
	}
}
